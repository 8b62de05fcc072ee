package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/anonto42/yatube/internal/tasks"
)

type admin struct {
	t      *testing.T
	dbPath string
	media  string
}

func newAdmin(t *testing.T) *admin {
	dir := t.TempDir()
	return &admin{t: t, dbPath: filepath.Join(dir, "yatube.db"), media: filepath.Join(dir, "media")}
}

func (a *admin) run(args ...string) (string, error) {
	a.t.Helper()
	var out bytes.Buffer
	root := New()
	root.Writer = &out
	root.ErrWriter = &out
	root.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	argv := append([]string{"yatube-admin", "--db-driver", "sqlite", "--sqlite-path", a.dbPath, "--media-root", a.media}, args...)
	err := root.Run(context.Background(), argv)
	return out.String(), err
}

func TestGroupsCommands(t *testing.T) {
	a := newAdmin(t)

	out, err := a.run("groups", "create", "--title", "Cats", "--slug", "cats", "--description", "All about cats")
	require.NoError(t, err)
	assert.Contains(t, out, "Created group cats")

	_, err = a.run("groups", "create", "-t", "Dogs", "-s", "dogs", "-d", "Dogs too")
	require.NoError(t, err)

	out, err = a.run("groups", "list")
	require.NoError(t, err)
	assert.Equal(t, "cats\tCats\ndogs\tDogs\n", out)

	_, err = a.run("groups", "create", "--title", "Again", "--slug", "cats", "--description", "Taken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slug: Group with this Slug already exists.")

	_, err = a.run("groups", "create", "--title", "Bad", "--slug", "not a slug", "--description", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slug: Enter a valid slug")

	out, err = a.run("groups", "delete", "dogs")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted group dogs")

	_, err = a.run("groups", "delete", "dogs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no group with slug "dogs"`)

	_, err = a.run("groups", "delete")
	require.Error(t, err)

	out, err = a.run("groups", "list")
	require.NoError(t, err)
	assert.Equal(t, "cats\tCats\n", out)
}

func TestUsersCreate(t *testing.T) {
	a := newAdmin(t)

	out, err := a.run("users", "create", "--username", "root", "--email", "root@example.com", "--password", "s3cret-pass", "--staff")
	require.NoError(t, err)
	assert.Contains(t, out, "Created staff user root")

	out, err = a.run("users", "create", "-u", "leo", "-p", "s3cret-pass")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user leo")

	_, err = a.run("users", "create", "-u", "leo", "-p", "other-pass")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `user "leo" already exists`)
}

func TestMaintenanceCommands(t *testing.T) {
	a := newAdmin(t)

	out, err := a.run("migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is up to date")

	require.NoError(t, os.MkdirAll(filepath.Join(a.media, "posts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(a.media, "posts", "orphan.gif"), []byte("GIF89a"), 0o644))
	old := time.Now().Add(-2 * tasks.SweepGrace)
	require.NoError(t, os.Chtimes(filepath.Join(a.media, "posts", "orphan.gif"), old, old))

	out, err = a.run("sweep-images")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 images")
	assert.NoFileExists(t, filepath.Join(a.media, "posts", "orphan.gif"))
}

func TestInvalidLogLevel(t *testing.T) {
	a := newAdmin(t)
	_, err := a.run("--log-level", "loud", "migrate")
	require.Error(t, err)
}
