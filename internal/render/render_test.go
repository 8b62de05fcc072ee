package render_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/pagination"
	"github.com/anonto42/yatube/internal/render"
)

func TestRenderer(t *testing.T) {
	t.Parallel()

	r, err := render.New()
	require.NoError(t, err)

	for _, name := range []string{
		"posts/index.html", "posts/group_list.html", "posts/profile.html",
		"posts/post_detail.html", "posts/create_post.html", "posts/follow.html",
		"users/login.html", "users/signup.html", "users/logged_out.html",
		"admin/groups.html", "admin/group_form.html",
		"core/403.html", "core/404.html", "core/500.html",
	} {
		require.True(t, r.Has(name), name)
	}

	t.Run("listing", func(t *testing.T) {
		t.Parallel()

		author := models.User{ID: 1, Username: "leo"}
		group := &models.Group{ID: 1, Title: "Cats", Slug: "cats"}
		posts := make([]models.Post, 13)
		for i := range posts {
			posts[i] = models.Post{ID: uint(i + 1), Text: "line one\n<b>line two</b>", Author: author, Group: group, CreatedAt: time.Now()}
		}

		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set(render.ViewerKey, &author)

		buf := new(bytes.Buffer)
		require.NoError(t, r.Render(buf, "posts/index.html", render.Data{"PageObj": pagination.Paginate(posts, 1)}, c))

		html := buf.String()
		require.Contains(t, html, "<title>Latest posts</title>")
		require.Contains(t, html, "line one<br>&lt;b&gt;line two&lt;/b&gt;")
		require.Contains(t, html, `href="/group/cats/"`)
		require.Contains(t, html, `href="?page=2"`)
		require.Contains(t, html, "Log out")
	})

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()

		buf := new(bytes.Buffer)
		require.NoError(t, r.Render(buf, "users/logged_out.html", nil, nil))
		require.Contains(t, buf.String(), "Log in")
	})

	t.Run("unknown template", func(t *testing.T) {
		t.Parallel()

		require.Error(t, r.Render(new(bytes.Buffer), "posts/nope.html", nil, nil))
	})
}
