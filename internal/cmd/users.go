package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/anonto42/yatube/internal/cmd/flags"
	"github.com/anonto42/yatube/internal/repositories"
)

func usersCmd() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage accounts",
		Commands: []*cli.Command{
			{
				Name:   "create",
				Usage:  "Create an account, optionally with staff rights",
				Flags:  []cli.Flag{flags.Username(), flags.Email(), flags.Password(), flags.Staff()},
				Action: createUser,
			},
		},
	}
}

func createUser(ctx context.Context, c *cli.Command) error {
	e, err := open(c)
	if err != nil {
		return err
	}
	defer e.close()

	user, err := e.accounts().CreateUser(ctx, c.String("username"), c.String("email"), c.String("password"), c.Bool("staff"))
	if errors.Is(err, repositories.ErrDuplicateUser) {
		return cli.Exit(fmt.Sprintf("user %q already exists", c.String("username")), 1)
	}
	if err != nil {
		return err
	}

	kind := "user"
	if user.IsStaff {
		kind = "staff user"
	}
	fmt.Fprintf(c.Root().Writer, "Created %s %s\n", kind, user.Username)
	return nil
}
