package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/tasks"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema",
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := open(c)
			if err != nil {
				return err
			}
			defer e.close()

			fmt.Fprintln(c.Root().Writer, "Schema is up to date")
			return nil
		},
	}
}

func sweepCmd() *cli.Command {
	return &cli.Command{
		Name:  "sweep-images",
		Usage: "Delete stored images no post refers to",
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := open(c)
			if err != nil {
				return err
			}
			defer e.close()

			images, err := e.images()
			if err != nil {
				return err
			}
			removed, err := tasks.NewImageSweeper(repositories.NewPostgresPostRepository(e.sql()), images).Sweep(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Root().Writer, "Removed %d images\n", removed)
			return nil
		},
	}
}
