// Package flags builds fresh flag values for every command tree; flags
// keep parse state, so they are never shared between runs.
package flags

import (
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

func LogLevel() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "log-level",
		Aliases: []string{"l"},
		Usage:   "The level of the logs",
		Value:   "info",
		Validator: func(value string) error {
			if !slices.Contains(validLogLevels, value) {
				return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
			}
			return nil
		},
	}
}

func DBDriver() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "db-driver",
		Usage: "The relational store: postgres or sqlite (overrides DB_DRIVER)",
		Validator: func(value string) error {
			if value != "postgres" && value != "sqlite" {
				return fmt.Errorf("invalid db driver: %s", value)
			}
			return nil
		},
	}
}

func SQLitePath() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "sqlite-path",
		Usage: "The SQLite database file (overrides SQLITE_PATH)",
	}
}

func MediaRoot() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "media-root",
		Usage: "The directory holding uploaded images (overrides MEDIA_ROOT)",
	}
}

func Title() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "title",
		Aliases:  []string{"t"},
		Usage:    "The group title",
		Required: true,
	}
}

func Slug() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "slug",
		Aliases:  []string{"s"},
		Usage:    "The group address",
		Required: true,
	}
}

func Description() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "description",
		Aliases:  []string{"d"},
		Usage:    "What the group is about",
		Required: true,
	}
}

func Username() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "username",
		Aliases:  []string{"u"},
		Usage:    "The login name",
		Required: true,
	}
}

func Email() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "email",
		Aliases: []string{"e"},
		Usage:   "The contact address",
	}
}

func Password() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "password",
		Aliases:  []string{"p"},
		Usage:    "The password",
		Required: true,
		Sources:  cli.EnvVars("YATUBE_ADMIN_PASSWORD"),
	}
}

func Staff() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "staff",
		Usage:       "Allow the user into the group administration",
		DefaultText: "false",
		Value:       false,
	}
}
