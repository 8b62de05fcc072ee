// Package cmd holds the yatube-admin command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/anonto42/yatube/internal/cmd/flags"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/internal/storage"
	"github.com/anonto42/yatube/pkg/config"
)

const VERSION = "0.1.0"

// New builds the root command
func New() *cli.Command {
	return &cli.Command{
		Name:    "yatube-admin",
		Usage:   "Maintenance tasks for a yatube installation",
		Version: VERSION,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			config.InitLogger(&config.Config{LogLevel: c.String("log-level")})
			return ctx, nil
		},
		Flags: []cli.Flag{
			flags.LogLevel(),
			flags.DBDriver(),
			flags.SQLitePath(),
			flags.MediaRoot(),
		},
		Commands: []*cli.Command{
			migrateCmd(),
			groupsCmd(),
			usersCmd(),
			sweepCmd(),
		},
	}
}

func Run() {
	if err := New().Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// env is what a subcommand works with
type env struct {
	cfg *config.Config
	db  *config.DB
}

// open loads the configuration, lets the global flags override it and
// connects to the databases
func open(c *cli.Command) (*env, error) {
	cfg := config.Load()
	root := c.Root()
	if root.IsSet("db-driver") {
		cfg.DBDriver = root.String("db-driver")
	}
	if root.IsSet("sqlite-path") {
		cfg.SQLitePath = root.String("sqlite-path")
	}
	if root.IsSet("media-root") {
		cfg.MediaRoot = root.String("media-root")
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := config.RunMigration(db.SQL); err != nil {
		db.CloseDB()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &env{cfg: cfg, db: db}, nil
}

func (e *env) close() {
	e.db.CloseDB()
}

func (e *env) sql() *gorm.DB {
	return e.db.SQL
}

func (e *env) images() (storage.ImageStorage, error) {
	return storage.Open(e.cfg.StorageDriver, e.cfg.MediaRoot, e.db.MongoDatabase(e.cfg))
}

// blog wires the service without image storage; group maintenance never
// touches images
func (e *env) blog() *services.Blog {
	db := e.sql()
	return services.NewBlog(
		repositories.NewPostgresUserRepository(db),
		repositories.NewPostgresGroupRepository(db),
		repositories.NewPostgresPostRepository(db),
		repositories.NewPostgresCommentRepository(db),
		repositories.NewPostgresFollowRepository(db),
		nil,
	)
}

func (e *env) accounts() *services.Accounts {
	return services.NewAccounts(repositories.NewPostgresUserRepository(e.sql()))
}
