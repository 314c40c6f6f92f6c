// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package command provides the urfave/cli definitions of the manage and
// worker binaries.
package command

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/taibuivan/cryptonotify/internal/platform/constants"
	"github.com/taibuivan/cryptonotify/internal/users/auth"
)

// Migrator applies schema migrations.
type Migrator interface {
	Up() error
	Down(steps int) error
	Version() (version uint, dirty bool, err error)
}

// AdminSetter toggles the admin flag of an account.
type AdminSetter interface {
	SetAdmin(ctx context.Context, username string, isAdmin bool) (*auth.Account, error)
}

// Backend opens the resources a management command needs. Each method is
// called only by the commands that use it.
type Backend interface {
	Migrator() (Migrator, error)

	// Accounts returns the admin setter and a release function.
	Accounts(ctx context.Context) (AdminSetter, func(), error)
}

// ManageApp builds the management CLI.
func ManageApp(backend Backend, out io.Writer) *cli.App {
	return &cli.App{
		Name:      "manage",
		Usage:     "Cryptonotify management commands",
		Version:   constants.AppVersion,
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			migrateCommand(backend),
			adminCommand(backend, "promote", "Grant the admin flag to an account", true),
			adminCommand(backend, "demote", "Revoke the admin flag from an account", false),
		},
	}
}

func migrateCommand(backend Backend) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(c *cli.Context) error {
					migrator, err := backend.Migrator()
					if err != nil {
						return err
					}
					if err := migrator.Up(); err != nil {
						return err
					}
					return printVersion(c, migrator)
				},
			},
			{
				Name:  "down",
				Usage: "Roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "steps",
						Aliases: []string{"n"},
						Usage:   "Number of migrations to roll back",
						Value:   1,
					},
				},
				Action: func(c *cli.Context) error {
					steps := c.Int("steps")
					if steps < 1 {
						return cli.Exit("--steps must be at least 1", 2)
					}

					migrator, err := backend.Migrator()
					if err != nil {
						return err
					}
					if err := migrator.Down(steps); err != nil {
						return err
					}
					return printVersion(c, migrator)
				},
			},
			{
				Name:  "version",
				Usage: "Print the current schema version",
				Action: func(c *cli.Context) error {
					migrator, err := backend.Migrator()
					if err != nil {
						return err
					}
					return printVersion(c, migrator)
				},
			},
		},
	}
}

func printVersion(c *cli.Context, migrator Migrator) error {
	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "schema version %d (dirty: %t)\n", version, dirty)
	return err
}

func adminCommand(backend Backend, name, usage string, isAdmin bool) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "USERNAME",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("exactly one USERNAME is required", 2)
			}

			accounts, release, err := backend.Accounts(c.Context)
			if err != nil {
				return err
			}
			defer release()

			account, err := accounts.SetAdmin(c.Context, c.Args().First(), isAdmin)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(c.App.Writer, "%s (%s) is_admin=%t\n", account.Username, account.ID, account.IsAdmin)
			return err
		},
	}
}
