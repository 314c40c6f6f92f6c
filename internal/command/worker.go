// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/taibuivan/cryptonotify/internal/platform/constants"
)

// JobRunner is the scheduler surface the worker commands drive.
type JobRunner interface {
	Names() []string
	RunNow(ctx context.Context, name string) error
	Start()
	Stop(ctx context.Context) error
}

// WorkerApp builds the notification worker CLI. Without a command it runs
// the schedule until SIGINT or SIGTERM.
func WorkerApp(runner JobRunner, out io.Writer) *cli.App {
	run := func(c *cli.Context) error {
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner.Start()
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return runner.Stop(shutdownCtx)
	}

	return &cli.App{
		Name:      "worker",
		Usage:     "Cryptonotify scheduled notifications",
		Version:   constants.AppVersion,
		Writer:    out,
		ErrWriter: out,
		Action:    run,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the schedule until interrupted",
				Action: run,
			},
			{
				Name:  "list",
				Usage: "List the scheduled jobs",
				Action: func(c *cli.Context) error {
					for _, name := range runner.Names() {
						if _, err := fmt.Fprintln(c.App.Writer, name); err != nil {
							return err
						}
					}
					return nil
				},
			},
			{
				Name:      "once",
				Usage:     "Run a single job immediately and exit",
				ArgsUsage: "JOB",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("exactly one JOB is required", 2)
					}
					return runner.RunNow(c.Context, c.Args().First())
				},
			},
		},
	}
}
