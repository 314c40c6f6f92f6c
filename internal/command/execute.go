// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package command

import (
	"errors"
	"log/slog"

	"github.com/urfave/cli/v2"
)

// Execute runs app and returns the process exit code. It never exits itself,
// so the caller's deferred cleanups still run. A [cli.ExitCoder] keeps its
// own code; any other failure is logged and maps to 1.
func Execute(app *cli.App, args []string, log *slog.Logger) int {
	// urfave/cli would call os.Exit for ExitCoder errors.
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(args)
	if err == nil {
		return 0
	}

	log.Error("command_failed", slog.Any("error", err))
	var coder cli.ExitCoder
	if errors.As(err, &coder) && coder.ExitCode() != 0 {
		return coder.ExitCode()
	}
	return 1
}
