// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package logger builds the process-wide structured logger shared by every binary.
package logger

import (
	"io"
	"log/slog"

	"github.com/taibuivan/cryptonotify/internal/platform/constants"
)

// New returns a JSON logger tagged with the application and component name,
// and installs it as the slog default.
func New(writer io.Writer, component string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})).With(
		slog.String("app", constants.AppName),
		slog.String("component", component),
	)
	slog.SetDefault(log)
	return log
}
