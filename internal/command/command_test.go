// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package command_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/taibuivan/cryptonotify/internal/command"
	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/users/auth"
)

var testTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// # Fakes

type fakeMigrator struct {
	version uint
	calls   []string
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	f.version = 1
	return nil
}

func (f *fakeMigrator) Down(steps int) error {
	f.calls = append(f.calls, "down")
	f.version -= uint(steps)
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	return f.version, false, nil
}

type fakeAccounts map[string]*auth.Account

func (f fakeAccounts) SetAdmin(_ context.Context, username string, isAdmin bool) (*auth.Account, error) {
	account, ok := f[username]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	account.IsAdmin = isAdmin
	return account, nil
}

type fakeBackend struct {
	migrator *fakeMigrator
	accounts fakeAccounts
	released int
}

func (f *fakeBackend) Migrator() (command.Migrator, error) {
	return f.migrator, nil
}

func (f *fakeBackend) Accounts(context.Context) (command.AdminSetter, func(), error) {
	return f.accounts, func() { f.released++ }, nil
}

func newBackend() *fakeBackend {
	alice := auth.NewAccount("alice", "alice@example.com", "hash", testTime)
	return &fakeBackend{migrator: &fakeMigrator{}, accounts: fakeAccounts{"alice": alice}}
}

func quiet(app *cli.App) *cli.App {
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

// # Manage

func TestManage_Migrate(t *testing.T) {
	backend := newBackend()
	var out bytes.Buffer
	app := quiet(command.ManageApp(backend, &out))

	require.NoError(t, app.Run([]string{"manage", "migrate", "up"}))
	assert.Contains(t, out.String(), "schema version 1")

	require.NoError(t, app.Run([]string{"manage", "migrate", "down", "--steps", "1"}))
	assert.Contains(t, out.String(), "schema version 0")

	assert.Error(t, app.Run([]string{"manage", "migrate", "down", "--steps", "0"}))
	assert.Equal(t, []string{"up", "down"}, backend.migrator.calls)
}

/*
TestManage_Admin covers promote and demote, including unknown usernames and
missing arguments.
*/
func TestManage_Admin(t *testing.T) {
	backend := newBackend()
	var out bytes.Buffer
	app := quiet(command.ManageApp(backend, &out))

	require.NoError(t, app.Run([]string{"manage", "promote", "alice"}))
	assert.True(t, backend.accounts["alice"].IsAdmin)
	assert.Contains(t, out.String(), "is_admin=true")

	require.NoError(t, app.Run([]string{"manage", "demote", "alice"}))
	assert.False(t, backend.accounts["alice"].IsAdmin)

	err := app.Run([]string{"manage", "promote", "mallory"})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	assert.Error(t, app.Run([]string{"manage", "promote"}))
	assert.Equal(t, 3, backend.released)
}

// # Worker

type fakeRunner struct {
	ran []string
}

func (f *fakeRunner) Names() []string { return []string{"price_emergency", "price_update"} }

func (f *fakeRunner) RunNow(_ context.Context, name string) error {
	if name == "missing" {
		return errors.New("unknown job")
	}
	f.ran = append(f.ran, name)
	return nil
}

func (f *fakeRunner) Start()                     {}
func (f *fakeRunner) Stop(context.Context) error { return nil }

func TestWorker_Commands(t *testing.T) {
	runner := &fakeRunner{}
	var out bytes.Buffer
	app := quiet(command.WorkerApp(runner, &out))

	require.NoError(t, app.Run([]string{"worker", "list"}))
	assert.Equal(t, "price_emergency\nprice_update\n", out.String())

	require.NoError(t, app.Run([]string{"worker", "once", "price_update"}))
	assert.Equal(t, []string{"price_update"}, runner.ran)

	assert.Error(t, app.Run([]string{"worker", "once", "missing"}))
	assert.Error(t, app.Run([]string{"worker", "once"}))
}

func TestExecute_ExitCodes(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"success", []string{"worker", "list"}, 0},
		{"job_error", []string{"worker", "once", "missing"}, 1},
		{"usage_error", []string{"worker", "once"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			app := command.WorkerApp(&fakeRunner{}, &out)
			assert.Equal(t, tt.want, command.Execute(app, tt.args, log))
		})
	}
}
