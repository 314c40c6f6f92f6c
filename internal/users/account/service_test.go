// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/users/account"
	"github.com/taibuivan/cryptonotify/pkg/pagination"
	"github.com/taibuivan/cryptonotify/pkg/pointer"
	"github.com/taibuivan/cryptonotify/pkg/uuidv7"
)

/*
TestService_UpdateProfile verifies that nil fields are left untouched.
*/
func TestService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	alice := f.seed("alice")[0]
	ctx := context.Background()

	updated, err := f.service.UpdateProfile(ctx, alice.ID, account.UpdateProfileInput{FirstName: pointer.To("Alice")})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)

	updated, err = f.service.UpdateProfile(ctx, alice.ID, account.UpdateProfileInput{LastName: pointer.To("Liddell")})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "Liddell", updated.LastName)

	stored, err := f.service.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Liddell", stored.LastName)
}

func TestService_GetProfileUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetProfile(context.Background(), uuidv7.New())
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	f.seed("alice", "bob", "carol")

	accounts, total, err := f.service.List(context.Background(), pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, accounts, 1)
	assert.Equal(t, "carol", accounts[0].Username)
}

/*
TestService_Delete covers the guard rails around account deletion.
*/
func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	seeded := f.seed("admin", "bob")
	admin, bob := seeded[0], seeded[1]
	ctx := context.Background()

	tests := []struct {
		name     string
		target   string
		wantCode string
	}{
		{"self", admin.ID, apperr.CodeConflict},
		{"not_a_uuid", "42", apperr.CodeNotFound},
		{"unknown", uuidv7.New(), apperr.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.service.Delete(ctx, admin.ID, tt.target)
			assert.True(t, apperr.HasCode(err, tt.wantCode), "got %v", err)
		})
	}

	require.NoError(t, f.service.Delete(ctx, admin.ID, bob.ID))
	assert.Equal(t, []string{bob.ID}, f.sessions.accounts)

	_, err := f.service.GetProfile(ctx, bob.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestService_SetAdmin(t *testing.T) {
	f := newFixture(t)
	f.seed("alice")
	ctx := context.Background()

	promoted, err := f.service.SetAdmin(ctx, "alice", true)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	demoted, err := f.service.SetAdmin(ctx, "alice", false)
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin)

	_, err = f.service.SetAdmin(ctx, "mallory", true)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
