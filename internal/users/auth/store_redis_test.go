// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cryptonotify/internal/users/auth"
)

func newSessionStore(t *testing.T) (*auth.RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return auth.NewSessionStore(client), server
}

func TestRedisSessionStore_Lifecycle(t *testing.T) {
	store, server := newSessionStore(t)
	ctx := context.Background()

	sessionID, err := store.Create(ctx, "account-1", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.True(t, server.Exists("auth:session:"+sessionID))

	accountID, err := store.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "account-1", accountID)

	require.NoError(t, store.Delete(ctx, sessionID))
	accountID, err = store.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, accountID)

	// Deleting twice is harmless.
	require.NoError(t, store.Delete(ctx, sessionID))
}

func TestRedisSessionStore_Expiry(t *testing.T) {
	store, server := newSessionStore(t)
	ctx := context.Background()

	sessionID, err := store.Create(ctx, "account-1", time.Minute)
	require.NoError(t, err)

	server.FastForward(2 * time.Minute)

	accountID, err := store.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, accountID)
}

/*
TestRedisSessionStore_DeleteAllForAccount verifies only the target account's
sessions are removed.
*/
func TestRedisSessionStore_DeleteAllForAccount(t *testing.T) {
	store, _ := newSessionStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "account-1", time.Hour)
	require.NoError(t, err)
	second, err := store.Create(ctx, "account-1", time.Hour)
	require.NoError(t, err)
	other, err := store.Create(ctx, "account-2", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.NoError(t, store.DeleteAllForAccount(ctx, "account-1"))

	for _, sessionID := range []string{first, second} {
		accountID, err := store.Get(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, accountID)
	}

	accountID, err := store.Get(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, "account-2", accountID)

	// No sessions left is not an error.
	require.NoError(t, store.DeleteAllForAccount(ctx, "account-1"))
}
