// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisstore "github.com/taibuivan/cryptonotify/internal/platform/redis"
)

func TestParseOptions(t *testing.T) {
	options, err := redisstore.ParseOptions("redis://:secret@cache.internal:6380/3", redisstore.WorkerProfile)
	require.NoError(t, err)

	assert.Equal(t, "cache.internal:6380", options.Addr)
	assert.Equal(t, 3, options.DB)
	assert.Equal(t, "secret", options.Password)
	assert.Equal(t, "cryptonotify-worker", options.ClientName)
	assert.Equal(t, 2, options.PoolSize)
}

func TestParseOptions_InvalidURL(t *testing.T) {
	_, err := redisstore.ParseOptions("http://cache.internal", redisstore.APIProfile)
	assert.Error(t, err)
}
