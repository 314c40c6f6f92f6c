// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/cryptonotify/internal/platform/constants"
	"github.com/taibuivan/cryptonotify/internal/platform/sec"
)

// # Session Store

// RedisSessionStore implements [SessionStore] using Redis.
//
// Each session is a string key holding the account id. A per-account set
// indexes the session ids so all of them can be dropped at once.
type RedisSessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a Redis-backed [SessionStore].
func NewSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return constants.RedisPrefixSession + sessionID
}

func accountSessionsKey(accountID string) string {
	return constants.RedisPrefixAccountSession + accountID
}

/*
Create stores a fresh random session id for accountID.

Parameters:
  - context: context.Context
  - accountID: string
  - ttl: time.Duration

Returns:
  - string: Session id
  - error: Random source or Redis failures
*/
func (store *RedisSessionStore) Create(context context.Context, accountID string, ttl time.Duration) (string, error) {
	sessionID, err := sec.RandomToken(constants.SessionIDBytes)
	if err != nil {
		return "", fmt.Errorf("redis_session_id_failed: %w", err)
	}

	pipe := store.client.TxPipeline()
	pipe.Set(context, sessionKey(sessionID), accountID, ttl)
	pipe.SAdd(context, accountSessionsKey(accountID), sessionID)
	pipe.Expire(context, accountSessionsKey(accountID), ttl)

	if _, err := pipe.Exec(context); err != nil {
		return "", fmt.Errorf("redis_session_create_failed: %w", err)
	}

	return sessionID, nil
}

// Get implements [SessionStore].
func (store *RedisSessionStore) Get(context context.Context, sessionID string) (string, error) {
	accountID, err := store.client.Get(context, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return accountID, nil
}

// Delete implements [SessionStore].
func (store *RedisSessionStore) Delete(context context.Context, sessionID string) error {
	key := sessionKey(sessionID)

	accountID, err := store.client.GetDel(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}

	if err := store.client.SRem(context, accountSessionsKey(accountID), sessionID).Err(); err != nil {
		return fmt.Errorf("redis_session_index_cleanup_failed: %w", err)
	}
	return nil
}

/*
DeleteAllForAccount ends every session of an account.

Description: Used after a password reset and when an admin deletes the
account, so stolen or orphaned cookies stop working immediately.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Redis failures
*/
func (store *RedisSessionStore) DeleteAllForAccount(context context.Context, accountID string) error {
	indexKey := accountSessionsKey(accountID)

	sessionIDs, err := store.client.SMembers(context, indexKey).Result()
	if err != nil {
		return fmt.Errorf("redis_session_list_failed: %w", err)
	}

	keys := make([]string, 0, len(sessionIDs)+1)
	for _, sessionID := range sessionIDs {
		keys = append(keys, sessionKey(sessionID))
	}
	keys = append(keys, indexKey)

	if err := store.client.Del(context, keys...).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_all_failed: %w", err)
	}
	return nil
}
