// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/users/account"
	"github.com/taibuivan/cryptonotify/internal/users/auth"
)

type memoryAccounts struct {
	mu   sync.Mutex
	byID map[string]*auth.Account
}

func (m *memoryAccounts) FindByID(_ context.Context, id string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	clone := *found
	return &clone, nil
}

func (m *memoryAccounts) UpdateProfile(_ context.Context, accountID, firstName, lastName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found, ok := m.byID[accountID]
	if !ok {
		return apperr.NotFound("Account")
	}
	found.FirstName, found.LastName = firstName, lastName
	return nil
}

func (m *memoryAccounts) SetAdmin(_ context.Context, username string, isAdmin bool) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, found := range m.byID {
		if found.Username == username {
			found.IsAdmin = isAdmin
			clone := *found
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (m *memoryAccounts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return apperr.NotFound("Account")
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryAccounts) List(_ context.Context, offset, limit int) ([]*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]*auth.Account, 0, len(m.byID))
	for _, found := range m.byID {
		clone := *found
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RegisteredAt.Before(all[j].RegisteredAt) })

	if offset >= len(all) {
		return []*auth.Account{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (m *memoryAccounts) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID), nil
}

type revokedSessions struct {
	mu       sync.Mutex
	accounts []string
}

func (r *revokedSessions) DeleteAllForAccount(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = append(r.accounts, accountID)
	return nil
}

type fixture struct {
	service  *account.Service
	accounts *memoryAccounts
	sessions *revokedSessions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	accounts := &memoryAccounts{byID: make(map[string]*auth.Account)}
	sessions := &revokedSessions{}
	return &fixture{
		service:  account.NewService(accounts, sessions),
		accounts: accounts,
		sessions: sessions,
	}
}

// seed registers usernames one second apart, in order.
func (f *fixture) seed(usernames ...string) []*auth.Account {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seeded := make([]*auth.Account, 0, len(usernames))

	f.accounts.mu.Lock()
	defer f.accounts.mu.Unlock()
	for i, username := range usernames {
		created := auth.NewAccount(username, username+"@example.com", "hash", start.Add(time.Duration(i)*time.Second))
		f.accounts.byID[created.ID] = created
		seeded = append(seeded, created)
	}
	return seeded
}
