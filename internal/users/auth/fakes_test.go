// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/platform/mail"
	"github.com/taibuivan/cryptonotify/internal/platform/sec"
	"github.com/taibuivan/cryptonotify/internal/users/auth"
)

// # Credential Store Fake

// memoryAccounts is an in-memory AccountRepository that enforces the same
// uniqueness rules as the unique indexes.
type memoryAccounts struct {
	mu   sync.Mutex
	byID map[string]*auth.Account
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{byID: make(map[string]*auth.Account)}
}

func (m *memoryAccounts) find(match func(*auth.Account) bool) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.byID {
		if match(account) {
			clone := *account
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (m *memoryAccounts) FindByID(_ context.Context, id string) (*auth.Account, error) {
	return m.find(func(a *auth.Account) bool { return a.ID == id })
}

func (m *memoryAccounts) FindByUsername(_ context.Context, username string) (*auth.Account, error) {
	return m.find(func(a *auth.Account) bool { return a.Username == username })
}

func (m *memoryAccounts) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	return m.find(func(a *auth.Account) bool { return a.Email == email })
}

func (m *memoryAccounts) Create(_ context.Context, account *auth.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Username == account.Username || existing.Email == account.Email {
			return apperr.Conflict("User already exists")
		}
	}
	clone := *account
	m.byID[account.ID] = &clone
	return nil
}

func (m *memoryAccounts) update(accountID string, apply func(*auth.Account) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[accountID]
	if !ok {
		return apperr.NotFound("Account")
	}
	return apply(account)
}

func (m *memoryAccounts) UpdatePassword(_ context.Context, accountID, passwordHash string) error {
	return m.update(accountID, func(a *auth.Account) error {
		a.PasswordHash = passwordHash
		return nil
	})
}

func (m *memoryAccounts) UpdateEmail(_ context.Context, accountID, email string) error {
	m.mu.Lock()
	for _, existing := range m.byID {
		if existing.Email == email && existing.ID != accountID {
			m.mu.Unlock()
			return apperr.Conflict("Email is already registered")
		}
	}
	m.mu.Unlock()

	return m.update(accountID, func(a *auth.Account) error {
		a.Email = email
		return nil
	})
}

func (m *memoryAccounts) MarkConfirmed(_ context.Context, accountID string, confirmedAt time.Time) error {
	return m.update(accountID, func(a *auth.Account) error {
		a.IsConfirmed = true
		if a.ConfirmedAt == nil {
			a.ConfirmedAt = &confirmedAt
		}
		return nil
	})
}

func (m *memoryAccounts) TouchLastSeen(_ context.Context, accountID string, seenAt time.Time) error {
	return m.update(accountID, func(a *auth.Account) error {
		a.LastSeenAt = seenAt
		return nil
	})
}

// # Mail Fake

type sentMail struct {
	recipient string
	subject   string
	template  string
	data      mail.LinkData
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (r *recordingMailer) SendTemplate(_ context.Context, recipient, subject, template string, data mail.LinkData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMail{recipient: recipient, subject: subject, template: template, data: data})
	return nil
}

// last returns the most recent mail and the token at the end of its link.
func (r *recordingMailer) last(t *testing.T) (sentMail, string) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.sent, "no mail was sent")
	message := r.sent[len(r.sent)-1]
	return message, message.data.Link[strings.LastIndex(message.data.Link, "/")+1:]
}

func (r *recordingMailer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

// # Clock

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// # Fixture

const publicURL = "http://api.test"

type fixture struct {
	service  *auth.Service
	accounts *memoryAccounts
	sessions *auth.RedisSessionStore
	mailer   *recordingMailer
	clock    *fakeClock
	redis    *miniredis.Miniredis
}

func newFixture(t *testing.T, tokenTTL time.Duration) *fixture {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	codec, err := sec.NewTokenCodec("test-secret", "test-salt")
	require.NoError(t, err)

	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	f := &fixture{
		accounts: newMemoryAccounts(),
		sessions: auth.NewSessionStore(client),
		mailer:   &recordingMailer{},
		clock:    clock,
		redis:    server,
	}
	f.service = auth.NewService(f.accounts, f.sessions, codec.WithClock(clock.Now), f.mailer, nil, auth.Settings{
		PublicURL:      publicURL,
		TokenTTL:       tokenTTL,
		BearerTokenTTL: time.Hour,
		SessionTTL:     24 * time.Hour,
	})
	return f
}

// register creates an account through the service and returns it.
func (f *fixture) register(t *testing.T, username, email, password string) *auth.Account {
	t.Helper()
	account, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return account
}

func requireCode(t *testing.T, err error, code string) *apperr.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}
