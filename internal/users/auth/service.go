// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/taibuivan/cryptonotify/internal/platform/apperr"
	"github.com/taibuivan/cryptonotify/internal/platform/ctxutil"
	"github.com/taibuivan/cryptonotify/internal/platform/mail"
	"github.com/taibuivan/cryptonotify/internal/platform/metrics"
	"github.com/taibuivan/cryptonotify/internal/platform/sec"
	"github.com/taibuivan/cryptonotify/internal/platform/validate"
)

// # Contracts & Types

// Settings are the lifetimes and link base used by the flows.
type Settings struct {
	// PublicURL prefixes the links sent by email.
	PublicURL string

	TokenTTL       time.Duration
	BearerTokenTTL time.Duration
	SessionTTL     time.Duration
}

// Service implements the account identity use cases.
//
// # Review Process
//
// This service is critical for security. Any change to password handling or
// to the token purposes must keep the purposes isolated from each other.
type Service struct {
	accounts AccountRepository
	sessions SessionStore
	codec    *sec.TokenCodec
	mailer   Mailer
	metrics  *metrics.Metrics
	settings Settings
	now      func() time.Time
}

// NewService constructs a [Service] with its dependencies. recorder may be nil.
func NewService(
	accounts AccountRepository,
	sessions SessionStore,
	codec *sec.TokenCodec,
	mailer Mailer,
	recorder *metrics.Metrics,
	settings Settings,
) *Service {
	if settings.TokenTTL <= 0 {
		settings.TokenTTL = sec.DefaultTokenTTL
	}
	if settings.BearerTokenTTL <= 0 {
		settings.BearerTokenTTL = sec.DefaultTokenTTL
	}
	return &Service{
		accounts: accounts,
		sessions: sessions,
		codec:    codec,
		mailer:   mailer,
		metrics:  recorder,
		settings: settings,
		now:      time.Now,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

/*
Register validates, hashes and persists a new account, then mails the
confirmation link.

Description: The username and email lookups are a fast pre-check; the unique
indexes decide races. A failed confirmation email does not undo the
registration, the user can ask for a new link.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Account: Created entity
  - error: ValidationError, Conflict or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Account, error) {
	username := validate.NormalizeUsername(input.Username)
	email := validate.NormalizeEmail(input.Email)

	if username == "" || input.Password == "" {
		return nil, apperr.ValidationError("Missing credentials")
	}

	// Pre-check username, then email
	if err := service.ensureFree(context, service.accounts.FindByUsername, username); err != nil {
		return nil, err
	}
	if err := service.ensureFree(context, service.accounts.FindByEmail, email); err != nil {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	account := NewAccount(username, email, hashedPassword, service.now())
	account.FirstName = input.FirstName
	account.LastName = input.LastName

	if err := service.accounts.Create(context, account); err != nil {
		return nil, err
	}

	logger := ctxutil.GetLogger(context)
	logger.InfoContext(context, "account_registered", slog.String("account_id", account.ID))

	if err := service.sendConfirmation(context, account); err != nil {
		logger.WarnContext(context, "confirmation_mail_failed",
			slog.String("account_id", account.ID),
			slog.Any("error", err),
		)
	}

	return account, nil
}

// ensureFree returns CONFLICT when lookup finds an account for value.
func (service *Service) ensureFree(
	context context.Context,
	lookup func(context.Context, string) (*Account, error),
	value string,
) error {
	_, err := lookup(context, value)
	switch {
	case err == nil:
		return apperr.Conflict("User already exists")
	case isNotFound(err):
		return nil
	default:
		return fmt.Errorf("auth_service_uniqueness_check_failed: %w", err)
	}
}

// # Authentication Flow

// LoginInput carries the credentials of a login attempt.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult is an established login.
type LoginResult struct {
	Account     *Account
	SessionID   string
	BearerToken string
	ExpiresIn   time.Duration
}

/*
Login verifies username and password and opens a session.

Description: An unknown username and a wrong password are reported with
different codes. Success creates a session and a bearer token and stamps the
last-seen time.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Session id and bearer token
  - error: CredentialsRequired, UnknownUser, InvalidCredentials or storage errors
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {
	username := validate.NormalizeUsername(input.Username)
	if username == "" || input.Password == "" {
		service.metrics.LoginAttempted("missing_credentials")
		return nil, apperr.CredentialsRequired()
	}

	account, err := service.accounts.FindByUsername(context, username)
	if err != nil {
		if isNotFound(err) {
			service.metrics.LoginAttempted("unknown_user")
			return nil, apperr.UnknownUser(username)
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(input.Password, account.PasswordHash) {
		service.metrics.LoginAttempted("invalid_credentials")
		return nil, apperr.InvalidCredentials()
	}

	sessionID, err := service.sessions.Create(context, account.ID, service.settings.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_session_create_failed: %w", err)
	}

	bearerToken, err := service.codec.Mint(sec.PurposeAuth, account.ID, "", service.settings.BearerTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_bearer_mint_failed: %w", err)
	}

	if err := service.Touch(context, account.ID); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "last_seen_update_failed", slog.Any("error", err))
	}

	service.metrics.LoginAttempted("success")
	ctxutil.GetLogger(context).InfoContext(context, "account_logged_in", slog.String("account_id", account.ID))

	return &LoginResult{
		Account:     account,
		SessionID:   sessionID,
		BearerToken: bearerToken,
		ExpiresIn:   service.settings.BearerTokenTTL,
	}, nil
}

/*
Logout ends the caller's session.

Description: Session logins drop the session marker. Bearer tokens cannot be
revoked and simply expire.

Parameters:
  - context: context.Context
  - principal: *sec.Principal (nil means anonymous)

Returns:
  - error: Unauthorized for anonymous callers, storage errors otherwise
*/
func (service *Service) Logout(context context.Context, principal *sec.Principal) error {
	if principal == nil {
		return apperr.Unauthorized("Authentication required")
	}

	if principal.Method == sec.AuthSession && principal.SessionID != "" {
		if err := service.sessions.Delete(context, principal.SessionID); err != nil {
			return fmt.Errorf("auth_service_logout_failed: %w", err)
		}
	}

	ctxutil.GetLogger(context).InfoContext(context, "account_logged_out", slog.String("account_id", principal.AccountID))
	return nil
}

// # Request Identity

// ResolveBearer verifies an auth-purpose bearer token against a live account.
func (service *Service) ResolveBearer(context context.Context, token string) (*sec.Principal, error) {
	claim, err := service.verify(token, sec.PurposeAuth, service.settings.BearerTokenTTL)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token").WithCause(err)
	}

	account, err := service.accounts.FindByID(context, claim.Subject)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized("Invalid or expired token")
		}
		return nil, fmt.Errorf("auth_service_bearer_lookup_failed: %w", err)
	}

	return account.Principal(sec.AuthBearer, ""), nil
}

// ResolveSession maps a session cookie to its account. Unknown sessions and
// sessions of deleted accounts resolve to nil.
func (service *Service) ResolveSession(context context.Context, sessionID string) (*sec.Principal, error) {
	accountID, err := service.sessions.Get(context, sessionID)
	if err != nil || accountID == "" {
		return nil, err
	}

	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth_service_session_lookup_failed: %w", err)
	}

	return account.Principal(sec.AuthSession, sessionID), nil
}

// Touch stamps the account's last-seen time.
func (service *Service) Touch(context context.Context, accountID string) error {
	return service.accounts.TouchLastSeen(context, accountID, service.now())
}

// # Email Confirmation

/*
Confirm marks the token's account as confirmed.

Description: Confirming an already confirmed account succeeds without
changing the original confirmation time.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Account: The confirmed account
  - error: TokenRejected, NotFound or storage errors
*/
func (service *Service) Confirm(context context.Context, token string) (*Account, error) {
	account, _, err := service.accountFromToken(context, token, sec.PurposeConfirm)
	if err != nil {
		return nil, err
	}

	if account.IsConfirmed {
		return account, nil
	}

	confirmedAt := service.now().UTC()
	if err := service.accounts.MarkConfirmed(context, account.ID, confirmedAt); err != nil {
		return nil, fmt.Errorf("auth_service_confirm_failed: %w", err)
	}

	account.IsConfirmed = true
	account.ConfirmedAt = &confirmedAt
	ctxutil.GetLogger(context).InfoContext(context, "account_confirmed", slog.String("account_id", account.ID))

	return account, nil
}

// ResendConfirmation mails a fresh confirmation link to an unconfirmed account.
func (service *Service) ResendConfirmation(context context.Context, accountID string) error {
	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		return err
	}

	if account.IsConfirmed {
		return apperr.Conflict("Account is already confirmed")
	}

	if err := service.sendConfirmation(context, account); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (service *Service) sendConfirmation(context context.Context, account *Account) error {
	token, err := service.codec.Mint(sec.PurposeConfirm, account.ID, "", service.settings.TokenTTL)
	if err != nil {
		return fmt.Errorf("auth_service_confirm_mint_failed: %w", err)
	}

	return service.mail(context, account.Email, SubjectConfirm, mail.TemplateConfirm, account.Username, "/api/v1/auth/confirm/", token)
}

// # Password Recovery

/*
RequestPasswordReset mails a reset link when email belongs to an account.

Description: The caller always sees success so the endpoint cannot be used to
discover registered addresses.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Storage failures only
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {
	account, err := service.accounts.FindByEmail(context, validate.NormalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	token, err := service.codec.Mint(sec.PurposeReset, account.ID, "", service.settings.TokenTTL)
	if err != nil {
		return fmt.Errorf("auth_service_reset_mint_failed: %w", err)
	}

	if err := service.mail(context, account.Email, SubjectReset, mail.TemplateReset, account.Username, "/api/v1/auth/reset/", token); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "reset_mail_failed",
			slog.String("account_id", account.ID),
			slog.Any("error", err),
		)
	}
	return nil
}

/*
ResetPassword sets a new password from a reset token and ends every session
of the account.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - error: TokenRejected, NotFound or storage errors
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	account, _, err := service.accountFromToken(context, token, sec.PurposeReset)
	if err != nil {
		return err
	}

	if err := service.setPassword(context, account.ID, newPassword); err != nil {
		return err
	}

	if err := service.sessions.DeleteAllForAccount(context, account.ID); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "session_cleanup_failed",
			slog.String("account_id", account.ID),
			slog.Any("error", err),
		)
	}

	ctxutil.GetLogger(context).InfoContext(context, "password_reset", slog.String("account_id", account.ID))
	return nil
}

// ChangePassword replaces the password after checking the current one.
func (service *Service) ChangePassword(context context.Context, accountID, oldPassword, newPassword string) error {
	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(oldPassword, account.PasswordHash) {
		return apperr.InvalidCredentials()
	}

	if err := service.setPassword(context, account.ID, newPassword); err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "password_changed", slog.String("account_id", account.ID))
	return nil
}

func (service *Service) setPassword(context context.Context, accountID, password string) error {
	hashedPassword, err := sec.HashPassword(password)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}
	if err := service.accounts.UpdatePassword(context, accountID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_update_password_failed: %w", err)
	}
	return nil
}

// # Email Change

/*
RequestEmailChange mails a change link to the new address.

Description: The password is checked again. An address owned by another
account is refused here, and again when the link is used.

Parameters:
  - context: context.Context
  - accountID: string
  - newEmail: string
  - password: string

Returns:
  - error: InvalidCredentials, Conflict or storage errors
*/
func (service *Service) RequestEmailChange(context context.Context, accountID, newEmail, password string) error {
	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(password, account.PasswordHash) {
		return apperr.InvalidCredentials()
	}

	email := validate.NormalizeEmail(newEmail)
	if err := service.ensureEmailFree(context, email, account.ID); err != nil {
		return err
	}

	token, err := service.codec.Mint(sec.PurposeChangeEmail, account.ID, email, service.settings.TokenTTL)
	if err != nil {
		return fmt.Errorf("auth_service_change_email_mint_failed: %w", err)
	}

	if err := service.mail(context, email, SubjectChangeEmail, mail.TemplateChangeEmail, account.Username, "/api/v1/auth/change-email/", token); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

/*
ChangeEmail applies a change link.

Description: When the new address was claimed by another account since the
link was sent, the change is refused and the account keeps its address.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Account: Account with its new address
  - error: TokenRejected, Conflict, NotFound or storage errors
*/
func (service *Service) ChangeEmail(context context.Context, token string) (*Account, error) {
	account, claim, err := service.accountFromToken(context, token, sec.PurposeChangeEmail)
	if err != nil {
		return nil, err
	}

	email := validate.NormalizeEmail(claim.Aux)
	if email == "" {
		service.metrics.TokenVerified(string(sec.PurposeChangeEmail), sec.OutcomeMalformed.String())
		return nil, apperr.TokenRejected(sec.OutcomeMalformed.String())
	}

	if err := service.ensureEmailFree(context, email, account.ID); err != nil {
		return nil, err
	}

	if err := service.accounts.UpdateEmail(context, account.ID, email); err != nil {
		return nil, err
	}

	account.Email = email
	ctxutil.GetLogger(context).InfoContext(context, "email_changed", slog.String("account_id", account.ID))
	return account, nil
}

func (service *Service) ensureEmailFree(context context.Context, email, ownerID string) error {
	other, err := service.accounts.FindByEmail(context, email)
	switch {
	case err == nil && other.ID != ownerID:
		return apperr.Conflict("Email is already registered")
	case err == nil, isNotFound(err):
		return nil
	default:
		return fmt.Errorf("auth_service_email_check_failed: %w", err)
	}
}

// # Token Helpers

// verify runs the codec and records the outcome.
func (service *Service) verify(token string, purpose sec.Purpose, ttl time.Duration) (sec.Claim, error) {
	claim, err := service.codec.Verify(token, purpose, ttl)
	service.metrics.TokenVerified(string(purpose), sec.OutcomeOf(err).String())
	return claim, err
}

// accountFromToken verifies token and loads the live account it names.
func (service *Service) accountFromToken(context context.Context, token string, purpose sec.Purpose) (*Account, sec.Claim, error) {
	claim, err := service.verify(token, purpose, service.settings.TokenTTL)
	if err != nil {
		return nil, sec.Claim{}, apperr.TokenRejected(sec.OutcomeOf(err).String()).WithCause(err)
	}

	account, err := service.accounts.FindByID(context, claim.Subject)
	if err != nil {
		return nil, sec.Claim{}, err
	}
	return account, claim, nil
}

func (service *Service) mail(context context.Context, recipient, subject, template, username, path, token string) error {
	return service.mailer.SendTemplate(context, recipient, subject, template, mail.LinkData{
		Username:  username,
		Link:      service.link(path, token),
		ExpiresIn: service.settings.TokenTTL.String(),
	})
}

func (service *Service) link(path, token string) string {
	return service.settings.PublicURL + path + url.PathEscape(token)
}

func isNotFound(err error) bool {
	return apperr.HasCode(err, apperr.CodeNotFound)
}
