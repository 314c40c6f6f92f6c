// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives: password hashing and the
// signed, time-limited token codec used for email confirmation, password
// reset, email change and bearer authentication.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. The
// codec holds no state besides its derived key, so one instance is built at
// startup and shared by every request.
package sec

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/hkdf"
)

// # Purposes

// Purpose is the discriminator that binds a token to one operation. It is
// stored as the claim key that carries the subject, so a token minted for one
// purpose has no subject under any other purpose.
type Purpose string

const (
	PurposeConfirm     Purpose = "confirm"
	PurposeReset       Purpose = "reset"
	PurposeChangeEmail Purpose = "change_email"
	PurposeAuth        Purpose = "auth"
)

// DefaultTokenTTL is the validity window applied when none is configured.
const DefaultTokenTTL = 3600 * time.Second

const (
	claimAux      = "aux"
	claimIssuedAt = "iat"
	claimExpires  = "exp"
	claimID       = "jti"

	keyDerivationInfo = "cryptonotify token codec"
)

// # Outcomes

// Outcome classifies the result of a verification.
type Outcome int

const (
	OutcomeValid Outcome = iota
	OutcomeInvalid
	OutcomeExpired
	OutcomeMalformed
)

// String returns the lowercase label used in logs, metrics and error details.
func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeExpired:
		return "expired"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

var (
	// ErrTokenInvalid covers signature mismatch, foreign algorithms, unparsable input and future timestamps.
	ErrTokenInvalid = errors.New("sec: token is invalid")
	// ErrTokenExpired is returned once the elapsed time exceeds the validity window.
	ErrTokenExpired = errors.New("sec: token has expired")
	// ErrTokenMalformed is returned when the signed payload lacks the expected purpose key.
	ErrTokenMalformed = errors.New("sec: token payload is malformed")
)

// OutcomeOf maps an error returned by [TokenCodec.Verify] to its [Outcome].
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeValid
	case errors.Is(err, ErrTokenExpired):
		return OutcomeExpired
	case errors.Is(err, ErrTokenMalformed):
		return OutcomeMalformed
	default:
		return OutcomeInvalid
	}
}

// # Codec

// Claim is the verified content of a token.
type Claim struct {
	Subject  string
	Aux      string
	IssuedAt time.Time
}

// TokenCodec mints and verifies HMAC-SHA256 signed tokens in JWT compact form.
//
// The signing key is derived from the secret key and salt with HKDF-SHA256,
// so rotating either one invalidates every outstanding token.
type TokenCodec struct {
	key    []byte
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenCodec derives the signing key and returns a ready codec.
func NewTokenCodec(secret, salt string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("sec: secret key must not be empty")
	}

	key := make([]byte, sha256.Size)
	reader := hkdf.New(sha256.New, []byte(secret), []byte(salt), []byte(keyDerivationInfo))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("sec: failed to derive signing key: %w", err)
	}

	return &TokenCodec{
		key: key,
		now: time.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// WithClock replaces the time source. Intended for tests.
func (codec *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	clone := *codec
	clone.now = now
	return &clone
}

/*
Mint produces an opaque token binding subject (and optionally aux) to purpose.

Parameters:
  - purpose: Purpose the token may be verified for
  - subject: Account identifier
  - aux: Optional secondary value, empty when unused
  - ttl: Validity window embedded in the token

Returns:
  - string: URL-safe token
  - error: Signing failures
*/
func (codec *TokenCodec) Mint(purpose Purpose, subject, aux string, ttl time.Duration) (string, error) {
	if purpose == "" {
		return "", errors.New("sec: token purpose must not be empty")
	}

	issuedAt := codec.now().Unix()
	claims := jwt.MapClaims{
		string(purpose): subject,
		claimIssuedAt:   issuedAt,
		claimExpires:    issuedAt + ttlSeconds(ttl),
		claimID:         ulid.Make().String(),
	}
	if aux != "" {
		claims[claimAux] = aux
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(codec.key)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signed, nil
}

/*
Verify checks a token for the given purpose.

Checks run in a fixed order: signature, then elapsed time, then payload. A
stale token therefore reports [ErrTokenExpired] even when it was minted for a
different purpose.

Parameters:
  - token: Token produced by [TokenCodec.Mint]
  - purpose: Purpose the caller expects
  - ttl: Maximum accepted age

Returns:
  - Claim: Subject and aux value on success
  - error: [ErrTokenInvalid], [ErrTokenExpired] or [ErrTokenMalformed]
*/
func (codec *TokenCodec) Verify(token string, purpose Purpose, ttl time.Duration) (Claim, error) {

	// 1. Signature
	parsed, err := codec.parser.Parse(token, func(*jwt.Token) (any, error) {
		return codec.key, nil
	})
	if err != nil || !parsed.Valid {
		return Claim{}, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claim{}, ErrTokenInvalid
	}

	// 2. Elapsed time
	issuedAt, err := claims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return Claim{}, ErrTokenMalformed
	}

	now := codec.now().Unix()
	age := now - issuedAt.Unix()
	if age < 0 {
		return Claim{}, ErrTokenInvalid
	}
	if age > ttlSeconds(ttl) {
		return Claim{}, ErrTokenExpired
	}
	if expiresAt, err := claims.GetExpirationTime(); err == nil && expiresAt != nil && now > expiresAt.Unix() {
		return Claim{}, ErrTokenExpired
	}

	// 3. Payload
	subject, ok := claims[string(purpose)].(string)
	if !ok || subject == "" {
		return Claim{}, ErrTokenMalformed
	}
	aux, _ := claims[claimAux].(string)

	return Claim{
		Subject:  subject,
		Aux:      aux,
		IssuedAt: issuedAt.Time,
	}, nil
}

// ttlSeconds converts a window to whole seconds.
func ttlSeconds(ttl time.Duration) int64 {
	return int64(ttl / time.Second)
}
