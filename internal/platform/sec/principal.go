// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Authenticated Identity

// AuthMethod records how a request proved its identity.
type AuthMethod string

const (
	// AuthSession is a login session cookie backed by the session store.
	AuthSession AuthMethod = "session"

	// AuthBearer is a stateless bearer token minted by the [TokenCodec].
	AuthBearer AuthMethod = "bearer"
)

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	AccountID string
	Username  string
	IsAdmin   bool

	// SessionID is set only when Method is [AuthSession].
	SessionID string
	Method    AuthMethod
}

// CanAdminister reports whether the principal may use administrative routes.
func (p *Principal) CanAdminister() bool {
	return p != nil && p.IsAdmin
}
