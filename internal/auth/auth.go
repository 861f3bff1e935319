package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/library-management/internal/audit"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is used when the configuration leaves the token
// lifetime unset.
const DefaultAccessTokenTTL = 60 * time.Minute

var (
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired matches ErrInvalidToken under errors.Is.
	ErrTokenExpired       = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Claims is the payload of an access token. The subject is the username.
type Claims struct {
	Role  string         `json:"role,omitempty"`
	Extra map[string]any `json:"ext,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed, time-limited bearer tokens.
type TokenService interface {
	Issue(subject string, claims map[string]any, ttl time.Duration) (string, error)
	Validate(token string) (*Claims, error)
}

// CredentialStore hashes and verifies passwords.
type CredentialStore interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Credential pairs an identity with its stored password hash.
type Credential struct {
	Identity     *identity.Identity
	PasswordHash string
}

type RepositoryAPI interface {
	// GetCredentialByUsername returns nil, nil when no identity has the username.
	GetCredentialByUsername(ctx context.Context, username string) (*Credential, error)
	// GetIdentityByUsername returns the identity with its role preloaded, or nil, nil.
	GetIdentityByUsername(ctx context.Context, username string) (*identity.Identity, error)
}

type AuditRecorder interface {
	RecordDetached(ctx context.Context, actor *identity.Identity, action, description string, target *audit.Target) *audit.Record
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
