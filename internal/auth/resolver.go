package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/library-management/internal/core/identity"
)

// Resolver maps a bearer token to the identity it names.
type Resolver struct {
	tokens TokenService
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewResolver(tokens TokenService, repo RepositoryAPI, logger *slog.Logger) *Resolver {
	return &Resolver{
		tokens: tokens,
		repo:   repo,
		logger: logger,
	}
}

// Resolve returns nil, nil for an empty token. Invalid or expired tokens and
// subjects that no longer exist yield ErrUnauthorized.
func (r *Resolver) Resolve(ctx context.Context, token string) (*identity.Identity, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := r.tokens.Validate(token)
	if err != nil {
		r.logger.Debug("token rejected", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	id, err := r.repo.GetIdentityByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("auth: resolve %q: %w", claims.Subject, err)
	}
	if id == nil {
		r.logger.Warn("token subject no longer exists", "username", claims.Subject)
		return nil, ErrUnauthorized
	}
	return id, nil
}
