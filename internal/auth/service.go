package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/library-management/internal/audit"
	"github.com/frahmantamala/library-management/internal/core/identity"
)

type Service struct {
	repo        RepositoryAPI
	tokens      TokenService
	credentials CredentialStore
	audit       AuditRecorder
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenService, credentials CredentialStore, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		tokens:      tokens,
		credentials: credentials,
		audit:       recorder,
		logger:      logger,
	}
}

// Login verifies the password and issues an access token. Both outcomes are
// written to the audit trail.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*identity.Identity, string, error) {
	cred, err := s.repo.GetCredentialByUsername(ctx, dto.Username)
	if err != nil {
		return nil, "", fmt.Errorf("auth: load credential: %w", err)
	}

	if cred == nil || !s.credentials.Verify(dto.Password, cred.PasswordHash) {
		s.logger.Warn("login failed", "username", dto.Username)
		s.audit.RecordDetached(ctx, nil, audit.ActionLoginFailed,
			fmt.Sprintf("Failed login attempt for username: %s", dto.Username), nil)
		return nil, "", ErrInvalidCredentials
	}

	user := cred.Identity
	if !user.IsActive() {
		s.logger.Warn("login rejected for inactive account", "user_id", user.ID, "status", user.Status)
		return nil, "", ErrUserInactive
	}

	token, err := s.tokens.Issue(user.Username, map[string]any{claimRole: user.RoleName()}, 0)
	if err != nil {
		return nil, "", err
	}

	s.audit.RecordDetached(ctx, user, audit.ActionLoginSuccess,
		fmt.Sprintf("User '%s' logged in successfully.", user.Username),
		&audit.Target{Type: "User", ID: user.ID})
	s.logger.Info("login succeeded", "user_id", user.ID)

	return user, token, nil
}

// Authenticate wraps Login into the token endpoint response.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (TokenResponse, error) {
	_, token, err := s.Login(ctx, dto)
	if err != nil {
		return TokenResponse{}, err
	}

	resp := TokenResponse{AccessToken: token, TokenType: "bearer"}
	if withTTL, ok := s.tokens.(interface{ TTL() time.Duration }); ok {
		resp.ExpiresIn = int64(withTTL.TTL().Seconds())
	}
	return resp, nil
}
