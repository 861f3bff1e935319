package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/action"
	"github.com/frahmantamala/library-management/internal/audit"
	"github.com/frahmantamala/library-management/internal/authz"
	identityDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/identity"
	"github.com/frahmantamala/library-management/internal/core/identity"
)

const targetType = "User"

type RepositoryAPI interface {
	Create(ctx context.Context, u *identityDatamodel.User) error
	GetByID(ctx context.Context, id int64) (*identityDatamodel.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*identityDatamodel.User, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateRole(ctx context.Context, id, roleID int64) error
	GetRole(ctx context.Context, roleID int64) (*identityDatamodel.Role, error)
}

type Hasher interface {
	Hash(plaintext string) (string, error)
}

type Runner interface {
	Run(ctx context.Context, actor *identity.Identity, permission string, resource *authz.Resource, step action.Step) error
}

type Service struct {
	repo   RepositoryAPI
	hasher Hasher
	runner Runner
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, hasher Hasher, runner Runner, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		runner: runner,
		logger: logger,
	}
}

func (s *Service) CreateUser(ctx context.Context, actor *identity.Identity, dto CreateUserDTO) (*identity.Identity, error) {
	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	row := &identityDatamodel.User{
		Username:     strings.TrimSpace(dto.Username),
		Email:        strings.ToLower(strings.TrimSpace(dto.Email)),
		FullName:     dto.FullName,
		PasswordHash: hash,
		Status:       string(identity.StatusActive),
		RoleID:       dto.RoleID,
	}

	err = s.runner.Run(ctx, actor, authz.UserManage, nil, func(ctx context.Context) (audit.Entry, error) {
		dup, err := s.repo.ExistsByUsernameOrEmail(ctx, row.Username, row.Email)
		if err != nil {
			return audit.Entry{}, err
		}
		if dup {
			return audit.Entry{}, errors.NewConflictError("User with this email or username already exists", errors.ErrCodeDuplicateUser)
		}

		role, err := s.repo.GetRole(ctx, row.RoleID)
		if err != nil {
			return audit.Entry{}, err
		}
		if role == nil {
			return audit.Entry{}, errors.NewNotFoundError("Role not found", errors.ErrCodeRoleNotFound)
		}

		if err := s.repo.Create(ctx, row); err != nil {
			return audit.Entry{}, err
		}
		row.Role = role
		return audit.Entry{
			Action:      audit.ActionUserCreated,
			Description: fmt.Sprintf("User '%s' created with role '%s'.", row.Username, role.Name),
			Target:      &audit.Target{Type: targetType, ID: row.ID},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", row.ID, "username", row.Username)
	return FromDataModel(row), nil
}

func (s *Service) ListUsers(ctx context.Context, q ListQuery) ([]*identity.Identity, error) {
	rows, err := s.repo.List(ctx, q.Skip, q.Limit)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return FromDataModels(rows), nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*identity.Identity, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errors.NewNotFoundError("User not found", errors.ErrCodeUserNotFound)
	}
	return FromDataModel(row), nil
}

func (s *Service) UpdateStatus(ctx context.Context, actor *identity.Identity, id int64, dto UpdateStatusDTO) (*identity.Identity, error) {
	if !dto.Status.Valid() {
		return nil, errors.NewValidationFieldError("status", "must be one of Active, Inactive, Suspended", errors.ErrCodeInvalidStatus)
	}

	var updated *identity.Identity
	err := s.runner.Run(ctx, actor, authz.UserManage, nil, func(ctx context.Context) (audit.Entry, error) {
		row, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return audit.Entry{}, err
		}
		if row == nil {
			return audit.Entry{}, errors.NewNotFoundError("User not found", errors.ErrCodeUserNotFound)
		}

		previous := row.Status
		if err := s.repo.UpdateStatus(ctx, id, string(dto.Status)); err != nil {
			return audit.Entry{}, err
		}
		row.Status = string(dto.Status)
		updated = FromDataModel(row)
		return audit.Entry{
			Action:      audit.ActionUserStatusUpdated,
			Description: fmt.Sprintf("User '%s' status changed from %s to %s.", row.Username, previous, dto.Status),
			Target:      &audit.Target{Type: targetType, ID: id},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user status updated", "user_id", id, "status", dto.Status)
	return updated, nil
}

func (s *Service) UpdateRole(ctx context.Context, actor *identity.Identity, id int64, dto UpdateRoleDTO) (*identity.Identity, error) {
	var updated *identity.Identity
	err := s.runner.Run(ctx, actor, authz.UserManage, nil, func(ctx context.Context) (audit.Entry, error) {
		row, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return audit.Entry{}, err
		}
		if row == nil {
			return audit.Entry{}, errors.NewNotFoundError("User not found", errors.ErrCodeUserNotFound)
		}
		role, err := s.repo.GetRole(ctx, dto.RoleID)
		if err != nil {
			return audit.Entry{}, err
		}
		if role == nil {
			return audit.Entry{}, errors.NewNotFoundError("Role not found", errors.ErrCodeRoleNotFound)
		}

		if err := s.repo.UpdateRole(ctx, id, role.ID); err != nil {
			return audit.Entry{}, err
		}
		row.RoleID = role.ID
		row.Role = role
		updated = FromDataModel(row)
		return audit.Entry{
			Action:      audit.ActionUserRoleUpdated,
			Description: fmt.Sprintf("User '%s' assigned role '%s'.", row.Username, role.Name),
			Target:      &audit.Target{Type: targetType, ID: id},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user role updated", "user_id", id, "role_id", dto.RoleID)
	return updated, nil
}
