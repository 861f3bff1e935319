package grant

import (
	"context"
	"fmt"
	"log/slog"

	errors "github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/action"
	"github.com/frahmantamala/library-management/internal/audit"
	"github.com/frahmantamala/library-management/internal/authz"
	grantDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/grant"
	"github.com/frahmantamala/library-management/internal/core/identity"
)

type RepositoryAPI interface {
	Create(ctx context.Context, g *grantDatamodel.ResourceGrant) error
	GetByID(ctx context.Context, id int64) (*grantDatamodel.ResourceGrant, error)
	ListForResource(ctx context.Context, resourceType string, resourceID int64) ([]*grantDatamodel.ResourceGrant, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, g *grantDatamodel.ResourceGrant) (bool, error)

	BookExists(ctx context.Context, bookID int64) (bool, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	RoleExists(ctx context.Context, roleID int64) (bool, error)
}

type Runner interface {
	Run(ctx context.Context, actor *identity.Identity, permission string, resource *authz.Resource, step action.Step) error
}

type Service struct {
	repo   RepositoryAPI
	runner Runner
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, runner Runner, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		runner: runner,
		logger: logger,
	}
}

func (s *Service) Assign(ctx context.Context, actor *identity.Identity, dto AssignGrantDTO) (*Grant, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	row := &grantDatamodel.ResourceGrant{
		ResourceType: ResourceTypeBook,
		ResourceID:   dto.BookID,
		UserID:       dto.UserID,
		RoleID:       dto.RoleID,
	}
	if actor != nil {
		grantedBy := actor.ID
		row.GrantedBy = &grantedBy
	}

	err := s.runner.Run(ctx, actor, authz.BookPermissionManage, nil, func(ctx context.Context) (audit.Entry, error) {
		if err := s.ensureReferences(ctx, dto); err != nil {
			return audit.Entry{}, err
		}
		dup, err := s.repo.Exists(ctx, row)
		if err != nil {
			return audit.Entry{}, err
		}
		if dup {
			return audit.Entry{}, errors.NewConflictError("Grantee already has access to this book", errors.ErrCodeDuplicateGrant)
		}
		if err := s.repo.Create(ctx, row); err != nil {
			return audit.Entry{}, err
		}
		return audit.Entry{
			Action:      audit.ActionGrantAssigned,
			Description: fmt.Sprintf("Access to book %d granted to %s.", dto.BookID, granteeLabel(row)),
			Target:      &audit.Target{Type: ResourceTypeBook, ID: dto.BookID},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("grant assigned", "grant_id", row.ID, "book_id", row.ResourceID)
	return FromDataModel(row), nil
}

func (s *Service) ListForBook(ctx context.Context, bookID int64) ([]*Grant, error) {
	rows, err := s.repo.ListForResource(ctx, ResourceTypeBook, bookID)
	if err != nil {
		s.logger.Error("failed to list grants", "book_id", bookID, "error", err)
		return nil, err
	}
	grants := make([]*Grant, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, FromDataModel(row))
	}
	return grants, nil
}

func (s *Service) Revoke(ctx context.Context, actor *identity.Identity, grantID int64) error {
	return s.runner.Run(ctx, actor, authz.BookPermissionManage, nil, func(ctx context.Context) (audit.Entry, error) {
		row, err := s.repo.GetByID(ctx, grantID)
		if err != nil {
			return audit.Entry{}, err
		}
		if row == nil {
			return audit.Entry{}, errors.NewNotFoundError("Permission not found", errors.ErrCodeGrantNotFound)
		}
		if err := s.repo.Delete(ctx, grantID); err != nil {
			return audit.Entry{}, err
		}
		return audit.Entry{
			Action:      audit.ActionGrantRevoked,
			Description: fmt.Sprintf("Access to book %d revoked from %s.", row.ResourceID, granteeLabel(row)),
			Target:      &audit.Target{Type: row.ResourceType, ID: row.ResourceID},
		}, nil
	})
}

func (s *Service) ensureReferences(ctx context.Context, dto AssignGrantDTO) error {
	ok, err := s.repo.BookExists(ctx, dto.BookID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewNotFoundError("Book not found", errors.ErrCodeBookNotFound)
	}

	if dto.UserID != nil {
		if ok, err = s.repo.UserExists(ctx, *dto.UserID); err != nil {
			return err
		}
		if !ok {
			return errors.NewNotFoundError("User not found", errors.ErrCodeUserNotFound)
		}
		return nil
	}

	if ok, err = s.repo.RoleExists(ctx, *dto.RoleID); err != nil {
		return err
	}
	if !ok {
		return errors.NewNotFoundError("Role not found", errors.ErrCodeRoleNotFound)
	}
	return nil
}

func granteeLabel(g *grantDatamodel.ResourceGrant) string {
	if g.UserID != nil {
		return fmt.Sprintf("user %d", *g.UserID)
	}
	return fmt.Sprintf("role %d", *g.RoleID)
}
