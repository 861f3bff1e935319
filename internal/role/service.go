package role

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

type RepositoryAPI interface {
	CreateRole(ctx context.Context, role *identityDatamodel.Role) error
	GetRoleByID(ctx context.Context, id int64) (*identityDatamodel.Role, error)
	GetRoleByName(ctx context.Context, name string) (*identityDatamodel.Role, error)
	ListRoles(ctx context.Context) ([]*identityDatamodel.Role, error)
	ListRolePermissions(ctx context.Context, roleID int64) ([]*identityDatamodel.Permission, error)
	ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error

	CreatePermission(ctx context.Context, perm *identityDatamodel.Permission) error
	GetPermissionByName(ctx context.Context, name string) (*identityDatamodel.Permission, error)
	GetPermissionsByIDs(ctx context.Context, ids []int64) ([]*identityDatamodel.Permission, error)
	ListPermissions(ctx context.Context) ([]*identityDatamodel.Permission, error)
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

func (s *Service) CreateRole(ctx context.Context, actor *identity.Identity, dto CreateRoleDTO) (*identity.Role, error) {
	name := strings.TrimSpace(dto.Name)
	row := &identityDatamodel.Role{Name: name}

	err := s.runner.Run(ctx, actor, authz.RoleManage, nil, func(ctx context.Context) (audit.Entry, error) {
		existing, err := s.repo.GetRoleByName(ctx, name)
		if err != nil {
			return audit.Entry{}, err
		}
		if existing != nil {
			return audit.Entry{}, errors.NewConflictError("Role with this name already exists", errors.ErrCodeDuplicateRole)
		}
		if err := s.repo.CreateRole(ctx, row); err != nil {
			return audit.Entry{}, err
		}
		return audit.Entry{
			Action:      audit.ActionRoleCreated,
			Description: fmt.Sprintf("Role '%s' created.", name),
			Target:      &audit.Target{Type: "Role", ID: row.ID},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("role created", "role_id", row.ID, "name", name)
	return RoleFromDataModel(row), nil
}

func (s *Service) ListRoles(ctx context.Context) ([]*identity.Role, error) {
	rows, err := s.repo.ListRoles(ctx)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, err
	}
	roles := make([]*identity.Role, 0, len(rows))
	for _, r := range rows {
		roles = append(roles, RoleFromDataModel(r))
	}
	return roles, nil
}

func (s *Service) GetRolePermissions(ctx context.Context, roleID int64) (*RoleWithPermissions, error) {
	row, err := s.repo.GetRoleByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errors.NewNotFoundError("Role not found", errors.ErrCodeRoleNotFound)
	}

	perms, err := s.repo.ListRolePermissions(ctx, roleID)
	if err != nil {
		return nil, err
	}
	return &RoleWithPermissions{ID: row.ID, Name: row.Name, Permissions: permissionsFromDataModel(perms)}, nil
}

// AssignPermissions replaces the role's permission set with dto's ids.
// Unknown ids fail the whole assignment.
func (s *Service) AssignPermissions(ctx context.Context, actor *identity.Identity, roleID int64, dto AssignPermissionsDTO) (*RoleWithPermissions, error) {
	ids := uniqueIDs(dto.PermissionIDs)
	var result *RoleWithPermissions

	err := s.runner.Run(ctx, actor, authz.RolePermissionAssign, nil, func(ctx context.Context) (audit.Entry, error) {
		row, err := s.repo.GetRoleByID(ctx, roleID)
		if err != nil {
			return audit.Entry{}, err
		}
		if row == nil {
			return audit.Entry{}, errors.NewNotFoundError("Role not found", errors.ErrCodeRoleNotFound)
		}

		perms, err := s.repo.GetPermissionsByIDs(ctx, ids)
		if err != nil {
			return audit.Entry{}, err
		}
		if len(perms) != len(ids) {
			return audit.Entry{}, errors.NewNotFoundError("One or more permission IDs are invalid or not found", errors.ErrCodePermissionNotFound)
		}

		if err := s.repo.ReplaceRolePermissions(ctx, roleID, ids); err != nil {
			return audit.Entry{}, err
		}

		result = &RoleWithPermissions{ID: row.ID, Name: row.Name, Permissions: permissionsFromDataModel(perms)}
		return audit.Entry{
			Action:      audit.ActionRolePermissionsUpdated,
			Description: fmt.Sprintf("Permissions %v assigned to role '%s'.", ids, row.Name),
			Target:      &audit.Target{Type: "Role", ID: roleID},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) CreatePermission(ctx context.Context, actor *identity.Identity, dto CreatePermissionDTO) (*identity.Permission, error) {
	name := strings.TrimSpace(dto.Name)
	row := &identityDatamodel.Permission{Name: name, Description: dto.Description}

	err := s.runner.Run(ctx, actor, authz.PermissionManage, nil, func(ctx context.Context) (audit.Entry, error) {
		existing, err := s.repo.GetPermissionByName(ctx, name)
		if err != nil {
			return audit.Entry{}, err
		}
		if existing != nil {
			return audit.Entry{}, errors.NewConflictError("Permission with this name already exists", errors.ErrCodeDuplicatePermission)
		}
		if err := s.repo.CreatePermission(ctx, row); err != nil {
			return audit.Entry{}, err
		}
		return audit.Entry{
			Action:      audit.ActionPermissionCreated,
			Description: fmt.Sprintf("Permission '%s' created.", name),
			Target:      &audit.Target{Type: "Permission", ID: row.ID},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return PermissionFromDataModel(row), nil
}

func (s *Service) ListPermissions(ctx context.Context) ([]*identity.Permission, error) {
	rows, err := s.repo.ListPermissions(ctx)
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, err
	}
	return permissionsFromDataModel(rows), nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
