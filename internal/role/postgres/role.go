package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/library-management/internal"
	identityDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/identity"
	"github.com/frahmantamala/library-management/internal/core/txn"
	"github.com/frahmantamala/library-management/internal/role"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) CreateRole(ctx context.Context, row *identityDatamodel.Role) error {
	err := txn.DB(ctx, r.db).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("Role with this name already exists", internal.ErrCodeDuplicateRole)
	}
	return err
}

func (r *RoleRepository) GetRoleByID(ctx context.Context, id int64) (*identityDatamodel.Role, error) {
	return first[identityDatamodel.Role](txn.DB(ctx, r.db).Where("id = ?", id))
}

func (r *RoleRepository) GetRoleByName(ctx context.Context, name string) (*identityDatamodel.Role, error) {
	return first[identityDatamodel.Role](txn.DB(ctx, r.db).Where("name = ?", name))
}

func (r *RoleRepository) ListRoles(ctx context.Context) ([]*identityDatamodel.Role, error) {
	var roles []*identityDatamodel.Role
	err := txn.DB(ctx, r.db).Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) ListRolePermissions(ctx context.Context, roleID int64) ([]*identityDatamodel.Permission, error) {
	var perms []*identityDatamodel.Permission
	err := txn.DB(ctx, r.db).
		Joins("JOIN role_permissions rp ON rp.permission_id = permissions.id").
		Where("rp.role_id = ?", roleID).
		Order("permissions.name ASC").
		Find(&perms).Error
	return perms, err
}

// ReplaceRolePermissions deletes the role's association rows and inserts
// one per id. Callers run it inside a transaction.
func (r *RoleRepository) ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	db := txn.DB(ctx, r.db)
	if err := db.Where("role_id = ?", roleID).Delete(&identityDatamodel.RolePermission{}).Error; err != nil {
		return err
	}
	if len(permissionIDs) == 0 {
		return nil
	}

	links := make([]*identityDatamodel.RolePermission, 0, len(permissionIDs))
	for _, pid := range permissionIDs {
		links = append(links, &identityDatamodel.RolePermission{RoleID: roleID, PermissionID: pid})
	}
	return db.Create(&links).Error
}

func (r *RoleRepository) CreatePermission(ctx context.Context, row *identityDatamodel.Permission) error {
	err := txn.DB(ctx, r.db).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("Permission with this name already exists", internal.ErrCodeDuplicatePermission)
	}
	return err
}

func (r *RoleRepository) GetPermissionByName(ctx context.Context, name string) (*identityDatamodel.Permission, error) {
	return first[identityDatamodel.Permission](txn.DB(ctx, r.db).Where("name = ?", name))
}

func (r *RoleRepository) GetPermissionsByIDs(ctx context.Context, ids []int64) ([]*identityDatamodel.Permission, error) {
	var perms []*identityDatamodel.Permission
	if len(ids) == 0 {
		return perms, nil
	}
	err := txn.DB(ctx, r.db).Where("id IN ?", ids).Order("id ASC").Find(&perms).Error
	return perms, err
}

func (r *RoleRepository) ListPermissions(ctx context.Context) ([]*identityDatamodel.Permission, error) {
	var perms []*identityDatamodel.Permission
	err := txn.DB(ctx, r.db).Order("id ASC").Find(&perms).Error
	return perms, err
}

func first[T any](q *gorm.DB) (*T, error) {
	var row T
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
