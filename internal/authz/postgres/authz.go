package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/library-management/internal/authz"
	grantDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/grant"
	identityDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/identity"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/core/txn"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) authz.RepositoryAPI {
	return &Repository{db: db}
}

// LoadSnapshot must run inside the caller's transaction so every read sees
// the same state.
func (r *Repository) LoadSnapshot(ctx context.Context, userID int64, resource *authz.Resource) (*authz.Snapshot, error) {
	db := txn.DB(ctx, r.db)

	var user identityDatamodel.User
	err := db.Preload("Role").Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &authz.Snapshot{}, nil
		}
		return nil, err
	}

	snap := &authz.Snapshot{
		Found:  true,
		Status: identity.Status(user.Status),
	}
	if user.Role == nil {
		return snap, nil
	}

	var permissions []string
	err = db.Table("permissions").
		Joins("JOIN role_permissions rp ON rp.permission_id = permissions.id").
		Where("rp.role_id = ?", user.Role.ID).
		Pluck("permissions.name", &permissions).Error
	if err != nil {
		return nil, err
	}
	snap.Role = &identity.Role{
		ID:          user.Role.ID,
		Name:        user.Role.Name,
		Permissions: permissions,
		CreatedAt:   user.Role.CreatedAt,
	}

	if resource == nil || snap.Role.IsAdmin() {
		return snap, nil
	}

	var grants int64
	err = db.Model(&grantDatamodel.ResourceGrant{}).
		Where("resource_type = ? AND resource_id = ?", resource.Type, resource.ID).
		Where("(user_id = ? OR role_id = ?)", userID, user.Role.ID).
		Count(&grants).Error
	if err != nil {
		return nil, err
	}
	snap.HasGrant = grants > 0
	return snap, nil
}
