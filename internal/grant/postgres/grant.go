package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/library-management/internal"
	bookDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/book"
	grantDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/grant"
	identityDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/identity"
	"github.com/frahmantamala/library-management/internal/core/txn"
	"github.com/frahmantamala/library-management/internal/grant"
	"gorm.io/gorm"
)

type GrantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) grant.RepositoryAPI {
	return &GrantRepository{db: db}
}

func (r *GrantRepository) Create(ctx context.Context, g *grantDatamodel.ResourceGrant) error {
	err := txn.DB(ctx, r.db).Create(g).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("Grantee already has access to this book", internal.ErrCodeDuplicateGrant)
	}
	return err
}

func (r *GrantRepository) GetByID(ctx context.Context, id int64) (*grantDatamodel.ResourceGrant, error) {
	var g grantDatamodel.ResourceGrant
	err := txn.DB(ctx, r.db).Where("id = ?", id).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *GrantRepository) ListForResource(ctx context.Context, resourceType string, resourceID int64) ([]*grantDatamodel.ResourceGrant, error) {
	var grants []*grantDatamodel.ResourceGrant
	err := txn.DB(ctx, r.db).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("id ASC").
		Find(&grants).Error
	return grants, err
}

func (r *GrantRepository) Delete(ctx context.Context, id int64) error {
	return txn.DB(ctx, r.db).Where("id = ?", id).Delete(&grantDatamodel.ResourceGrant{}).Error
}

func (r *GrantRepository) Exists(ctx context.Context, g *grantDatamodel.ResourceGrant) (bool, error) {
	q := txn.DB(ctx, r.db).Model(&grantDatamodel.ResourceGrant{}).
		Where("resource_type = ? AND resource_id = ?", g.ResourceType, g.ResourceID)
	if g.UserID != nil {
		q = q.Where("user_id = ?", *g.UserID)
	} else {
		q = q.Where("role_id = ?", *g.RoleID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *GrantRepository) BookExists(ctx context.Context, bookID int64) (bool, error) {
	return exists(txn.DB(ctx, r.db).Model(&bookDatamodel.Book{}).Where("id = ? AND deleted_at IS NULL", bookID))
}

func (r *GrantRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	return exists(txn.DB(ctx, r.db).Model(&identityDatamodel.User{}).Where("id = ?", userID))
}

func (r *GrantRepository) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	return exists(txn.DB(ctx, r.db).Model(&identityDatamodel.Role{}).Where("id = ?", roleID))
}

func exists(q *gorm.DB) (bool, error) {
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
