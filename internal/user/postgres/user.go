package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/library-management/internal"
	identityDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/identity"
	"github.com/frahmantamala/library-management/internal/core/txn"
	"github.com/frahmantamala/library-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *identityDatamodel.User) error {
	err := txn.DB(ctx, r.db).Omit("Role").Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("User with this email or username already exists", internal.ErrCodeDuplicateUser)
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*identityDatamodel.User, error) {
	var u identityDatamodel.User
	err := txn.DB(ctx, r.db).Preload("Role").Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := txn.DB(ctx, r.db).
		Model(&identityDatamodel.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*identityDatamodel.User, error) {
	var users []*identityDatamodel.User
	err := txn.DB(ctx, r.db).
		Preload("Role").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return txn.DB(ctx, r.db).
		Model(&identityDatamodel.User{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *UserRepository) UpdateRole(ctx context.Context, id, roleID int64) error {
	return txn.DB(ctx, r.db).
		Model(&identityDatamodel.User{}).
		Where("id = ?", id).
		Update("role_id", roleID).Error
}

func (r *UserRepository) GetRole(ctx context.Context, roleID int64) (*identityDatamodel.Role, error) {
	var role identityDatamodel.Role
	err := txn.DB(ctx, r.db).Where("id = ?", roleID).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}
