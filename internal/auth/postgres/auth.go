package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/library-management/internal/auth"
	identityDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/identity"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/core/txn"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredentialByUsername(ctx context.Context, username string) (*auth.Credential, error) {
	user, err := r.findUser(ctx, username)
	if err != nil || user == nil {
		return nil, err
	}
	return &auth.Credential{
		Identity:     ToIdentity(user, nil),
		PasswordHash: user.PasswordHash,
	}, nil
}

func (r *Repository) GetIdentityByUsername(ctx context.Context, username string) (*identity.Identity, error) {
	user, err := r.findUser(ctx, username)
	if err != nil || user == nil {
		return nil, err
	}

	var permissions []string
	if user.Role != nil {
		err = txn.DB(ctx, r.db).
			Table("permissions").
			Joins("JOIN role_permissions rp ON rp.permission_id = permissions.id").
			Where("rp.role_id = ?", user.Role.ID).
			Order("permissions.name ASC").
			Pluck("permissions.name", &permissions).Error
		if err != nil {
			return nil, err
		}
	}
	return ToIdentity(user, permissions), nil
}

func (r *Repository) findUser(ctx context.Context, username string) (*identityDatamodel.User, error) {
	var user identityDatamodel.User
	err := txn.DB(ctx, r.db).Preload("Role").Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ToIdentity converts a user row, with its Role preloaded, to the domain identity.
func ToIdentity(u *identityDatamodel.User, permissions []string) *identity.Identity {
	id := &identity.Identity{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Status:    identity.Status(u.Status),
		RoleID:    u.RoleID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Role != nil {
		id.Role = &identity.Role{
			ID:          u.Role.ID,
			Name:        u.Role.Name,
			Permissions: permissions,
			CreatedAt:   u.Role.CreatedAt,
		}
	}
	return id
}
