// Package seed installs the roles, permissions and administrator account a
// fresh deployment needs. Every step is idempotent.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/library-management/internal/authz"
	identityDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/identity"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/core/txn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	AdminRole     = "Admin"
	LibrarianRole = "Librarian"
)

type Hasher interface {
	Hash(plaintext string) (string, error)
}

type Options struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

func DefaultOptions() Options {
	return Options{
		AdminUsername: "admin",
		AdminEmail:    "admin@library.com",
		AdminPassword: "admin",
	}
}

// Result counts what a run created.
type Result struct {
	RolesCreated       int
	PermissionsCreated int
	AdminCreated       bool
}

type Seeder struct {
	db     *gorm.DB
	tx     *txn.Manager
	hasher Hasher
	logger *slog.Logger
}

func New(db *gorm.DB, hasher Hasher, logger *slog.Logger) *Seeder {
	return &Seeder{
		db:     db,
		tx:     txn.NewManager(db),
		hasher: hasher,
		logger: logger,
	}
}

func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		db := txn.DB(ctx, s.db)

		adminRole, created, err := ensureRole(db, AdminRole)
		if err != nil {
			return err
		}
		if created {
			res.RolesCreated++
		}
		if _, created, err = ensureRole(db, LibrarianRole); err != nil {
			return err
		}
		if created {
			res.RolesCreated++
		}

		if res.AdminCreated, err = s.ensureAdmin(db, adminRole.ID, opts); err != nil {
			return err
		}

		ids := make([]int64, 0, len(authz.Vocabulary))
		for _, p := range authz.Vocabulary {
			perm := identityDatamodel.Permission{Name: p.Name, Description: p.Description}
			created, err := ensure(db, &perm, "name = ?", p.Name)
			if err != nil {
				return fmt.Errorf("seed: permission %s: %w", p.Name, err)
			}
			if created {
				res.PermissionsCreated++
			}
			ids = append(ids, perm.ID)
		}

		links := make([]identityDatamodel.RolePermission, 0, len(ids))
		for _, id := range ids {
			links = append(links, identityDatamodel.RolePermission{RoleID: adminRole.ID, PermissionID: id})
		}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
			return fmt.Errorf("seed: admin permissions: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("seed complete",
		"roles_created", res.RolesCreated,
		"permissions_created", res.PermissionsCreated,
		"admin_created", res.AdminCreated)
	return res, nil
}

func ensureRole(db *gorm.DB, name string) (*identityDatamodel.Role, bool, error) {
	role := identityDatamodel.Role{Name: name}
	created, err := ensure(db, &role, "name = ?", name)
	if err != nil {
		return nil, false, fmt.Errorf("seed: role %s: %w", name, err)
	}
	return &role, created, nil
}

// ensure loads the row matching query into row, inserting row when none
// exists. It reports whether an insert happened.
func ensure[T any](db *gorm.DB, row *T, query string, args ...any) (bool, error) {
	var found T
	err := db.Where(query, args...).First(&found).Error
	if err == nil {
		*row = found
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, db.Create(row).Error
}

func (s *Seeder) ensureAdmin(db *gorm.DB, roleID int64, opts Options) (bool, error) {
	var existing identityDatamodel.User
	err := db.Where("username = ?", opts.AdminUsername).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("seed: lookup admin: %w", err)
	}

	hash, err := s.hasher.Hash(opts.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("seed: hash admin password: %w", err)
	}
	admin := identityDatamodel.User{
		Username:     opts.AdminUsername,
		Email:        opts.AdminEmail,
		FullName:     "Library Administrator",
		PasswordHash: hash,
		Status:       string(identity.StatusActive),
		RoleID:       roleID,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, fmt.Errorf("seed: create admin: %w", err)
	}
	return true, nil
}
