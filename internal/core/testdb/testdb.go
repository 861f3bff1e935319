// Package testdb opens throwaway SQLite databases for repository tests.
package testdb

import (
	"fmt"

	auditDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/audit"
	bookDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/book"
	grantDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/grant"
	identityDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/identity"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns an in-memory database with every table migrated. The pool is
// pinned to one connection so all sessions see the same memory database.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("testdb: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("testdb: handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&identityDatamodel.Role{},
		&identityDatamodel.Permission{},
		&identityDatamodel.RolePermission{},
		&identityDatamodel.User{},
		&grantDatamodel.ResourceGrant{},
		&auditDatamodel.Log{},
		&bookDatamodel.Book{},
	)
	if err != nil {
		return nil, fmt.Errorf("testdb: migrate: %w", err)
	}
	return db, nil
}

// Fixture seeds roles, permissions and users for tests.
type Fixture struct {
	DB *gorm.DB
}

func (f Fixture) Role(name string, permissions ...string) *identityDatamodel.Role {
	role := &identityDatamodel.Role{Name: name}
	if err := f.DB.Create(role).Error; err != nil {
		panic(err)
	}
	for _, p := range permissions {
		perm := f.Permission(p)
		link := &identityDatamodel.RolePermission{RoleID: role.ID, PermissionID: perm.ID}
		if err := f.DB.Create(link).Error; err != nil {
			panic(err)
		}
	}
	return role
}

// Permission returns the named permission, creating it when missing.
func (f Fixture) Permission(name string) *identityDatamodel.Permission {
	var perm identityDatamodel.Permission
	err := f.DB.Where(identityDatamodel.Permission{Name: name}).FirstOrCreate(&perm).Error
	if err != nil {
		panic(err)
	}
	return &perm
}

func (f Fixture) User(username string, roleID int64, status string, passwordHash string) *identityDatamodel.User {
	user := &identityDatamodel.User{
		Username:     username,
		Email:        username + "@library.test",
		FullName:     username,
		PasswordHash: passwordHash,
		Status:       status,
		RoleID:       roleID,
	}
	if err := f.DB.Create(user).Error; err != nil {
		panic(err)
	}
	return user
}

func (f Fixture) Grant(resourceType string, resourceID int64, userID, roleID *int64) *grantDatamodel.ResourceGrant {
	g := &grantDatamodel.ResourceGrant{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		UserID:       userID,
		RoleID:       roleID,
	}
	if err := f.DB.Create(g).Error; err != nil {
		panic(err)
	}
	return g
}

func (f Fixture) Book(title string, restricted bool) *bookDatamodel.Book {
	b := &bookDatamodel.Book{Title: title, IsRestricted: restricted}
	if err := f.DB.Create(b).Error; err != nil {
		panic(err)
	}
	return b
}
