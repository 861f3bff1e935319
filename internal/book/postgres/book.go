package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/library-management/internal/book"
	bookDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/book"
	"github.com/frahmantamala/library-management/internal/core/txn"
	"gorm.io/gorm"
)

type BookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) book.RepositoryAPI {
	return &BookRepository{db: db}
}

func (r *BookRepository) live(ctx context.Context) *gorm.DB {
	return txn.DB(ctx, r.db).Where("deleted_at IS NULL")
}

func (r *BookRepository) Create(ctx context.Context, b *bookDatamodel.Book) error {
	return txn.DB(ctx, r.db).Create(b).Error
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*bookDatamodel.Book, error) {
	var b bookDatamodel.Book
	err := r.live(ctx).Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookRepository) ListPublic(ctx context.Context, offset, limit int) ([]*bookDatamodel.Book, error) {
	var books []*bookDatamodel.Book
	err := r.live(ctx).
		Where("is_restricted = ?", false).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error
	return books, err
}

func (r *BookRepository) ISBNTaken(ctx context.Context, isbn string, excludeID int64) (bool, error) {
	var n int64
	err := r.live(ctx).
		Model(&bookDatamodel.Book{}).
		Where("isbn = ? AND id <> ?", isbn, excludeID).
		Count(&n).Error
	return n > 0, err
}

func (r *BookRepository) Update(ctx context.Context, id int64, changes map[string]interface{}) error {
	return txn.DB(ctx, r.db).
		Model(&bookDatamodel.Book{}).
		Where("id = ?", id).
		Updates(changes).Error
}

func (r *BookRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	return txn.DB(ctx, r.db).
		Model(&bookDatamodel.Book{}).
		Where("id = ?", id).
		Update("deleted_at", at).Error
}
