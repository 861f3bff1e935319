package book

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/action"
	"github.com/frahmantamala/library-management/internal/audit"
	"github.com/frahmantamala/library-management/internal/authz"
	bookDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/book"
	"github.com/frahmantamala/library-management/internal/core/identity"
)

// ReadPermission is what a caller needs to open a restricted book, on top of
// a grant for it.
const ReadPermission = authz.CopyView

var errBookNotFound = errors.NewNotFoundError("Book not found", errors.ErrCodeBookNotFound)

type RepositoryAPI interface {
	Create(ctx context.Context, b *bookDatamodel.Book) error
	// GetByID ignores soft-deleted books and returns nil, nil when missing.
	GetByID(ctx context.Context, id int64) (*bookDatamodel.Book, error)
	ListPublic(ctx context.Context, offset, limit int) ([]*bookDatamodel.Book, error)
	ISBNTaken(ctx context.Context, isbn string, excludeID int64) (bool, error)
	Update(ctx context.Context, id int64, changes map[string]interface{}) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}

type Authorizer interface {
	Authorize(ctx context.Context, id *identity.Identity, permission string, resource *authz.Resource) (authz.Decision, error)
}

type Runner interface {
	Run(ctx context.Context, actor *identity.Identity, permission string, resource *authz.Resource, step action.Step) error
	RunOn(ctx context.Context, actor *identity.Identity, permission string, locate action.Locator, step action.Step) error
}

type Service struct {
	repo   RepositoryAPI
	authz  Authorizer
	runner Runner
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, authorizer Authorizer, runner Runner, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		authz:  authorizer,
		runner: runner,
		logger: logger,
		now:    time.Now,
	}
}

// ListPublic returns books that are neither restricted nor deleted.
func (s *Service) ListPublic(ctx context.Context, q ListQuery) ([]*Book, error) {
	rows, err := s.repo.ListPublic(ctx, q.Skip, q.Limit)
	if err != nil {
		s.logger.Error("failed to list books", "error", err)
		return nil, err
	}
	return FromDataModels(rows), nil
}

// Get returns one book. Restricted books are checked against caller, which
// may be nil for anonymous requests.
func (s *Service) Get(ctx context.Context, caller *identity.Identity, id int64) (*Book, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errBookNotFound
	}

	b := FromDataModel(row)
	if !b.IsRestricted {
		return b, nil
	}

	d, err := s.authz.Authorize(ctx, caller, ReadPermission, b.Resource())
	if err != nil {
		return nil, errors.NewInternalError("authorization check failed", err)
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Create(ctx context.Context, actor *identity.Identity, dto CreateBookDTO) (*Book, error) {
	row := &bookDatamodel.Book{
		Title:        dto.Title,
		Author:       dto.Author,
		ISBN:         dto.ISBN,
		IsRestricted: dto.IsRestricted,
	}

	err := s.runner.Run(ctx, actor, authz.BookManage, nil, func(ctx context.Context) (audit.Entry, error) {
		if err := s.ensureISBNFree(ctx, dto.ISBN, 0); err != nil {
			return audit.Entry{}, err
		}
		if err := s.repo.Create(ctx, row); err != nil {
			return audit.Entry{}, err
		}
		return audit.Entry{
			Action:      audit.ActionBookCreated,
			Description: fmt.Sprintf("Book '%s' created.", row.Title),
			Target:      &audit.Target{Type: authz.ResourceBook, ID: row.ID},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book created", "book_id", row.ID, "restricted", row.IsRestricted)
	return FromDataModel(row), nil
}

// Update applies dto to a live book. Restricted books also need a grant.
func (s *Service) Update(ctx context.Context, actor *identity.Identity, id int64, dto UpdateBookDTO) (*Book, error) {
	var updated *Book
	err := s.runner.RunOn(ctx, actor, authz.BookManage, s.locate(id), func(ctx context.Context) (audit.Entry, error) {
		if err := s.ensureISBNFree(ctx, dto.ISBN, id); err != nil {
			return audit.Entry{}, err
		}
		if changes := dto.changes(); len(changes) > 0 {
			if err := s.repo.Update(ctx, id, changes); err != nil {
				return audit.Entry{}, err
			}
		}

		row, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return audit.Entry{}, err
		}
		updated = FromDataModel(row)
		return audit.Entry{
			Action:      audit.ActionBookUpdated,
			Description: fmt.Sprintf("Book ID %d was updated.", id),
			Target:      &audit.Target{Type: authz.ResourceBook, ID: id},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book updated", "book_id", id)
	return updated, nil
}

// Delete soft-deletes a book by stamping deleted_at.
func (s *Service) Delete(ctx context.Context, actor *identity.Identity, id int64) error {
	var title string
	err := s.runner.RunOn(ctx, actor, authz.BookManage, func(ctx context.Context) (*authz.Resource, error) {
		row, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, errBookNotFound
		}
		title = row.Title
		return FromDataModel(row).Resource(), nil
	}, func(ctx context.Context) (audit.Entry, error) {
		if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
			return audit.Entry{}, err
		}
		return audit.Entry{
			Action:      audit.ActionBookDeleted,
			Description: fmt.Sprintf("Book '%s' (ID: %d) soft-deleted.", title, id),
			Target:      &audit.Target{Type: authz.ResourceBook, ID: id},
		}, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("book deleted", "book_id", id)
	return nil
}

func (s *Service) locate(id int64) action.Locator {
	return func(ctx context.Context) (*authz.Resource, error) {
		row, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, errBookNotFound
		}
		return FromDataModel(row).Resource(), nil
	}
}

func (s *Service) ensureISBNFree(ctx context.Context, isbn *string, excludeID int64) error {
	if isbn == nil || *isbn == "" {
		return nil
	}
	taken, err := s.repo.ISBNTaken(ctx, *isbn, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return errors.NewConflictError(fmt.Sprintf("A book with ISBN %s already exists.", *isbn), errors.ErrCodeDuplicateBook)
	}
	return nil
}
