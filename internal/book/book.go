package book

import (
	"time"

	"github.com/frahmantamala/library-management/internal/authz"
	bookDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/book"
)

type Book struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author,omitempty"`
	ISBN         *string   `json:"isbn,omitempty"`
	IsRestricted bool      `json:"is_restricted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Resource describes the book to the authorization engine.
func (b *Book) Resource() *authz.Resource {
	return &authz.Resource{Type: authz.ResourceBook, ID: b.ID, Restricted: b.IsRestricted}
}

func FromDataModel(b *bookDatamodel.Book) *Book {
	return &Book{
		ID:           b.ID,
		Title:        b.Title,
		Author:       b.Author,
		ISBN:         b.ISBN,
		IsRestricted: b.IsRestricted,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func FromDataModels(rows []*bookDatamodel.Book) []*Book {
	out := make([]*Book, 0, len(rows))
	for _, b := range rows {
		out = append(out, FromDataModel(b))
	}
	return out
}
