package book

import (
	"context"
	"net/http"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/core/common/validation"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/transport"
)

type ServiceAPI interface {
	ListPublic(ctx context.Context, q ListQuery) ([]*Book, error)
	Get(ctx context.Context, caller *identity.Identity, id int64) (*Book, error)
	Create(ctx context.Context, actor *identity.Identity, dto CreateBookDTO) (*Book, error)
	Update(ctx context.Context, actor *identity.Identity, id int64, dto UpdateBookDTO) (*Book, error)
	Delete(ctx context.Context, actor *identity.Identity, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	q, appErr := ParseListQuery(r.URL.Query())
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	books, err := h.Service.ListPublic(r.Context(), q)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, books)
}

// GetBook handles GET /books/{bookID}. The caller is optional.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "bookID")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	b, err := h.Service.Get(r.Context(), internal.IdentityFromContext(r.Context()), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var dto CreateBookDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if appErr := validation.Struct(dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	b, err := h.Service.Create(r.Context(), internal.IdentityFromContext(r.Context()), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "bookID")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var dto UpdateBookDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if appErr := validation.Struct(dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	b, err := h.Service.Update(r.Context(), internal.IdentityFromContext(r.Context()), id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "bookID")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := h.Service.Delete(r.Context(), internal.IdentityFromContext(r.Context()), id); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
