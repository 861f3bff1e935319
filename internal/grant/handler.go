package grant

import (
	"context"
	"net/http"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/transport"
)

type ServiceAPI interface {
	Assign(ctx context.Context, actor *identity.Identity, dto AssignGrantDTO) (*Grant, error)
	ListForBook(ctx context.Context, bookID int64) ([]*Grant, error)
	Revoke(ctx context.Context, actor *identity.Identity, grantID int64) error
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

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var dto AssignGrantDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	g, err := h.Service.Assign(r.Context(), internal.IdentityFromContext(r.Context()), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, g)
}

func (h *Handler) ListForBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.PathInt64(r, "bookID")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	grants, err := h.Service.ListForBook(r.Context(), bookID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, GrantsResponse{Grants: grants})
}

func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	grantID, err := h.PathInt64(r, "grantID")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := h.Service.Revoke(r.Context(), internal.IdentityFromContext(r.Context()), grantID); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
