package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/core/common/validation"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/transport"
)

type ServiceAPI interface {
	CreateUser(ctx context.Context, actor *identity.Identity, dto CreateUserDTO) (*identity.Identity, error)
	ListUsers(ctx context.Context, q ListQuery) ([]*identity.Identity, error)
	GetUser(ctx context.Context, id int64) (*identity.Identity, error)
	UpdateStatus(ctx context.Context, actor *identity.Identity, id int64, dto UpdateStatusDTO) (*identity.Identity, error)
	UpdateRole(ctx context.Context, actor *identity.Identity, id int64, dto UpdateRoleDTO) (*identity.Identity, error)
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

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	current := internal.IdentityFromContext(r.Context())
	if current == nil {
		h.WriteAppError(w, internal.ErrNotAuthenticated)
		return
	}
	h.WriteJSON(w, http.StatusOK, current)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if appErr := validation.Struct(dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	u, err := h.Service.CreateUser(r.Context(), internal.IdentityFromContext(r.Context()), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q, appErr := ParseListQuery(r.URL.Query())
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	users, err := h.Service.ListUsers(r.Context(), q)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "userID")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	u, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "userID")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var dto UpdateStatusDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if appErr := validation.Struct(dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	u, err := h.Service.UpdateStatus(r.Context(), internal.IdentityFromContext(r.Context()), id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "userID")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var dto UpdateRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if appErr := validation.Struct(dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	u, err := h.Service.UpdateRole(r.Context(), internal.IdentityFromContext(r.Context()), id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}
