package role

import (
	"context"
	"net/http"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/core/common/validation"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/transport"
)

type ServiceAPI interface {
	CreateRole(ctx context.Context, actor *identity.Identity, dto CreateRoleDTO) (*identity.Role, error)
	ListRoles(ctx context.Context) ([]*identity.Role, error)
	GetRolePermissions(ctx context.Context, roleID int64) (*RoleWithPermissions, error)
	AssignPermissions(ctx context.Context, actor *identity.Identity, roleID int64, dto AssignPermissionsDTO) (*RoleWithPermissions, error)
	CreatePermission(ctx context.Context, actor *identity.Identity, dto CreatePermissionDTO) (*identity.Permission, error)
	ListPermissions(ctx context.Context) ([]*identity.Permission, error)
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

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var dto CreateRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if appErr := validation.Struct(dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	role, err := h.Service.CreateRole(r.Context(), internal.IdentityFromContext(r.Context()), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, role)
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, roles)
}

func (h *Handler) GetRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, err := h.PathInt64(r, "roleID")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	role, err := h.Service.GetRolePermissions(r.Context(), roleID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) AssignPermissions(w http.ResponseWriter, r *http.Request) {
	roleID, err := h.PathInt64(r, "roleID")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var dto AssignPermissionsDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if appErr := validation.Struct(dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	role, err := h.Service.AssignPermissions(r.Context(), internal.IdentityFromContext(r.Context()), roleID, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var dto CreatePermissionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if appErr := validation.Struct(dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	perm, err := h.Service.CreatePermission(r.Context(), internal.IdentityFromContext(r.Context()), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, perm)
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.Service.ListPermissions(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, perms)
}
