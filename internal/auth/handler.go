package auth

import (
	"context"
	"errors"
	"mime"
	"net/http"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/core/common/validation"
	"github.com/frahmantamala/library-management/internal/transport"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (TokenResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// Login exchanges a username and password for an access token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	dto, err := h.decodeLogin(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	if appErr := validation.Struct(dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			h.WriteAppError(w, internal.ErrInvalidCredentials)
		case errors.Is(err, ErrUserInactive):
			h.WriteAppError(w, internal.ErrUserInactive)
		default:
			h.WriteAppError(w, internal.NewInternalError("failed to issue token", err))
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) decodeLogin(r *http.Request) (LoginDTO, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return LoginDTO{}, internal.NewValidationError("invalid form body", internal.ErrCodeInvalidRequest)
		}
		return LoginDTO{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
		}, nil
	}

	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		return LoginDTO{}, err
	}
	return dto, nil
}
