package audit

import (
	"context"
	"net/http"

	"github.com/frahmantamala/library-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter Filter) ([]*Record, error)
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

// GetLogs lists audit records, newest first unless order=asc is given.
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseListQuery(r.URL.Query())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	records, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, LogsResponse{Logs: records})
}
