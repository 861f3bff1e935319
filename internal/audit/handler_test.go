package audit_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/library-management/internal/audit"
	"github.com/frahmantamala/library-management/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubLister struct {
	filter  audit.Filter
	records []*audit.Record
}

func (s *stubLister) List(ctx context.Context, filter audit.Filter) ([]*audit.Record, error) {
	s.filter = filter
	return s.records, nil
}

var _ = Describe("Audit Handler", func() {
	var (
		lister  *stubLister
		handler *audit.Handler
	)

	BeforeEach(func() {
		lister = &stubLister{records: []*audit.Record{{ID: 1, Action: audit.ActionLoginSuccess}}}
		handler = audit.NewHandler(transport.NewBaseHandler(slog.Default()), lister)
	})

	It("passes query filters through to the service", func() {
		req := httptest.NewRequest(http.MethodGet, "/logs?user_id=3&action_type=BOOK_CREATED&skip=10&limit=5", nil)
		w := httptest.NewRecorder()

		handler.GetLogs(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(*lister.filter.ActorID).To(Equal(int64(3)))
		Expect(lister.filter.Action).To(Equal("BOOK_CREATED"))
		Expect(lister.filter.Offset).To(Equal(10))
		Expect(lister.filter.Limit).To(Equal(5))
		Expect(lister.filter.Order).To(Equal(audit.OrderDescending))

		var resp audit.LogsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Logs).To(HaveLen(1))
	})

	It("rejects a malformed user id", func() {
		req := httptest.NewRequest(http.MethodGet, "/logs?user_id=abc", nil)
		w := httptest.NewRecorder()

		handler.GetLogs(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
