package book_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/book"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubBookService struct {
	caller  *identity.Identity
	created book.CreateBookDTO
	err     error
}

func (s *stubBookService) ListPublic(ctx context.Context, q book.ListQuery) ([]*book.Book, error) {
	return []*book.Book{{ID: 1, Title: "Dune"}}, nil
}

func (s *stubBookService) Get(ctx context.Context, caller *identity.Identity, id int64) (*book.Book, error) {
	s.caller = caller
	if s.err != nil {
		return nil, s.err
	}
	return &book.Book{ID: id, Title: "Dune"}, nil
}

func (s *stubBookService) Create(ctx context.Context, actor *identity.Identity, dto book.CreateBookDTO) (*book.Book, error) {
	s.created = dto
	return &book.Book{ID: 5, Title: dto.Title}, nil
}

func (s *stubBookService) Update(ctx context.Context, actor *identity.Identity, id int64, dto book.UpdateBookDTO) (*book.Book, error) {
	return &book.Book{ID: id}, nil
}

func (s *stubBookService) Delete(ctx context.Context, actor *identity.Identity, id int64) error {
	return s.err
}

func withBookID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("bookID", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

var _ = Describe("Book Handler", func() {
	var (
		svc     *stubBookService
		handler *book.Handler
	)

	BeforeEach(func() {
		svc = &stubBookService{}
		handler = book.NewHandler(transport.NewBaseHandler(slog.Default()), svc)
	})

	It("passes the optional caller through on reads", func() {
		caller := &identity.Identity{ID: 9}
		req := httptest.NewRequest(http.MethodGet, "/books/3", nil)
		req = withBookID(req.WithContext(internal.ContextWithIdentity(req.Context(), caller)), "3")
		w := httptest.NewRecorder()

		handler.GetBook(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.caller).To(Equal(caller))
	})

	It("renders a deny as 401 with a bearer challenge", func() {
		svc.err = internal.ErrNotAuthenticated
		req := withBookID(httptest.NewRequest(http.MethodGet, "/books/3", nil), "3")
		w := httptest.NewRecorder()

		handler.GetBook(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(w.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))
	})

	It("rejects a non-numeric id", func() {
		req := withBookID(httptest.NewRequest(http.MethodGet, "/books/abc", nil), "abc")
		w := httptest.NewRecorder()

		handler.GetBook(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("validates the create payload", func() {
		req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"author":"Herbert"}`))
		w := httptest.NewRecorder()

		handler.CreateBook(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("creates a book", func() {
		req := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":"Dune","is_restricted":true}`))
		w := httptest.NewRecorder()

		handler.CreateBook(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(svc.created.IsRestricted).To(BeTrue())
		var b book.Book
		Expect(json.NewDecoder(w.Body).Decode(&b)).To(Succeed())
		Expect(b.ID).To(Equal(int64(5)))
	})

	It("answers 204 on delete", func() {
		req := withBookID(httptest.NewRequest(http.MethodDelete, "/books/3", nil), "3")
		w := httptest.NewRecorder()

		handler.DeleteBook(w, req)

		Expect(w.Code).To(Equal(http.StatusNoContent))
	})
})
