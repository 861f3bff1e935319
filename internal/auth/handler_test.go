package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/frahmantamala/library-management/internal/transport"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type stubAuthenticator struct {
	got LoginDTO
	err error
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, dto LoginDTO) (TokenResponse, error) {
	s.got = dto
	if s.err != nil {
		return TokenResponse{}, s.err
	}
	return TokenResponse{AccessToken: "tok", TokenType: "bearer", ExpiresIn: 3600}, nil
}

var _ = ginkgo.Describe("Auth Handler", func() {
	var (
		stub    *stubAuthenticator
		handler *Handler
	)

	ginkgo.BeforeEach(func() {
		stub = &stubAuthenticator{}
		handler = NewHandler(transport.NewBaseHandler(slog.Default()), stub)
	})

	ginkgo.It("should accept an OAuth2 password form", func() {
		form := url.Values{"username": {"alice"}, "password": {"pw"}}
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		handler.Login(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(stub.got.Username).To(gomega.Equal("alice"))

		var resp TokenResponse
		gomega.Expect(json.NewDecoder(w.Body).Decode(&resp)).To(gomega.Succeed())
		gomega.Expect(resp.AccessToken).To(gomega.Equal("tok"))
	})

	ginkgo.It("should accept a JSON body", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"username":"alice","password":"pw"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.Login(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should return 400 when the password is missing", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"username":"alice"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.Login(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
	})

	ginkgo.It("should return 401 with a bearer challenge for bad credentials", func() {
		stub.err = ErrInvalidCredentials
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"username":"alice","password":"x"}`))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(w.Header().Get("WWW-Authenticate")).To(gomega.Equal("Bearer"))
	})

	ginkgo.It("should return 403 for inactive accounts", func() {
		stub.err = ErrUserInactive
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"username":"alice","password":"x"}`))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))
	})
})
