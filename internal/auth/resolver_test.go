package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Resolver", func() {
	var (
		resolver *Resolver
		repo     *mockRepository
		tokens   *JWTTokenService
		now      time.Time
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		now = time.Now()
		tokens = NewJWTTokenService("resolver-test-secret-0123456789abcd", time.Hour).
			WithClock(func() time.Time { return now })
		repo = newMockRepository(NewBcryptCredentialStore(4))
		resolver = NewResolver(tokens, repo, slog.Default())
		ctx = context.Background()
	})

	ginkgo.It("should treat a missing token as anonymous", func() {
		id, err := resolver.Resolve(ctx, "")

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(id).To(gomega.BeNil())
	})

	ginkgo.It("should return the identity named by the subject with its role", func() {
		token, _ := tokens.Issue("alice", nil, 0)

		id, err := resolver.Resolve(ctx, token)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(id.Username).To(gomega.Equal("alice"))
		gomega.Expect(id.RoleName()).To(gomega.Equal("Librarian"))
	})

	ginkgo.It("should reject an expired token as unauthorized", func() {
		token, _ := tokens.Issue("alice", nil, 0)
		now = now.Add(2 * time.Hour)

		_, err := resolver.Resolve(ctx, token)

		gomega.Expect(err).To(gomega.MatchError(ErrUnauthorized))
		gomega.Expect(errors.Is(err, ErrTokenExpired)).To(gomega.BeTrue())
	})

	ginkgo.It("should reject a token whose subject no longer exists", func() {
		token, _ := tokens.Issue("ghost", nil, 0)

		_, err := resolver.Resolve(ctx, token)

		gomega.Expect(err).To(gomega.MatchError(ErrUnauthorized))
	})

	ginkgo.It("should surface storage failures as something other than unauthorized", func() {
		token, _ := tokens.Issue("alice", nil, 0)
		repo.setError(errors.New("db down"))

		_, err := resolver.Resolve(ctx, token)

		gomega.Expect(err).To(gomega.HaveOccurred())
		gomega.Expect(errors.Is(err, ErrUnauthorized)).To(gomega.BeFalse())
	})
})
