package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("JWTTokenService", func() {
	var (
		service *JWTTokenService
		now     time.Time
	)

	ginkgo.BeforeEach(func() {
		now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		service = NewJWTTokenService("unit-test-signing-secret-0123456789", 60*time.Minute).
			WithClock(func() time.Time { return now })
	})

	ginkgo.It("should round-trip subject and claims within the ttl", func() {
		token, err := service.Issue("alice", map[string]any{"role": "Librarian", "branch": "north"}, 0)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		now = now.Add(59 * time.Minute)
		claims, err := service.Validate(token)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(claims.Subject).To(gomega.Equal("alice"))
		gomega.Expect(claims.Role).To(gomega.Equal("Librarian"))
		gomega.Expect(claims.Extra).To(gomega.HaveKeyWithValue("branch", "north"))
		gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("==", time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)))
	})

	ginkgo.It("should reject the token once the ttl has elapsed", func() {
		token, err := service.Issue("alice", nil, 0)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		now = now.Add(61 * time.Minute)
		_, err = service.Validate(token)

		gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
		gomega.Expect(errors.Is(err, ErrInvalidToken)).To(gomega.BeTrue())
	})

	ginkgo.It("should honour a per-token ttl", func() {
		token, err := service.Issue("alice", nil, 5*time.Minute)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		now = now.Add(6 * time.Minute)
		_, err = service.Validate(token)

		gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
	})

	ginkgo.It("should reject a token signed with another secret", func() {
		other := NewJWTTokenService("another-secret-entirely-0123456789", time.Hour).
			WithClock(func() time.Time { return now })
		token, _ := other.Issue("alice", nil, 0)

		_, err := service.Validate(token)

		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})

	ginkgo.It("should reject a tampered payload", func() {
		token, _ := service.Issue("alice", nil, 0)
		forged, _ := service.Issue("admin", nil, 0)

		parts := strings.Split(token, ".")
		forgedParts := strings.Split(forged, ".")
		tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

		_, err := service.Validate(tampered)

		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})

	ginkgo.It("should reject unsigned tokens", func() {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "alice",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = service.Validate(token)

		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})

	ginkgo.It("should reject garbage", func() {
		_, err := service.Validate("not-a-token")

		gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
	})

	ginkgo.It("should refuse to issue a token without a subject", func() {
		_, err := service.Issue("", nil, 0)

		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})

var _ = ginkgo.Describe("BcryptCredentialStore", func() {
	store := NewBcryptCredentialStore(4)

	ginkgo.It("should verify the password it hashed", func() {
		hash, err := store.Hash("s3cret")

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(hash).ToNot(gomega.Equal("s3cret"))
		gomega.Expect(store.Verify("s3cret", hash)).To(gomega.BeTrue())
		gomega.Expect(store.Verify("S3cret", hash)).To(gomega.BeFalse())
	})

	ginkgo.It("should never match an empty or malformed hash", func() {
		gomega.Expect(store.Verify("anything", "")).To(gomega.BeFalse())
		gomega.Expect(store.Verify("anything", "not-bcrypt")).To(gomega.BeFalse())
	})
})
