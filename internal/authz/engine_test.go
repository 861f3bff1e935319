package authz_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/authz"
	authzPostgres "github.com/frahmantamala/library-management/internal/authz/postgres"
	bookDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/book"
	identityDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/identity"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/core/testdb"
	"github.com/frahmantamala/library-management/internal/core/txn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

func TestAuthz(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Authz Suite")
}

type brokenRepository struct{}

func (brokenRepository) LoadSnapshot(ctx context.Context, userID int64, resource *authz.Resource) (*authz.Snapshot, error) {
	return nil, errors.New("connection reset")
}

var _ = Describe("Engine", func() {
	var (
		db      *gorm.DB
		fixture testdb.Fixture
		engine  *authz.Engine
		metrics *authz.Metrics
		reg     *prometheus.Registry
		ctx     context.Context

		librarianRole *identityDatamodel.Role
		adminRole     *identityDatamodel.Role
	)

	// identityOf mirrors what the resolver would hand the engine.
	identityOf := func(u *identityDatamodel.User, role *identityDatamodel.Role) *identity.Identity {
		return &identity.Identity{
			ID:       u.ID,
			Username: u.Username,
			Status:   identity.Status(u.Status),
			RoleID:   u.RoleID,
			Role:     &identity.Role{ID: role.ID, Name: role.Name},
		}
	}

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		fixture = testdb.Fixture{DB: db}
		ctx = context.Background()

		reg = prometheus.NewRegistry()
		metrics = authz.NewMetrics(reg)
		logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		engine = authz.NewEngine(authzPostgres.NewRepository(db), txn.NewManager(db), metrics, logger)

		librarianRole = fixture.Role("Librarian", authz.BookIssue, authz.CopyView)
		adminRole = fixture.Role("Admin")
	})

	Describe("anonymous callers", func() {
		It("denies without touching storage and maps to 401", func() {
			broken := authz.NewEngine(brokenRepository{}, txn.NewManager(db), nil, slog.Default())

			d, err := broken.Authorize(ctx, nil, authz.BookManage, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Allowed).To(BeFalse())
			Expect(d.Reason).To(Equal(authz.ReasonNotAuthenticated))
			Expect(d.Kind).To(Equal(authz.DenyUnauthenticated))

			appErr, ok := internal.IsAppError(d.Err())
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("admin bypass", func() {
		for _, name := range []string{"admin", "ADMIN", "Admin", "aDmIn"} {
			name := name
			It("allows any permission for a role named "+name, func() {
				role := adminRole
				if name != "Admin" {
					role = fixture.Role(name)
				}
				user := fixture.User("root-"+name, role.ID, "Active", "x")

				d, err := engine.Authorize(ctx, identityOf(user, role), "ANYTHING_AT_ALL", nil)

				Expect(err).NotTo(HaveOccurred())
				Expect(d.Allowed).To(BeTrue())
			})
		}

		It("short-circuits grants on restricted resources", func() {
			user := fixture.User("root", adminRole.ID, "Active", "x")

			d, err := engine.Authorize(ctx, identityOf(user, adminRole), authz.BookManage,
				&authz.Resource{Type: "Book", ID: 42, Restricted: true})

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Allowed).To(BeTrue())
		})
	})

	Describe("inactive accounts", func() {
		for _, status := range []string{"Inactive", "Suspended"} {
			status := status
			It("denies a "+status+" identity regardless of role", func() {
				user := fixture.User("sleepy-"+status, adminRole.ID, status, "x")

				d, err := engine.Authorize(ctx, identityOf(user, adminRole), authz.BookIssue, nil)

				Expect(err).NotTo(HaveOccurred())
				Expect(d.Allowed).To(BeFalse())
				Expect(d.Reason).To(Equal(authz.ReasonInactive))

				appErr, _ := internal.IsAppError(d.Err())
				Expect(appErr.StatusCode).To(Equal(http.StatusForbidden))
			})
		}

		It("re-reads the status instead of trusting the resolved identity", func() {
			user := fixture.User("demoted", librarianRole.ID, "Active", "x")
			stale := identityOf(user, librarianRole)
			Expect(db.Model(user).Update("status", "Suspended").Error).NotTo(HaveOccurred())

			d, err := engine.Authorize(ctx, stale, authz.BookIssue, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Reason).To(Equal(authz.ReasonInactive))
		})
	})

	Describe("role permissions", func() {
		var librarian *identity.Identity

		BeforeEach(func() {
			user := fixture.User("lib", librarianRole.ID, "Active", "x")
			librarian = identityOf(user, librarianRole)
		})

		It("allows BOOK_ISSUE for a Librarian holding it", func() {
			d, err := engine.Authorize(ctx, librarian, authz.BookIssue, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Allowed).To(BeTrue())
			Expect(d.Identity).To(Equal(librarian))
		})

		It("denies BOOK_MANAGE with a permission-required reason", func() {
			d, err := engine.Authorize(ctx, librarian, authz.BookManage, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Allowed).To(BeFalse())
			Expect(d.Reason).To(Equal("permission 'BOOK_MANAGE' required"))

			appErr, _ := internal.IsAppError(d.Err())
			Expect(appErr.StatusCode).To(Equal(http.StatusForbidden))
			Expect(appErr.Message).To(Equal("Permission 'BOOK_MANAGE' required to perform this action."))
		})

		It("sees a permission revoked after the identity was resolved", func() {
			perm := fixture.Permission(authz.BookIssue)
			Expect(db.Where("role_id = ? AND permission_id = ?", librarianRole.ID, perm.ID).
				Delete(&identityDatamodel.RolePermission{}).Error).NotTo(HaveOccurred())

			d, err := engine.Authorize(ctx, librarian, authz.BookIssue, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Allowed).To(BeFalse())
		})

		It("returns the same decision for repeated checks", func() {
			first, err := engine.Authorize(ctx, librarian, authz.CopyView, nil)
			Expect(err).NotTo(HaveOccurred())
			second, err := engine.Authorize(ctx, librarian, authz.CopyView, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(Equal(first))
		})

		It("ignores grants for resources that are not restricted", func() {
			d, err := engine.Authorize(ctx, librarian, authz.BookIssue, &authz.Resource{Type: "Book", ID: 7})

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Allowed).To(BeTrue())
		})
	})

	Describe("missing role", func() {
		It("denies with no role assigned", func() {
			orphanRole := fixture.Role("Temp", authz.BookIssue)
			user := fixture.User("orphan", orphanRole.ID, "Active", "x")
			stale := identityOf(user, orphanRole)
			Expect(db.Delete(&identityDatamodel.Role{}, orphanRole.ID).Error).NotTo(HaveOccurred())

			d, err := engine.Authorize(ctx, stale, authz.BookIssue, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Reason).To(Equal(authz.ReasonNoRole))
			appErr, _ := internal.IsAppError(d.Err())
			Expect(appErr.Message).To(Equal("User has no role assigned."))
		})
	})

	Describe("restricted Book #42", func() {
		var (
			u1, u2 *identity.Identity
			book   authz.Resource
		)

		BeforeEach(func() {
			Expect(db.Create(&bookDatamodel.Book{ID: 42, Title: "Forbidden Archives", IsRestricted: true}).Error).NotTo(HaveOccurred())
			book = authz.Resource{Type: "Book", ID: 42, Restricted: true}

			readers := fixture.Role("Reader", authz.CopyView)
			user1 := fixture.User("u1", readers.ID, "Active", "x")
			user2 := fixture.User("u2", readers.ID, "Active", "x")
			u1, u2 = identityOf(user1, readers), identityOf(user2, readers)

			fixture.Grant("Book", 42, &user1.ID, nil)
		})

		It("allows the user holding a direct grant", func() {
			d, err := engine.Authorize(ctx, u1, authz.CopyView, &book)

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Allowed).To(BeTrue())
		})

		It("denies a user with the same role but no grant", func() {
			d, err := engine.Authorize(ctx, u2, authz.CopyView, &book)

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Allowed).To(BeFalse())
			Expect(d.Reason).To(Equal(authz.ReasonNoGrant))
		})

		It("allows every member of a role once the role is granted", func() {
			fixture.Grant("Book", 42, nil, &u2.RoleID)

			d, err := engine.Authorize(ctx, u2, authz.CopyView, &book)

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Allowed).To(BeTrue())
		})

		It("does not apply a grant for another resource", func() {
			fixture.Grant("Book", 43, &u2.ID, nil)

			d, err := engine.Authorize(ctx, u2, authz.CopyView, &book)

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Allowed).To(BeFalse())
		})

		It("still requires the permission before looking at grants", func() {
			d, err := engine.Authorize(ctx, u1, authz.BookManage, &book)

			Expect(err).NotTo(HaveOccurred())
			Expect(d.Reason).To(Equal("permission 'BOOK_MANAGE' required"))
		})
	})

	Describe("storage failures", func() {
		It("returns an error instead of a decision", func() {
			broken := authz.NewEngine(brokenRepository{}, txn.NewManager(db), metrics, slog.Default())
			id := &identity.Identity{ID: 1, Status: identity.StatusActive}

			_, err := broken.Authorize(ctx, id, authz.BookIssue, nil)

			Expect(err).To(HaveOccurred())
			Expect(counterTotal(reg, "library_authz_errors_total")).To(Equal(1.0))
		})
	})

	Describe("metrics", func() {
		It("counts allows and denies", func() {
			_, _ = engine.Authorize(ctx, nil, authz.BookIssue, nil)
			user := fixture.User("lib", librarianRole.ID, "Active", "x")
			_, _ = engine.Authorize(ctx, identityOf(user, librarianRole), authz.BookIssue, nil)

			Expect(counterTotal(reg, "library_authz_decisions_total")).To(Equal(2.0))
		})
	})
})

func counterTotal(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	Expect(err).NotTo(HaveOccurred())
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
