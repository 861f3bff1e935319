package grant_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/action"
	"github.com/frahmantamala/library-management/internal/audit"
	auditPostgres "github.com/frahmantamala/library-management/internal/audit/postgres"
	"github.com/frahmantamala/library-management/internal/authz"
	authzPostgres "github.com/frahmantamala/library-management/internal/authz/postgres"
	grantDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/grant"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/core/testdb"
	"github.com/frahmantamala/library-management/internal/core/txn"
	"github.com/frahmantamala/library-management/internal/grant"
	grantPostgres "github.com/frahmantamala/library-management/internal/grant/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestGrant(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Grant Suite")
}

func statusOf(err error) int {
	appErr, ok := internal.IsAppError(err)
	Expect(ok).To(BeTrue(), "expected an AppError, got %v", err)
	return appErr.StatusCode
}

var _ = Describe("Grant Service", func() {
	var (
		db      *gorm.DB
		fixture testdb.Fixture
		service *grant.Service
		engine  *authz.Engine
		ctx     context.Context

		curator *identity.Identity
		reader  *identity.Identity
		bookID  int64
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		fixture = testdb.Fixture{DB: db}
		ctx = context.Background()

		logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		manager := txn.NewManager(db)
		engine = authz.NewEngine(authzPostgres.NewRepository(db), manager, nil, logger)
		runner := action.NewRunner(engine, audit.NewService(auditPostgres.NewAuditRepository(db), logger), manager, logger)
		service = grant.NewService(grantPostgres.NewGrantRepository(db), runner, logger)

		curatorRole := fixture.Role("Curator", authz.BookPermissionManage, authz.BookPermissionView)
		readerRole := fixture.Role("Reader", authz.CopyView)
		c := fixture.User("curator", curatorRole.ID, "Active", "x")
		r := fixture.User("reader", readerRole.ID, "Active", "x")
		curator = &identity.Identity{ID: c.ID, Status: identity.StatusActive, RoleID: curatorRole.ID}
		reader = &identity.Identity{ID: r.ID, Status: identity.StatusActive, RoleID: readerRole.ID}

		bookID = fixture.Book("Sealed Manuscript", true).ID
	})

	It("assigns a user grant that the engine then honours", func() {
		restricted := &authz.Resource{Type: grant.ResourceTypeBook, ID: bookID, Restricted: true}
		before, err := engine.Authorize(ctx, reader, authz.CopyView, restricted)
		Expect(err).NotTo(HaveOccurred())
		Expect(before.Allowed).To(BeFalse())

		g, err := service.Assign(ctx, curator, grant.AssignGrantDTO{BookID: bookID, UserID: &reader.ID})

		Expect(err).NotTo(HaveOccurred())
		Expect(*g.GrantedBy).To(Equal(curator.ID))
		after, err := engine.Authorize(ctx, reader, authz.CopyView, restricted)
		Expect(err).NotTo(HaveOccurred())
		Expect(after.Allowed).To(BeTrue())
	})

	It("rejects a request naming both grantees", func() {
		_, err := service.Assign(ctx, curator, grant.AssignGrantDTO{BookID: bookID, UserID: &reader.ID, RoleID: &reader.RoleID})

		Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
	})

	It("rejects a request naming no grantee", func() {
		_, err := service.Assign(ctx, curator, grant.AssignGrantDTO{BookID: bookID})

		Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
	})

	It("returns 404 for an unknown book", func() {
		_, err := service.Assign(ctx, curator, grant.AssignGrantDTO{BookID: 9999, RoleID: &reader.RoleID})

		Expect(statusOf(err)).To(Equal(http.StatusNotFound))
	})

	It("returns 409 for a repeated grant", func() {
		_, err := service.Assign(ctx, curator, grant.AssignGrantDTO{BookID: bookID, RoleID: &reader.RoleID})
		Expect(err).NotTo(HaveOccurred())

		_, err = service.Assign(ctx, curator, grant.AssignGrantDTO{BookID: bookID, RoleID: &reader.RoleID})

		Expect(statusOf(err)).To(Equal(http.StatusConflict))
	})

	It("forbids callers without BOOK_PERMISSION_MANAGE", func() {
		_, err := service.Assign(ctx, reader, grant.AssignGrantDTO{BookID: bookID, UserID: &reader.ID})

		Expect(statusOf(err)).To(Equal(http.StatusForbidden))
		grants, _ := service.ListForBook(ctx, bookID)
		Expect(grants).To(BeEmpty())
	})

	It("revokes a grant and reports 404 the second time", func() {
		g, err := service.Assign(ctx, curator, grant.AssignGrantDTO{BookID: bookID, UserID: &reader.ID})
		Expect(err).NotTo(HaveOccurred())

		Expect(service.Revoke(ctx, curator, g.ID)).To(Succeed())
		grants, err := service.ListForBook(ctx, bookID)
		Expect(err).NotTo(HaveOccurred())
		Expect(grants).To(BeEmpty())

		err = service.Revoke(ctx, curator, g.ID)
		Expect(statusOf(err)).To(Equal(http.StatusNotFound))
	})

	It("enforces exactly one grantee at the storage layer", func() {
		both := &grantDatamodel.ResourceGrant{ResourceType: grant.ResourceTypeBook, ResourceID: bookID, UserID: &reader.ID, RoleID: &reader.RoleID}
		neither := &grantDatamodel.ResourceGrant{ResourceType: grant.ResourceTypeBook, ResourceID: bookID}

		Expect(db.Create(both).Error).To(HaveOccurred())
		Expect(db.Create(neither).Error).To(HaveOccurred())
	})
})
