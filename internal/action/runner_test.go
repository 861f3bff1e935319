package action_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/action"
	"github.com/frahmantamala/library-management/internal/audit"
	auditPostgres "github.com/frahmantamala/library-management/internal/audit/postgres"
	"github.com/frahmantamala/library-management/internal/authz"
	authzPostgres "github.com/frahmantamala/library-management/internal/authz/postgres"
	auditDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/audit"
	bookDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/book"
	"github.com/frahmantamala/library-management/internal/core/identity"
	"github.com/frahmantamala/library-management/internal/core/testdb"
	"github.com/frahmantamala/library-management/internal/core/txn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestAction(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Action Runner Suite")
}

type failingAuditRepository struct{}

func (failingAuditRepository) Insert(ctx context.Context, log *auditDatamodel.Log) error {
	return errors.New("audit table locked")
}

func (failingAuditRepository) List(ctx context.Context, filter audit.Filter) ([]*auditDatamodel.Log, error) {
	return nil, nil
}

var _ = Describe("Runner", func() {
	var (
		db        *gorm.DB
		fixture   testdb.Fixture
		manager   *txn.Manager
		engine    *authz.Engine
		auditor   *audit.Service
		runner    *action.Runner
		logger    *slog.Logger
		ctx       context.Context
		manager1  *identity.Identity
		librarian *identity.Identity
	)

	createBook := func(title string) action.Step {
		return func(ctx context.Context) (audit.Entry, error) {
			book := &bookDatamodel.Book{Title: title}
			if err := txn.DB(ctx, db).Create(book).Error; err != nil {
				return audit.Entry{}, err
			}
			return audit.Entry{
				Action:      audit.ActionBookCreated,
				Description: "Book '" + title + "' created.",
				Target:      &audit.Target{Type: "Book", ID: book.ID},
			}, nil
		}
	}

	counts := func() (books, logs int64) {
		Expect(db.Model(&bookDatamodel.Book{}).Count(&books).Error).NotTo(HaveOccurred())
		Expect(db.Model(&auditDatamodel.Log{}).Count(&logs).Error).NotTo(HaveOccurred())
		return books, logs
	}

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		fixture = testdb.Fixture{DB: db}
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

		manager = txn.NewManager(db)
		engine = authz.NewEngine(authzPostgres.NewRepository(db), manager, nil, logger)
		auditor = audit.NewService(auditPostgres.NewAuditRepository(db), logger)
		runner = action.NewRunner(engine, auditor, manager, logger)

		managerRole := fixture.Role("Cataloguer", authz.BookManage)
		libRole := fixture.Role("Librarian", authz.BookIssue)
		m := fixture.User("cat", managerRole.ID, "Active", "x")
		l := fixture.User("lib", libRole.ID, "Active", "x")
		manager1 = &identity.Identity{ID: m.ID, Username: m.Username, Status: identity.StatusActive, RoleID: managerRole.ID}
		librarian = &identity.Identity{ID: l.ID, Username: l.Username, Status: identity.StatusActive, RoleID: libRole.ID}
	})

	It("commits the mutation together with its audit record", func() {
		err := runner.Run(ctx, manager1, authz.BookManage, nil, createBook("Dune"))

		Expect(err).NotTo(HaveOccurred())
		books, logs := counts()
		Expect(books).To(Equal(int64(1)))
		Expect(logs).To(Equal(int64(1)))

		var rec auditDatamodel.Log
		Expect(db.First(&rec).Error).NotTo(HaveOccurred())
		Expect(*rec.ActorID).To(Equal(manager1.ID))
		Expect(rec.ActionType).To(Equal(audit.ActionBookCreated))
	})

	It("performs no mutation and writes no audit record on deny", func() {
		err := runner.Run(ctx, librarian, authz.BookManage, nil, createBook("Dune"))

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusForbidden))
		books, logs := counts()
		Expect(books).To(BeZero())
		Expect(logs).To(BeZero())
	})

	It("maps an anonymous caller to 401", func() {
		err := runner.Run(ctx, nil, authz.BookManage, nil, createBook("Dune"))

		appErr, _ := internal.IsAppError(err)
		Expect(appErr.StatusCode).To(Equal(http.StatusUnauthorized))
	})

	It("rolls back the mutation when the audit write fails", func() {
		broken := action.NewRunner(engine, audit.NewService(failingAuditRepository{}, logger), manager, logger)

		err := broken.Run(ctx, manager1, authz.BookManage, nil, createBook("Dune"))

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusInternalServerError))
		books, _ := counts()
		Expect(books).To(BeZero())
	})

	It("rolls back partial writes when the step fails", func() {
		boom := errors.New("isbn collision")
		err := runner.Run(ctx, manager1, authz.BookManage, nil, func(ctx context.Context) (audit.Entry, error) {
			Expect(txn.DB(ctx, db).Create(&bookDatamodel.Book{Title: "half"}).Error).NotTo(HaveOccurred())
			return audit.Entry{}, boom
		})

		Expect(err).To(MatchError(boom))
		books, logs := counts()
		Expect(books).To(BeZero())
		Expect(logs).To(BeZero())
	})

	Describe("RunOn", func() {
		var restricted *bookDatamodel.Book

		BeforeEach(func() {
			restricted = fixture.Book("Sealed Manuscript", true)
		})

		locate := func(ctx context.Context) (*authz.Resource, error) {
			return &authz.Resource{Type: "Book", ID: restricted.ID, Restricted: true}, nil
		}

		It("checks the permission before loading the resource", func() {
			located := false
			err := runner.RunOn(ctx, librarian, authz.BookManage, func(ctx context.Context) (*authz.Resource, error) {
				located = true
				return nil, nil
			}, createBook("x"))

			Expect(err).To(HaveOccurred())
			Expect(located).To(BeFalse())
		})

		It("requires a grant for restricted resources", func() {
			err := runner.RunOn(ctx, manager1, authz.BookManage, locate, createBook("x"))

			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodeRestrictedResource))
		})

		It("proceeds once the actor holds a grant", func() {
			fixture.Grant("Book", restricted.ID, &manager1.ID, nil)

			err := runner.RunOn(ctx, manager1, authz.BookManage, locate, createBook("x"))

			Expect(err).NotTo(HaveOccurred())
		})
	})
})
