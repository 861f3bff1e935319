package seed_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/frahmantamala/library-management/internal/authz"
	identityDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/identity"
	"github.com/frahmantamala/library-management/internal/core/testdb"
	"github.com/frahmantamala/library-management/internal/seed"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestSeed(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Seed Suite")
}

type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "h:" + plaintext, nil }

var _ = Describe("Seeder", func() {
	var (
		db     *gorm.DB
		seeder *seed.Seeder
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
		seeder = seed.New(db, plainHasher{}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	})

	It("installs roles, the vocabulary and the admin account", func() {
		res, err := seeder.Run(ctx, seed.DefaultOptions())

		Expect(err).NotTo(HaveOccurred())
		Expect(res.RolesCreated).To(Equal(2))
		Expect(res.PermissionsCreated).To(Equal(len(authz.Vocabulary)))
		Expect(res.AdminCreated).To(BeTrue())

		var admin identityDatamodel.User
		Expect(db.Preload("Role").Where("username = ?", "admin").First(&admin).Error).NotTo(HaveOccurred())
		Expect(admin.Role.Name).To(Equal(seed.AdminRole))
		Expect(admin.PasswordHash).To(Equal("h:admin"))

		var links int64
		db.Model(&identityDatamodel.RolePermission{}).Where("role_id = ?", admin.RoleID).Count(&links)
		Expect(links).To(Equal(int64(len(authz.Vocabulary))))
	})

	It("changes nothing on a second run", func() {
		_, err := seeder.Run(ctx, seed.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())

		res, err := seeder.Run(ctx, seed.DefaultOptions())

		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal(seed.Result{}))
		var users int64
		db.Model(&identityDatamodel.User{}).Count(&users)
		Expect(users).To(Equal(int64(1)))
	})
})
