package sqlite_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/jarvis/pkg/storage"
	"github.com/papercomputeco/jarvis/pkg/storage/sqlite"
	testutils "github.com/papercomputeco/jarvis/pkg/utils/test"
)

var _ = Describe("SQLiteDriver", func() {
	testutils.DescribeDriver(func() storage.Driver {
		driver, err := sqlite.NewSQLiteDriver(context.Background(), ":memory:")
		Expect(err).NotTo(HaveOccurred())
		return driver
	})

	Describe("NewSQLiteDriver", func() {
		It("creates a driver with file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "test.db")

			s, err := sqlite.NewSQLiteDriver(context.Background(), dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			// Verify file was created
			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps collections across reopen", func() {
			ctx := context.Background()
			dbPath := filepath.Join(GinkgoT().TempDir(), "jarvis.db")

			s, err := sqlite.NewSQLiteDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Put(ctx, "facts", []byte(`{"color":"blue"}`))).To(Succeed())
			Expect(s.Close()).To(Succeed())

			s, err = sqlite.NewSQLiteDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			data, err := s.Get(ctx, "facts")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(`{"color":"blue"}`))
		})

		It("fails for an unreachable path", func() {
			_, err := sqlite.NewSQLiteDriver(context.Background(), filepath.Join(GinkgoT().TempDir(), "missing", "dir", "x.db"))
			Expect(err).To(HaveOccurred())
		})
	})
})
