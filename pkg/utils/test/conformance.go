package testutils

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/jarvis/pkg/storage"
)

// DescribeDriver registers the behaviour every storage.Driver must share.
// newDriver is called before each It and the result closed after it.
func DescribeDriver(newDriver func() storage.Driver) {
	Describe("storage.Driver conformance", func() {
		var (
			driver storage.Driver
			ctx    context.Context
		)

		BeforeEach(func() {
			ctx = context.Background()
			driver = newDriver()
		})

		AfterEach(func() {
			if driver != nil {
				Expect(driver.Close()).To(Succeed())
			}
		})

		It("returns NotFoundError for a missing collection", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(HaveOccurred())
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})

		It("round trips a collection", func() {
			Expect(driver.Put(ctx, "history", []byte(`[{"role":"user","content":"hi"}]`))).To(Succeed())

			data, err := driver.Get(ctx, "history")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(`[{"role":"user","content":"hi"}]`))
		})

		It("replaces the previous payload", func() {
			Expect(driver.Put(ctx, "facts", []byte(`{"a":"1"}`))).To(Succeed())
			Expect(driver.Put(ctx, "facts", []byte(`{"b":"2"}`))).To(Succeed())

			data, err := driver.Get(ctx, "facts")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(`{"b":"2"}`))
		})

		It("writes a batch", func() {
			Expect(driver.PutBatch(ctx, []storage.Document{
				{Name: "history", Data: []byte(`[]`)},
				{Name: "facts", Data: []byte(`{}`)},
			})).To(Succeed())

			h, err := driver.Get(ctx, "history")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(h)).To(Equal(`[]`))

			f, err := driver.Get(ctx, "facts")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(f)).To(Equal(`{}`))
		})

		It("accepts an empty batch", func() {
			Expect(driver.PutBatch(ctx, nil)).To(Succeed())
		})

		It("lists stored collections in order", func() {
			Expect(driver.Put(ctx, "localKnowledge", []byte(`{}`))).To(Succeed())
			Expect(driver.Put(ctx, "biography", []byte(`{}`))).To(Succeed())
			Expect(driver.Put(ctx, "facts", []byte(`{}`))).To(Succeed())

			names, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(Equal([]string{"biography", "facts", "localKnowledge"}))
		})

		It("does not alias the caller's buffer", func() {
			buf := []byte(`{"k":"v"}`)
			Expect(driver.Put(ctx, "facts", buf)).To(Succeed())
			buf[2] = 'X'

			data, err := driver.Get(ctx, "facts")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(`{"k":"v"}`))
		})
	})
}
