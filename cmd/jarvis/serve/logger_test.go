package servecmder

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("newLogger", func() {
	It("writes only to stderr without a log file", func() {
		var stderr bytes.Buffer
		log, closeLog, err := newLogger(&stderr, false, "")
		Expect(err).NotTo(HaveOccurred())
		defer closeLog()

		log.Info("listening")
		Expect(stderr.String()).To(ContainSubstring("listening"))
	})

	It("also writes JSON records to the log file", func() {
		var stderr bytes.Buffer
		path := filepath.Join(GinkgoT().TempDir(), "jarvis.log")

		log, closeLog, err := newLogger(&stderr, true, path)
		Expect(err).NotTo(HaveOccurred())

		log.Debug("reloaded", "collection", "facts")
		Expect(closeLog()).To(Succeed())

		Expect(stderr.String()).To(ContainSubstring("reloaded"))
		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"msg":"reloaded"`))
		Expect(string(data)).To(ContainSubstring(`"collection":"facts"`))
	})

	It("fails when the log file cannot be opened", func() {
		dir := GinkgoT().TempDir()
		_, _, err := newLogger(&bytes.Buffer{}, false, dir)
		Expect(err).To(HaveOccurred())
	})
})
