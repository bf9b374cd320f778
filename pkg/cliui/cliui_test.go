package cliui_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/jarvis/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("reports success with a check mark", func() {
		var buf bytes.Buffer
		Expect(cliui.Step(&buf, "loading memory", func() error { return nil })).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("loading memory"))
		Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
	})

	It("returns the function's error", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")
		Expect(cliui.Step(&buf, "connecting", func() error { return boom })).To(MatchError(boom))
		Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
	})

	It("writes the result line after every spinner frame", func() {
		var buf bytes.Buffer
		Expect(cliui.Step(&buf, "reloading", func() error {
			time.Sleep(250 * time.Millisecond)
			return nil
		})).To(Succeed())

		out := buf.String()
		Expect(out).To(HaveSuffix("\n"))
		Expect(out[strings.LastIndex(out, "\r"):]).To(ContainSubstring(cliui.SuccessMark))
	})
})

var _ = Describe("FormatDuration", func() {
	It("uses milliseconds under a second", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("uses seconds otherwise", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("RenderMarkdown", func() {
	It("keeps the text", func() {
		out, err := cliui.RenderMarkdown("**Blue** is your favorite color.")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Blue"))
	})
})

var _ = Describe("IsTerminal", func() {
	It("is false for a regular file", func() {
		f, err := os.CreateTemp(GinkgoT().TempDir(), "out")
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		Expect(cliui.IsTerminal(f)).To(BeFalse())
	})
})

var _ = Describe("UseTrueColor", func() {
	It("installs a TrueColor default renderer", func() {
		original := lipgloss.DefaultRenderer()
		DeferCleanup(func() { lipgloss.SetDefaultRenderer(original) })

		r := cliui.UseTrueColor(io.Discard)
		Expect(r.ColorProfile()).To(Equal(termenv.TrueColor))
		Expect(lipgloss.DefaultRenderer()).To(BeIdenticalTo(r))
	})
})
