package assistant_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/jarvis/pkg/assistant"
)

var _ = Describe("ResolveDirective", func() {
	now := time.Date(2026, time.October, 14, 15, 4, 0, 0, time.UTC)

	It("renders the time", func() {
		Expect(assistant.ResolveDirective("get_time", now)).To(Equal("The time is 03:04 PM."))
	})

	It("renders the date", func() {
		Expect(assistant.ResolveDirective("get_date", now)).To(Equal("Today is October 14, 2026."))
	})

	It("pads single-digit days", func() {
		Expect(assistant.ResolveDirective("get_date", time.Date(2026, time.March, 5, 9, 7, 0, 0, time.UTC))).
			To(Equal("Today is March 05, 2026."))
	})

	It("returns literal values unchanged", func() {
		Expect(assistant.ResolveDirective("Hi there!", now)).To(Equal("Hi there!"))
	})
})
