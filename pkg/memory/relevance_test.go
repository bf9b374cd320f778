package memory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/jarvis/pkg/memory"
)

var _ = Describe("FindRelevant", func() {
	knowledge := []string{
		"The weather is sunny today",
		"My favorite color is blue",
		"Today the sky is blue",
		"Blue whales are large",
	}

	It("scores by distinct shared tokens", func() {
		Expect(memory.Score(memory.Tokenize("weather today"), "The weather is sunny today")).To(Equal(2))
		Expect(memory.Score(memory.Tokenize("blue blue BLUE"), "blue Blue")).To(Equal(1))
	})

	It("keeps punctuation attached to tokens", func() {
		fact := "A known fact about 'home city' is 'Pune'."
		Expect(memory.Score(memory.Tokenize("home city"), fact)).To(Equal(0))
		Expect(memory.Score(memory.Tokenize("'home city'"), fact)).To(Equal(2))
		Expect(memory.Score(memory.Tokenize("'pune'."), fact)).To(Equal(1))
		Expect(memory.FindRelevant("pune", []string{fact}, 3)).To(BeEmpty())
	})

	It("tokenizes on any whitespace", func() {
		Expect(memory.Tokenize("  A\tb\n\nc  a ")).To(HaveLen(3))
		Expect(memory.Tokenize("   ")).To(BeEmpty())
	})

	It("returns nothing for an empty or blank query", func() {
		Expect(memory.FindRelevant("", knowledge, 3)).To(BeEmpty())
		Expect(memory.FindRelevant(" \t ", knowledge, 3)).To(BeEmpty())
	})

	It("returns nothing without overlap", func() {
		Expect(memory.FindRelevant("quantum chromodynamics", knowledge, 3)).To(BeEmpty())
	})

	It("returns nothing for topK <= 0", func() {
		Expect(memory.FindRelevant("blue", knowledge, 0)).To(BeEmpty())
		Expect(memory.FindRelevant("blue", knowledge, -2)).To(BeEmpty())
	})

	It("sorts by score and keeps knowledge order for ties", func() {
		Expect(memory.FindRelevant("is blue", knowledge, 10)).To(Equal([]string{
			"My favorite color is blue",
			"Today the sky is blue",
			"The weather is sunny today",
			"Blue whales are large",
		}))
	})

	It("truncates to topK", func() {
		got := memory.FindRelevant("blue", knowledge, 2)
		Expect(got).To(Equal([]string{
			"My favorite color is blue",
			"Today the sky is blue",
		}))
	})

	It("returns fewer than topK when fewer match", func() {
		Expect(memory.FindRelevant("whales", knowledge, 3)).To(Equal([]string{"Blue whales are large"}))
	})

	It("is case insensitive", func() {
		Expect(memory.FindRelevant("SUNNY", knowledge, 3)).To(Equal([]string{"The weather is sunny today"}))
	})

	It("never exceeds min(topK, matches)", func() {
		for k := 1; k <= 5; k++ {
			got := memory.FindRelevant("blue today", knowledge, k)
			Expect(len(got)).To(BeNumerically("<=", min(k, 4)))
		}
	})
})
