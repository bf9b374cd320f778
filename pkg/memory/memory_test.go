package memory_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/jarvis/pkg/llm"
	"github.com/papercomputeco/jarvis/pkg/logger"
	"github.com/papercomputeco/jarvis/pkg/memory"
	"github.com/papercomputeco/jarvis/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/jarvis/pkg/utils/test"
)

var _ = Describe("Memory", func() {
	var (
		ctx    context.Context
		driver *testutils.MockDriver
		logBuf *bytes.Buffer
	)

	newMemory := func() *memory.Memory {
		m, err := memory.New(ctx, memory.Config{
			Driver: driver,
			Logger: logger.New(logger.WithWriter(logBuf)),
		})
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	BeforeEach(func() {
		ctx = context.Background()
		logBuf = &bytes.Buffer{}
		driver = testutils.NewMockDriver(map[string]string{
			memory.CollectionHistory: `[
				{"role":"user","content":"What is your name?"},
				{"role":"assistant","content":"Jarvis"}
			]`,
			memory.CollectionFacts:          `{"owner":"Aarush","color":"blue"}`,
			memory.CollectionLocalKnowledge: `{"Hello":"Hi there!","what time is it":"get_time"}`,
			memory.CollectionBiography:      `{"name":"Aarush","hobbies":["chess","code"]}`,
		})
	})

	It("requires a driver", func() {
		_, err := memory.New(ctx, memory.Config{})
		Expect(err).To(MatchError(memory.ErrNilStore))
	})

	Describe("loading", func() {
		It("loads every collection and derives state", func() {
			m := newMemory()

			Expect(m.History()).To(Equal([]memory.Entry{
				{Role: memory.RoleUser, Content: "What is your name?"},
				{Role: memory.RoleModel, Content: "Jarvis"},
			}))
			Expect(m.Knowledge()).To(Equal([]string{
				"A known fact about 'owner' is 'Aarush'.",
				"A known fact about 'color' is 'blue'.",
				"The value for 'biography.name' is 'Aarush'.",
				"The value for 'biography.hobbies' is 'chess, code'.",
			}))

			a, ok := m.CachedAnswer("what is your name?")
			Expect(ok).To(BeTrue())
			Expect(a).To(Equal("Jarvis"))

			Expect(m.Stats()).To(Equal(memory.Stats{
				Turns: 2, Facts: 2, Snippets: 4, CachedQuestions: 1, LocalAnswers: 2,
				FactKeys: []string{"owner", "color"},
			}))
			Expect(m.CachedAnswers()).To(Equal(map[string]string{"what is your name?": "Jarvis"}))
		})

		It("normalizes local knowledge keys", func() {
			m := newMemory()

			a, ok := m.LocalAnswer("  HELLO ")
			Expect(ok).To(BeTrue())
			Expect(a).To(Equal("Hi there!"))

			a, ok = m.LocalAnswer("What time is it")
			Expect(ok).To(BeTrue())
			Expect(a).To(Equal(memory.DirectiveTime))

			_, ok = m.LocalAnswer("")
			Expect(ok).To(BeFalse())
		})

		It("starts empty when nothing is stored", func() {
			driver = testutils.NewMockDriver(nil)
			m := newMemory()

			Expect(m.History()).To(BeEmpty())
			Expect(m.Knowledge()).To(BeEmpty())
			Expect(m.Stats()).To(Equal(memory.Stats{FactKeys: []string{}}))
			Expect(logBuf.String()).NotTo(ContainSubstring("WARN"))
		})

		It("defaults malformed collections and warns", func() {
			driver = testutils.NewMockDriver(map[string]string{
				memory.CollectionHistory:        `{not json`,
				memory.CollectionFacts:          `[1,2]`,
				memory.CollectionLocalKnowledge: `"nope"`,
				memory.CollectionBiography:      `{"a":`,
			})
			m := newMemory()

			Expect(m.History()).To(BeEmpty())
			Expect(m.Facts().Len()).To(Equal(0))
			Expect(m.Knowledge()).To(BeEmpty())
			_, ok := m.LocalAnswer("x")
			Expect(ok).To(BeFalse())

			out := logBuf.String()
			Expect(out).To(ContainSubstring("malformed collection"))
			for _, name := range []string{"history", "facts", "localKnowledge", "biography"} {
				Expect(out).To(ContainSubstring("collection=" + name))
			}
		})

		It("defaults when the store cannot be read", func() {
			driver.FailGet = true
			m := newMemory()

			Expect(m.History()).To(BeEmpty())
			Expect(logBuf.String()).To(ContainSubstring("failed to read collection"))
		})
	})

	Describe("Append", func() {
		It("folds a model reply into the cache", func() {
			m := newMemory()
			m.Append(ctx, "user", "  Favorite Color? ")
			m.Append(ctx, "model", "Blue")

			a, ok := m.CachedAnswer("favorite color?")
			Expect(ok).To(BeTrue())
			Expect(a).To(Equal("Blue"))
		})

		It("normalizes the role", func() {
			m := newMemory()
			e := m.Append(ctx, "assistant", "hi")
			Expect(e.Role).To(Equal(memory.RoleModel))
		})

		It("does not cache a model turn on an empty history", func() {
			driver = testutils.NewMockDriver(nil)
			m := newMemory()

			Expect(func() { m.Append(ctx, "model", "hello") }).NotTo(Panic())
			Expect(m.Stats().CachedQuestions).To(Equal(0))
			Expect(m.History()).To(HaveLen(1))
		})

		It("saves history and facts only", func() {
			m := newMemory()
			m.Append(ctx, "user", "ping")

			Expect(driver.WrittenNames()).To(Equal([]string{memory.CollectionHistory, memory.CollectionFacts}))

			var stored []memory.Entry
			Expect(json.Unmarshal([]byte(driver.Text(memory.CollectionHistory)), &stored)).To(Succeed())
			Expect(stored).To(HaveLen(3))
			Expect(stored[2]).To(Equal(memory.Entry{Role: memory.RoleUser, Content: "ping"}))

			Expect(driver.Text(memory.CollectionFacts)).To(Equal(`{"owner":"Aarush","color":"blue"}`))
			Expect(driver.Text(memory.CollectionLocalKnowledge)).To(Equal(`{"Hello":"Hi there!","what time is it":"get_time"}`))
		})

		It("round trips history through the store", func() {
			store := inmemory.NewDriver()
			m, err := memory.New(ctx, memory.Config{Driver: store})
			Expect(err).NotTo(HaveOccurred())

			m.Append(ctx, "user", "one")
			m.Append(ctx, "assistant", "two")
			m.Append(ctx, "user", "")

			reloaded, err := memory.New(ctx, memory.Config{Driver: store})
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.History()).To(Equal(m.History()))
			Expect(reloaded.Stats().CachedQuestions).To(Equal(1))
		})

		It("keeps in-memory state when saving fails", func() {
			m := newMemory()
			driver.SetFailPut(true)

			m.Append(ctx, "user", "still here?")
			m.Append(ctx, "model", "yes")

			Expect(m.History()).To(HaveLen(4))
			a, ok := m.CachedAnswer("still here?")
			Expect(ok).To(BeTrue())
			Expect(a).To(Equal("yes"))
			Expect(logBuf.String()).To(ContainSubstring("failed to save memory"))

			driver.SetFailPut(false)
			m.Append(ctx, "user", "again")
			Expect(driver.Text(memory.CollectionHistory)).To(ContainSubstring("still here?"))
		})

		It("is safe for concurrent use", func() {
			driver = testutils.NewMockDriver(nil)
			m := newMemory()

			var wg sync.WaitGroup
			for i := range 20 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					m.Append(ctx, "user", fmt.Sprint(i))
					_ = m.FindRelevant("x", 3)
					_ = m.BuildContext("x")
				}()
			}
			wg.Wait()

			Expect(m.History()).To(HaveLen(20))
		})
	})

	Describe("SetFact", func() {
		It("rebuilds knowledge and saves facts", func() {
			m := newMemory()
			m.SetFact(ctx, "school", "DPS")

			Expect(m.Knowledge()).To(ContainElement("A known fact about 'school' is 'DPS'."))
			Expect(m.Knowledge()[2]).To(Equal("A known fact about 'school' is 'DPS'."))
			Expect(driver.Text(memory.CollectionFacts)).To(Equal(`{"owner":"Aarush","color":"blue","school":"DPS"}`))
		})
	})

	Describe("Reload", func() {
		It("picks up changed inputs", func() {
			m := newMemory()

			Expect(driver.Driver.Put(ctx, memory.CollectionFacts, []byte(`{"pet":"dog"}`))).To(Succeed())
			Expect(driver.Driver.Put(ctx, memory.CollectionBiography, []byte(`{}`))).To(Succeed())
			Expect(driver.Driver.Put(ctx, memory.CollectionLocalKnowledge, []byte(`{"bye":"Goodbye!"}`))).To(Succeed())
			m.Reload(ctx)

			Expect(m.Knowledge()).To(Equal([]string{"A known fact about 'pet' is 'dog'."}))
			a, ok := m.LocalAnswer("bye")
			Expect(ok).To(BeTrue())
			Expect(a).To(Equal("Goodbye!"))
			Expect(m.History()).To(HaveLen(2))
		})

		It("never drops a fact set while reloading", func() {
			m := newMemory()

			var wg sync.WaitGroup
			for i := range 10 {
				wg.Add(2)
				go func() {
					defer wg.Done()
					m.SetFact(ctx, fmt.Sprintf("key%d", i), "v")
				}()
				go func() {
					defer wg.Done()
					m.Reload(ctx)
				}()
			}
			wg.Wait()

			for i := range 10 {
				_, ok := m.Facts().Get(fmt.Sprintf("key%d", i))
				Expect(ok).To(BeTrue(), "key%d", i)
			}
		})

		It("keeps the previous value of a malformed input", func() {
			m := newMemory()

			Expect(driver.Driver.Put(ctx, memory.CollectionFacts, []byte(`{"broken"`))).To(Succeed())
			m.Reload(ctx)

			Expect(m.Facts().Len()).To(Equal(2))
			Expect(m.Knowledge()).To(HaveLen(4))
		})
	})

	Describe("retrieval", func() {
		It("ranks knowledge with the default top-k", func() {
			m := newMemory()
			Expect(m.FindRelevant("a known fact", 0)).To(HaveLen(2))
			Expect(m.FindRelevant("a known fact", 1)).To(HaveLen(1))
		})

		It("builds context from the trailing window", func() {
			m := newMemory()
			for i := range 10 {
				m.Append(ctx, "user", fmt.Sprint(i))
			}

			msgs := m.BuildContext("a known fact")
			Expect(msgs).To(HaveLen(8))
			Expect(msgs[0].Role).To(Equal(llm.RoleUser))
			Expect(msgs[0].GetText()).To(ContainSubstring("A known fact about 'owner' is 'Aarush'."))
			Expect(msgs[7].GetText()).To(Equal("9"))
		})

		It("returns the trailing turns", func() {
			m := newMemory()
			Expect(m.Tail(1)).To(Equal([]memory.Entry{{Role: memory.RoleModel, Content: "Jarvis"}}))
		})

		It("exposes the persona", func() {
			Expect(newMemory().Persona()).To(Equal(memory.DefaultPersona))
		})
	})
})
