package memory_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/jarvis/pkg/memory"
)

var _ = Describe("NormalizeRole", func() {
	DescribeTable("maps labels to a role",
		func(label string, want memory.Role) {
			Expect(memory.NormalizeRole(label)).To(Equal(want))
		},
		Entry("user", "user", memory.RoleUser),
		Entry("upper case user", "USER", memory.RoleUser),
		Entry("title case user", "User", memory.RoleUser),
		Entry("padded user", "  user\n", memory.RoleUser),
		Entry("model", "model", memory.RoleModel),
		Entry("assistant alias", "assistant", memory.RoleModel),
		Entry("title case assistant", "Assistant", memory.RoleModel),
		Entry("user as a prefix", "username", memory.RoleModel),
		Entry("empty", "", memory.RoleModel),
		Entry("unknown", "system", memory.RoleModel),
	)
})

var _ = Describe("History", func() {
	It("appends in order with normalized roles", func() {
		h := &memory.History{}
		h.Append("user", "hi")
		h.Append("assistant", "hello")

		Expect(h.Len()).To(Equal(2))
		Expect(h.Entries()).To(Equal([]memory.Entry{
			{Role: memory.RoleUser, Content: "hi"},
			{Role: memory.RoleModel, Content: "hello"},
		}))
	})

	Describe("LastTwo", func() {
		It("reports not ok when empty", func() {
			_, _, ok := (&memory.History{}).LastTwo()
			Expect(ok).To(BeFalse())
		})

		It("returns the newest entry alone when only one exists", func() {
			h := &memory.History{}
			h.Append("model", "first")

			_, newest, ok := h.LastTwo()
			Expect(ok).To(BeFalse())
			Expect(newest.Content).To(Equal("first"))
		})

		It("returns the final pair", func() {
			h := &memory.History{}
			h.Append("user", "a")
			h.Append("model", "b")
			h.Append("user", "c")

			prev, newest, ok := h.LastTwo()
			Expect(ok).To(BeTrue())
			Expect(prev.Content).To(Equal("b"))
			Expect(newest.Content).To(Equal("c"))
		})
	})

	Describe("Tail", func() {
		var h *memory.History

		BeforeEach(func() {
			h = &memory.History{}
			for _, c := range []string{"1", "2", "3", "4"} {
				h.Append("user", c)
			}
		})

		It("returns the last n in chronological order", func() {
			tail := h.Tail(2)
			Expect(tail).To(HaveLen(2))
			Expect(tail[0].Content).To(Equal("3"))
			Expect(tail[1].Content).To(Equal("4"))
		})

		It("returns everything when n exceeds the length", func() {
			Expect(h.Tail(10)).To(HaveLen(4))
		})

		It("returns nothing for n <= 0", func() {
			Expect(h.Tail(0)).To(BeEmpty())
			Expect(h.Tail(-1)).To(BeEmpty())
		})

		It("returns a copy", func() {
			tail := h.Tail(1)
			tail[0].Content = "changed"
			Expect(h.Tail(1)[0].Content).To(Equal("4"))
		})
	})

	It("normalizes roles when built from entries", func() {
		h := memory.NewHistory([]memory.Entry{{Role: "assistant", Content: "x"}, {Role: "User", Content: "y"}})
		Expect(h.Entries()).To(Equal([]memory.Entry{
			{Role: memory.RoleModel, Content: "x"},
			{Role: memory.RoleUser, Content: "y"},
		}))
	})
})

var _ = Describe("Entry JSON", func() {
	It("normalizes the role and nulls on decode", func() {
		var entries []memory.Entry
		Expect(json.Unmarshal([]byte(`[
			{"role":"assistant","content":null},
			{"role":"user"},
			{"role":"model","content":"ok"}
		]`), &entries)).To(Succeed())

		Expect(entries).To(Equal([]memory.Entry{
			{Role: memory.RoleModel, Content: ""},
			{Role: memory.RoleUser, Content: ""},
			{Role: memory.RoleModel, Content: "ok"},
		}))
	})

	It("encodes role and content", func() {
		data, err := json.Marshal(memory.Entry{Role: memory.RoleUser, Content: "hi"})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`{"role":"user","content":"hi"}`))
	})

	It("converts to a model message", func() {
		m := memory.Entry{Role: "assistant", Content: "hey"}.Message()
		Expect(m.Role).To(Equal(memory.RoleModel))
		Expect(m.GetText()).To(Equal("hey"))
	})
})
