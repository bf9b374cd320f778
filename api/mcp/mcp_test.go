package mcp_test

import (
	"context"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/jarvis/api/mcp"
	"github.com/papercomputeco/jarvis/pkg/logger"
	"github.com/papercomputeco/jarvis/pkg/memory"
	testutils "github.com/papercomputeco/jarvis/pkg/utils/test"
)

var _ = Describe("MCP Server", func() {
	var (
		ctx    context.Context
		mem    *memory.Memory
		server *mcp.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver := testutils.NewMockDriver(map[string]string{
			memory.CollectionFacts:   `{"favorite color":"blue","home city":"Pune"}`,
			memory.CollectionHistory: `[{"role":"user","content":"Who am I?"},{"role":"model","content":"You are Aarush."}]`,
		})

		var err error
		mem, err = memory.New(ctx, memory.Config{Driver: driver})
		Expect(err).NotTo(HaveOccurred())

		server, err = mcp.NewServer(mcp.Config{Memory: mem, Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when memory is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Logger: logger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("memory is required")))
		})

		It("creates a noop server without memory", func() {
			s, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Handler()).NotTo(BeNil())
		})

		It("returns an HTTP handler", func() {
			Expect(server.Handler()).NotTo(BeNil())
		})
	})

	Describe("over an in-memory transport", func() {
		var session *gomcp.ClientSession

		BeforeEach(func() {
			serverTransport, clientTransport := gomcp.NewInMemoryTransports()

			_, err := server.MCPServer().Connect(ctx, serverTransport, nil)
			Expect(err).NotTo(HaveOccurred())

			client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
			session, err = client.Connect(ctx, clientTransport, nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(session.Close)
		})

		It("lists both tools", func() {
			res, err := session.ListTools(ctx, nil)
			Expect(err).NotTo(HaveOccurred())

			names := make([]string, 0, len(res.Tools))
			for _, t := range res.Tools {
				names = append(names, t.Name)
			}
			Expect(names).To(ConsistOf("knowledge_search", "qa_lookup"))
		})

		It("searches knowledge", func() {
			res, err := session.CallTool(ctx, &gomcp.CallToolParams{
				Name:      "knowledge_search",
				Arguments: map[string]any{"query": "'home city'", "top_k": 1},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(res.Content).To(HaveLen(1))

			text, ok := res.Content[0].(*gomcp.TextContent)
			Expect(ok).To(BeTrue())
			Expect(text.Text).To(ContainSubstring("A known fact about 'home city' is 'Pune'."))
			Expect(text.Text).To(ContainSubstring(`"count":1`))
		})

		It("looks up cached answers", func() {
			res, err := session.CallTool(ctx, &gomcp.CallToolParams{
				Name:      "qa_lookup",
				Arguments: map[string]any{"question": "  who AM i? "},
			})
			Expect(err).NotTo(HaveOccurred())

			text := res.Content[0].(*gomcp.TextContent)
			Expect(text.Text).To(ContainSubstring(`"answer":"You are Aarush."`))
			Expect(text.Text).To(ContainSubstring(`"found":true`))
		})
	})
})
