package ollama_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/jarvis/pkg/llm"
	"github.com/papercomputeco/jarvis/pkg/llm/provider/ollama"
)

var _ = Describe("Ollama Client", func() {
	var (
		server   *httptest.Server
		status   int
		body     string
		captured map[string]any
	)

	BeforeEach(func() {
		status = http.StatusOK
		body = `{"model":"llama3.2","message":{"role":"assistant","content":"Hello from llama"},"done":true}`
		captured = nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/api/chat"))
			Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func() *ollama.Client {
		return ollama.New(ollama.Options{Model: "llama3.2", BaseURL: server.URL + "/"})
	}

	It("sends a non-streaming chat with mapped roles", func() {
		out, err := newClient().Generate(context.Background(), []llm.Message{
			llm.NewTextMessage(llm.RoleUser, "preamble"),
			llm.NewTextMessage(llm.RoleModel, "ack"),
			llm.NewTextMessage(llm.RoleUser, "hi"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Hello from llama"))

		Expect(captured["model"]).To(Equal("llama3.2"))
		Expect(captured["stream"]).To(BeFalse())
		msgs := captured["messages"].([]any)
		Expect(msgs).To(HaveLen(3))
		Expect(msgs[1].(map[string]any)["role"]).To(Equal("assistant"))
		Expect(msgs[2].(map[string]any)["content"]).To(Equal("hi"))
	})

	It("returns a ModelError for a non-200 reply", func() {
		status = http.StatusNotFound
		body = `{"error":"model 'llama3.2' not found"}`

		_, err := newClient().Generate(context.Background(), []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")})
		var me *llm.ModelError
		Expect(errors.As(err, &me)).To(BeTrue())
		Expect(me.StatusCode).To(Equal(http.StatusNotFound))
		Expect(me.Message).To(ContainSubstring("not found"))
	})

	It("returns a ModelError for an empty reply", func() {
		body = `{"message":{"role":"assistant","content":"  "},"done":true}`

		_, err := newClient().Generate(context.Background(), []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")})
		var me *llm.ModelError
		Expect(errors.As(err, &me)).To(BeTrue())
	})

	It("reports an unreachable server as unavailable", func() {
		c := ollama.New(ollama.Options{Model: "x", BaseURL: "http://127.0.0.1:1"})
		_, err := c.Generate(context.Background(), []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")})
		Expect(errors.Is(err, llm.ErrModelUnavailable)).To(BeTrue())
	})
})
