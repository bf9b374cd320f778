package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/jarvis/pkg/llm"
	"github.com/papercomputeco/jarvis/pkg/llm/provider/anthropic"
)

type reqBody struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content"`
	} `json:"messages"`
}

var _ = Describe("Anthropic Client", func() {
	var (
		server   *httptest.Server
		status   int
		body     string
		captured reqBody
	)

	BeforeEach(func() {
		status = http.StatusOK
		body = `{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5",
			"content":[{"type":"text","text":"Hello "},{"type":"text","text":"from claude"}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":4}}`
		captured = reqBody{}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/v1/messages"))
			Expect(r.Header.Get("X-Api-Key")).To(Equal("test-key"))
			Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func() *anthropic.Client {
		retries := 0
		return anthropic.New(anthropic.Options{
			APIKey:     "test-key",
			Model:      "claude-sonnet-4-5",
			BaseURL:    server.URL,
			MaxRetries: &retries,
		})
	}

	It("joins text blocks", func() {
		out, err := newClient().Generate(context.Background(), []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Hello from claude"))
		Expect(captured.Model).To(Equal("claude-sonnet-4-5"))
		Expect(captured.MaxTokens).To(Equal(1024))
	})

	It("merges consecutive turns from the same role", func() {
		_, err := newClient().Generate(context.Background(), []llm.Message{
			llm.NewTextMessage(llm.RoleUser, "preamble"),
			llm.NewTextMessage(llm.RoleModel, "ack"),
			llm.NewTextMessage(llm.RoleUser, "first"),
			llm.NewTextMessage(llm.RoleUser, "second"),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(captured.Messages).To(HaveLen(3))
		Expect(captured.Messages[0].Role).To(Equal("user"))
		Expect(captured.Messages[1].Role).To(Equal("assistant"))
		Expect(captured.Messages[2].Role).To(Equal("user"))
		Expect(captured.Messages[2].Content).To(HaveLen(2))
		Expect(captured.Messages[2].Content[1].Text).To(Equal("second"))
	})

	It("returns a ModelError with the status code", func() {
		status = http.StatusBadRequest
		body = `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`

		_, err := newClient().Generate(context.Background(), []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")})
		var me *llm.ModelError
		Expect(errors.As(err, &me)).To(BeTrue())
		Expect(me.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("returns a ModelError for an empty reply", func() {
		body = `{"id":"msg_2","type":"message","role":"assistant","model":"m","content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`

		_, err := newClient().Generate(context.Background(), []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")})
		var me *llm.ModelError
		Expect(errors.As(err, &me)).To(BeTrue())
	})
})
