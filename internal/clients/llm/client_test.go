package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dabidoe/character-foundry/internal/errors"
)

type capturedRequest struct {
	Path string
	Body map[string]any
}

type ClientTestSuite struct {
	suite.Suite
	server   *httptest.Server
	status   int
	response string
	captured *capturedRequest
	ctx      context.Context
}

func (s *ClientTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.status = http.StatusOK
	s.captured = nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body := map[string]any{}
		_ = json.Unmarshal(raw, &body)
		s.captured = &capturedRequest{Path: r.URL.Path, Body: body}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.status)
		_, _ = io.WriteString(w, s.response)
	}))
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientTestSuite) newClient(provider string) Client {
	c, err := New(&Config{
		Provider: provider,
		APIKey:   "test-key",
		BaseURL:  s.server.URL + "/",
	})
	s.Require().NoError(err)
	return c
}

func (s *ClientTestSuite) TestConfigDefaults() {
	cfg := &Config{APIKey: "k"}
	s.Require().NoError(cfg.Validate())
	s.Equal(ProviderGemini, cfg.Provider)
	s.Equal(GeminiBaseURL, cfg.BaseURL)
	s.Equal(DefaultGeminiModel, cfg.Model)

	cfg = &Config{Provider: "Anthropic", APIKey: "k"}
	s.Require().NoError(cfg.Validate())
	s.Equal(ProviderAnthropic, cfg.Provider)
	s.Equal(DefaultAnthropicModel, cfg.Model)
	s.Empty(cfg.BaseURL)
}

func (s *ClientTestSuite) TestConfigInvalid() {
	err := (&Config{Provider: "llama"}).Validate()
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = New(nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *ClientTestSuite) TestOpenAICompatibleComplete() {
	s.response = `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "gemini-2.0-flash",
		"choices": [{
			"index": 0,
			"finish_reason": "stop",
			"message": {"role": "assistant", "content": "  Well met, traveler.  "}
		}]
	}`

	out, err := s.newClient(ProviderGemini).Complete(s.ctx, &CompleteInput{
		System: "You are Thorin.",
		Messages: []Message{
			{Role: RoleUser, Content: "Hello"},
			{Role: RoleAssistant, Content: "Greetings"},
			{Role: RoleUser, Content: "Who are you?"},
		},
		MaxTokens:   200,
		Temperature: Float(0.8),
	})
	s.Require().NoError(err)
	s.Equal("Well met, traveler.", out.Text)

	s.Require().NotNil(s.captured)
	s.True(strings.HasSuffix(s.captured.Path, "/chat/completions"))
	s.Equal(DefaultGeminiModel, s.captured.Body["model"])
	messages, ok := s.captured.Body["messages"].([]any)
	s.Require().True(ok)
	s.Len(messages, 4)
	first, _ := messages[0].(map[string]any)
	s.Equal("system", first["role"])
}

func (s *ClientTestSuite) TestOpenAIFailureIsExternal() {
	s.status = http.StatusInternalServerError
	s.response = `{"error": {"message": "quota exceeded"}}`

	_, err := s.newClient(ProviderOpenAI).Complete(s.ctx, &CompleteInput{
		Messages: []Message{{Role: RoleUser, Content: "Hello"}},
	})
	s.Require().Error(err)
	s.True(errors.IsExternal(err))
	s.Equal("failed to generate response", errors.GetMessage(err))
}

func (s *ClientTestSuite) TestOpenAIEmptyChoices() {
	s.response = `{"id": "x", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`

	_, err := s.newClient(ProviderOpenAI).Complete(s.ctx, &CompleteInput{
		Messages: []Message{{Role: RoleUser, Content: "Hello"}},
	})
	s.True(errors.IsExternal(err))
}

func (s *ClientTestSuite) TestAnthropicComplete() {
	s.response = `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-3-5-haiku-latest",
		"content": [{"type": "text", "text": "By my beard!"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 4}
	}`

	out, err := s.newClient(ProviderAnthropic).Complete(s.ctx, &CompleteInput{
		System:   "You are Thorin.",
		Messages: []Message{{Role: RoleUser, Content: "Hello"}},
	})
	s.Require().NoError(err)
	s.Equal("By my beard!", out.Text)

	s.Require().NotNil(s.captured)
	s.True(strings.HasSuffix(s.captured.Path, "/v1/messages"))
	s.EqualValues(DefaultMaxTokens, s.captured.Body["max_tokens"])
	s.NotNil(s.captured.Body["system"])
}

func (s *ClientTestSuite) TestRequiresMessages() {
	_, err := s.newClient(ProviderAnthropic).Complete(s.ctx, &CompleteInput{System: "x"})
	s.True(errors.IsInvalidArgument(err))
	s.Nil(s.captured)
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}
