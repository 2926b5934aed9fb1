package llm

import (
	"context"
	"errors"

	httputils "github.com/didierrc/KusiBot/kusibot/utils/http"
	"github.com/didierrc/KusiBot/kusibot/utils/logging"
)

// ErrUnavailable is returned by the no-op client when no LLM backend
// is configured. Callers are expected to degrade to a fixed response.
var ErrUnavailable = errors.New("llm backend unavailable")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string      `json:"model"`
	Messages []Message   `json:"messages"`
	Stream   bool        `json:"stream"`
	Options  interface{} `json:"options,omitempty"`
}

type ChatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// Client is the generative backend consumed by the chatbot agents.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

type OllamaClient struct {
	baseURL string
	model   string
}

// NewClient returns an Ollama-backed client, or an Unavailable client
// when no base URL is configured. The decision is made once at startup
// so callers never have to catch "model not installed" style failures.
func NewClient(baseURL, model string) Client {
	if baseURL == "" {
		return Unavailable{}
	}
	return &OllamaClient{baseURL: baseURL, model: model}
}

func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	defer logging.LogDuration(ctx, "llm_chat")()
	req := ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	}
	var resp ChatResponse
	if err := httputils.PostJSON(ctx, c.baseURL+"/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

// Unavailable is the typed "no backend" client.
type Unavailable struct{}

func (Unavailable) Chat(context.Context, []Message) (string, error) {
	return "", ErrUnavailable
}
