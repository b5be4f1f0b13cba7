// internal/app/system/genai/genai.go
package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultTimeout bounds one generation when no HTTP client is supplied.
const DefaultTimeout = 90 * time.Second

// ErrEmptyResponse is returned when the model answered with no text.
var ErrEmptyResponse = errors.New("genai: empty response")

// Prompt is one generation request. When JSON is set the provider is asked
// for a JSON object; callers still validate the text they get back.
type Prompt struct {
	System string
	User   string
	JSON   bool
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// OpenAI talks to any OpenAI-compatible chat completions endpoint, including
// Gemini's compatibility layer.
type OpenAI struct {
	client *openai.Client
	model  string
}

// OpenAIConfig configures NewOpenAI. BaseURL may be empty for api.openai.com.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// NewOpenAI builds an OpenAI-compatible generator.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.Model == "" {
		return nil, errors.New("genai: model is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	oc.HTTPClient = hc
	return &OpenAI{client: openai.NewClientWithConfig(oc), model: cfg.Model}, nil
}

// Generate sends p as a single chat completion.
func (g *OpenAI) Generate(ctx context.Context, p Prompt) (string, error) {
	var msgs []openai.ChatCompletionMessage
	if p.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: p.User})

	req := openai.ChatCompletionRequest{Model: g.model, Messages: msgs}
	if p.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("genai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Ollama talks to a local or self-hosted Ollama server.
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama builds a generator for the Ollama server at baseURL.
func NewOllama(baseURL, model string, httpClient *http.Client) (*Ollama, error) {
	if model == "" {
		return nil, errors.New("genai: model is required")
	}
	u, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("genai: invalid ollama url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Ollama{client: api.NewClient(u, httpClient), model: model}, nil
}

// Generate runs a non-streaming generation and returns the full text.
func (g *Ollama) Generate(ctx context.Context, p Prompt) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  g.model,
		Prompt: p.User,
		System: p.System,
		Stream: &stream,
	}
	if p.JSON {
		req.Format = []byte(`"json"`)
	}

	var sb strings.Builder
	err := g.client.Generate(ctx, req, func(r api.GenerateResponse) error {
		sb.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("genai: ollama generate: %w", err)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// Func adapts a function to Generator. Tests use it to script responses.
type Func func(ctx context.Context, p Prompt) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, p Prompt) (string, error) { return f(ctx, p) }
