package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Provider names an OpenAI-compatible chat endpoint.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGroq   Provider = "groq"
	ProviderOllama Provider = "ollama"
)

// BaseURL returns the provider's default API root.
func (p Provider) BaseURL() string {
	switch p {
	case ProviderGroq:
		return "https://api.groq.com/openai/v1"
	case ProviderOllama:
		return "http://localhost:11434/v1"
	default:
		return "https://api.openai.com/v1"
	}
}

// KeyEnv is the environment variable holding the provider's API key. Ollama needs none.
func (p Provider) KeyEnv() string {
	switch p {
	case ProviderGroq:
		return "GROQ_API_KEY"
	case ProviderOllama:
		return ""
	default:
		return "OPENAI_API_KEY"
	}
}

// OpenAI is a chat-completions client for any OpenAI-compatible endpoint.
type OpenAI struct {
	provider Provider
	client   *openai.Client
}

// NewOpenAI returns a client for api.openai.com.
func NewOpenAI(apiKey string) (*OpenAI, error) {
	return NewCompatible(ProviderOpenAI, apiKey, "")
}

// NewCompatible returns a client for provider. An empty baseURL uses the provider default.
func NewCompatible(provider Provider, apiKey, baseURL string) (*OpenAI, error) {
	if apiKey == "" && provider != ProviderOllama {
		return nil, fmt.Errorf("llm: %s api key is empty", provider)
	}
	if baseURL == "" {
		baseURL = provider.BaseURL()
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	return &OpenAI{provider: provider, client: openai.NewClientWithConfig(cfg)}, nil
}

// FromEnv builds a client for provider from the environment. OLLAMA_BASE_URL overrides
// the local Ollama address.
func FromEnv(provider Provider) (*OpenAI, error) {
	switch provider {
	case ProviderOpenAI, ProviderGroq, ProviderOllama:
	case "":
		provider = ProviderOpenAI
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
	var key, base string
	if env := provider.KeyEnv(); env != "" {
		key = os.Getenv(env)
	}
	if provider == ProviderOllama {
		base = os.Getenv("OLLAMA_BASE_URL")
	}
	return NewCompatible(provider, key, base)
}

// Provider returns which endpoint the client talks to.
func (c *OpenAI) Provider() Provider {
	return c.provider
}

// Complete sends a system + user message pair and returns the first choice's content.
func (c *OpenAI) Complete(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoReply
	}
	return resp.Choices[0].Message.Content, nil
}
