// Package host implements the host-mediated generation path: a single chat
// completion through the OpenAI SDK against the host application's own
// endpoint and credentials.
package host

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/n0madic/go-genpipe/internal/codec"
	"github.com/n0madic/go-genpipe/internal/config"
)

// ErrNotConfigured is returned by New when the host has no base URL.
var ErrNotConfigured = errors.New("host provider has no base URL")

// Provider generates text through the host endpoint.
type Provider struct {
	client openai.Client
	model  string
	params codec.Params
}

// New builds a provider from cfg. Credentials come from the client-credentials
// grant when TokenURL and ClientID are set, otherwise from APIKey as a static
// bearer token. ctx scopes token fetches and must outlive the provider.
func New(ctx context.Context, cfg config.HostConfig, params codec.Params) (*Provider, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, ErrNotConfigured
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("host provider at %s has no model", base)
	}

	client := openai.NewClient(
		option.WithBaseURL(base),
		option.WithHTTPClient(httpClient(ctx, cfg)),
		option.WithMaxRetries(0),
	)
	return &Provider{client: client, model: model, params: params}, nil
}

func httpClient(ctx context.Context, cfg config.HostConfig) *http.Client {
	if cfg.TokenURL != "" && cfg.ClientID != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		return cc.Client(ctx)
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: key, TokenType: "Bearer"}))
	}
	return &http.Client{}
}

// Generate sends one non-streaming chat completion and returns its text.
func (p *Provider) Generate(ctx context.Context, prompt, system string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}
	if p.params.Temperature >= 0 {
		params.Temperature = openai.Float(p.params.Temperature)
	}
	if p.params.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.params.MaxTokens))
	}

	out, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("host chat completion failed: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("host chat completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
