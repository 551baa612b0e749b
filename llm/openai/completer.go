// Package openai is the chat-completion backend for OpenAI and
// OpenAI-compatible servers.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/snow-ghost/interviewer/llm"
	"github.com/snow-ghost/interviewer/pkg/limiter"
)

const DefaultModel = goopenai.GPT4oMini

// Completer implements llm.Completer with CreateChatCompletion.
type Completer struct {
	client *goopenai.Client
	model  string
}

// New builds a completer; an empty baseURL means the public OpenAI API.
func New(apiKey, baseURL, model string) (*Completer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" && baseURL == "" {
		return nil, errors.New("openai api key is required")
	}

	config := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}

	return &Completer{client: goopenai.NewClientWithConfig(config), model: model}, nil
}

func (c *Completer) Name() string { return "openai:" + c.model }

func (c *Completer) Complete(ctx context.Context, req llm.Request) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := goopenai.ChatMessageRoleUser
		if m.Role == llm.RoleAssistant {
			role = goopenai.ChatMessageRoleAssistant
		}
		messages = append(messages, goopenai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	request := goopenai.ChatCompletionRequest{
		Model:               c.model,
		Messages:            messages,
		Temperature:         req.Temperature,
		MaxCompletionTokens: req.MaxTokens,
	}
	if req.JSON {
		request.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	response, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", classify(err)
	}
	if len(response.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}
	return response.Choices[0].Message.Content, nil
}

// classify turns API failures into limiter.HTTPError so retries can see the status.
func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return limiter.NewHTTPError(apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return limiter.NewHTTPError(reqErr.HTTPStatusCode, http.StatusText(reqErr.HTTPStatusCode), err)
	}
	return fmt.Errorf("openai chat completion failed: %w", err)
}
