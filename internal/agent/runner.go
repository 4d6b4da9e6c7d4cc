package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Runner executes an assembled prompt against a language-model backend. The
// model itself lives outside this repository; the HTTP handler only depends
// on this interface.
type Runner interface {
	Run(ctx context.Context, prompt string) (string, error)
}

// systemPrompt steers the assistant: friendly financial answers, names over
// ids, and login links surfaced verbatim so the frontend can render them.
const systemPrompt = `You are a helpful financial assistant that works with Splitwise data.

Guidelines:
1. For general queries, answer naturally. Mention Splitwise only when the user asks about expenses, groups, or friends.
2. If a tool returns a login link, present it to the user as a clearly marked clickable link, e.g. 'Login Link: https://...'.
3. Never mention internal identifiers such as browser or client ids.
4. Always return human-readable names instead of raw ids, and explain what balances and debts mean in simple terms.
5. Use the earlier conversation summary and recent turns to keep answers contextual.`

// ChatRunner talks to an OpenAI-compatible chat completions endpoint.
type ChatRunner struct {
	http  *resty.Client
	model string
}

// NewChatRunner builds a runner for the given backend. The API key may be
// empty for local backends that skip authentication.
func NewChatRunner(baseURL, apiKey, model string, timeout time.Duration) *ChatRunner {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		httpClient.SetAuthToken(apiKey)
	}
	return &ChatRunner{http: httpClient, model: model}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Run sends the prompt as a single user message under the fixed system
// prompt and returns the first choice's content.
func (r *ChatRunner) Run(ctx context.Context, prompt string) (string, error) {
	body := chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}

	resp, err := r.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("chat backend returned status %d", resp.StatusCode())
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("chat backend error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat backend returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
