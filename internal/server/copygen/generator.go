// Package copygen turns a short hook into a full social media post using an
// OpenAI-compatible chat completions endpoint.
package copygen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/logging"
)

const systemPrompt = `You write LinkedIn posts for small business owners.
Expand the hook you are given into a complete post of 150 to 250 words.
Keep a professional tone and use short paragraphs.
End with a clear call to action followed by 3 to 5 relevant hashtags.
Do not use emoji.
Respond with a JSON object of the form {"post": "<the post>"} and nothing else.`

const maxHookLen = 500

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Generator calls the chat completions API. It is safe for concurrent use.
type Generator struct {
	cfg    Config
	client *http.Client
	log    logging.Logger
}

func NewGenerator(cfg Config, log logging.Logger) *Generator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &Generator{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With("module", "copygen"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float32        `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type generatedPost struct {
	Post string `json:"post"`
}

// GenerateFromHook returns post text built from hook. Any upstream problem
// is reported as common.ErrGeneration.
func (g *Generator) GenerateFromHook(ctx context.Context, hook string) (string, error) {
	hook = strings.TrimSpace(hook)
	if hook == "" {
		return "", common.NewValidationError("hook", "is required")
	}
	if len([]rune(hook)) > maxHookLen {
		return "", common.NewValidationError("hook", fmt.Sprintf("must be at most %d characters", maxHookLen))
	}

	payload, err := json.Marshal(chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Hook: " + hook},
		},
		Temperature:    0.7,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrGeneration, err)
	}

	endpoint := strings.TrimRight(g.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrGeneration, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Error(ctx, "chat completion request failed", "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrGeneration, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", common.ErrGeneration, err)
	}

	if resp.StatusCode/100 != 2 {
		g.log.Warn(ctx, "chat completion non-2xx", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("%w: status %d", common.ErrGeneration, resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", common.ErrGeneration, err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", common.ErrGeneration)
	}

	content := stripCodeFence(strings.TrimSpace(cr.Choices[0].Message.Content))

	var gp generatedPost
	if err := json.Unmarshal([]byte(content), &gp); err != nil {
		return "", fmt.Errorf("%w: decode post: %v", common.ErrGeneration, err)
	}

	post := strings.TrimSpace(StripEmoji(gp.Post))
	if post == "" {
		return "", fmt.Errorf("%w: empty post", common.ErrGeneration)
	}
	return post, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// StripEmoji removes pictographs, dingbats and their joiners/selectors.
func StripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 0x1F000 && r <= 0x1FAFF,
			r >= 0x2600 && r <= 0x27BF,
			r >= 0x2B00 && r <= 0x2BFF,
			r == 0x200D, r == 0xFE0F, r == 0x20E3:
			return -1
		}
		return r
	}, s)
}
