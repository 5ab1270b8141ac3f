package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/icynarco112-ux/calories-tracker/config"
)

// NarrativeClient talks to the external language-model service that turns
// aggregates into prose. It is a collaborator, not a dependency: callers
// must treat every error here as non-fatal.
type NarrativeClient struct {
	client  *http.Client
	baseURL string
	key     string
	model   string
}

func NewNarrativeClient(cfg config.Settings) *NarrativeClient {
	return &NarrativeClient{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(cfg.AIBaseURL, "/"),
		key:     cfg.AIKey,
		model:   cfg.AIModel,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (n *NarrativeClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	if n.key == "" {
		return "", fmt.Errorf("narrative API key not set")
	}

	body, _ := json.Marshal(chatRequest{
		Model: n.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   300,
		Temperature: 0.4,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build narrative request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("narrative request error: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read narrative response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		// Surface the upstream error body; it is usually a short JSON blob.
		var apiErr chatResponse
		if json.Unmarshal(respBytes, &apiErr) == nil && apiErr.Error != nil {
			return "", fmt.Errorf("narrative api error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("narrative api error (%d): %s", resp.StatusCode, string(respBytes))
	}

	var out chatResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return "", fmt.Errorf("decode narrative response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty narrative response")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
