package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"feedbacktriage/internal/feedback"
)

type anthropicClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func newAnthropicClient(cfg Config, timeout time.Duration) *anthropicClient {
	model := cfg.Model
	if model == "" {
		model = "claude-3-sonnet-20240229"
	}
	base := cfg.BaseURL
	if base == "" {
		base = anthropicBaseURL
	}
	return &anthropicClient{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *anthropicClient) Name() string  { return "anthropic" }
func (c *anthropicClient) Model() string { return c.model }

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *anthropicClient) AnalyzeFeedback(ctx context.Context, text string) (feedback.Classification, error) {
	content, err := c.complete(ctx, classifyPrompt(text))
	if err != nil {
		return feedback.Classification{}, err
	}
	return parseClassification(c.Name(), content, nil)
}

func (c *anthropicClient) AnalyzeFeedbackWithCategory(ctx context.Context, text string, category feedback.Category) (feedback.Classification, error) {
	content, err := c.complete(ctx, urgencyPrompt(text, category))
	if err != nil {
		return feedback.Classification{}, err
	}
	return parseClassification(c.Name(), content, &category)
}

func (c *anthropicClient) complete(ctx context.Context, prompt string) (string, error) {
	payload := anthropicRequest{
		Model:       c.model,
		MaxTokens:   maxOutputTokens,
		Temperature: temperature,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UnavailableError{Provider: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UnavailableError{Provider: c.Name(), Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UnavailableError{Provider: c.Name(), Status: resp.StatusCode, Body: truncate(string(respBody), 200)}
	}

	var envelope anthropicResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return "", &InvalidResponseError{Provider: c.Name(), Reason: "envelope did not decode: " + err.Error(), Raw: string(respBody)}
	}
	if len(envelope.Content) == 0 {
		return "", &InvalidResponseError{Provider: c.Name(), Reason: "no content in reply", Raw: string(respBody)}
	}
	return envelope.Content[0].Text, nil
}
