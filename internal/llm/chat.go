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

// chatClient speaks the OpenAI chat-completions wire format, which OpenAI,
// Groq and Azure OpenAI all share. The differences are the endpoint URL,
// the auth headers and whether the payload names a model (Azure routes by
// deployment instead).
type chatClient struct {
	name         string
	url          string
	headers      map[string]string
	payloadModel string
	modelName    string
	httpClient   *http.Client
}

func newChatClient(name, url string, headers map[string]string, payloadModel, modelName string, timeout time.Duration) *chatClient {
	return &chatClient{
		name:         name,
		url:          url,
		headers:      headers,
		payloadModel: payloadModel,
		modelName:    modelName,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (c *chatClient) Name() string  { return c.name }
func (c *chatClient) Model() string { return c.modelName }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *chatClient) AnalyzeFeedback(ctx context.Context, text string) (feedback.Classification, error) {
	content, err := c.complete(ctx, classifyPrompt(text))
	if err != nil {
		return feedback.Classification{}, err
	}
	return parseClassification(c.name, content, nil)
}

func (c *chatClient) AnalyzeFeedbackWithCategory(ctx context.Context, text string, category feedback.Category) (feedback.Classification, error) {
	content, err := c.complete(ctx, urgencyPrompt(text, category))
	if err != nil {
		return feedback.Classification{}, err
	}
	return parseClassification(c.name, content, &category)
}

func (c *chatClient) complete(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model: c.payloadModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxOutputTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UnavailableError{Provider: c.name, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UnavailableError{Provider: c.name, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UnavailableError{Provider: c.name, Status: resp.StatusCode, Body: truncate(string(respBody), 200)}
	}

	var envelope chatResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return "", &InvalidResponseError{Provider: c.name, Reason: "envelope did not decode: " + err.Error(), Raw: string(respBody)}
	}
	if len(envelope.Choices) == 0 {
		return "", &InvalidResponseError{Provider: c.name, Reason: "no choices in reply", Raw: string(respBody)}
	}
	return envelope.Choices[0].Message.Content, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
