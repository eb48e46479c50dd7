package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

const systemPrompt = "You are an expert fitness advisor (these are not real people by the way but ai generated images). " +
	"You must respond ONLY with valid JSON format. Do not include any text before or after the JSON. " +
	"Your response must be a complete JSON object with all required fields. " +
	"Make sure all values are properly formatted JSON (numbers as numbers, strings in quotes)."

// ErrNoChoices is returned when the API answers 200 with an empty choice list.
var ErrNoChoices = errors.New("no choices in response")

// APIError is a non-2xx reply from the OpenAI API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ImageContent struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatRequest struct {
	Model          string          `json:"model"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Messages       []Message       `json:"messages"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client represents an OpenAI API client.
type Client struct {
	apiKey      string
	model       string
	chatModel   string
	maxTokens   int
	temperature float64
	endpoint    string
	client      *http.Client
}

// NewClient creates a new OpenAI client. model is used for image analysis,
// chatModel for plain chat completions. maxTokens and temperature apply to
// analysis requests only.
func NewClient(apiKey, model, chatModel string, timeout time.Duration, maxTokens int, temperature float64) *Client {
	return &Client{
		apiKey:      apiKey,
		model:       model,
		chatModel:   chatModel,
		maxTokens:   maxTokens,
		temperature: temperature,
		endpoint:    defaultEndpoint,
		client:      &http.Client{Timeout: timeout},
	}
}

// SourceName identifies this provider in logs.
func (c *Client) SourceName() string {
	return "ChatGPT"
}

// encodeImageToBase64 converts image bytes to a base64 data URL.
func encodeImageToBase64(imageData []byte) string {
	base64Data := base64.StdEncoding.EncodeToString(imageData)
	return fmt.Sprintf("data:image/jpeg;base64,%s", base64Data)
}

// AnalyzeImage sends the analysis prompt, with the image attached as a data
// URL, to the chat completions endpoint and returns the model's reply text.
// imageData may be nil for profile-only assessments.
func (c *Client) AnalyzeImage(ctx context.Context, imageData []byte, prompt string) (string, error) {
	content := []any{
		TextContent{Type: "text", Text: prompt},
	}
	if len(imageData) > 0 {
		content = append(content, ImageContent{
			Type:     "image_url",
			ImageURL: ImageURL{URL: encodeImageToBase64(imageData)},
		})
	}

	reqBody := ChatRequest{
		Model:          c.model,
		MaxTokens:      c.maxTokens,
		Temperature:    c.temperature,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: content},
		},
	}

	return c.send(ctx, reqBody)
}

// Chat wraps the message as a single user-role turn and returns the text
// content of the first completion choice.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	reqBody := ChatRequest{
		Model: c.chatModel,
		Messages: []Message{
			{Role: "user", Content: message},
		},
	}

	return c.send(ctx, reqBody)
}

func (c *Client) send(ctx context.Context, reqBody ChatRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", ErrNoChoices
	}

	// The content is normally a string but vision models may answer with
	// structured parts; marshal those back to JSON text.
	content := chatResp.Choices[0].Message.Content
	if contentStr, ok := content.(string); ok {
		return contentStr, nil
	}

	contentJSON, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to marshal content: %w", err)
	}

	return string(contentJSON), nil
}
