package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/revpulse/feedback_go_server/config"
)

const classifyPromptTemplate = `You are an AI assistant specialized in analyzing customer feedback for an e-commerce platform.

Analyze the following customer review and provide structured output:

Review: "%s"

Provide your response in valid JSON format ONLY (no additional text before or after) with exactly these fields:
{
  "topic": "main topic/category (one of: Delivery, Product Quality, Customer Support, Payment, App Performance, Pricing, UI/UX, Availability)",
  "sentiment": "positive, negative, or neutral",
  "summary": "a 1-2 sentence summary of the review",
  "priority": "high (urgent issue), medium (standard concern), or low (minor feedback)"
}`

// OpenAIClassifier 调用 OpenAI 兼容的 chat completion 接口
type OpenAIClassifier struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ Classifier = (*OpenAIClassifier)(nil)

func NewOpenAIClassifier(cfg *config.ClassifierConfig) *OpenAIClassifier {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &OpenAIClassifier{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Classify 发送单条评价文本并解析返回的 JSON
// 超时、网络错误、格式错误都作为行级失败返回给调用方
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if c.endpoint == "" || c.model == "" {
		return nil, fmt.Errorf("classifier misconfigured: endpoint and model required")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(classifyPromptTemplate, text)},
		},
		Temperature: 0.3,
		MaxTokens:   200,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classify call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("classifier error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode classify response: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("classifier error: %s", payload.Error.Message)
	}
	if len(payload.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrInvalidShape)
	}

	var result Result
	content := strings.TrimSpace(payload.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}

	// 不信任模型自报的结构，统一走词表校验
	if err := Validate(&result); err != nil {
		return nil, err
	}

	return &result, nil
}
