package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/revpulse/feedback_go_server/config"
	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/model/dto"
	"github.com/revpulse/feedback_go_server/internal/repository"
)

var (
	ErrChatNotConfigured = errors.New("对话服务未配置")
	ErrChatUnavailable   = errors.New("对话服务暂时不可用")
)

// ChatService 把运营人员的提问连同主题上下文转发给外部 webhook
type ChatService struct {
	reviewRepo *repository.ReviewRepository
	topicRepo  *repository.TopicRepository
	cfg        *config.ChatConfig
	client     *http.Client
}

func NewChatService(reviewRepo *repository.ReviewRepository, topicRepo *repository.TopicRepository, cfg *config.ChatConfig) *ChatService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatService{
		reviewRepo: reviewRepo,
		topicRepo:  topicRepo,
		cfg:        cfg,
		client:     &http.Client{Timeout: timeout},
	}
}

type chatWebhookRequest struct {
	Topic    string   `json:"topic"`
	Question string   `json:"question"`
	Context  []string `json:"context"`
}

type chatWebhookResponse struct {
	Answer string `json:"answer"`
	Output string `json:"output"`
}

// Ask 校验主题、收集该主题最近的摘要作为上下文，转发提问
func (s *ChatService) Ask(req *dto.ChatAskRequest) (*dto.ChatAskResponse, error) {
	if s.cfg.WebhookURL == "" {
		return nil, ErrChatNotConfigured
	}

	topic, err := s.topicRepo.GetByID(req.TopicID)
	if err != nil {
		return nil, ErrTopicNotFound
	}

	filters := &dto.ReviewFilters{TopicID: req.TopicID, Status: model.StatusCompleted}
	reviews, _, err := s.reviewRepo.List(filters, 1, 20)
	if err != nil {
		return nil, err
	}
	summaries := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if r.Summary != "" {
			summaries = append(summaries, r.Summary)
		}
	}

	payload, err := json.Marshal(&chatWebhookRequest{
		Topic:    topic.Name,
		Question: req.Question,
		Context:  summaries,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Post(s.cfg.WebhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChatUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrChatUnavailable, resp.StatusCode)
	}

	var result chatWebhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChatUnavailable, err)
	}

	answer := result.Answer
	if answer == "" {
		answer = result.Output
	}
	return &dto.ChatAskResponse{Answer: answer}, nil
}
