package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/revpulse/feedback_go_server/config"
)

var (
	ErrEmptyText       = errors.New("评价内容为空")
	ErrInvalidShape    = errors.New("分类结果格式不合法")
	ErrUnknownProvider = errors.New("未知的分类器提供方")
)

// Result 分类结果，四个字段缺一不可
type Result struct {
	Topic     string `json:"topic"`
	Sentiment string `json:"sentiment"`
	Priority  string `json:"priority"`
	Summary   string `json:"summary"`
}

// Classifier 文本分类器。实现方（关键词 / 远端模型）被视为不可信 I/O：
// 返回值必须经过 Validate 才能落库
type Classifier interface {
	Classify(ctx context.Context, text string) (*Result, error)
}

// 固定主题集合
var Topics = []string{
	"Delivery",
	"Product Quality",
	"Customer Support",
	"Payment",
	"App Performance",
	"Pricing",
	"UI/UX",
	"Availability",
}

// 情感三分类，全链路统一使用
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

var topicSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Topics))
	for _, t := range Topics {
		m[t] = struct{}{}
	}
	return m
}()

var sentimentSet = map[string]struct{}{
	SentimentPositive: {},
	SentimentNeutral:  {},
	SentimentNegative: {},
}

var priorityScores = map[string]int{
	PriorityHigh:   5,
	PriorityMedium: 3,
	PriorityLow:    1,
}

// New 根据配置构建分类器
func New(cfg *config.ClassifierConfig) (Classifier, error) {
	switch cfg.Provider {
	case "", "keyword":
		return NewKeywordClassifier(), nil
	case "openai":
		return NewOpenAIClassifier(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

// Validate 校验分类结果是否落在固定词表内
// 不合法的结果按行级失败处理，绝不落库
func Validate(r *Result) error {
	if r == nil {
		return ErrInvalidShape
	}
	if _, ok := topicSet[r.Topic]; !ok {
		return fmt.Errorf("%w: topic %q", ErrInvalidShape, r.Topic)
	}
	if _, ok := sentimentSet[r.Sentiment]; !ok {
		return fmt.Errorf("%w: sentiment %q", ErrInvalidShape, r.Sentiment)
	}
	if _, ok := priorityScores[r.Priority]; !ok {
		return fmt.Errorf("%w: priority %q", ErrInvalidShape, r.Priority)
	}
	if strings.TrimSpace(r.Summary) == "" {
		return fmt.Errorf("%w: empty summary", ErrInvalidShape)
	}
	return nil
}

// PriorityScore 优先级转数值（high=5 medium=3 low=1），未知返回 3
func PriorityScore(priority string) int {
	if score, ok := priorityScores[priority]; ok {
		return score
	}
	return 3
}
