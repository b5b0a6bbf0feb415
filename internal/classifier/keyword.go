package classifier

import (
	"context"
	"strings"
	"unicode"
)

// KeywordClassifier 基于关键词的本地分析，零成本，无外部调用
type KeywordClassifier struct{}

var _ Classifier = (*KeywordClassifier)(nil)

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// 主题关键词表，命中最多者胜出
var topicKeywords = map[string][]string{
	"Delivery":         {"delivery", "deliver", "shipping", "shipped", "courier", "package", "parcel", "arrived", "late", "tracking"},
	"Product Quality":  {"quality", "broken", "damaged", "defect", "defective", "material", "durable", "fake", "authentic", "expired"},
	"Customer Support": {"support", "service", "agent", "helpline", "complaint", "response", "ticket", "refund request", "rude", "helpful"},
	"Payment":          {"payment", "pay", "refund", "charged", "transaction", "card", "wallet", "upi", "invoice", "money"},
	"App Performance":  {"app", "crash", "slow", "lag", "bug", "loading", "freeze", "login", "error", "update"},
	"Pricing":          {"price", "expensive", "cheap", "cost", "discount", "offer", "deal", "overpriced", "value"},
	"UI/UX":            {"interface", "design", "navigation", "confusing", "layout", "search", "filter", "checkout flow", "easy to use"},
	"Availability":     {"out of stock", "unavailable", "stock", "availability", "sold out", "restock", "in stock"},
}

var positiveWords = []string{
	"good", "great", "excellent", "amazing", "love", "best", "awesome",
	"perfect", "happy", "satisfied", "fast", "smooth", "recommend", "helpful",
}

var negativeWords = []string{
	"bad", "worst", "terrible", "horrible", "hate", "poor", "awful",
	"disappointed", "disappointing", "slow", "broken", "refund", "never",
	"waste", "useless", "rude", "scam", "fraud", "delay", "delayed",
}

var urgentWords = []string{
	"urgent", "immediately", "unacceptable", "fraud", "scam", "legal",
	"complaint", "worst", "never again", "money stuck", "not received",
}

// Classify 对文本做确定性的关键词打分
func (c *KeywordClassifier) Classify(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lower := strings.ToLower(text)

	topic := bestTopic(lower)
	posHits := countHits(lower, positiveWords)
	negHits := countHits(lower, negativeWords)

	sentiment := SentimentNeutral
	switch {
	case posHits > negHits:
		sentiment = SentimentPositive
	case negHits > posHits:
		sentiment = SentimentNegative
	}

	priority := PriorityLow
	switch {
	case countHits(lower, urgentWords) > 0:
		priority = PriorityHigh
	case sentiment == SentimentNegative:
		priority = PriorityMedium
	}

	return &Result{
		Topic:     topic,
		Sentiment: sentiment,
		Priority:  priority,
		Summary:   summarize(text),
	}, nil
}

func bestTopic(lower string) string {
	best := "Product Quality" // 默认主题
	bestHits := 0
	for _, topic := range Topics {
		hits := countHits(lower, topicKeywords[topic])
		if hits > bestHits {
			best = topic
			bestHits = hits
		}
	}
	return best
}

func countHits(lower string, words []string) int {
	hits := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	return hits
}

// summarize 取第一句并截断到 140 字符
func summarize(text string) string {
	trimmed := strings.TrimSpace(text)
	if idx := strings.IndexFunc(trimmed, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	}); idx > 0 {
		trimmed = trimmed[:idx]
	}
	runes := []rune(strings.TrimRightFunc(trimmed, unicode.IsSpace))
	if len(runes) > 140 {
		runes = append(runes[:137], '.', '.', '.')
	}
	return string(runes)
}
