package dto

// DashboardMetrics 总览指标
type DashboardMetrics struct {
	TotalReviews          int64                 `json:"total_reviews"`
	HighPriorityCount     int64                 `json:"high_priority_count"`
	AvgPriorityScore      float64               `json:"avg_priority_score"`
	MostMentionedTopic    string                `json:"most_mentioned_topic"`
	WorstSentimentRegion  string                `json:"worst_sentiment_region"`
	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`
}

type SentimentDistribution struct {
	Positive int64 `json:"positive"`
	Neutral  int64 `json:"neutral"`
	Negative int64 `json:"negative"`
}

// TopicAnalytics 主题维度聚合
type TopicAnalytics struct {
	ID                    int64                 `json:"id"`
	Name                  string                `json:"name"`
	Volume                int64                 `json:"volume"`
	AvgSentiment          int                   `json:"avg_sentiment"`
	AvgPriority           float64               `json:"avg_priority"`
	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`
}

// RegionSentiment 地域维度情感
type RegionSentiment struct {
	State         string `json:"state"`
	Sentiment     int    `json:"sentiment"`
	PositiveCount int64  `json:"positive_count"`
	NegativeCount int64  `json:"negative_count"`
	TotalCount    int64  `json:"total_count"`
}

// SentimentTrendPoint 按日情感趋势点
type SentimentTrendPoint struct {
	Date      string `json:"date"`
	Sentiment int    `json:"sentiment"`
}
