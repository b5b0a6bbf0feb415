package repository

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/model/dto"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(review *model.Review) error {
	return r.db.Create(review).Error
}

func (r *ReviewRepository) CreateInBatches(reviews []*model.Review, batchSize int) error {
	return r.db.CreateInBatches(reviews, batchSize).Error
}

func (r *ReviewRepository) GetByID(rowID int64) (*model.Review, error) {
	var review model.Review
	err := r.db.Preload("Topic").Where("row_id = ?", rowID).First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// List 按过滤条件分页查询，按优先级分数降序、时间降序
func (r *ReviewRepository) List(filters *dto.ReviewFilters, page, pageSize int) ([]*model.Review, int64, error) {
	query := r.applyFilters(r.db.Model(&model.Review{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []*model.Review
	err := query.Preload("Topic").
		Order("priority_score DESC, fdb_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *ReviewRepository) applyFilters(query *gorm.DB, filters *dto.ReviewFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.Sentiment != "" {
		query = query.Where("sentiment = ?", filters.Sentiment)
	}
	if filters.Priority != "" {
		query = query.Where("priority = ?", filters.Priority)
	}
	if filters.Source != "" {
		query = query.Where("source = ?", filters.Source)
	}
	if filters.TopicID > 0 {
		query = query.Where("topic_id = ?", filters.TopicID)
	}
	if filters.ResolutionStatus != "" {
		query = query.Where("resolution_status = ?", filters.ResolutionStatus)
	}
	if filters.Status != "" {
		query = query.Where("processing_status = ?", filters.Status)
	}
	if filters.State != "" {
		query = query.Where("state = ?", filters.State)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("review_text LIKE ? OR summary LIKE ?", like, like)
	}
	if filters.StartDate != "" {
		query = query.Where("fdb_date >= ?", filters.StartDate)
	}
	if filters.EndDate != "" {
		query = query.Where("fdb_date <= ?", filters.EndDate)
	}
	return query
}

func (r *ReviewRepository) UpdateResolution(rowID int64, status string) error {
	result := r.db.Model(&model.Review{}).
		Where("row_id = ?", rowID).
		Update("resolution_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// 可被批量处理选中的行：待处理或未设置状态，且文本非空
var claimableStatuses = []string{model.StatusUnset, model.StatusPending}

// ClaimBatch 原子认领一批待处理行并置为 processing
// 条件更新保证同一行不会被两个批次认领；调用方负责串行化同进程内的并发认领
func (r *ReviewRepository) ClaimBatch(size int) ([]*model.Review, error) {
	var claimed []*model.Review
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var rows []*model.Review
		if err := tx.Where("processing_status IN ? AND review_text <> ''", claimableStatuses).
			Order("row_id ASC").
			Limit(size).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.RowID)
		}
		result := tx.Model(&model.Review{}).
			Where("row_id IN ? AND processing_status IN ?", ids, claimableStatuses).
			Update("processing_status", model.StatusProcessing)
		if result.Error != nil {
			return result.Error
		}

		for _, row := range rows {
			row.ProcessingStatus = model.StatusProcessing
		}
		claimed = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// MarkCompleted 单条 UPDATE 写入状态和全部分类字段
func (r *ReviewRepository) MarkCompleted(rowID int64, sentiment string, topicID int64, priority string, priorityScore int, summary string) error {
	return r.db.Model(&model.Review{}).
		Where("row_id = ?", rowID).
		Updates(map[string]interface{}{
			"processing_status": model.StatusCompleted,
			"sentiment":         sentiment,
			"topic_id":          topicID,
			"priority":          priority,
			"priority_score":    priorityScore,
			"summary":           summary,
		}).Error
}

// MarkFailed 仅更新状态，分类字段保持为空
func (r *ReviewRepository) MarkFailed(rowID int64) error {
	return r.db.Model(&model.Review{}).
		Where("row_id = ?", rowID).
		Update("processing_status", model.StatusFailed).Error
}

// CountPending 待处理行数估算（运行开始前采样一次）
func (r *ReviewRepository) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&model.Review{}).
		Where("processing_status IN ? AND review_text <> ''", claimableStatuses).
		Count(&count).Error
	return count, err
}

// ResetFailed 把失败行重置回 pending，返回重置数量
func (r *ReviewRepository) ResetFailed() (int64, error) {
	result := r.db.Model(&model.Review{}).
		Where("processing_status = ?", model.StatusFailed).
		Update("processing_status", model.StatusPending)
	return result.RowsAffected, result.Error
}

// SweepStaleProcessing 把卡在 processing 超过给定时长的行重置回 pending
// 批次崩溃后由定时任务兜底回收
func (r *ReviewRepository) SweepStaleProcessing(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := r.db.Model(&model.Review{}).
		Where("processing_status = ? AND updated_at < ?", model.StatusProcessing, cutoff).
		Update("processing_status", model.StatusPending)
	return result.RowsAffected, result.Error
}

// ---- 聚合查询（仪表盘） ----

func (r *ReviewRepository) CountTotal() (int64, error) {
	var count int64
	err := r.db.Model(&model.Review{}).Count(&count).Error
	return count, err
}

func (r *ReviewRepository) CountHighPriority() (int64, error) {
	var count int64
	err := r.db.Model(&model.Review{}).
		Where("priority = ? AND resolution_status <> ?", "high", model.ResolutionResolved).
		Count(&count).Error
	return count, err
}

func (r *ReviewRepository) AvgPriorityScore() (float64, error) {
	var avg *float64
	err := r.db.Model(&model.Review{}).
		Where("processing_status = ?", model.StatusCompleted).
		Select("AVG(priority_score)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// SentimentDistribution 三类情感计数
func (r *ReviewRepository) SentimentDistribution() (*dto.SentimentDistribution, error) {
	type row struct {
		Sentiment string
		Count     int64
	}
	var rows []row
	err := r.db.Model(&model.Review{}).
		Select("sentiment, COUNT(*) AS count").
		Where("sentiment <> ''").
		Group("sentiment").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	dist := &dto.SentimentDistribution{}
	for _, item := range rows {
		switch item.Sentiment {
		case "positive":
			dist.Positive = item.Count
		case "neutral":
			dist.Neutral = item.Count
		case "negative":
			dist.Negative = item.Count
		}
	}
	return dist, nil
}

// MostMentionedTopic 提及次数最多的主题名
func (r *ReviewRepository) MostMentionedTopic() (string, error) {
	var name string
	err := r.db.Model(&model.Review{}).
		Select("topics.name").
		Joins("JOIN topics ON topics.id = reviews.topic_id").
		Group("topics.name").
		Order("COUNT(*) DESC").
		Limit(1).
		Scan(&name).Error
	return name, err
}

// TopicAnalytics 主题维度聚合，按提及量降序
func (r *ReviewRepository) TopicAnalytics() ([]*dto.TopicAnalytics, error) {
	type row struct {
		ID          int64
		Name        string
		Volume      int64
		Positive    int64
		Neutral     int64
		Negative    int64
		AvgPriority float64
	}
	var rows []row
	err := r.db.Model(&model.Topic{}).
		Select(`topics.id, topics.name,
			COUNT(reviews.row_id) AS volume,
			SUM(CASE WHEN reviews.sentiment = 'positive' THEN 1 ELSE 0 END) AS positive,
			SUM(CASE WHEN reviews.sentiment = 'neutral' THEN 1 ELSE 0 END) AS neutral,
			SUM(CASE WHEN reviews.sentiment = 'negative' THEN 1 ELSE 0 END) AS negative,
			COALESCE(AVG(reviews.priority_score), 0) AS avg_priority`).
		Joins("LEFT JOIN reviews ON reviews.topic_id = topics.id").
		Where("topics.is_active = ?", true).
		Group("topics.id, topics.name").
		Order("volume DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	analytics := make([]*dto.TopicAnalytics, 0, len(rows))
	for _, item := range rows {
		analytics = append(analytics, &dto.TopicAnalytics{
			ID:           item.ID,
			Name:         item.Name,
			Volume:       item.Volume,
			AvgSentiment: sentimentScore(item.Positive, item.Negative, item.Volume),
			AvgPriority:  item.AvgPriority,
			SentimentDistribution: dto.SentimentDistribution{
				Positive: item.Positive,
				Neutral:  item.Neutral,
				Negative: item.Negative,
			},
		})
	}
	return analytics, nil
}

// RegionSentiments 按州聚合情感，情感分升序（最差的州在前）
func (r *ReviewRepository) RegionSentiments() ([]*dto.RegionSentiment, error) {
	type row struct {
		State    string
		Positive int64
		Negative int64
		Total    int64
	}
	var rows []row
	err := r.db.Model(&model.Review{}).
		Select(`state,
			SUM(CASE WHEN sentiment = 'positive' THEN 1 ELSE 0 END) AS positive,
			SUM(CASE WHEN sentiment = 'negative' THEN 1 ELSE 0 END) AS negative,
			COUNT(*) AS total`).
		Where("state <> '' AND sentiment <> ''").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	regions := make([]*dto.RegionSentiment, 0, len(rows))
	for _, item := range rows {
		regions = append(regions, &dto.RegionSentiment{
			State:         item.State,
			Sentiment:     sentimentScore(item.Positive, item.Negative, item.Total),
			PositiveCount: item.Positive,
			NegativeCount: item.Negative,
			TotalCount:    item.Total,
		})
	}
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Sentiment < regions[j].Sentiment
	})
	return regions, nil
}

// TopicRegionCounts 某主题下按州聚合，提及最多的州在前
func (r *ReviewRepository) TopicRegionCounts(topicID int64) ([]*dto.RegionSentiment, error) {
	type row struct {
		State    string
		Positive int64
		Negative int64
		Total    int64
	}
	var rows []row
	err := r.db.Model(&model.Review{}).
		Select(`state,
			SUM(CASE WHEN sentiment = 'positive' THEN 1 ELSE 0 END) AS positive,
			SUM(CASE WHEN sentiment = 'negative' THEN 1 ELSE 0 END) AS negative,
			COUNT(*) AS total`).
		Where("topic_id = ? AND state <> ''", topicID).
		Group("state").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	regions := make([]*dto.RegionSentiment, 0, len(rows))
	for _, item := range rows {
		regions = append(regions, &dto.RegionSentiment{
			State:         item.State,
			Sentiment:     sentimentScore(item.Positive, item.Negative, item.Total),
			PositiveCount: item.Positive,
			NegativeCount: item.Negative,
			TotalCount:    item.Total,
		})
	}
	return regions, nil
}

// SentimentTrend 最近 N 天的按日情感分
func (r *ReviewRepository) SentimentTrend(days int) ([]*dto.SentimentTrendPoint, error) {
	type row struct {
		Day      string
		Positive int64
		Negative int64
		Total    int64
	}
	since := time.Now().AddDate(0, 0, -days)
	var rows []row
	err := r.db.Model(&model.Review{}).
		Select(`DATE(fdb_date) AS day,
			SUM(CASE WHEN sentiment = 'positive' THEN 1 ELSE 0 END) AS positive,
			SUM(CASE WHEN sentiment = 'negative' THEN 1 ELSE 0 END) AS negative,
			COUNT(*) AS total`).
		Where("sentiment <> '' AND fdb_date >= ?", since).
		Group("DATE(fdb_date)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	points := make([]*dto.SentimentTrendPoint, 0, len(rows))
	for _, item := range rows {
		points = append(points, &dto.SentimentTrendPoint{
			Date:      item.Day,
			Sentiment: sentimentScore(item.Positive, item.Negative, item.Total),
		})
	}
	return points, nil
}

// CountNegativeSince 给定时间后的负面评价数（告警扫描用）
func (r *ReviewRepository) CountNegativeSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Review{}).
		Where("sentiment = ? AND created_at >= ?", "negative", since).
		Count(&count).Error
	return count, err
}

// CountClassifiedSince 给定时间后已分类的评价总数
func (r *ReviewRepository) CountClassifiedSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Review{}).
		Where("sentiment <> '' AND created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// HighPriorityUnresolvedSince 给定时间后新增的高优先级未解决评价
func (r *ReviewRepository) HighPriorityUnresolvedSince(since time.Time, limit int) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.Preload("Topic").
		Where("priority = ? AND resolution_status = ? AND created_at >= ?",
			"high", model.ResolutionUnresolved, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

// sentimentScore 把正负占比折算成 -100 到 100 的整数分
func sentimentScore(positive, negative, total int64) int {
	if total == 0 {
		return 0
	}
	return int((positive - negative) * 100 / total)
}
