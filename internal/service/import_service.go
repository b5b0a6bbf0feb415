package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/revpulse/feedback_go_server/config"
	"github.com/revpulse/feedback_go_server/internal/model"
	"github.com/revpulse/feedback_go_server/internal/model/dto"
	"github.com/revpulse/feedback_go_server/internal/pkg/oss"
	"github.com/revpulse/feedback_go_server/internal/repository"
)

var (
	ErrImportTooLarge  = errors.New("导入文件超过大小限制")
	ErrImportEmpty     = errors.New("导入文件没有有效数据行")
	ErrImportBadHeader = errors.New("导入文件缺少 review_text 列")
)

// ImportService CSV 批量导入：解析行、落库 pending、归档原始文件
type ImportService struct {
	reviewRepo *repository.ReviewRepository
	importRepo *repository.ImportRepository
	ossClient  *oss.Client
	cfg        *config.ImportConfig
}

func NewImportService(reviewRepo *repository.ReviewRepository, importRepo *repository.ImportRepository, ossClient *oss.Client, cfg *config.ImportConfig) *ImportService {
	return &ImportService{
		reviewRepo: reviewRepo,
		importRepo: importRepo,
		ossClient:  ossClient,
		cfg:        cfg,
	}
}

// ImportCSV 首行为表头，review_text 列必填，空文本行跳过
// 识别的列：source, review_text, fdb_date, state, region
func (s *ImportService) ImportCSV(userID int64, fileName string, data []byte) (*dto.ImportResponse, error) {
	if s.cfg.MaxSize > 0 && int64(len(data)) > s.cfg.MaxSize {
		return nil, ErrImportTooLarge
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, ErrImportEmpty
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	col := func(name string) int {
		if i, ok := cols[name]; ok {
			return i
		}
		return -1
	}
	textCol := col("review_text")
	if textCol < 0 {
		return nil, ErrImportBadHeader
	}

	var reviews []*model.Review
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		text := strings.TrimSpace(field(record, textCol))
		if text == "" {
			skipped++
			continue
		}

		fdbDate := time.Now()
		if raw := field(record, col("fdb_date")); raw != "" {
			if t, err := time.Parse("2006-01-02", raw); err == nil {
				fdbDate = t
			} else if t, err := time.Parse(time.RFC3339, raw); err == nil {
				fdbDate = t
			}
		}

		reviews = append(reviews, &model.Review{
			Source:           field(record, col("source")),
			ReviewText:       text,
			FdbDate:          fdbDate,
			State:            field(record, col("state")),
			Region:           field(record, col("region")),
			ProcessingStatus: model.StatusPending,
			ResolutionStatus: model.ResolutionUnresolved,
		})
	}
	if len(reviews) == 0 {
		return nil, ErrImportEmpty
	}

	if err := s.reviewRepo.CreateInBatches(reviews, 500); err != nil {
		return nil, fmt.Errorf("insert imported rows: %w", err)
	}

	importID := uuid.New().String()
	archiveURL := ""
	if s.ossClient != nil {
		url, err := s.ossClient.UploadImportArchive(importID, data)
		if err != nil {
			// 归档失败不回滚导入
			log.Printf("Failed to archive import %s: %v", importID, err)
		} else {
			archiveURL = url
		}
	}

	job := &model.ImportJob{
		ImportID:   importID,
		UserID:     userID,
		FileName:   fileName,
		RowCount:   len(reviews),
		ArchiveURL: archiveURL,
		Status:     "completed",
	}
	if err := s.importRepo.Create(job); err != nil {
		return nil, err
	}

	return &dto.ImportResponse{
		ImportID:   importID,
		FileName:   fileName,
		RowCount:   len(reviews),
		Skipped:    skipped,
		ArchiveURL: archiveURL,
	}, nil
}

// History 当前用户的导入记录
func (s *ImportService) History(userID int64) ([]*model.ImportJob, error) {
	return s.importRepo.ListByUser(userID, 20)
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
