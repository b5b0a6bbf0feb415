package dto

// StartRunRequest 启动批量处理
type StartRunRequest struct {
	Concurrency int `json:"concurrency"`
	BatchSize   int `json:"batch_size"`
}

// StartRunResponse 返回本次运行的标识和起始估算
type StartRunResponse struct {
	RunID        string `json:"run_id"`
	Concurrency  int    `json:"concurrency"`
	BatchSize    int    `json:"batch_size"`
	PendingCount int64  `json:"pending_count"`
}

// RunStatusResponse 运行状态快照
type RunStatusResponse struct {
	Running        bool     `json:"running"`
	RunID          string   `json:"run_id,omitempty"`
	TotalSucceeded int64    `json:"total_succeeded"`
	TotalFailed    int64    `json:"total_failed"`
	PendingCount   int64    `json:"pending_count"`
	Progress       float64  `json:"progress"`
	BatchNumber    int      `json:"batch_number"`
	Exhausted      bool     `json:"exhausted"`
	StartedAt      string   `json:"started_at,omitempty"`
	Logs           []string `json:"logs"`
}

// PendingCountResponse 待处理数量估算
type PendingCountResponse struct {
	PendingCount int64 `json:"pending_count"`
}

// ResetFailedResponse 失败行重置结果
type ResetFailedResponse struct {
	ResetCount int64 `json:"reset_count"`
}

// ImportResponse CSV 导入结果
type ImportResponse struct {
	ImportID   string `json:"import_id"`
	FileName   string `json:"file_name"`
	RowCount   int    `json:"row_count"`
	Skipped    int    `json:"skipped"`
	ArchiveURL string `json:"archive_url,omitempty"`
}
