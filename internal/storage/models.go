package storage

import "time"

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one pipeline execution. Price data itself is never stored.
type Run struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	RunID   string `gorm:"uniqueIndex;not null" json:"run_id"`
	Company string `gorm:"index;not null" json:"company"`
	Code    string `json:"code"`

	Records      int    `json:"records"`
	LastDate     string `json:"last_date"` // YYYY-MM-DD
	LastClose    int64  `json:"last_close"`
	Presentation string `json:"presentation"`
	Workbook     string `json:"workbook"`
	Commentary   string `gorm:"type:text" json:"commentary"`

	Accepted int    `json:"accepted"`
	Refused  string `gorm:"type:text" json:"refused"`

	Status      string `gorm:"not null;default:'ok'" json:"status"`
	FailedStage string `json:"failed_stage"`
	Error       string `gorm:"type:text" json:"error"`
	DurationMs  int64  `json:"duration_ms"`
}
