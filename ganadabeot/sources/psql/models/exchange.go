// ganadabeot/sources/psql/models/exchange.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Exchange is one assistant round trip. Prompt and reply text are not
// stored, only their sizes.
type Exchange struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID   string    `json:"session_id" gorm:"type:varchar(64);not null;index"`
	Mode        string    `json:"mode" gorm:"type:varchar(32);not null"`
	AssistantID string    `json:"assistant_id" gorm:"type:varchar(128)"`
	ThreadID    string    `json:"thread_id" gorm:"type:varchar(128)"`
	RunID       string    `json:"run_id" gorm:"type:varchar(128)"`
	Status      string    `json:"status" gorm:"type:varchar(32)"`
	Outcome     string    `json:"outcome" gorm:"type:varchar(32);not null"`
	PromptChars int       `json:"prompt_chars"`
	ReplyChars  int       `json:"reply_chars"`
	Polls       int       `json:"polls"`
	DurationMS  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (Exchange) TableName() string {
	return "exchanges"
}

func (e *Exchange) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
