package models

import (
	"time"

	"gorm.io/datatypes"
)

// IdempotencyKey stores the first successful response for a given request hash.
type IdempotencyKey struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Key            string         `json:"key" gorm:"size:128;uniqueIndex"` // header value
	RequestHash    string         `json:"request_hash" gorm:"size:64"`     // sha256 of method|path|body|principal
	Method         string         `json:"method" gorm:"size:10"`
	Path           string         `json:"path" gorm:"size:255"`
	Principal      string         `json:"principal" gorm:"size:128"`
	ResponseStatus int            `json:"response_status"` // 0 => not completed yet
	ResponseBody   datatypes.JSON `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at"`
}
