package models

import "time"

// InvoiceSequence is a named counter. LastValue is the most recently allocated value.
type InvoiceSequence struct {
	Name      string    `json:"name" gorm:"primaryKey;size:64"`
	LastValue int64     `json:"last_value" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}
