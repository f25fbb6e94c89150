package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice is one billed delivery. Rows are written once and never updated.
type Invoice struct {
	ID             string    `json:"_id" gorm:"primaryKey;size:36"`
	Seq            int64     `json:"-" gorm:"not null;uniqueIndex"`
	InvoiceNumber  string    `json:"invoiceNumber" gorm:"size:32;not null;uniqueIndex"`
	CompanyName    string    `json:"companyName" gorm:"not null"`
	CompanyPhone   string    `json:"companyPhone"`
	CompanyAddress string    `json:"companyAddress"`
	CompanyGst     string    `json:"companyGst"`
	RatePerTon     float64   `json:"ratePerTon" gorm:"not null"`
	Trucks         int       `json:"trucks" gorm:"not null"`
	Notes          string    `json:"notes"`
	Total          float64   `json:"total" gorm:"not null"`
	CreatedAt      time.Time `json:"createdAt" gorm:"not null;index"`
}

func (invoice *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	return
}
