package billing

import (
	"errors"
	"math"
	"strings"

	"freight-billing-backend/utils"

	"github.com/go-playground/validator/v10"
)

// InvoiceDraft is the caller-supplied part of an invoice.
type InvoiceDraft struct {
	CompanyName    string  `json:"companyName" validate:"required"`
	CompanyPhone   string  `json:"companyPhone"`
	CompanyAddress string  `json:"companyAddress"`
	CompanyGst     string  `json:"companyGst"`
	RatePerTon     float64 `json:"ratePerTon" validate:"gte=0"`
	Trucks         int     `json:"trucks" validate:"gte=1"`
	Notes          string  `json:"notes"`
}

var validate = utils.NewValidator()

// Normalize trims surrounding whitespace from every text field.
func (d *InvoiceDraft) Normalize() {
	d.CompanyName = strings.TrimSpace(d.CompanyName)
	d.CompanyPhone = strings.TrimSpace(d.CompanyPhone)
	d.CompanyAddress = strings.TrimSpace(d.CompanyAddress)
	d.CompanyGst = strings.TrimSpace(d.CompanyGst)
	d.Notes = strings.TrimSpace(d.Notes)
}

// Validate reports all violated fields at once as a *ValidationError.
func (d InvoiceDraft) Validate() error {
	fields := map[string]string{}

	if err := validate.Struct(d); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
	}
	if math.IsInf(d.RatePerTon, 0) {
		fields["ratePerTon"] = "finite"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
