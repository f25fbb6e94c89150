package billing

import (
	"fmt"
	"strings"
)

const (
	DefaultNumberPrefix = "INV"
	// InvoiceSequenceName is the counter row used to allocate invoice numbers.
	InvoiceSequenceName = "invoice"
)

// FormatInvoiceNumber renders a sequence value as PREFIX-000042.
// Numbers sort in creation order as long as the sequence stays below one million.
func FormatInvoiceNumber(prefix string, seq int64) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	return fmt.Sprintf("%s-%06d", strings.ToUpper(prefix), seq)
}
