package reports

import (
	"context"
	"time"

	"freight-billing-backend/billing"
	"freight-billing-backend/models"
	"freight-billing-backend/store"
)

// pageSize is the batch size used when walking the whole store.
const pageSize = 500

// Summary aggregates a set of invoices.
type Summary struct {
	Invoices      int64   `json:"invoices"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalTrucks   int64   `json:"totalTrucks"`
	AvgRatePerTon float64 `json:"avgRatePerTon"`
}

// DailyReport is the summary of one calendar day plus the invoices behind it.
type DailyReport struct {
	Date     string           `json:"date"`
	Totals   Summary          `json:"totals"`
	Invoices []models.Invoice `json:"invoices"`
}

// Source is the read side of the invoice store.
type Source interface {
	ListPage(ctx context.Context, page, limit int) (*store.Page, error)
	ListByDay(ctx context.Context, day time.Time) ([]models.Invoice, error)
}

// Fold sums invoices into a Summary. The average is revenue per truck and
// zero when there are no trucks.
func Fold(invoices []models.Invoice) Summary {
	var s Summary
	for _, inv := range invoices {
		s.add(inv)
	}
	s.finish()
	return s
}

func (s *Summary) add(inv models.Invoice) {
	s.Invoices++
	s.TotalRevenue += inv.Total
	s.TotalTrucks += int64(inv.Trucks)
}

func (s *Summary) finish() {
	if s.TotalTrucks > 0 {
		s.AvgRatePerTon = s.TotalRevenue / float64(s.TotalTrucks)
	} else {
		s.AvgRatePerTon = 0
	}
}

type Engine struct {
	src      Source
	loc      *time.Location
	pageSize int
}

// NewEngine builds an engine over src. Day strings are rendered in loc.
func NewEngine(src Source, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{src: src, loc: loc, pageSize: pageSize}
}

// SummarizeAll folds every stored invoice. Records are keyed by id while
// paging, so a row pushed onto the next page by a concurrent insert is
// counted once.
func (e *Engine) SummarizeAll(ctx context.Context) (Summary, error) {
	var s Summary
	seen := make(map[string]struct{})
	for page := 1; ; page++ {
		p, err := e.src.ListPage(ctx, page, e.pageSize)
		if err != nil {
			return Summary{}, err
		}
		for _, inv := range p.Data {
			if _, dup := seen[inv.ID]; dup {
				continue
			}
			seen[inv.ID] = struct{}{}
			s.add(inv)
		}
		if len(p.Data) < e.pageSize {
			break
		}
	}
	s.finish()
	return s, nil
}

// SummarizeDay folds the invoices created on day in the engine's time zone.
func (e *Engine) SummarizeDay(ctx context.Context, day time.Time) (DailyReport, error) {
	invoices, err := e.src.ListByDay(ctx, day)
	if err != nil {
		return DailyReport{}, err
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	return DailyReport{
		Date:     day.In(e.loc).Format(billing.DayLayout),
		Totals:   Fold(invoices),
		Invoices: invoices,
	}, nil
}
