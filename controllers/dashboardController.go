package controllers

import (
	"context"
	"time"

	"freight-billing-backend/billing"
	"freight-billing-backend/reports"

	"github.com/gofiber/fiber/v2"
)

type Summarizer interface {
	SummarizeAll(ctx context.Context) (reports.Summary, error)
	SummarizeDay(ctx context.Context, day time.Time) (reports.DailyReport, error)
}

type DashboardController struct {
	Reports  Summarizer
	Location *time.Location
	Now      func() time.Time
}

func (dc *DashboardController) GetSummary(c *fiber.Ctx) error {
	summary, err := dc.Reports.SummarizeAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// GetDaily reports one day; ?date=YYYY-MM-DD, default today in the billing zone.
func (dc *DashboardController) GetDaily(c *fiber.Ctx) error {
	loc := dc.Location
	if loc == nil {
		loc = time.UTC
	}

	var day time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := billing.ParseDay(raw, loc)
		if err != nil {
			return err
		}
		day = parsed
	} else {
		now := time.Now
		if dc.Now != nil {
			now = dc.Now
		}
		day = now().In(loc)
	}

	report, err := dc.Reports.SummarizeDay(c.UserContext(), day)
	if err != nil {
		return err
	}
	return c.JSON(report)
}
