package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"freight-billing-backend/billing"
	"freight-billing-backend/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Page is one slice of the invoice list, most recent first.
type Page struct {
	Data  []models.Invoice `json:"data"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int64            `json:"total"`
}

// InvoiceStore persists invoices with gorm. It is safe for concurrent use.
type InvoiceStore struct {
	db     *gorm.DB
	mu     sync.Mutex // serializes creates inside this process
	now    func() time.Time
	loc    *time.Location
	prefix string
	log    zerolog.Logger
}

type Option func(*InvoiceStore)

// WithClock replaces time.Now as the source of createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *InvoiceStore) { s.now = now }
}

// WithLocation sets the reference time zone for day buckets.
func WithLocation(loc *time.Location) Option {
	return func(s *InvoiceStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithNumberPrefix(prefix string) Option {
	return func(s *InvoiceStore) { s.prefix = prefix }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *InvoiceStore) { s.log = log }
}

func New(db *gorm.DB, opts ...Option) *InvoiceStore {
	s := &InvoiceStore{
		db:     db,
		now:    time.Now,
		loc:    time.UTC,
		prefix: billing.DefaultNumberPrefix,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location is the reference time zone used by ListByDay.
func (s *InvoiceStore) Location() *time.Location {
	return s.loc
}

// Create validates the draft and persists a new invoice. Number allocation,
// createdAt stamping and the insert share one transaction: either the whole
// invoice is committed or nothing is.
func (s *InvoiceStore) Create(ctx context.Context, draft billing.InvoiceDraft) (*models.Invoice, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	total, err := billing.ComputeTotal(draft.RatePerTon, draft.Trucks)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var inv models.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSequence(tx, billing.InvoiceSequenceName)
		if err != nil {
			return err
		}

		// createdAt never goes backwards relative to the previous invoice
		createdAt := s.now().UTC().Truncate(time.Microsecond)
		var latest models.Invoice
		res := tx.Select("created_at").Order("seq DESC").Limit(1).Find(&latest)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 && latest.CreatedAt.After(createdAt) {
			createdAt = latest.CreatedAt.UTC()
		}

		inv = models.Invoice{
			ID:             uuid.NewString(),
			Seq:            seq,
			InvoiceNumber:  billing.FormatInvoiceNumber(s.prefix, seq),
			CompanyName:    draft.CompanyName,
			CompanyPhone:   draft.CompanyPhone,
			CompanyAddress: draft.CompanyAddress,
			CompanyGst:     draft.CompanyGst,
			RatePerTon:     draft.RatePerTon,
			Trucks:         draft.Trucks,
			Notes:          draft.Notes,
			Total:          total,
			CreatedAt:      createdAt,
		}
		return tx.Create(&inv).Error
	})
	if err != nil {
		return nil, s.storageErr("create", err)
	}

	s.log.Debug().Str("invoice_id", inv.ID).Str("invoice_number", inv.InvoiceNumber).Msg("invoice created")
	return &inv, nil
}

// nextSequence increments the named counter and returns the new value. The
// UPDATE holds the row lock until the surrounding transaction ends.
func nextSequence(tx *gorm.DB, name string) (int64, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.InvoiceSequence{Name: name}).Error; err != nil {
		return 0, fmt.Errorf("ensure sequence %s: %w", name, err)
	}
	if err := tx.Model(&models.InvoiceSequence{}).
		Where("name = ?", name).
		Update("last_value", gorm.Expr("last_value + ?", 1)).Error; err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w", name, err)
	}
	var seq models.InvoiceSequence
	if err := tx.Where("name = ?", name).Take(&seq).Error; err != nil {
		return 0, fmt.Errorf("read sequence %s: %w", name, err)
	}
	return seq.LastValue, nil
}

// ListPage returns invoices ordered by createdAt descending. A page past the
// end yields empty Data with the same Total.
func (s *InvoiceStore) ListPage(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 || limit < 1 {
		return nil, fmt.Errorf("%w: page and limit must be >= 1", billing.ErrInvalidInput)
	}

	out := &Page{Data: []models.Invoice{}, Page: page, Limit: limit}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Invoice{}).Count(&out.Total).Error; err != nil {
			return err
		}
		pages := (out.Total + int64(limit) - 1) / int64(limit)
		if int64(page-1) >= pages {
			return nil
		}
		return tx.Order("created_at DESC").Order("seq DESC").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&out.Data).Error
	}, s.readOptions()...)
	if err != nil {
		return nil, s.storageErr("list page", err)
	}
	if out.Data == nil {
		out.Data = []models.Invoice{}
	}
	return out, nil
}

// ListByDay returns the invoices created on day's calendar date in the
// reference time zone, oldest first.
func (s *InvoiceStore) ListByDay(ctx context.Context, day time.Time) ([]models.Invoice, error) {
	start, end := billing.DayRange(day, s.loc)

	invoices := []models.Invoice{}
	err := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").Order("seq ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, s.storageErr("list by day", err)
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	return invoices, nil
}

// GetByID returns billing.ErrNotFound for unknown ids.
func (s *InvoiceStore) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, billing.ErrNotFound
	}
	var inv models.Invoice
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrNotFound
		}
		return nil, s.storageErr("get", err)
	}
	return &inv, nil
}

func (s *InvoiceStore) readOptions() []*sql.TxOptions {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
}

// storageErr keeps context errors as they are and turns everything else into
// a retryable ErrStorageUnavailable.
func (s *InvoiceStore) storageErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return billing.Wrap(op, err)
	}
	s.log.Error().Err(err).Str("op", op).Msg("storage failure")
	return billing.Wrap(op, fmt.Errorf("%w: %v", billing.ErrStorageUnavailable, err))
}
