package billing

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotal(t *testing.T) {
	cases := []struct {
		rate   float64
		trucks int
	}{
		{0, 1},
		{1500, 3},
		{1000, 1},
		{0.1, 3},
		{1234.567, 17},
	}
	for _, tc := range cases {
		got, err := ComputeTotal(tc.rate, tc.trucks)
		require.NoError(t, err)
		assert.Equal(t, tc.rate*float64(tc.trucks), got)
	}

	got, err := ComputeTotal(1500, 3)
	require.NoError(t, err)
	assert.Equal(t, 4500.0, got)
}

func TestComputeTotalRejectsInvalidInput(t *testing.T) {
	for _, tc := range []struct {
		rate   float64
		trucks int
	}{
		{-1, 1},
		{100, 0},
		{100, -2},
		{math.NaN(), 1},
		{math.Inf(1), 1},
	} {
		_, err := ComputeTotal(tc.rate, tc.trucks)
		assert.True(t, errors.Is(err, ErrInvalidInput), "rate=%v trucks=%d", tc.rate, tc.trucks)
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-000001", FormatInvoiceNumber("", 1))
	assert.Equal(t, "TRK-000042", FormatInvoiceNumber(" trk ", 42))
	assert.Equal(t, "INV-1234567", FormatInvoiceNumber("INV", 1234567))
	assert.Less(t, FormatInvoiceNumber("INV", 9), FormatInvoiceNumber("INV", 10))
}

func TestDraftValidate(t *testing.T) {
	d := InvoiceDraft{CompanyName: "  Acme  ", RatePerTon: 1500, Trucks: 3}
	d.Normalize()
	assert.Equal(t, "Acme", d.CompanyName)
	require.NoError(t, d.Validate())

	bad := InvoiceDraft{CompanyName: "   ", RatePerTon: -5, Trucks: 0}
	bad.Normalize()
	err := bad.Validate()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"companyName", "ratePerTon", "trucks"}, ve.FieldNames())
	assert.Equal(t, "validation failed: companyName, ratePerTon, trucks", ve.Error())
}

func TestDraftValidateRejectsInfiniteRate(t *testing.T) {
	err := InvoiceDraft{CompanyName: "Acme", RatePerTon: math.Inf(1), Trucks: 1}.Validate()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "finite", ve.Fields["ratePerTon"])
}

func TestDayRange(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	day, err := ParseDay("2026-03-10", ist)
	require.NoError(t, err)

	start, end := DayRange(day, ist)
	assert.Equal(t, time.Date(2026, 3, 9, 18, 30, 0, 0, time.UTC), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	// an instant late in the UTC day already belongs to the next IST date
	s2, _ := DayRange(time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC), ist)
	assert.Equal(t, end, s2)

	_, err = ParseDay("10/03/2026", ist)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestOpErrorUnwrap(t *testing.T) {
	err := Wrap("create", ErrStorageUnavailable)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
	assert.Equal(t, "billing: create: storage unavailable", err.Error())
	assert.Nil(t, Wrap("noop", nil))
}
