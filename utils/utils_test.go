package utils

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimStrings(t *testing.T) {
	note := "  keep  "
	dto := struct {
		Name  string
		Rate  float64
		Note  *string
		Empty *string
	}{Name: "  Acme ", Rate: 1.005, Note: &note}

	TrimStrings(&dto)
	assert.Equal(t, "Acme", dto.Name)
	assert.Equal(t, 1.005, dto.Rate)
	assert.Equal(t, "keep", *dto.Note)
	assert.Nil(t, dto.Empty)

	// non-pointers are ignored
	TrimStrings(dto)
}

func TestParseIntDefault(t *testing.T) {
	n, ok := ParseIntDefault("", 20)
	assert.True(t, ok)
	assert.Equal(t, 20, n)

	n, ok = ParseIntDefault(" 7 ", 20)
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = ParseIntDefault("seven", 20)
	assert.False(t, ok)
}

func TestNewValidatorReportsJSONNames(t *testing.T) {
	type req struct {
		AccessCode string `json:"accessCode" validate:"required"`
		Internal   string `json:"-" validate:"required"`
	}
	err := NewValidator().Struct(req{})
	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve)
	var names []string
	for _, fe := range ve {
		names = append(names, fe.Field())
	}
	assert.ElementsMatch(t, []string{"accessCode", "Internal"}, names)
}
