package utils

import (
	"strconv"
	"strings"
)

// ParseIntDefault returns def when s is empty, otherwise the parsed value.
// ok is false when s is present but not an integer.
func ParseIntDefault(s string, def int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def, false
	}
	return n, true
}
