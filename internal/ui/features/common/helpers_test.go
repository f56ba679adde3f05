package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"nil", nil, "NULL"},
		{"string", "hello", "hello"},
		{"int", 42, "42"},
		{"int64", int64(100), "100"},
		{"float", 3.14, "3.14"},
		{"float trailing zeros", 1509.0, "1509"},
		{"bytes", []byte("world"), "world"},
		{"bool", true, "true"},
		{"date", time.Date(2011, 5, 31, 0, 0, 0, 0, time.UTC), "2011-05-31"},
		{"timestamp", time.Date(2011, 5, 31, 8, 30, 0, 0, time.UTC), "2011-05-31 08:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatValue(tt.input))
		})
	}
}
