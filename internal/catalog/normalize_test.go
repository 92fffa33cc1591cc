package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
		ok       bool
	}{
		{
			name:     "dollar with thousands separator",
			raw:      "$1,299.00",
			expected: 1299.00,
			ok:       true,
		},
		{
			name:     "plain dollar price",
			raw:      "$19.99",
			expected: 19.99,
			ok:       true,
		},
		{
			name:     "whole number without symbol",
			raw:      "45",
			expected: 45,
			ok:       true,
		},
		{
			name:     "pound price",
			raw:      "£9.50",
			expected: 9.50,
			ok:       true,
		},
		{
			name:     "surrounding text",
			raw:      "from $24.95 per unit",
			expected: 24.95,
			ok:       true,
		},
		{
			name: "no digits",
			raw:  "Currently unavailable",
			ok:   false,
		},
		{
			name: "empty string",
			raw:  "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, ok := parseMoney(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, val, 0.001)
			}
		})
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
		ok       bool
	}{
		{
			name:     "standard star caption",
			raw:      "4.5 out of 5 stars",
			expected: 4.5,
			ok:       true,
		},
		{
			name:     "whole star caption",
			raw:      "5 out of 5 stars",
			expected: 5,
			ok:       true,
		},
		{
			name:     "bare number",
			raw:      "3.8",
			expected: 3.8,
			ok:       true,
		},
		{
			name: "condition badge instead of rating",
			raw:  "New",
			ok:   false,
		},
		{
			name: "empty string",
			raw:  "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, ok := parseRating(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, val, 0.001)
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
		ok       bool
	}{
		{
			name:     "comma grouped",
			raw:      "1,234",
			expected: 1234,
			ok:       true,
		},
		{
			name:     "with trailing label",
			raw:      "52,481 ratings",
			expected: 52481,
			ok:       true,
		},
		{
			name:     "plain number",
			raw:      "87",
			expected: 87,
			ok:       true,
		},
		{
			name: "no digits",
			raw:  "no reviews yet",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, ok := parseCount(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, val)
			}
		})
	}
}
