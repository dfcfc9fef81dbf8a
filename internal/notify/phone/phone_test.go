// internal/notify/phone/phone_test.go
package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer("27")

	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "national format with trunk zero",
			raw:      "0821234567",
			expected: "+27821234567",
		},
		{
			name:     "national format with separators",
			raw:      "082 123-4567",
			expected: "+27821234567",
		},
		{
			name:     "parentheses and dots",
			raw:      "(082) 123.4567",
			expected: "+27821234567",
		},
		{
			name:     "already international",
			raw:      "+27821234567",
			expected: "+27821234567",
		},
		{
			name:     "international with spaces",
			raw:      "+27 82 123 4567",
			expected: "+27821234567",
		},
		{
			name:     "nine digits without trunk prefix",
			raw:      "821234567",
			expected: "+27821234567",
		},
		{
			name:     "unrecognized length gets plus prefix",
			raw:      "12345",
			expected: "+12345",
		},
		{
			name:     "eleven digits left as-is with plus",
			raw:      "27821234567",
			expected: "+27821234567",
		},
		{
			name:     "empty input",
			raw:      "",
			expected: "+",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.raw))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := NewNormalizer("27")

	inputs := []string{
		"0821234567",
		"821234567",
		"+27821234567",
		"082 123 4567",
		"12345",
	}

	for _, raw := range inputs {
		once := n.Normalize(raw)
		assert.Equal(t, once, n.Normalize(once), "normalize must be idempotent for %q", raw)
	}
}

func TestNormalize_DefaultCountryCode(t *testing.T) {
	n := NewNormalizer("")
	assert.Equal(t, "+27821234567", n.Normalize("0821234567"))

	ke := NewNormalizer("254")
	assert.Equal(t, "+254712345678", ke.Normalize("0712345678"))
}
