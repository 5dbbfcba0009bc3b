package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{999.5, "$999.50"},
		{1000, "$1,000.00"},
		{50000, "$50,000.00"},
		{1234567.891, "$1,234,567.89"},
		{-2000, "-$2,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.amount, "$"))
	}
	assert.Equal(t, "100,000.00", FormatCurrency(100000, ""))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "7", FormatQuantity(7))
	assert.Equal(t, "1,000", FormatQuantity(1000))
	assert.Equal(t, "12,345,678", FormatQuantity(12345678))
	assert.Equal(t, "-1,500", FormatQuantity(-1500))
}

func TestFormatFraction(t *testing.T) {
	assert.Equal(t, "50.0%", FormatFraction(0.5, 1))
	assert.Equal(t, "2.00%", FormatFraction(0.02, 2))
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "n/a", FormatRatio(nil))
	rr := 3.0
	assert.Equal(t, "1:3.00", FormatRatio(&rr))
}
