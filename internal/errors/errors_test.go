package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorUnwrap(t *testing.T) {
	err := NewValidationError("entry_price", -1.0, "must be positive")
	assert.True(t, Is(err, ErrInputValidation))
	assert.Equal(t, "validation error: entry_price (-1): must be positive", err.Error())

	wrapped := NewValidationErrorWrap("avg_loss", 0.0, "must be positive", ErrInvalidPayoff)
	assert.True(t, Is(wrapped, ErrInvalidPayoff))
	assert.False(t, Is(wrapped, ErrInputValidation))

	var ve *ValidationError
	assert.True(t, As(fmt.Errorf("sizing: %w", wrapped), &ve))
	assert.Equal(t, "avg_loss", ve.Field)
}

func TestDataError(t *testing.T) {
	err := NewDataError("candles", "AAPL", "fetch failed", ErrProviderUnavailable)
	assert.Equal(t, "data error [candles] AAPL: fetch failed: market data provider unavailable", err.Error())
	assert.True(t, Is(err, ErrProviderUnavailable))

	bare := NewDataError("candles", "AAPL", "empty series", nil)
	assert.Equal(t, "data error [candles] AAPL: empty series", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestRiskError(t *testing.T) {
	err := NewRiskError("max_position_weight", 15, 10, "position too large")
	assert.Equal(t, "risk violation [max_position_weight]: position too large (current: 15.00, limit: 10.00)", err.Error())
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ctx"))
	assert.Nil(t, Wrapf(nil, "ctx %d", 1))

	err := Wrapf(ErrDataNotFound, "symbol %s", "MSFT")
	assert.EqualError(t, err, "symbol MSFT: data not found")
	assert.True(t, Is(err, ErrDataNotFound))
}
