// Package marketdata supplies historical OHLC series to the sizing engine.
//
// Providers are treated as black boxes returning candles oldest first. The
// package ships a CSV file provider, an HTTP JSON provider and a caching
// decorator keyed by symbol.
package marketdata

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"position-sizer/internal/errors"
	"position-sizer/internal/models"
)

// Provider returns up to limit of the most recent candles for a symbol, oldest
// first. A limit <= 0 returns everything the source has.
type Provider interface {
	Candles(ctx context.Context, symbol string, limit int) (models.Series, error)
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidateSymbol rejects empty symbols and path-like input.
func ValidateSymbol(symbol string) error {
	s := NormalizeSymbol(symbol)
	if s == "" {
		return errors.NewValidationError("symbol", symbol, "must not be empty")
	}
	if strings.ContainsAny(s, `/\`) || strings.Contains(s, "..") {
		return errors.NewValidationError("symbol", symbol, "contains invalid characters")
	}
	return nil
}

// prepare sorts candles by time, checks them and applies the limit.
func prepare(symbol string, candles models.Series, limit int) (models.Series, error) {
	if len(candles) == 0 {
		return nil, errors.NewDataError("candles", symbol, "empty series", errors.ErrDataNotFound)
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	for i, c := range candles {
		if c.High < c.Low {
			return nil, errors.NewDataError("candles", symbol,
				"high below low at "+c.Timestamp.Format("2006-01-02"), errors.ErrInputValidation)
		}
		if c.Close <= 0 || c.Low < 0 {
			return nil, errors.NewDataError("candles", symbol,
				"non-positive price at row "+strconv.Itoa(i+1), errors.ErrInputValidation)
		}
	}

	return candles.Tail(limit), nil
}
