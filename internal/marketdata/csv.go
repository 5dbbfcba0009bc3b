package marketdata

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"position-sizer/internal/errors"
	"position-sizer/internal/models"
)

// csvRow is one line of an OHLCV export. Headers are matched by name.
type csvRow struct {
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume int64   `csv:"volume"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// ParseCSV reads candles from CSV with a date,open,high,low,close,volume header.
func ParseCSV(r io.Reader) (models.Series, error) {
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrap(err, "parsing candle csv")
	}

	candles := make(models.Series, 0, len(rows))
	for i, row := range rows {
		ts, err := parseDate(row.Date)
		if err != nil {
			return nil, errors.NewValidationErrorWrap("date", row.Date, fmt.Sprintf("row %d", i+1), err)
		}
		candles = append(candles, models.Candle{
			Timestamp: ts,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
		})
	}
	return candles, nil
}

// LoadCSV reads and validates a candle file.
func LoadCSV(path string) (models.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError("candles", path, "opening file", err)
	}
	defer f.Close()

	candles, err := ParseCSV(f)
	if err != nil {
		return nil, errors.NewDataError("candles", path, "reading file", err)
	}
	return prepare(path, candles, 0)
}

// CSVProvider serves candles from <dir>/<SYMBOL>.csv files.
type CSVProvider struct {
	dir string
}

// NewCSVProvider creates a provider rooted at dir.
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

// Candles implements Provider.
func (p *CSVProvider) Candles(ctx context.Context, symbol string, limit int) (models.Series, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	symbol = NormalizeSymbol(symbol)
	path := filepath.Join(p.dir, symbol+".csv")
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewDataError("candles", symbol, "no csv file", errors.ErrDataNotFound)
	}

	candles, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}
	return candles.Tail(limit), nil
}
