package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testSeries() Series {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return Series{
		{Timestamp: base, Open: 10, High: 11, Low: 9, Close: 10.5},
		{Timestamp: base.Add(24 * time.Hour), Open: 10.5, High: 12, Low: 10, Close: 11.5},
		{Timestamp: base.Add(48 * time.Hour), Open: 11.5, High: 13, Low: 11, Close: 12.5},
	}
}

func TestSeriesColumns(t *testing.T) {
	s := testSeries()
	assert.Equal(t, []float64{11, 12, 13}, s.Highs())
	assert.Equal(t, []float64{9, 10, 11}, s.Lows())
	assert.Equal(t, []float64{10.5, 11.5, 12.5}, s.Closes())
}

func TestSeriesLastAndTail(t *testing.T) {
	s := testSeries()

	last, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, 12.5, last.Close)

	_, ok = Series{}.Last()
	assert.False(t, ok)

	assert.Len(t, s.Tail(2), 2)
	assert.Equal(t, 11.5, s.Tail(2)[0].Close)
	assert.Len(t, s.Tail(0), 3)
	assert.Len(t, s.Tail(10), 3)
}
