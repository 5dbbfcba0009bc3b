package sizing

import (
	"math"

	"position-sizer/internal/models"
)

// CalculateATR returns the Average True Range of the given bars, oldest first.
//
// The result is the simple mean of the last period true ranges, not Wilder's
// smoothed average. A return of 0 means there were fewer than period+1 bars in
// one of the series and must not be read as zero volatility. A period <= 0
// selects DefaultATRPeriod.
func CalculateATR(highs, lows, closes []float64, period int) float64 {
	if period <= 0 {
		period = DefaultATRPeriod
	}
	n := len(highs)
	if len(lows) < n {
		n = len(lows)
	}
	if len(closes) < n {
		n = len(closes)
	}
	if n < period+1 {
		return 0
	}

	var total float64
	for i := n - period; i < n; i++ {
		total += trueRange(highs[i], lows[i], closes[i-1])
	}
	return total / float64(period)
}

// CalculateATRFromCandles is CalculateATR over a candle series.
func CalculateATRFromCandles(candles []models.Candle, period int) float64 {
	s := models.Series(candles)
	return CalculateATR(s.Highs(), s.Lows(), s.Closes(), period)
}

// trueRange is the largest of the bar's own range and its distance from the prior close.
func trueRange(high, low, prevClose float64) float64 {
	return math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
}
