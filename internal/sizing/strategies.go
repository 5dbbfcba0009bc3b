package sizing

import (
	"math"

	"position-sizer/internal/errors"
)

// FixedRiskSize sizes a position so that a stop-out loses RiskPercent of the
// portfolio. A stop equal to the entry yields the zero result.
func FixedRiskSize(req Request) Result {
	riskPerShare := math.Abs(req.EntryPrice - req.StopLoss)
	if riskPerShare == 0 {
		return zeroResult(MethodFixedRisk, req.StopLoss, req.TargetPrice)
	}

	requested := req.PortfolioValue * req.RiskPercent
	shares := wholeShares(requested / riskPerShare)
	positionSize := float64(shares) * req.EntryPrice

	return Result{
		Method:          MethodFixedRisk,
		Shares:          shares,
		PositionSize:    positionSize,
		PortfolioWeight: weightOf(positionSize, req.PortfolioValue),
		RiskAmount:      float64(shares) * riskPerShare,
		RiskRewardRatio: rewardRatio(req.TargetPrice, req.EntryPrice, riskPerShare),
		StopLoss:        req.StopLoss,
		TargetPrice:     req.TargetPrice,
	}
}

// KellySize sizes a position with half-Kelly, capped at a quarter of the portfolio.
// Non-positive average win or loss is rejected rather than producing a non-finite fraction.
func KellySize(req Request) (Result, error) {
	p := valueOr(req.WinRate, DefaultWinRate)
	avgWin := valueOr(req.AvgWin, DefaultAvgWin)
	avgLoss := valueOr(req.AvgLoss, DefaultAvgLoss)

	if avgLoss <= 0 {
		return Result{}, errors.NewValidationErrorWrap("avg_loss", avgLoss, "must be positive", errors.ErrInvalidPayoff)
	}
	if avgWin <= 0 {
		return Result{}, errors.NewValidationErrorWrap("avg_win", avgWin, "must be positive", errors.ErrInvalidPayoff)
	}

	f := KellyFraction(p, avgWin, avgLoss)

	var shares int64
	if req.EntryPrice > 0 {
		shares = wholeShares(req.PortfolioValue * f / req.EntryPrice)
	}
	positionSize := float64(shares) * req.EntryPrice
	riskPerShare := math.Abs(req.EntryPrice - req.StopLoss)

	var ratio *float64
	if riskPerShare > 0 {
		ratio = rewardRatio(req.TargetPrice, req.EntryPrice, riskPerShare)
	}

	return Result{
		Method:          MethodKelly,
		Shares:          shares,
		PositionSize:    positionSize,
		PortfolioWeight: weightOf(positionSize, req.PortfolioValue),
		RiskAmount:      float64(shares) * riskPerShare,
		RiskRewardRatio: ratio,
		StopLoss:        req.StopLoss,
		TargetPrice:     req.TargetPrice,
	}, nil
}

// KellyFraction returns the damped, capped Kelly fraction for a win rate and
// average win/loss. avgWin and avgLoss must be positive.
func KellyFraction(winRate, avgWin, avgLoss float64) float64 {
	q := 1 - winRate
	b := avgWin / avgLoss
	// Explicit conversions keep the products unfused so results match on every arch.
	f := (float64(b*winRate) - q) / b
	f = math.Max(0, float64(f*kellyDamping))
	return math.Min(f, kellyCap)
}

// ATRSize derives the stop from the ATR and sizes the position so that a
// stop-out loses RiskPercent of the portfolio. Stops are always placed below
// the entry. A non-positive ATR yields a zero result whose stop is the entry.
func ATRSize(req Request) Result {
	atr := valueOr(req.ATRValue, 0)
	if atr <= 0 {
		return zeroResult(MethodATR, req.EntryPrice, req.TargetPrice)
	}

	stopDistance := atr * valueOr(req.ATRMultiplier, DefaultATRMultiplier)
	if stopDistance <= 0 {
		return zeroResult(MethodATR, req.EntryPrice, req.TargetPrice)
	}

	requested := req.PortfolioValue * req.RiskPercent
	shares := wholeShares(requested / stopDistance)
	positionSize := float64(shares) * req.EntryPrice

	return Result{
		Method:          MethodATR,
		Shares:          shares,
		PositionSize:    positionSize,
		PortfolioWeight: weightOf(positionSize, req.PortfolioValue),
		RiskAmount:      float64(shares) * stopDistance,
		RiskRewardRatio: rewardRatio(req.TargetPrice, req.EntryPrice, stopDistance),
		StopLoss:        req.EntryPrice - stopDistance,
		TargetPrice:     req.TargetPrice,
	}
}

func rewardRatio(target *float64, entry, risk float64) *float64 {
	if target == nil || risk == 0 {
		return nil
	}
	return Float(math.Abs(*target-entry) / risk)
}
