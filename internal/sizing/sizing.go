// Package sizing provides position-sizing strategies, the ATR calculation they
// depend on, and post-hoc validation of sizing results against portfolio limits.
//
// Every function in this package is pure: it reads only its arguments, keeps no
// state between calls and may be used from any number of goroutines.
package sizing

import (
	"math"
	"strings"

	"position-sizer/internal/errors"
)

// Method identifies the strategy that produced a Result.
type Method string

const (
	MethodFixedRisk Method = "fixed_risk"
	MethodKelly     Method = "kelly"
	MethodATR       Method = "atr"
)

// Methods lists the supported sizing methods in display order.
var Methods = []Method{MethodFixedRisk, MethodKelly, MethodATR}

// ParseMethod converts a user supplied name into a Method.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fixed_risk", "fixed-risk", "fixed":
		return MethodFixedRisk, nil
	case "kelly":
		return MethodKelly, nil
	case "atr":
		return MethodATR, nil
	default:
		return "", errors.Wrapf(errors.ErrUnknownMethod, "%q", name)
	}
}

// Default values applied when a Request leaves an optional field unset.
const (
	DefaultWinRate       = 0.5
	DefaultAvgWin        = 0.10
	DefaultAvgLoss       = 0.05
	DefaultATRMultiplier = 2.0
	DefaultATRPeriod     = 14

	// kellyDamping is the half-Kelly multiplier.
	kellyDamping = 0.5
	// kellyCap is the largest fraction of the portfolio Kelly may commit.
	kellyCap = 0.25
)

// Request carries the trade parameters for a single sizing call.
// Optional inputs are pointers; nil selects the package default.
type Request struct {
	PortfolioValue float64  `json:"portfolio_value"`
	EntryPrice     float64  `json:"entry_price"`
	StopLoss       float64  `json:"stop_loss"`
	TargetPrice    *float64 `json:"target_price,omitempty"`
	RiskPercent    float64  `json:"risk_percent"`

	// Kelly only.
	WinRate *float64 `json:"win_rate,omitempty"`
	AvgWin  *float64 `json:"avg_win,omitempty"`
	AvgLoss *float64 `json:"avg_loss,omitempty"`

	// ATR only.
	ATRValue      *float64 `json:"atr_value,omitempty"`
	ATRMultiplier *float64 `json:"atr_multiplier,omitempty"`
}

// Result is the standardized output of every sizing strategy.
type Result struct {
	Method          Method   `json:"method"`
	Shares          int64    `json:"shares"`
	PositionSize    float64  `json:"position_size"`
	PortfolioWeight float64  `json:"portfolio_weight"`
	RiskAmount      float64  `json:"risk_amount"`
	RiskRewardRatio *float64 `json:"risk_reward_ratio"`
	StopLoss        float64  `json:"stop_loss"`
	TargetPrice     *float64 `json:"target_price,omitempty"`
}

// HasRiskReward reports whether the result carries a risk/reward ratio.
func (r Result) HasRiskReward() bool {
	return r.RiskRewardRatio != nil
}

// Defaults holds fallbacks that callers (usually the config layer) can merge
// into a Request before sizing.
type Defaults struct {
	RiskPercent   float64
	WinRate       float64
	AvgWin        float64
	AvgLoss       float64
	ATRMultiplier float64
}

// PackageDefaults returns the defaults used when a Request field is nil.
func PackageDefaults() Defaults {
	return Defaults{
		WinRate:       DefaultWinRate,
		AvgWin:        DefaultAvgWin,
		AvgLoss:       DefaultAvgLoss,
		ATRMultiplier: DefaultATRMultiplier,
	}
}

// WithDefaults returns a copy of r with unset optional fields filled from d.
// Zero fields in d are ignored.
func (r Request) WithDefaults(d Defaults) Request {
	if r.RiskPercent == 0 && d.RiskPercent > 0 {
		r.RiskPercent = d.RiskPercent
	}
	if r.WinRate == nil && d.WinRate > 0 {
		r.WinRate = Float(d.WinRate)
	}
	if r.AvgWin == nil && d.AvgWin > 0 {
		r.AvgWin = Float(d.AvgWin)
	}
	if r.AvgLoss == nil && d.AvgLoss > 0 {
		r.AvgLoss = Float(d.AvgLoss)
	}
	if r.ATRMultiplier == nil && d.ATRMultiplier > 0 {
		r.ATRMultiplier = Float(d.ATRMultiplier)
	}
	return r
}

// Calculate runs the strategy selected by method.
func Calculate(method Method, req Request) (Result, error) {
	switch method {
	case MethodFixedRisk:
		return FixedRiskSize(req), nil
	case MethodKelly:
		return KellySize(req)
	case MethodATR:
		return ATRSize(req), nil
	default:
		return Result{}, errors.Wrapf(errors.ErrUnknownMethod, "%q", method)
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// wholeShares floors a real-valued share count, never going below zero.
func wholeShares(x float64) int64 {
	if !(x > 0) {
		return 0
	}
	if x >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Floor(x))
}

func weightOf(positionSize, portfolioValue float64) float64 {
	if portfolioValue == 0 {
		return 0
	}
	return positionSize / portfolioValue
}

func zeroResult(method Method, stopLoss float64, target *float64) Result {
	return Result{
		Method:      method,
		StopLoss:    stopLoss,
		TargetPrice: target,
	}
}
