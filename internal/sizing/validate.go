package sizing

import "fmt"

// Default portfolio limits.
const (
	DefaultMaxPositionWeight = 0.10
	DefaultMaxRiskPercent    = 0.05
)

// Limits are the portfolio-level thresholds a Result is checked against.
type Limits struct {
	MaxPositionWeight float64 `json:"max_position_weight"`
	MaxRiskPercent    float64 `json:"max_risk_percent"`
}

// DefaultLimits returns 10% max weight and 5% max risk.
func DefaultLimits() Limits {
	return Limits{
		MaxPositionWeight: DefaultMaxPositionWeight,
		MaxRiskPercent:    DefaultMaxRiskPercent,
	}
}

// OrDefaults replaces non-positive limits with the defaults.
func (l Limits) OrDefaults() Limits {
	if l.MaxPositionWeight <= 0 {
		l.MaxPositionWeight = DefaultMaxPositionWeight
	}
	if l.MaxRiskPercent <= 0 {
		l.MaxRiskPercent = DefaultMaxRiskPercent
	}
	return l
}

// Validation is the outcome of Validate.
type Validation struct {
	IsValid  bool     `json:"is_valid"`
	Warnings []string `json:"warnings"`
}

// Validate checks a sizing result against portfolio limits. Limit breaches and
// a zero share count make the result invalid; a risk/reward ratio below 1 only
// adds a warning. Zero fields in limits take the defaults.
func Validate(result Result, portfolioValue float64, limits Limits) Validation {
	limits = limits.OrDefaults()
	v := Validation{IsValid: true, Warnings: []string{}}

	if result.PortfolioWeight > limits.MaxPositionWeight {
		v.IsValid = false
		v.Warnings = append(v.Warnings, fmt.Sprintf("Position weight %.1f%% exceeds maximum %.0f%%",
			result.PortfolioWeight*100, limits.MaxPositionWeight*100))
	}

	if portfolioValue > 0 {
		riskPct := result.RiskAmount / portfolioValue
		if riskPct > limits.MaxRiskPercent {
			v.IsValid = false
			v.Warnings = append(v.Warnings, fmt.Sprintf("Risk %.2f%% of portfolio exceeds maximum %.0f%%",
				riskPct*100, limits.MaxRiskPercent*100))
		}
	}

	if result.Shares == 0 {
		v.IsValid = false
		v.Warnings = append(v.Warnings, "Position size is zero shares")
	}

	if result.RiskRewardRatio != nil && *result.RiskRewardRatio < 1 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("Risk/reward ratio %.2f is below 1:1", *result.RiskRewardRatio))
	}

	return v
}
