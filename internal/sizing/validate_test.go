package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		limits   Limits
		valid    bool
		warnings []string
	}{
		{
			name:   "within limits",
			result: Result{Shares: 100, PortfolioWeight: 0.05, RiskAmount: 1000},
			valid:  true,
		},
		{
			name:     "weight over default maximum",
			result:   Result{Shares: 100, PortfolioWeight: 0.15, RiskAmount: 1000},
			warnings: []string{"Position weight 15.0% exceeds maximum 10%"},
		},
		{
			name:     "risk over default maximum",
			result:   Result{Shares: 100, PortfolioWeight: 0.05, RiskAmount: 6000},
			warnings: []string{"Risk 6.00% of portfolio exceeds maximum 5%"},
		},
		{
			name:     "zero shares always invalid",
			result:   Result{Shares: 0},
			warnings: []string{"Position size is zero shares"},
		},
		{
			name:     "poor risk reward is advisory",
			result:   Result{Shares: 10, PortfolioWeight: 0.05, RiskAmount: 1000, RiskRewardRatio: Float(0.5)},
			valid:    true,
			warnings: []string{"Risk/reward ratio 0.50 is below 1:1"},
		},
		{
			name:   "ratio of exactly one is fine",
			result: Result{Shares: 10, PortfolioWeight: 0.05, RiskAmount: 1000, RiskRewardRatio: Float(1)},
			valid:  true,
		},
		{
			name: "all violations in order",
			result: Result{
				Shares:          0,
				PortfolioWeight: 0.5,
				RiskAmount:      7500,
				RiskRewardRatio: Float(0.25),
			},
			warnings: []string{
				"Position weight 50.0% exceeds maximum 10%",
				"Risk 7.50% of portfolio exceeds maximum 5%",
				"Position size is zero shares",
				"Risk/reward ratio 0.25 is below 1:1",
			},
		},
		{
			name:   "custom limits",
			result: Result{Shares: 100, PortfolioWeight: 0.15, RiskAmount: 6000},
			limits: Limits{MaxPositionWeight: 0.2, MaxRiskPercent: 0.08},
			valid:  true,
		},
		{
			name:     "custom limit formatting",
			result:   Result{Shares: 100, PortfolioWeight: 0.3, RiskAmount: 1000},
			limits:   Limits{MaxPositionWeight: 0.25},
			warnings: []string{"Position weight 30.0% exceeds maximum 25%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limits := tt.limits
			if limits == (Limits{}) {
				limits = DefaultLimits()
			}
			v := Validate(tt.result, 100000, limits)
			assert.Equal(t, tt.valid, v.IsValid)
			if tt.warnings == nil {
				assert.Empty(t, v.Warnings)
			} else {
				assert.Equal(t, tt.warnings, v.Warnings)
			}
		})
	}
}

func TestValidateZeroLimitsUseDefaults(t *testing.T) {
	r := Result{Shares: 100, PortfolioWeight: 0.15, RiskAmount: 1000}
	assert.Equal(t, Validate(r, 100000, DefaultLimits()), Validate(r, 100000, Limits{}))
}

func TestValidateSkipsRiskCheckWithoutPortfolio(t *testing.T) {
	v := Validate(Result{Shares: 1, PortfolioWeight: 0.01, RiskAmount: 500}, 0, DefaultLimits())
	assert.True(t, v.IsValid)
	assert.Empty(t, v.Warnings)
}

func TestValidateFixedRiskExample(t *testing.T) {
	r := FixedRiskSize(Request{PortfolioValue: 100000, EntryPrice: 50, StopLoss: 48, RiskPercent: 0.02})
	v := Validate(r, 100000, DefaultLimits())
	assert.False(t, v.IsValid)
	assert.Equal(t, []string{"Position weight 50.0% exceeds maximum 10%"}, v.Warnings)
}

func TestRoundToLot(t *testing.T) {
	tests := []struct {
		shares, lot, want int64
	}{
		{107, 10, 100},
		{7, 1, 7},
		{100, 100, 100},
		{99, 100, 0},
		{7, 0, 7},
		{7, -5, 7},
		{0, 25, 0},
		{-7, 5, -10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundToLot(tt.shares, tt.lot), "RoundToLot(%d, %d)", tt.shares, tt.lot)
	}
}
