package cli

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"position-sizer/internal/sizing"
	"position-sizer/pkg/utils"
)

func TestProperty_PadRight(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("PadRight keeps the prefix and reaches the width", prop.ForAll(
		func(s string, width int) bool {
			padded := PadRight(s, width)
			if !strings.HasPrefix(padded, s) {
				return false
			}
			want := width
			if len(s) > want {
				want = len(s)
			}
			return len(padded) == want
		},
		gen.AlphaString(),
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}

func TestProperty_ResultRowsShowShares(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("rows carry the share count and lot rows only for lots above one", prop.ForAll(
		func(shares, lot int64) bool {
			r := SizingReport{
				Result:        sizing.Result{Method: sizing.MethodFixedRisk, Shares: shares},
				LotSize:       lot,
				RoundedShares: sizing.RoundToLot(shares, lot),
			}
			rows := resultRows(r, "$")

			var sawShares, sawLot bool
			for _, row := range rows {
				if row[0] == "" || row[1] == "" {
					return false
				}
				switch row[0] {
				case "Shares":
					sawShares = row[1] == utils.FormatQuantity(shares)
				case "Rounded shares":
					sawLot = true
				}
			}
			return sawShares && sawLot == (lot > 1)
		},
		gen.Int64Range(0, 10_000_000),
		gen.Int64Range(1, 500),
	))

	properties.TestingRun(t)
}

func TestResultRowsRiskReward(t *testing.T) {
	hasRow := func(rows [][2]string) bool {
		for _, row := range rows {
			if row[0] == "Risk/reward" {
				return true
			}
		}
		return false
	}

	r := SizingReport{Result: sizing.Result{Method: sizing.MethodFixedRisk, Shares: 10}}
	assert.False(t, hasRow(resultRows(r, "$")))

	r.Result.RiskRewardRatio = sizing.Float(2)
	rows := resultRows(r, "$")
	assert.True(t, hasRow(rows))
	assert.Contains(t, rows, [2]string{"Risk/reward", utils.FormatRatio(sizing.Float(2))})
}
