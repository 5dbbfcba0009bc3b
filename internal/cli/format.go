package cli

import (
	"fmt"
	"strings"

	"position-sizer/pkg/utils"
)

// resultRows lays out a sizing report as label/value pairs.
func resultRows(r SizingReport, cur string) [][2]string {
	res := r.Result
	rows := [][2]string{
		{"Method", string(res.Method)},
		{"Shares", utils.FormatQuantity(res.Shares)},
		{"Position size", utils.FormatCurrency(res.PositionSize, cur)},
		{"Portfolio weight", utils.FormatFraction(res.PortfolioWeight, 2)},
		{"Risk amount", utils.FormatCurrency(res.RiskAmount, cur)},
		{"Stop loss", utils.FormatCurrency(res.StopLoss, cur)},
	}

	if res.TargetPrice != nil {
		rows = append(rows, [2]string{"Target", utils.FormatCurrency(*res.TargetPrice, cur)})
	}
	if res.HasRiskReward() {
		rows = append(rows, [2]string{"Risk/reward", utils.FormatRatio(res.RiskRewardRatio)})
	}

	if r.Request.ATRValue != nil {
		atr := utils.FormatCurrency(*r.Request.ATRValue, cur)
		if r.ATRPeriod > 0 {
			atr = fmt.Sprintf("%s (%d)", atr, r.ATRPeriod)
		}
		rows = append(rows, [2]string{"ATR", atr})
	}

	if r.LotSize > 1 {
		rows = append(rows,
			[2]string{"Lot size", utils.FormatQuantity(r.LotSize)},
			[2]string{"Rounded shares", utils.FormatQuantity(r.RoundedShares)},
			[2]string{"Rounded value", utils.FormatCurrency(r.RoundedValue, cur)},
		)
	}
	return rows
}

// PadRight pads a string to the specified length.
func PadRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
