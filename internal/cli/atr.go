package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"position-sizer/internal/errors"
	"position-sizer/internal/logging"
	"position-sizer/internal/marketdata"
	"position-sizer/internal/sizing"
	"position-sizer/pkg/utils"
)

// ATRReport is the output of the atr command.
type ATRReport struct {
	Symbol    string  `json:"symbol,omitempty"`
	Period    int     `json:"period"`
	Bars      int     `json:"bars"`
	ATR       float64 `json:"atr"`
	LastClose float64 `json:"last_close"`
	ATRPct    float64 `json:"atr_pct"`
}

func newATRCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atr [symbol]",
		Short: "Compute the average true range of a candle series",
		Long: `Compute the simple-mean average true range over the last period bars.

Candles come from --candles or, for a symbol, from the configured market
data source.`,
		Example: `  sizer atr --candles ./AAPL.csv
  sizer atr AAPL --period 20`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if len(args) == 1 {
				if err := cmd.Flags().Set("symbol", args[0]); err != nil {
					return err
				}
			}
			symbol, _ := cmd.Flags().GetString("symbol")
			if symbol != "" {
				if err := marketdata.ValidateSymbol(symbol); err != nil {
					return err
				}
			}

			period := app.atrPeriod(cmd)
			series, err := loadSeries(cmd, app, period+1)
			if err != nil {
				return err
			}

			atr := sizing.CalculateATRFromCandles(series, period)
			if atr == 0 {
				return errors.NewDataError("atr", marketdata.NormalizeSymbol(symbol),
					"need "+strconv.Itoa(period+1)+" candles, have "+strconv.Itoa(len(series)), errors.ErrInsufficientData)
			}

			report := ATRReport{
				Symbol: marketdata.NormalizeSymbol(symbol),
				Period: period,
				Bars:   len(series),
				ATR:    atr,
			}
			if last, ok := series.Last(); ok {
				report.LastClose = last.Close
				report.ATRPct = atr / last.Close
			}

			log := logging.WithOperation(app.Logger, "atr")
			log.Debug().
				Str("symbol", report.Symbol).
				Int("period", period).
				Float64("atr", atr).
				Msg("ATR computed")

			if output.IsJSON() {
				return output.JSON(report)
			}

			cur := currency(app)
			title := "ATR"
			if report.Symbol != "" {
				title = report.Symbol + " ATR"
			}
			output.KeyValueTable(title, [][2]string{
				{"Period", strconv.Itoa(report.Period)},
				{"Bars", strconv.Itoa(report.Bars)},
				{"ATR", utils.FormatCurrency(report.ATR, cur)},
				{"Last close", utils.FormatCurrency(report.LastClose, cur)},
				{"ATR % of close", utils.FormatFraction(report.ATRPct, 2)},
			})
			return nil
		},
	}
	cmd.Flags().Int("period", 0, "ATR period (default from config)")
	cmd.Flags().String("candles", "", "CSV file of daily candles")
	cmd.Flags().String("symbol", "", "symbol to fetch candles for")
	return cmd
}

func newLotCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lot <shares> [lot-size]",
		Short: "Round a share count down to whole lots",
		Example: `  sizer lot 1234 100
  sizer lot 75`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			shares, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.NewValidationError("shares", args[0], "must be an integer")
			}
			lot := app.lotSize(cmd)
			if len(args) == 2 {
				lot, err = strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return errors.NewValidationError("lot-size", args[1], "must be an integer")
				}
			}

			rounded := sizing.RoundToLot(shares, lot)
			if output.IsJSON() {
				return output.JSON(map[string]int64{
					"shares":   shares,
					"lot_size": lot,
					"rounded":  rounded,
				})
			}
			output.Printf("%s shares → %s (lot %s)\n",
				utils.FormatQuantity(shares), utils.FormatQuantity(rounded), utils.FormatQuantity(lot))
			return nil
		},
	}
}
