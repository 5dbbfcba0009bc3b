package cli

import (
	"context"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"position-sizer/internal/errors"
	"position-sizer/internal/logging"
	"position-sizer/internal/marketdata"
	"position-sizer/internal/models"
	"position-sizer/internal/sizing"
)

// SizingReport is everything a size command prints.
type SizingReport struct {
	Symbol        string             `json:"symbol,omitempty"`
	Request       sizing.Request     `json:"request"`
	Result        sizing.Result      `json:"result"`
	LotSize       int64              `json:"lot_size"`
	RoundedShares int64              `json:"rounded_shares"`
	RoundedValue  float64            `json:"rounded_value"`
	ATRPeriod     int                `json:"atr_period,omitempty"`
	Validation    *sizing.Validation `json:"validation,omitempty"`
	Limits        *sizing.Limits     `json:"limits,omitempty"`
}

func newSizeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size",
		Short: "Calculate a position size",
		Long: `Calculate how many shares to buy.

Methods:
  fixed   risk a fixed fraction of the portfolio between entry and stop
  kelly   half-Kelly fraction from win rate and payoff, capped at 25%
  atr     stop placed a multiple of ATR below entry`,
		Example: `  sizer size fixed --portfolio 100000 --entry 50 --stop 49
  sizer size kelly --portfolio 100000 --entry 20 --stop 19 --win-rate 0.6 --avg-win 0.1 --avg-loss 0.05
  sizer size atr --portfolio 100000 --entry 100 --atr 2.5 --target 110
  sizer size atr --portfolio 100000 --symbol AAPL --period 14`,
	}

	f := cmd.PersistentFlags()
	f.Float64("portfolio", 0, "total portfolio value (required)")
	f.Float64("entry", 0, "entry price")
	f.Float64("target", 0, "target price for risk/reward")
	f.Float64("risk", 0, "fraction of the portfolio to risk (default from config)")
	f.Int64("lot", 0, "lot size to round shares to (default from config)")
	f.String("symbol", "", "symbol for logging and candle lookup")
	f.Float64("max-weight", 0, "maximum position weight (default from config)")
	f.Float64("max-risk", 0, "maximum risk fraction (default from config)")
	f.Bool("strict", false, "exit with an error when the position breaches limits")
	f.Bool("no-validate", false, "skip the portfolio limit checks")
	_ = cmd.MarkPersistentFlagRequired("portfolio")

	cmd.AddCommand(newSizeFixedCmd(app))
	cmd.AddCommand(newSizeKellyCmd(app))
	cmd.AddCommand(newSizeATRCmd(app))

	return cmd
}

func newSizeFixedCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fixed",
		Aliases: []string{"fixed-risk", "fixed_risk"},
		Short:   "Fixed fractional risk sizing",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := baseRequest(cmd)
			if err != nil {
				return err
			}
			if err := requireEntry(req); err != nil {
				return err
			}
			req.StopLoss, _ = cmd.Flags().GetFloat64("stop")
			return runSize(cmd, app, sizing.MethodFixedRisk, req, 0)
		},
	}
	cmd.Flags().Float64("stop", 0, "stop-loss price (required)")
	_ = cmd.MarkFlagRequired("stop")
	return cmd
}

func newSizeKellyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kelly",
		Short: "Half-Kelly sizing from win rate and payoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := baseRequest(cmd)
			if err != nil {
				return err
			}
			if err := requireEntry(req); err != nil {
				return err
			}
			req.StopLoss, _ = cmd.Flags().GetFloat64("stop")
			req.WinRate = optionalFloat(cmd, "win-rate")
			req.AvgWin = optionalFloat(cmd, "avg-win")
			req.AvgLoss = optionalFloat(cmd, "avg-loss")
			return runSize(cmd, app, sizing.MethodKelly, req, 0)
		},
	}
	cmd.Flags().Float64("stop", 0, "stop-loss price used for the risk amount (required)")
	_ = cmd.MarkFlagRequired("stop")
	cmd.Flags().Float64("win-rate", 0, "probability of a winning trade (default from config)")
	cmd.Flags().Float64("avg-win", 0, "average winning return as a fraction (default from config)")
	cmd.Flags().Float64("avg-loss", 0, "average losing return as a fraction (default from config)")
	return cmd
}

func newSizeATRCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atr",
		Short: "Volatility sizing with an ATR-based stop",
		Long: `Size a long position with the stop placed atr-mult ATRs below entry.

The ATR comes from --atr, or is computed from candles loaded from --candles
or fetched for --symbol. Without --entry the last close is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := baseRequest(cmd)
			if err != nil {
				return err
			}
			req.ATRMultiplier = optionalFloat(cmd, "atr-mult")

			period := app.atrPeriod(cmd)
			if cmd.Flags().Changed("atr") {
				req.ATRValue = optionalFloat(cmd, "atr")
			} else {
				series, err := loadSeries(cmd, app, period+1)
				if err != nil {
					return err
				}
				atr := sizing.CalculateATRFromCandles(series, period)
				if atr == 0 {
					app.Logger.Warn().Int("period", period).Int("bars", len(series)).Msg("Insufficient candles for ATR")
					if out := NewOutput(cmd); !out.IsJSON() {
						out.Warning("Not enough candles for a %d-period ATR (have %d)", period, len(series))
					}
				}
				req.ATRValue = sizing.Float(atr)
				if req.EntryPrice == 0 {
					if last, ok := series.Last(); ok {
						req.EntryPrice = last.Close
					}
				}
			}
			if err := requireEntry(req); err != nil {
				return err
			}
			return runSize(cmd, app, sizing.MethodATR, req, period)
		},
	}
	cmd.Flags().Float64("atr", 0, "average true range; computed from candles when omitted")
	cmd.Flags().Float64("atr-mult", 0, "ATR multiple for the stop distance (default from config)")
	cmd.Flags().Int("period", 0, "ATR period (default from config)")
	cmd.Flags().String("candles", "", "CSV file of daily candles to compute ATR from")
	return cmd
}

// baseRequest reads the flags shared by every method. Entry is checked by
// the caller since ATR sizing can take it from the last close.
func baseRequest(cmd *cobra.Command) (sizing.Request, error) {
	var req sizing.Request
	req.PortfolioValue, _ = cmd.Flags().GetFloat64("portfolio")
	req.EntryPrice, _ = cmd.Flags().GetFloat64("entry")
	req.RiskPercent, _ = cmd.Flags().GetFloat64("risk")
	req.TargetPrice = optionalFloat(cmd, "target")

	if req.PortfolioValue <= 0 || math.IsInf(req.PortfolioValue, 0) {
		return req, errors.NewValidationError("portfolio", req.PortfolioValue, "must be positive")
	}
	if req.RiskPercent < 0 || req.RiskPercent > 1 {
		return req, errors.NewValidationError("risk", req.RiskPercent, "must be in [0, 1]")
	}
	return req, nil
}

func requireEntry(req sizing.Request) error {
	if req.EntryPrice <= 0 || math.IsInf(req.EntryPrice, 0) {
		return errors.NewValidationError("entry", req.EntryPrice, "must be positive")
	}
	return nil
}

// optionalFloat returns nil unless the flag was set explicitly.
func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return nil
	}
	return sizing.Float(v)
}

func (a *App) atrPeriod(cmd *cobra.Command) int {
	if p, _ := cmd.Flags().GetInt("period"); p > 0 {
		return p
	}
	if a.Config != nil && a.Config.Sizing.ATRPeriod > 0 {
		return a.Config.Sizing.ATRPeriod
	}
	return sizing.DefaultATRPeriod
}

func (a *App) lotSize(cmd *cobra.Command) int64 {
	if lot, _ := cmd.Flags().GetInt64("lot"); lot > 0 {
		return lot
	}
	if a.Config != nil && a.Config.Sizing.LotSize > 0 {
		return a.Config.Sizing.LotSize
	}
	return 1
}

// loadSeries reads candles from --candles or the market data provider.
func loadSeries(cmd *cobra.Command, app *App, limit int) (models.Series, error) {
	if path, _ := cmd.Flags().GetString("candles"); path != "" {
		series, err := marketdata.LoadCSV(path)
		if err != nil {
			return nil, err
		}
		return series.Tail(limit), nil
	}

	symbol, _ := cmd.Flags().GetString("symbol")
	if symbol == "" {
		return nil, errors.NewValidationError("symbol", symbol, "required when --atr and --candles are not given")
	}
	if app.Provider == nil {
		return nil, errors.Wrap(errors.ErrProviderUnavailable, "no market data provider configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, logging.WithSymbol(app.Logger, marketdata.NormalizeSymbol(symbol)))
	return app.Provider.Candles(ctx, symbol, limit)
}

func runSize(cmd *cobra.Command, app *App, method sizing.Method, req sizing.Request, period int) error {
	output := NewOutput(cmd)
	if app.Config != nil && !app.Config.UI.ColorEnabled {
		output.DisableColor()
	}

	if app.Config != nil {
		defaults := app.Config.SizingDefaults()
		if cmd.Flags().Changed("risk") {
			// An explicit --risk 0 must stay zero.
			defaults.RiskPercent = 0
		}
		req = req.WithDefaults(defaults)
	}

	symbol, _ := cmd.Flags().GetString("symbol")
	symbol = marketdata.NormalizeSymbol(symbol)
	log := logging.WithMethod(app.Logger, string(method))
	if symbol != "" {
		log = logging.WithSymbol(log, symbol)
	}

	result, err := sizing.Calculate(method, req)
	if err != nil {
		log.Error().Err(err).Msg("Sizing failed")
		return err
	}
	logging.LogSizing(log, string(method), result.Shares, result.PositionSize, result.RiskAmount)

	lot := app.lotSize(cmd)
	rounded := sizing.RoundToLot(result.Shares, lot)
	report := SizingReport{
		Symbol:        symbol,
		Request:       req,
		Result:        result,
		LotSize:       lot,
		RoundedShares: rounded,
		RoundedValue:  float64(rounded) * req.EntryPrice,
		ATRPeriod:     period,
	}

	if skip, _ := cmd.Flags().GetBool("no-validate"); !skip {
		limits := app.limits()
		if v, _ := cmd.Flags().GetFloat64("max-weight"); v > 0 {
			limits.MaxPositionWeight = v
		}
		if v, _ := cmd.Flags().GetFloat64("max-risk"); v > 0 {
			limits.MaxRiskPercent = v
		}
		limits = limits.OrDefaults()
		validation := sizing.Validate(result, req.PortfolioValue, limits)
		logging.LogValidation(log, validation.IsValid, validation.Warnings)
		report.Validation = &validation
		report.Limits = &limits
	}

	if output.IsJSON() {
		if err := output.JSON(report); err != nil {
			return err
		}
	} else {
		displayReport(output, report, currency(app))
	}

	if strict, _ := cmd.Flags().GetBool("strict"); strict && report.Validation != nil && !report.Validation.IsValid {
		rule, current, limit := firstBreach(result, req.PortfolioValue, *report.Limits)
		return errors.NewRiskError(rule, current, limit, strings.Join(report.Validation.Warnings, "; "))
	}
	return nil
}

// firstBreach names the first limit an invalid result violates, in the
// order the validator reports them.
func firstBreach(result sizing.Result, portfolioValue float64, limits sizing.Limits) (string, float64, float64) {
	if result.PortfolioWeight > limits.MaxPositionWeight {
		return "max_position_weight", result.PortfolioWeight, limits.MaxPositionWeight
	}
	if portfolioValue > 0 {
		if riskPct := result.RiskAmount / portfolioValue; riskPct > limits.MaxRiskPercent {
			return "max_risk_percent", riskPct, limits.MaxRiskPercent
		}
	}
	return "min_shares", float64(result.Shares), 1
}

func currency(app *App) string {
	if app.Config == nil {
		return "$"
	}
	return app.Config.UI.Currency
}

func displayReport(output *Output, r SizingReport, cur string) {
	title := "Position size (" + string(r.Result.Method) + ")"
	if r.Symbol != "" {
		title = r.Symbol + " " + title
	}
	output.KeyValueTable(title, resultRows(r, cur))

	if r.Validation == nil {
		return
	}
	if r.Validation.IsValid {
		output.Success("✓ Within portfolio limits")
	} else {
		output.Error("✗ Position breaches portfolio limits")
	}
	for _, w := range r.Validation.Warnings {
		output.Warning("  ⚠ %s", w)
	}
}
