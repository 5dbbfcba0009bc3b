package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"position-sizer/internal/config"
	"position-sizer/internal/logging"
	"position-sizer/internal/marketdata"
	"position-sizer/internal/sizing"
	"position-sizer/pkg/utils"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Provider  marketdata.Provider
}

// NewRootCmd creates the root command for the CLI. A nil cfg is loaded from
// --config (or the default directory) before any command runs.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	return newRootCmd(&App{Config: cfg, Logger: logger})
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sizer",
		Short: "Position sizing and risk calculator",
		Long: `sizer computes how many shares to buy for a trade using fixed-risk,
Kelly criterion or ATR-based sizing, checks the result against portfolio
limits and rounds it to tradable lots.

Use 'sizer size --help' to see the sizing methods.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/position-sizer)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newSizeCmd(app))
	rootCmd.AddCommand(newATRCmd(app))
	rootCmd.AddCommand(newLotCmd(app))
	rootCmd.AddCommand(newCommandsCmd())
	rootCmd.AddCommand(newExamplesCmd())

	return rootCmd
}

// init loads configuration, the logger and the market data provider once.
func (a *App) init(cmd *cobra.Command) error {
	if a.Config == nil {
		dir, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		a.Config = cfg
		a.ConfigDir = dir
		a.Logger = logging.NewLoggerWithConfig(logging.LogConfig{
			Level:      cfg.Log.Level,
			Console:    true,
			File:       cfg.Log.File,
			FilePath:   cfg.Log.Path,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
		})
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logging.SetDebugLevel()
		a.Logger = a.Logger.Level(zerolog.DebugLevel)
	}

	if a.Provider == nil {
		a.Provider = newProvider(cmd, a.Config, a.Logger)
	}
	return nil
}

func newProvider(cmd *cobra.Command, cfg *config.Config, logger zerolog.Logger) marketdata.Provider {
	md := cfg.MarketData

	var source marketdata.Provider
	if md.BaseURL != "" {
		retry := utils.DefaultRetryConfig()
		source = marketdata.NewHTTPProvider(marketdata.HTTPConfig{
			BaseURL:   md.BaseURL,
			APIKey:    md.APIKey,
			Timeout:   md.Timeout,
			RateLimit: md.RateLimit,
			Retry:     retry,
		}, logger)
		logger.Debug().Str("base_url", md.BaseURL).Msg("HTTP market data provider initialized")
	} else {
		source = marketdata.NewCSVProvider(md.CandleDir)
		logger.Debug().Str("dir", md.CandleDir).Msg("CSV market data provider initialized")
	}

	cached := marketdata.NewCachedProvider(source, md.CacheSize, md.CacheTTL, logger)
	if !sweepUntilDone(cmd.Context(), cached, md.SweepInterval) {
		logger.Debug().Msg("Cache sweeper not started, context cannot be cancelled")
	}
	return cached
}

// sweepUntilDone runs the cache sweeper for the life of ctx. A context that
// can never be cancelled gets no sweeper; expired entries still drop on access.
func sweepUntilDone(ctx context.Context, cached *marketdata.CachedProvider, every time.Duration) bool {
	if ctx == nil || ctx.Done() == nil || every <= 0 {
		return false
	}
	cached.StartSweeper(ctx, every)
	return true
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("sizer v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			dir := app.ConfigDir
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": dir})
			}
			output.Println(dir)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	cur := cfg.UI.Currency
	output.KeyValueTable("Sizing", [][2]string{
		{"Risk per trade", utils.FormatFraction(cfg.Sizing.RiskPercent, 2)},
		{"ATR period", utils.FormatQuantity(int64(cfg.Sizing.ATRPeriod))},
		{"ATR multiplier", utils.FormatCurrency(cfg.Sizing.ATRMultiplier, "")},
		{"Lot size", utils.FormatQuantity(cfg.Sizing.LotSize)},
		{"Kelly win rate", utils.FormatFraction(cfg.Sizing.WinRate, 1)},
		{"Kelly avg win/loss", utils.FormatFraction(cfg.Sizing.AvgWin, 1) + " / " + utils.FormatFraction(cfg.Sizing.AvgLoss, 1)},
	})
	output.KeyValueTable("Limits", [][2]string{
		{"Max position weight", utils.FormatFraction(cfg.Limits.MaxPositionWeight, 0)},
		{"Max risk", utils.FormatFraction(cfg.Limits.MaxRiskPercent, 0)},
	})
	source := cfg.MarketData.BaseURL
	if source == "" {
		source = cfg.MarketData.CandleDir
	}
	output.KeyValueTable("Market data", [][2]string{
		{"Source", source},
		{"Cache TTL", cfg.MarketData.CacheTTL.String()},
		{"Cache size", utils.FormatQuantity(int64(cfg.MarketData.CacheSize))},
		{"Currency", cur},
	})
}

// limits returns configured limits, falling back to package defaults.
func (a *App) limits() sizing.Limits {
	if a.Config == nil {
		return sizing.DefaultLimits()
	}
	return a.Config.SizingLimits()
}
