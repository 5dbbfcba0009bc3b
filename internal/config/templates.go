package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Position Sizer Configuration

[sizing]
# Fraction of the portfolio risked per trade (fixed-risk and ATR sizing)
risk_percent = 0.01
# ATR lookback in bars
atr_period = 14
# Stop distance in ATRs
atr_multiplier = 2.0
# Share counts are rounded down to this lot size
lot_size = 1
# Kelly inputs used when not given on the command line
win_rate = 0.5
avg_win = 0.10
avg_loss = 0.05

[limits]
# Largest allowed position as a fraction of the portfolio
max_position_weight = 0.10
# Largest allowed loss at the stop as a fraction of the portfolio
max_risk_percent = 0.05

[marketdata]
# JSON candle endpoint; leave empty to read <candle_dir>/<SYMBOL>.csv
base_url = ""
api_key = ""
# candle_dir = "~/.config/position-sizer/candles"
timeout = "15s"
# Requests per second
rate_limit = 5.0
cache_ttl = "5m"
cache_size = 256
sweep_interval = "1m"

[log]
# debug, info, warn, error
level = "info"
# Also write rotating JSON logs to path
file = false
# path = "~/.config/position-sizer/logs/sizer.log"
max_size = 20
max_backups = 5
max_age = 30

[ui]
currency = "$"
color_enabled = true
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}
