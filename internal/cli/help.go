package cli

import (
	"github.com/spf13/cobra"
)

type helpEntry struct {
	cmd  string
	desc string
}

func newCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List all commands by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			output.Bold("Position Sizer Commands")
			output.Println()

			categories := []struct {
				name     string
				commands []helpEntry
			}{
				{"Sizing", []helpEntry{
					{"size fixed", "Fixed fractional risk sizing"},
					{"size kelly", "Half-Kelly sizing, capped at 25%"},
					{"size atr", "ATR stop sizing (long only)"},
					{"lot <shares> [lot]", "Round shares down to whole lots"},
				}},
				{"Market data", []helpEntry{
					{"atr [symbol]", "Average true range from candles"},
				}},
				{"Configuration", []helpEntry{
					{"config show", "Show effective configuration"},
					{"config path", "Show configuration directory"},
					{"config validate", "Check configuration values"},
				}},
				{"Help", []helpEntry{
					{"commands", "List all commands"},
					{"examples", "Common workflows"},
					{"version", "Version information"},
				}},
			}

			for _, cat := range categories {
				output.Bold(cat.name)
				for _, c := range cat.commands {
					output.Printf("  %s %s\n", PadRight(c.cmd, 22), c.desc)
				}
				output.Println()
			}

			output.Dim("Use 'sizer help <command>' for detailed help on any command")
			return nil
		},
	}
}

func newExamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "Show common workflow examples",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			sections := []struct {
				title    string
				commands []string
			}{
				{"Risk 1% between entry and stop", []string{
					"sizer size fixed --portfolio 100000 --entry 50 --stop 49",
					"sizer size fixed --portfolio 100000 --entry 50 --stop 49 --target 53 --lot 100",
				}},
				{"Kelly sizing from trade statistics", []string{
					"sizer size kelly --portfolio 100000 --entry 20 --stop 19 --win-rate 0.6 --avg-win 0.10 --avg-loss 0.05",
				}},
				{"ATR stops", []string{
					"sizer size atr --portfolio 100000 --entry 100 --atr 2.5",
					"sizer size atr --portfolio 100000 --candles ./AAPL.csv --atr-mult 3",
					"sizer atr AAPL --period 20",
				}},
				{"Scripting", []string{
					"sizer size fixed --portfolio 100000 --entry 50 --stop 49 --json",
					"sizer size kelly --portfolio 50000 --entry 10 --stop 9.5 --strict || echo 'over limits'",
				}},
			}

			for _, s := range sections {
				output.Bold(s.title)
				for _, c := range s.commands {
					output.Info("  $ %s", c)
				}
				output.Println()
			}
			return nil
		},
	}
}
