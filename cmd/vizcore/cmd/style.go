package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solatis/vizcore/internal/charts"
	"github.com/solatis/vizcore/internal/dataset"
	"github.com/solatis/vizcore/internal/rules"
	"github.com/solatis/vizcore/internal/types"
)

var styleCmd = &cobra.Command{
	Use:   "style --data FILE (--rules FILE --column NAME | --chart FILE)",
	Short: "Evaluate table style rules against a dataset file",
	Long: `Evaluates conditional style rules against every row of a dataset and
prints the row and cell styles as JSON.

Rules come either from a rule file (YAML or JSON) applied to one column, or
from the conditionStyle lists of a chart configuration.`,
	Args: cobra.NoArgs,
	RunE: runStyle,
}

func init() {
	rootCmd.AddCommand(styleCmd)
	styleCmd.Flags().String("data", "", "dataset file (.csv, .json, .parquet)")
	styleCmd.Flags().String("rules", "", "rule file (.yaml, .yml, .json)")
	styleCmd.Flags().String("column", "", "column the rule file's cell rules style")
	styleCmd.Flags().String("chart", "", "chart configuration file with conditionStyle lists")
	_ = styleCmd.MarkFlagRequired("data")
	styleCmd.MarkFlagsMutuallyExclusive("rules", "chart")
	styleCmd.MarkFlagsRequiredTogether("rules", "column")
}

func runStyle(cmd *cobra.Command, args []string) error {
	dataPath, _ := cmd.Flags().GetString("data")
	rulesPath, _ := cmd.Flags().GetString("rules")
	column, _ := cmd.Flags().GetString("column")
	chartPath, _ := cmd.Flags().GetString("chart")

	ds, err := dataset.LoadFile(dataPath)
	if err != nil {
		return err
	}

	var columns []charts.ColumnRules
	switch {
	case rulesPath != "":
		list, err := rules.LoadFile(rulesPath)
		if err != nil {
			return err
		}
		if ds.ColumnIndex(column) < 0 {
			return fmt.Errorf("%w: %s", types.ErrColumnNotFound, column)
		}
		columns = []charts.ColumnRules{{Column: column, Rules: list}}
	case chartPath != "":
		chart, err := loadChartConfig(chartPath)
		if err != nil {
			return err
		}
		columns = charts.TableRules(chart)
	default:
		return fmt.Errorf("one of --rules or --chart is required")
	}
	for _, c := range columns {
		if len(c.Rules) > cfg.StyleAPI.MaxRules {
			return fmt.Errorf("%w: column %s has %d rules, limit %d", types.ErrTooManyRules, c.Column, len(c.Rules), cfg.StyleAPI.MaxRules)
		}
	}

	engine := rules.NewEngine(logger.Named("rules"))
	return writeJSON(cmd.OutOrStdout(), charts.TableStyles(engine, ds, columns))
}

// loadChartConfig reads a chart configuration document.
func loadChartConfig(path string) (charts.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return charts.Config{}, fmt.Errorf("read chart config: %w", err)
	}
	chart, err := charts.ParseConfig(data)
	if err != nil {
		return charts.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return chart, nil
}
