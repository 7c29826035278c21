package cmd

import (
	"github.com/spf13/cobra"

	"github.com/solatis/vizcore/internal/charts"
	"github.com/solatis/vizcore/internal/dataset"
	"github.com/solatis/vizcore/internal/rules"
)

var renderCmd = &cobra.Command{
	Use:   "render KIND --data FILE --chart FILE",
	Short: "Build a chart option (treemap, graph, scorecard, table) from a dataset file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("data", "", "dataset file (.csv, .json, .parquet)")
	renderCmd.Flags().String("chart", "", "chart configuration file")
	renderCmd.Flags().Float64("width", 800, "container width in pixels")
	renderCmd.Flags().Float64("height", 600, "container height in pixels")
	_ = renderCmd.MarkFlagRequired("data")
}

func runRender(cmd *cobra.Command, args []string) error {
	kind, err := charts.ParseKind(args[0])
	if err != nil {
		return err
	}
	dataPath, _ := cmd.Flags().GetString("data")
	chartPath, _ := cmd.Flags().GetString("chart")
	width, _ := cmd.Flags().GetFloat64("width")
	height, _ := cmd.Flags().GetFloat64("height")

	ds, err := dataset.LoadFile(dataPath)
	if err != nil {
		return err
	}
	chart := charts.MustParseConfig("{}")
	if chartPath != "" {
		if chart, err = loadChartConfig(chartPath); err != nil {
			return err
		}
	}

	renderer := charts.NewRenderer(rules.NewEngine(logger.Named("rules")))
	option, err := renderer.Render(charts.Request{
		Kind:    kind,
		Dataset: ds,
		Config:  chart,
		Width:   width,
		Height:  height,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), option)
}
