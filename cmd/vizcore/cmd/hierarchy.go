package cmd

import (
	"github.com/spf13/cobra"

	"github.com/solatis/vizcore/internal/dataset"
	"github.com/solatis/vizcore/internal/hierarchy"
)

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy --data FILE --group COL[,COL...] --aggregate COL",
	Short: "Aggregate a dataset file into a group tree",
	Args:  cobra.NoArgs,
	RunE:  runHierarchy,
}

func init() {
	rootCmd.AddCommand(hierarchyCmd)
	hierarchyCmd.Flags().String("data", "", "dataset file (.csv, .json, .parquet)")
	hierarchyCmd.Flags().StringSlice("group", nil, "group columns, outermost first")
	hierarchyCmd.Flags().String("aggregate", "", "column summed at the leaves")
	hierarchyCmd.Flags().StringSlice("info", nil, "extra columns summed alongside the aggregate")
	_ = hierarchyCmd.MarkFlagRequired("data")
	_ = hierarchyCmd.MarkFlagRequired("group")
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	dataPath, _ := cmd.Flags().GetString("data")
	groups, _ := cmd.Flags().GetStringSlice("group")
	aggregate, _ := cmd.Flags().GetString("aggregate")
	info, _ := cmd.Flags().GetStringSlice("info")

	ds, err := dataset.LoadFile(dataPath)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), hierarchy.Build(ds.Records(), groups, aggregate, info))
}
