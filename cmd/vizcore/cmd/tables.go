package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/vizcore/internal/core/db"
)

var tablesCmd = &cobra.Command{
	Use:   "tables [TABLE]",
	Short: "List the data source's tables, or one table's columns",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTables,
}

var queryCmd = &cobra.Command{
	Use:   "query SQL",
	Short: "Run a read-only query against the data source and print the dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(queryCmd)
}

func connectProvider(cmd *cobra.Command) (*db.Provider, error) {
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("--db-url required (or database.url in config)")
	}
	return openProvider(cmd.Context(), cfg.Database)
}

func runTables(cmd *cobra.Command, args []string) error {
	provider, err := connectProvider(cmd)
	if err != nil {
		return err
	}
	defer provider.Close()

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		cols, err := provider.Columns(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, c := range cols {
			fmt.Fprintf(out, "%s\t%s\n", c.Name, c.Type)
		}
		return nil
	}

	tables, err := provider.Tables(cmd.Context())
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Fprintln(out, t)
	}
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	provider, err := connectProvider(cmd)
	if err != nil {
		return err
	}
	defer provider.Close()

	ds, err := provider.Query(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), ds)
}
