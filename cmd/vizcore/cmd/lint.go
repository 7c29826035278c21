package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solatis/vizcore/internal/rules"
)

var lintCmd = &cobra.Command{
	Use:   "lint FILE...",
	Short: "Report style rules that would fault or can never match",
	Long: `Checks rule files for shapes the engine tolerates but that never
contribute a style: missing color blocks, malformed condition values,
unknown operators. Errors fail the command; warnings are only printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		list, err := rules.LoadFile(path)
		if err != nil {
			return err
		}
		problems := rules.Lint(list)
		for _, p := range problems {
			fmt.Fprintf(out, "%s: %s\n", path, p)
			if p.Severity == rules.SeverityError {
				failed++
			}
		}
		logger.Debug("linted rule file",
			zap.String("path", path),
			zap.Int("rules", len(list)),
			zap.Int("problems", len(problems)))
	}
	if failed > 0 {
		return fmt.Errorf("%d rule error(s)", failed)
	}
	return nil
}
