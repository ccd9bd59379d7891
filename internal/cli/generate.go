package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clausematrix/internal/pipeline"
	"github.com/ppiankov/clausematrix/internal/source"
)

var (
	genVars map[string]string
	genOut  string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <matrix>",
	Short: "Assemble a baseline contract from a clause matrix",
	Long: `Generate writes every baseline clause in article order between the
configured header and footer, replacing placeholder tokens with the values
given by --var. Unsupplied placeholders are left in place.

Variables: company_name, counterparty_name, address, date

Example:
  clausematrix generate matrix.csv --var company_name=RHEI --var counterparty_name=Sony
  clausematrix generate matrix.csv --out contract.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringToStringVar(&genVars, "var", nil, "placeholder value as name=value (repeatable)")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", "output path (default: stdout)")
	generateCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	p := pipeline.NewPipeline(cfg, logger)
	return generateContract(ctx, p, cmd.OutOrStdout(), args[0], genVars, genOut)
}

func generateContract(ctx context.Context, p *pipeline.Pipeline, w io.Writer, matrixArg string, vars map[string]string, out string) error {
	if _, err := p.Load(ctx, source.FromArg(matrixArg)); err != nil {
		return err
	}

	contract := p.Generate(vars)
	if out == "" {
		_, err := io.WriteString(w, contract)
		return err
	}
	if err := os.WriteFile(out, []byte(contract), 0644); err != nil {
		return fmt.Errorf("write contract: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote contract: %s\n", out)
	}
	return nil
}
