package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clausematrix/internal/pipeline"
	"github.com/ppiankov/clausematrix/internal/source"
	"github.com/ppiankov/clausematrix/internal/tabular"
)

var exportFormat string

// clausesCmd represents the clauses command
var clausesCmd = &cobra.Command{
	Use:   "clauses <matrix>",
	Short: "List the clauses and parties of a clause matrix",
	Long: `Clauses loads a clause matrix and prints every baseline clause with the
parties that negotiated a different wording for it.

Example:
  clausematrix clauses matrix.csv
  clausematrix clauses https://example.com/matrix.tsv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		return listClauses(ctx, pipeline.NewPipeline(cfg, logger), cmd.OutOrStdout(), args[0])
	},
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <matrix>",
	Short: "Re-serialize a clause matrix as CSV, TSV or pipe-delimited text",
	Long: `Export loads a clause matrix and writes it back out with a single header
row, in clause key order.

Example:
  clausematrix export matrix.tsv --format csv > matrix.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		return exportMatrix(ctx, pipeline.NewPipeline(cfg, logger), cmd.OutOrStdout(), args[0], exportFormat)
	},
}

func init() {
	rootCmd.AddCommand(clausesCmd)
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format: csv, tsv, pipe")
}

func listClauses(ctx context.Context, p *pipeline.Pipeline, w io.Writer, matrixArg string) error {
	snap, err := p.Load(ctx, source.FromArg(matrixArg))
	if err != nil {
		return err
	}
	m := snap.Matrix

	t := newTable(fmt.Sprintf("%d clauses from %s", m.Len(), snap.Source), "Key", "Title", "Modified by")
	for _, c := range m.Clauses() {
		var parties []string
		for _, mod := range c.AcceptableModifications {
			parties = append(parties, mod.Party)
		}
		t.AddRow(c.Key, c.Title, strings.Join(parties, ", "))
	}
	_, err = fmt.Fprintln(w, t.Render())
	if err != nil {
		return err
	}
	if parties := m.PartyNames(); len(parties) > 0 {
		_, err = fmt.Fprintf(w, "Parties: %s\n", strings.Join(parties, ", "))
	}
	return err
}

func exportMatrix(ctx context.Context, p *pipeline.Pipeline, w io.Writer, matrixArg, format string) error {
	f := tabular.ParseFormat(format)
	if f == tabular.FormatAuto {
		return fmt.Errorf("unknown export format %q", format)
	}

	snap, err := p.Load(ctx, source.FromArg(matrixArg))
	if err != nil {
		return err
	}
	headers, rows := snap.Matrix.Export()
	if len(headers) == 0 {
		return fmt.Errorf("nothing to export: %s has no clauses", snap.Source)
	}
	_, err = io.WriteString(w, tabular.Serialize(headers, rows, f))
	return err
}
