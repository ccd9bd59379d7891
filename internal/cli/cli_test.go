package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/clausematrix/internal/model"
	"github.com/ppiankov/clausematrix/internal/pipeline"
)

const sonyTable = "Master clause matrix v3,,,,\n" +
	"Article,Clause Number,Clause Title,Baseline,Sony\n" +
	"2,1,Services,RHEI will provide services.,RHEI shall provide services to Sony.\n" +
	"2,2,Payment,Fees are due monthly.,✓\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// resetFlags restores the package flag state between tests
func resetFlags(t *testing.T) {
	t.Helper()
	cfg = model.DefaultConfig()
	targetParty, outJSON, outMD, applyOut = "", "", "", ""
	pretty, verbose = false, false
	t.Cleanup(func() {
		cfg = model.DefaultConfig()
		targetParty, outJSON, outMD, applyOut = "", "", "", ""
	})
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
analysis:
  exact_match_threshold: 0.9
  clause_severity:
    "2.1": high
cache:
  ttl: 5m
log:
  level: warn
`)
	t.Setenv("CLAUSEMATRIX_SERVER_ADDR", ":9999")

	loaded, used, err := readConfig(newSettings(), path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	assert.Equal(t, 0.9, loaded.Analysis.ExactMatchThreshold)
	assert.Equal(t, 0.80, loaded.Analysis.AcceptableModThreshold)
	assert.Equal(t, "high", loaded.Analysis.ClauseSeverity["2.1"])
	assert.Equal(t, "high", loaded.Analysis.TitleSeverity["payment"])
	assert.Equal(t, 5*time.Minute, loaded.Cache.TTL)
	assert.Equal(t, "warn", loaded.Log.Level)
	assert.Equal(t, ":9999", loaded.Server.Addr)
	assert.Equal(t, "{{COMPANY_NAME}}", loaded.Generator.Placeholders["company_name"])
}

func TestReadConfig_MissingExplicitFile(t *testing.T) {
	_, _, err := readConfig(newSettings(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWriteDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".clausematrix")

	path, err := writeDefaultConfig(dir)
	require.NoError(t, err)

	loaded, _, err := readConfig(newSettings(), path)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig().Analysis, loaded.Analysis)
	assert.Equal(t, model.DefaultConfig().Generator, loaded.Generator)

	_, err = writeDefaultConfig(dir)
	assert.Error(t, err, "existing config is not overwritten")
}

func TestAnalyzeDocument(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	matrixPath := writeFile(t, dir, "matrix.csv", sonyTable)
	docPath := writeFile(t, dir, "contract.txt", "2.1 Vendor may subcontract everything.\n2.2 Fees are due monthly.")

	targetParty = "Sony"
	outJSON = filepath.Join(dir, "report.json")
	applyOut = filepath.Join(dir, "revised.txt")

	var out bytes.Buffer
	report, err := analyzeDocument(context.Background(), pipeline.NewPipeline(cfg, nil), &out, matrixPath, docPath)
	require.NoError(t, err)

	assert.Equal(t, "contract.txt", report.Subject)
	assert.Equal(t, model.StatusUnacceptableModification, report.Results[0].Status)
	assert.True(t, strings.HasPrefix(out.String(), "Compliance index: 50/100"))
	assert.FileExists(t, outJSON)

	revised, err := os.ReadFile(applyOut)
	require.NoError(t, err)
	assert.Equal(t, "2.1 RHEI shall provide services to Sony.\n2.2 Fees are due monthly.", string(revised))
}

func TestAnalyzeDocument_BadMatrix(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	matrixPath := writeFile(t, dir, "matrix.csv", "only one line")
	docPath := writeFile(t, dir, "contract.txt", "2.1 x")

	_, err := analyzeDocument(context.Background(), pipeline.NewPipeline(cfg, nil), &bytes.Buffer{}, matrixPath, docPath)
	require.Error(t, err)
	assert.True(t, model.IsFormatError(err))
}

func TestRunBatchDocuments(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	matrixPath := writeFile(t, dir, "matrix.csv", sonyTable)
	good := writeFile(t, dir, "good.txt", "2.1 RHEI will provide services.\n2.2 Fees are due monthly.")
	missing := filepath.Join(dir, "missing.txt")
	outDir := filepath.Join(dir, "reports")

	summary, err := runBatchDocuments(context.Background(), pipeline.NewPipeline(cfg, nil), matrixPath, []string{good, missing}, outDir)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Rows, 2)
	assert.Equal(t, "100/100", summary.Rows[0][1])
	assert.True(t, strings.HasPrefix(summary.Rows[1][2], "failed:"))
	assert.FileExists(t, filepath.Join(outDir, "good.json"))
	assert.FileExists(t, filepath.Join(outDir, "good.md"))
}

func TestGenerateContract(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	matrixPath := writeFile(t, dir, "matrix.csv", sonyTable)

	var out bytes.Buffer
	err := generateContract(context.Background(), pipeline.NewPipeline(cfg, nil), &out, matrixPath,
		map[string]string{"company_name": "RHEI"}, "")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "ARTICLE 2\n\n2 1\nRHEI will provide services.\n\n2 2\nFees are due monthly.\n\n")
	assert.Contains(t, out.String(), "{{COUNTERPARTY_NAME}}")

	outPath := filepath.Join(dir, "contract.txt")
	require.NoError(t, generateContract(context.Background(), pipeline.NewPipeline(cfg, nil), &out, matrixPath, nil, outPath))
	assert.FileExists(t, outPath)
}

func TestListClauses(t *testing.T) {
	resetFlags(t)
	matrixPath := writeFile(t, t.TempDir(), "matrix.csv", sonyTable)

	var out bytes.Buffer
	require.NoError(t, listClauses(context.Background(), pipeline.NewPipeline(cfg, nil), &out, matrixPath))
	assert.Contains(t, out.String(), "2 clauses from matrix.csv")
	assert.Contains(t, out.String(), "Services")
	assert.Contains(t, out.String(), "Parties: Sony")
}

func TestExportMatrix(t *testing.T) {
	resetFlags(t)
	matrixPath := writeFile(t, t.TempDir(), "matrix.csv", sonyTable)

	var out bytes.Buffer
	require.NoError(t, exportMatrix(context.Background(), pipeline.NewPipeline(cfg, nil), &out, matrixPath, "tsv"))
	assert.Equal(t, "Article\tClause Number\tClause Title\tBaseline\tSony\n"+
		"2\t1\tServices\tRHEI will provide services.\tRHEI shall provide services to Sony.\n"+
		"2\t2\tPayment\tFees are due monthly.\t✓\n", out.String())

	err := exportMatrix(context.Background(), pipeline.NewPipeline(cfg, nil), &out, matrixPath, "xml")
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"contract.txt", "contract"},
		{"dir/My Contract.html", "My-Contract"},
		{"a:b?.txt", "a_b_"},
		{"", "report"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
}

func TestTableRender(t *testing.T) {
	tbl := newTable("Title", "Key", "Name")
	tbl.AddRow("2.1", "Services")
	tbl.AddRow("10.12")

	out := tbl.Render()
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "Services")
	assert.Contains(t, out, "10.12")
	assert.Len(t, strings.Split(out, "\n"), 5)

	assert.Equal(t, "Empty\n", newTable("Empty", "Key").Render())
}
