// Package tabular reads delimiter-separated clause tables.
package tabular

import (
	"strings"

	"github.com/ppiankov/clausematrix/internal/model"
)

// Format is the column separator of a table
type Format string

const (
	FormatAuto Format = ""
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatPipe Format = "pipe"
)

// detectFloor is how many times a separator must be exceeded to win detection
const detectFloor = 5

// Separator returns the separator byte for the format
func (f Format) Separator() byte {
	switch f {
	case FormatTSV:
		return '\t'
	case FormatPipe:
		return '|'
	default:
		return ','
	}
}

// ParseFormat maps a config or flag value onto a Format
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tsv", "tab":
		return FormatTSV
	case "pipe", "psv":
		return FormatPipe
	case "csv", "comma":
		return FormatCSV
	default:
		return FormatAuto
	}
}

// Options controls parsing
type Options struct {
	Format    Format
	HeaderRow int // Zero-based; rows before it are discarded
	Columns   model.ColumnsConfig
}

// DefaultOptions returns options matching the default configuration
func DefaultOptions() Options {
	cfg := model.DefaultConfig()
	return OptionsFromConfig(cfg.Matrix)
}

// OptionsFromConfig builds parse options from matrix configuration
func OptionsFromConfig(cfg model.MatrixConfig) Options {
	return Options{
		Format:    ParseFormat(cfg.Format),
		HeaderRow: cfg.HeaderRow,
		Columns:   cfg.Columns,
	}
}

// Table is the parsed result
type Table struct {
	Format  Format
	Headers []string
	Rows    []map[string]string // header -> trimmed cell, in source order
	Columns ColumnMap
}

// Parse parses raw delimited text into rows keyed by the header row
func Parse(raw string, opts Options) (*Table, error) {
	if countNonEmptyLines(raw) < 2 {
		return nil, &model.FormatError{Reason: "need at least 2 non-empty lines"}
	}

	format := opts.Format
	if format == FormatAuto {
		format = DetectFormat(raw)
	}

	records := Records(raw, format)

	headerRow := opts.HeaderRow
	if headerRow < 0 {
		headerRow = 0
	}
	if headerRow >= len(records) {
		return nil, &model.FormatError{Reason: "header row is past the end of input"}
	}

	headers := make([]string, len(records[headerRow]))
	for i, h := range records[headerRow] {
		headers[i] = strings.TrimSpace(h)
	}

	var tier []string
	if headerRow > 0 {
		tier = records[headerRow-1]
	}

	columns, err := ResolveColumns(headers, tier, opts.Columns)
	if err != nil {
		return nil, err
	}

	table := &Table{
		Format:  format,
		Headers: headers,
		Columns: columns,
	}

	for _, record := range records[headerRow+1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			} else {
				row[h] = ""
			}
		}
		if !columns.HasIdentifier(row) {
			// Title pages, table-of-contents rows and section banners
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// Records splits raw text into non-blank records using the given format
func Records(raw string, format Format) [][]string {
	var records [][]string
	if format == FormatTSV {
		records = splitPlain(raw, "\t")
	} else {
		records = splitQuoted(raw, format.Separator())
	}
	return dropBlankRecords(records)
}

// DetectFormat picks a separator by counting candidates in the first non-empty line
func DetectFormat(raw string) Format {
	line := firstNonEmptyLine(raw)
	tabs := strings.Count(line, "\t")
	commas := strings.Count(line, ",")
	pipes := strings.Count(line, "|")

	if tabs > commas && tabs > detectFloor {
		return FormatTSV
	}
	if pipes > commas && pipes > detectFloor {
		return FormatPipe
	}
	return FormatCSV
}

// splitQuoted splits text honoring double-quote field quoting
func splitQuoted(raw string, sep byte) [][]string {
	var records [][]string
	var record []string
	var field strings.Builder
	inQuotes := false

	endField := func() {
		record = append(record, field.String())
		field.Reset()
	}
	endRecord := func() {
		endField()
		records = append(records, record)
		record = nil
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(raw) && raw[i+1] == '"' {
				field.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == sep && !inQuotes:
			endField()
		case c == '\r' && !inQuotes:
			// Swallowed; the following \n ends the record
		case c == '\n' && !inQuotes:
			endRecord()
		default:
			field.WriteByte(c)
		}
	}

	if field.Len() > 0 || len(record) > 0 {
		endRecord()
	}

	return records
}

// splitPlain splits text on newlines then on sep with no quote handling
func splitPlain(raw string, sep string) [][]string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	records := make([][]string, 0, len(lines))
	for _, line := range lines {
		records = append(records, strings.Split(strings.TrimSuffix(line, "\r"), sep))
	}
	return records
}

func dropBlankRecords(records [][]string) [][]string {
	out := records[:0]
	for _, r := range records {
		blank := true
		for _, f := range r {
			if strings.TrimSpace(f) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, r)
		}
	}
	return out
}

func firstNonEmptyLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

func countNonEmptyLines(raw string) int {
	n := 0
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
