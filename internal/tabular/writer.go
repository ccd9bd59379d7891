package tabular

import (
	"strings"
)

// Serialize renders rows back into delimited text with a single header row.
// TSV output cannot carry tabs or newlines inside a value; they become spaces.
func Serialize(headers []string, rows []map[string]string, format Format) string {
	if format == FormatAuto {
		format = FormatCSV
	}
	sep := string(format.Separator())

	var buf strings.Builder
	writeRecord := func(values []string) {
		for i, v := range values {
			if i > 0 {
				buf.WriteString(sep)
			}
			buf.WriteString(encodeField(v, format))
		}
		buf.WriteString("\n")
	}

	writeRecord(headers)
	for _, row := range rows {
		values := make([]string, len(headers))
		for i, h := range headers {
			values[i] = row[h]
		}
		writeRecord(values)
	}

	return buf.String()
}

func encodeField(v string, format Format) string {
	if format == FormatTSV {
		return strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ").Replace(v)
	}
	if strings.ContainsAny(v, "\"\r\n"+string(format.Separator())) {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}
