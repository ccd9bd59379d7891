package host

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/clausematrix/internal/extract"
)

// OpenFile loads a plain text, markdown or HTML export into a TextHost
func OpenFile(path string) (*TextHost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	text, err := DocumentText(filepath.Ext(path), string(data))
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	return NewTextHost(text), nil
}

// DocumentText returns the analyzable text of raw content. HTML is reduced
// to its visible text; everything else is used verbatim.
func DocumentText(ext, content string) (string, error) {
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		return extract.VisibleText(content)
	case ".txt", ".md", ".text":
		return content, nil
	}
	if extract.LooksLikeHTML(content) {
		return extract.VisibleText(content)
	}
	return content, nil
}
