// Package source loads raw clause tables from inline text, local files or URLs.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/clausematrix/internal/cache"
)

// Kind tags where an Input's value comes from
type Kind string

const (
	KindText Kind = "text"
	KindFile Kind = "file"
	KindURL  Kind = "url"
)

// Input names one tabular data source
type Input struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"` // Inline table, file path or URL depending on Kind
}

// Text wraps inline tabular content
func Text(content string) Input { return Input{Kind: KindText, Value: content} }

// File names a local tabular file
func File(path string) Input { return Input{Kind: KindFile, Value: path} }

// URL names a remote tabular file
func URL(rawURL string) Input { return Input{Kind: KindURL, Value: rawURL} }

// FromArg classifies a command-line argument as a URL or a file path
func FromArg(arg string) Input {
	lower := strings.ToLower(arg)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return URL(arg)
	}
	return File(arg)
}

// Raw is tabular content with a label describing its origin
type Raw struct {
	Content string
	Origin  string
}

// Loader resolves Inputs to raw content; remote content is cached
type Loader struct {
	fetcher *Fetcher
	cache   cache.Cache
	logger  *zap.Logger
}

// NewLoader creates a loader. Either dependency may be nil: without a fetcher
// URL inputs fail, without a cache every URL is downloaded.
func NewLoader(fetcher *Fetcher, c cache.Cache, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, cache: c, logger: logger}
}

// Load returns the content of the input
func (l *Loader) Load(ctx context.Context, in Input) (*Raw, error) {
	switch in.Kind {
	case KindText:
		return &Raw{Content: in.Value, Origin: "inline"}, nil

	case KindFile:
		data, err := os.ReadFile(in.Value)
		if err != nil {
			return nil, fmt.Errorf("read clause table: %w", err)
		}
		return &Raw{Content: string(data), Origin: filepath.Base(in.Value)}, nil

	case KindURL:
		return l.loadURL(ctx, in.Value)

	default:
		return nil, fmt.Errorf("unknown source kind %q", in.Kind)
	}
}

func (l *Loader) loadURL(ctx context.Context, rawURL string) (*Raw, error) {
	key := cache.Key(rawURL)
	if l.cache != nil {
		if data, ok := l.cache.Get(key); ok {
			l.logger.Debug("clause table cache hit", zap.String("url", rawURL))
			return &Raw{Content: string(data), Origin: rawURL}, nil
		}
	}

	if l.fetcher == nil {
		return nil, fmt.Errorf("fetch clause table %s: remote sources are not configured", rawURL)
	}

	result, err := l.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch clause table: %w", err)
	}

	if l.cache != nil {
		if err := l.cache.Set(key, []byte(result.Content), 0); err != nil {
			l.logger.Warn("cache write failed", zap.String("url", rawURL), zap.Error(err))
		}
	}
	l.logger.Info("clause table fetched", zap.String("url", result.FinalURL), zap.Int("bytes", len(result.Content)))
	return &Raw{Content: result.Content, Origin: result.FinalURL}, nil
}
