package model

import "time"

// Config holds all clausematrix settings
type Config struct {
	Matrix       MatrixConfig       `yaml:"matrix" mapstructure:"matrix"`
	Analysis     AnalysisConfig     `yaml:"analysis" mapstructure:"analysis"`
	Generator    GeneratorConfig    `yaml:"generator" mapstructure:"generator"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// MatrixConfig controls how tabular clause data is read
type MatrixConfig struct {
	Format    string        `yaml:"format" mapstructure:"format"`         // "", "csv", "tsv", "pipe"; empty auto-detects
	HeaderRow int           `yaml:"header_row" mapstructure:"header_row"` // Zero-based index of the canonical header row
	Columns   ColumnsConfig `yaml:"columns" mapstructure:"columns"`
}

// ColumnsConfig lists the header fragments used to locate identifier columns
type ColumnsConfig struct {
	Article      []string `yaml:"article" mapstructure:"article"`
	ClauseNumber []string `yaml:"clause_number" mapstructure:"clause_number"`
	Title        []string `yaml:"title" mapstructure:"title"`
	Baseline     []string `yaml:"baseline" mapstructure:"baseline"`
	Notes        []string `yaml:"notes" mapstructure:"notes"`
}

// AnalysisConfig holds thresholds and the missing-clause severity policy
type AnalysisConfig struct {
	ExactMatchThreshold    float64           `yaml:"exact_match_threshold" mapstructure:"exact_match_threshold"`
	AcceptableModThreshold float64           `yaml:"acceptable_modification_threshold" mapstructure:"acceptable_modification_threshold"`
	SeverityWeights        map[string]int    `yaml:"severity_weights" mapstructure:"severity_weights"` // severity -> penalty points
	ClauseSeverity         map[string]string `yaml:"clause_severity" mapstructure:"clause_severity"`   // clause key -> severity
	TitleSeverity          map[string]string `yaml:"title_severity" mapstructure:"title_severity"`     // title fragment -> severity
	DefaultSeverity        string            `yaml:"default_severity" mapstructure:"default_severity"`
	MinTokenLength         int               `yaml:"min_token_length" mapstructure:"min_token_length"`
	Stopwords              bool              `yaml:"stopwords" mapstructure:"stopwords"`
}

// GeneratorConfig holds the fixed blocks and placeholder tokens for contract generation
type GeneratorConfig struct {
	Header       string            `yaml:"header" mapstructure:"header"`
	Footer       string            `yaml:"footer" mapstructure:"footer"`
	Placeholders map[string]string `yaml:"placeholders" mapstructure:"placeholders"` // variable name -> literal token
}

// HTTPConfig configures remote tabular source fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// RateLimitingConfig limits requests per source host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig configures the in-memory source and matrix cache
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the task-pane HTTP surface
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Matrix: MatrixConfig{
			HeaderRow: 1,
			Columns: ColumnsConfig{
				Article:      []string{"article"},
				ClauseNumber: []string{"clause number", "clause no", "clause #"},
				Title:        []string{"clause title", "title"},
				Baseline:     []string{"baseline"},
				Notes:        []string{"notes", "comment"},
			},
		},
		Analysis: AnalysisConfig{
			ExactMatchThreshold:    0.95,
			AcceptableModThreshold: 0.80,
			SeverityWeights: map[string]int{
				string(SeverityHigh):   15,
				string(SeverityMedium): 10,
				string(SeverityLow):    5,
			},
			ClauseSeverity: map[string]string{},
			TitleSeverity: map[string]string{
				"revenue":      string(SeverityHigh),
				"payment":      string(SeverityHigh),
				"termination":  string(SeverityHigh),
				"liability":    string(SeverityMedium),
				"indemn":       string(SeverityMedium),
				"confidential": string(SeverityMedium),
			},
			DefaultSeverity: string(SeverityLow),
			MinTokenLength:  3,
			Stopwords:       true,
		},
		Generator: GeneratorConfig{
			Header: "MASTER SERVICES AGREEMENT\n\n" +
				"This Agreement is entered into as of {{DATE}} between {{COMPANY_NAME}} " +
				"and {{COUNTERPARTY_NAME}}, located at {{ADDRESS}}.\n\n",
			Footer: "IN WITNESS WHEREOF, the parties have executed this Agreement as of the date first written above.\n\n" +
				"{{COMPANY_NAME}}\n\nBy: ____________________\n\n" +
				"{{COUNTERPARTY_NAME}}\n\nBy: ____________________\n",
			Placeholders: map[string]string{
				"company_name":      "{{COMPANY_NAME}}",
				"counterparty_name": "{{COUNTERPARTY_NAME}}",
				"address":           "{{ADDRESS}}",
				"date":              "{{DATE}}",
			},
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "clausematrix/0.1 (+https://github.com/ppiankov/clausematrix)",
			MaxBodyBytes:  10_000_000,
			RespectRobots: true,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             30 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
