package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/clausematrix/internal/logging"
	"github.com/ppiankov/clausematrix/internal/model"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string

	settings = newSettings()
	cfg      = model.DefaultConfig()
	logger   = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clausematrix",
	Short: "clausematrix - clause matrix comparison and compliance scoring",
	Long: `clausematrix compares contract documents against a clause matrix: a table
of baseline clauses and the variations each counterparty has accepted.

Every baseline clause is classified as an exact match, an acceptable
modification, an unacceptable modification or missing, and the document gets
a compliance index with transparent scoring signals.

Similarity is word overlap only. clausematrix reports how closely a document
follows the matrix; it does not interpret what a clause means.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number for clausematrix.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("clausematrix %s\n", Version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.clausematrix/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	// Bind flags to settings
	_ = settings.BindPFlag("output"+keyDelimiter+"verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = settings.BindPFlag("log"+keyDelimiter+"level", rootCmd.PersistentFlags().Lookup("log-level"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// setup reads the configuration and builds the logger
func setup() error {
	loaded, used, err := readConfig(settings, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	// Verbose implies debug logs unless a level was chosen explicitly
	if verbose && logLevel == "" {
		cfg.Log.Level = "debug"
	}

	l, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logger = l

	if used != "" && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
	}
	return nil
}
