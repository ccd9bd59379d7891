package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ppiankov/clausematrix/internal/pipeline"
	"github.com/ppiankov/clausematrix/internal/server"
	"github.com/ppiankov/clausematrix/internal/source"
)

var (
	serveAddr   string
	serveMatrix string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the clause matrix API for a document task pane",
	Long: `Serve starts an HTTP API that loads clause matrices, lists clauses and
parties, analyzes document text and generates contracts.

Example:
  clausematrix serve --addr :8080
  clausematrix serve --matrix matrix.csv`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr from config)")
	serveCmd.Flags().StringVar(&serveMatrix, "matrix", "", "clause matrix file or URL to load at startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	p := pipeline.NewPipeline(cfg, logger)
	if serveMatrix != "" {
		loadCtx, cancel := context.WithTimeout(ctx, time.Minute)
		_, err := p.Load(loadCtx, source.FromArg(serveMatrix))
		cancel()
		if err != nil {
			return err
		}
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	if err := server.New(p, logger.Named("http")).Run(ctx, addr); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
