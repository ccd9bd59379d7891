// Package server exposes the clause matrix to a document task pane over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/clausematrix/internal/host"
	"github.com/ppiankov/clausematrix/internal/model"
	"github.com/ppiankov/clausematrix/internal/pipeline"
	"github.com/ppiankov/clausematrix/internal/source"
)

// Server serves the matrix, analysis and generation API
type Server struct {
	pipeline *pipeline.Pipeline
	router   *gin.Engine
	logger   *zap.Logger
}

// New creates a server backed by the pipeline; nil logger means no logging
func New(p *pipeline.Pipeline, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		pipeline: p,
		router:   gin.New(),
		logger:   logger,
	}

	s.router.Use(RequestID())
	s.router.Use(Recovery(logger))
	s.router.Use(RequestLogger(logger))

	s.router.GET("/health", s.health)

	api := s.router.Group("/api")
	{
		api.POST("/matrix", s.loadMatrix)
		api.GET("/clauses", s.listClauses)
		api.GET("/clauses/:key", s.getClause)
		api.GET("/parties", s.listParties)
		api.POST("/analyze", s.analyze)
		api.POST("/apply", s.apply)
		api.POST("/generate", s.generate)
	}

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) health(c *gin.Context) {
	resp := gin.H{"status": "ok", "clauses": 0}
	if snap := s.pipeline.Snapshot(); snap != nil {
		resp["clauses"] = snap.Matrix.Len()
		resp["source"] = snap.Source
		resp["loaded_at"] = snap.LoadedAt
	}
	c.JSON(http.StatusOK, resp)
}

type loadRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

func (s *Server) loadMatrix(c *gin.Context) {
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var in source.Input
	switch {
	case req.Text != "" && req.URL != "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide either text or url, not both"})
		return
	case req.URL != "":
		in = source.URL(req.URL)
	case strings.TrimSpace(req.Text) != "":
		in = source.Text(req.Text)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "No clause data provided"})
		return
	}

	snap, err := s.pipeline.Load(c.Request.Context(), in)
	if err != nil {
		s.logger.Warn("clause data load failed", zap.Error(err), zap.String("request_id", GetRequestID(c)))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "could not load clause data",
			"detail": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"source":   snap.Source,
		"clauses":  snap.Matrix.Len(),
		"parties":  snap.Matrix.PartyNames(),
		"articles": snap.Matrix.ArticleNumbers(),
	})
}

func (s *Server) listClauses(c *gin.Context) {
	m := s.pipeline.Matrix()
	clauses := []*model.Clause{}
	if m.Len() > 0 {
		clauses = m.Clauses()
	}
	c.JSON(http.StatusOK, gin.H{"clauses": clauses})
}

func (s *Server) getClause(c *gin.Context) {
	key := c.Param("key")
	clause, ok := s.pipeline.Matrix().Clause(key)
	if !ok {
		err := &model.NotFoundError{Key: key}
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, clause)
}

func (s *Server) listParties(c *gin.Context) {
	parties := []string{}
	if m := s.pipeline.Matrix(); m.Len() > 0 {
		parties = m.PartyNames()
	}
	c.JSON(http.StatusOK, gin.H{"parties": parties})
}

type analyzeRequest struct {
	Text        string `json:"text"`
	TargetParty string `json:"target_party"`
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	report, err := s.pipeline.Analyze(c.Request.Context(), host.NewTextHost(req.Text), req.TargetParty)
	if err != nil {
		s.analysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) apply(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	doc := host.NewTextHost(req.Text)
	report, err := s.pipeline.Analyze(ctx, doc, req.TargetParty)
	if err != nil {
		s.analysisError(c, err)
		return
	}

	applied, err := s.pipeline.Apply(ctx, doc, report)
	if err != nil {
		s.analysisError(c, err)
		return
	}
	text, err := doc.GetAllText(ctx)
	if err != nil {
		s.analysisError(c, err)
		return
	}
	revisions, err := doc.ListRevisions(ctx)
	if err != nil {
		s.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":    report,
		"applied":   applied,
		"document":  text,
		"revisions": revisions,
	})
}

type generateRequest struct {
	Variables map[string]string `json:"variables"`
}

func (s *Server) generate(c *gin.Context) {
	var req generateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"contract": s.pipeline.Generate(req.Variables)})
}

func (s *Server) analysisError(c *gin.Context, err error) {
	switch {
	case model.IsEmptyMatrix(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case model.IsHostUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.logger.Error("analysis failed", zap.Error(err), zap.String("request_id", GetRequestID(c)))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Analysis failed",
			"request_id": GetRequestID(c),
		})
	}
}
