// Package server exposes the annotation backend over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/gjson"

	"furiganalyrics/annotate"
	"furiganalyrics/config"
	"furiganalyrics/model"
	"furiganalyrics/observe"
)

const (
	// ServiceName is reported by /health.
	ServiceName = "furigana-lyrics"
	// FuriganaPath is the conversion endpoint.
	FuriganaPath = "/api/furigana"
)

// Annotator converts a request into annotated lines.
type Annotator interface {
	Annotate(ctx context.Context, req model.Request) ([]model.Line, error)
}

// Server routes HTTP requests to an Annotator.
type Server struct {
	cfg       config.ServerConfig
	annotator Annotator
	router    *gin.Engine
	log       *log.Logger
}

// New builds the router. metrics may be nil to use observe.DefaultMetrics().
func New(a Annotator, cfg config.ServerConfig, metrics *observe.Metrics, checkers ...Checker) *Server {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	s := &Server{
		cfg:       cfg,
		annotator: a,
		router:    gin.New(),
		log:       log.WithPrefix("server"),
	}
	health := NewHealth(ServiceName, checkers...)

	s.router.Use(gin.Recovery())
	s.router.Use(ObserveMiddleware(metrics, s.log))
	s.router.Use(CORSMiddleware(cfg.Origins()))

	s.router.POST(FuriganaPath, s.furigana)
	s.router.GET("/health", health.Status)
	s.router.GET("/healthz", health.Healthz)
	s.router.GET("/readyz", health.Readyz)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

// furigana handles {"lyrics": string, "katakana": bool}. katakana defaults
// to true.
func (s *Server) furigana(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("cannot read request body"))
		return
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		c.JSON(http.StatusBadRequest, errorBody(annotate.ErrEmptyLyrics.Error()))
		return
	}
	lyrics := gjson.GetBytes(body, "lyrics")
	if !lyrics.Exists() {
		c.JSON(http.StatusBadRequest, errorBody(annotate.ErrEmptyLyrics.Error()))
		return
	}
	if lyrics.Type != gjson.String {
		c.JSON(http.StatusBadRequest, errorBody("lyrics must be a string"))
		return
	}
	req := model.Request{Lyrics: lyrics.Str, Katakana: true}
	if k := gjson.GetBytes(body, "katakana"); k.Exists() {
		req.Katakana = truthy(k)
	}

	lines, err := s.annotator.Annotate(c.Request.Context(), req)
	switch {
	case errors.Is(err, annotate.ErrTooLong):
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	case err != nil:
		s.log.Error("annotation failed", "err", err)
		c.JSON(http.StatusInternalServerError, errorBody("internal server error: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, lines)
}

// truthy follows JSON truthiness: false, null, 0, "" and empty containers
// are false.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.JSON:
		if r.IsArray() {
			return len(r.Array()) > 0
		}
		return len(r.Map()) > 0
	}
	return false
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", "address", "http://"+ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.log.Debug("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown failed: %w", err)
	}
	s.log.Info("server shutdown completed")
	return nil
}
