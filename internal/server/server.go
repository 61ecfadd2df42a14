// Package server exposes the content library and star map over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"ftlnomad/internal/config"
	"ftlnomad/internal/content"
	"ftlnomad/internal/middleware"
	"ftlnomad/internal/session"
	"ftlnomad/internal/starmap"
)

const shutdownTimeout = 10 * time.Second

// Options wires a Server. Engine and Flags default from Config when nil.
// Assets, when set, is served under /images/.
type Options struct {
	Config  *config.ProjectConfig
	Library *content.Library
	Engine  *starmap.Engine
	Flags   session.FlagStore
	Assets  fs.FS
	Logger  *slog.Logger
	Version string
}

type Server struct {
	cfg     *config.ProjectConfig
	library *content.Library
	engine  *starmap.Engine
	flags   session.FlagStore
	assets  fs.FS
	logger  *slog.Logger
	version string
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	flags := opts.Flags
	if flags == nil {
		flags = session.NewCookieStore(opts.Config.Server.CookieSecure)
	}
	engine := opts.Engine
	if engine == nil {
		engine = starmap.NewEngine(opts.Library.Systems, starmap.Options{
			MaxRadius:   opts.Config.Grid.MaxRadius,
			SearchLimit: opts.Config.Grid.SearchLimit,
			Logger:      logger.With("component", "starmap"),
		})
	}
	return &Server{
		cfg:     opts.Config,
		library: opts.Library,
		engine:  engine,
		flags:   flags,
		assets:  opts.Assets,
		logger:  logger.With("component", "server"),
		version: opts.Version,
	}
}

// Handler wraps the routes in the middleware stack. ctx bounds background
// work started by the middleware.
func (s *Server) Handler(ctx context.Context) http.Handler {
	limiter := middleware.NewRateLimiter(ctx, s.cfg.Server.RateLimit, s.logger)
	return middleware.Chain(s.routes(),
		middleware.RequestID,
		middleware.AccessLog(s.logger),
		middleware.NewCORS(s.cfg.Server.CORSOrigins, false),
		limiter.Middleware,
	)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(ctx),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String(), "version", s.version)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
