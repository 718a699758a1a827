package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"shiro/internal/infra/config"
)

// Server is the HTTP gateway exposing the invoke endpoints.
type Server struct {
	invoker   Invoker
	auth      Authenticator
	limiter   *rate.Limiter
	logger    *slog.Logger
	addr      string
	httpSrv   *http.Server
	boundAddr string
}

// NewServer creates a gateway server from configuration.
func NewServer(invoker Invoker, cfg config.GatewayConfig, logger *slog.Logger) *Server {
	var auth Authenticator = NoAuth{}
	if cfg.Auth.Type == "static" {
		entries := make([]TokenEntry, len(cfg.Auth.Tokens))
		for i, t := range cfg.Auth.Tokens {
			entries[i] = TokenEntry{Token: t.Token, Name: t.Name}
		}
		auth = NewStaticTokenAuth(entries)
	}

	var limiter *rate.Limiter
	if cfg.RateLimit.Enabled {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	}

	return &Server{
		invoker: invoker,
		auth:    auth,
		limiter: limiter,
		logger:  logger,
		addr:    cfg.Addr,
	}
}

// Start begins serving. Blocks until the context is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /invoke", s.guard(s.handleInvoke))
	mux.HandleFunc("POST /invoke_streamed", s.guard(s.handleInvokeStreamed))
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}
	s.boundAddr = listener.Addr().String()

	s.httpSrv = &http.Server{Handler: mux}

	s.logger.Info("gateway started", "addr", s.boundAddr)

	go func() {
		<-ctx.Done()
		s.Stop(context.Background())
	}()

	if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("gateway serve: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the gateway server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// BoundAddr returns the actual address the server bound to. Only valid after Start.
func (s *Server) BoundAddr() string { return s.boundAddr }

// guard wraps a handler with rate limiting and bearer auth.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		info, err := s.auth.Authenticate(bearerToken(r))
		if err != nil {
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		s.logger.Debug("request authenticated", "client", info.Name, "path", r.URL.Path)

		next(w, r)
	}
}
