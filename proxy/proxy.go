package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jub0bs/cors"
	"go.uber.org/zap"

	"github.com/mohamedbeat/jsonrelay/config"
	"github.com/mohamedbeat/jsonrelay/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	maxRedirects    = 10
)

// blockedError stops a redirect chain that reaches a blocked host.
type blockedError struct {
	host string
}

func (e *blockedError) Error() string {
	return fmt.Sprintf("redirect to blocked host %s", e.host)
}

func New(log *zap.Logger, cfg *config.Config) (*Proxy, error) {
	p := &Proxy{
		Logger:    log,
		userAgent: cfg.UserAgent,
	}
	p.client = &http.Client{
		Timeout:       cfg.Timeout,
		CheckRedirect: p.checkRedirect,
	}

	if cfg.BlocklistPath != "" {
		bl, err := LoadBlocklist(cfg.BlocklistPath)
		if err != nil {
			return nil, err
		}
		p.blocked = bl
		log.Info("Loaded blocklist",
			zap.String("path", cfg.BlocklistPath),
			zap.Int("hosts", bl.Len()))
	}

	handler, err := p.routes()
	if err != nil {
		return nil, err
	}
	p.handler = handler
	return p, nil
}

// checkRedirect applies the blocklist to every hop, not just the first URL.
func (p *Proxy) checkRedirect(req *http.Request, via []*http.Request) error {
	if host := req.URL.Hostname(); p.blocked.Blocked(host) {
		return &blockedError{host: host}
	}
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

func (p *Proxy) routes() (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/proxy", p.handleProxy)
	r.Get("/", p.handleProxy)

	corsMw, err := cors.NewMiddleware(cors.Config{
		Origins: []string{"*"},
	})
	if err != nil {
		return nil, fmt.Errorf("configuring CORS: %w", err)
	}

	return logger.RequestLogger(p.Logger)(corsMw.Wrap(r)), nil
}

// Handler returns the full middleware chain: request logging, CORS, routing.
func (p *Proxy) Handler() http.Handler {
	return p.handler
}

// Start runs the proxy server until ctx is cancelled, then drains in-flight
// requests.
func (p *Proxy) Start(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           p.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	p.Logger.Info("Proxy server started", zap.String("addr", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	p.Logger.Info("Proxy server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
