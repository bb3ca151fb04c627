// Package webhook drives update ingestion over an inbound HTTPS endpoint.
package webhook

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/botcore/telegram"
)

// secretTokenHeader is echoed by the API server on every delivery when a
// secret token was registered.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// Dispatcher consumes decoded updates. Implemented by dispatch.Registry.
type Dispatcher interface {
	Dispatch(ctx context.Context, u *telegram.Update)
}

// Config holds the webhook driver settings.
type Config struct {
	// Addr is the listen address, e.g. ":8443".
	Addr string

	// PublicURL is the full externally reachable URL registered with
	// setWebhook. Its path is also the accepted request path unless Path
	// overrides it.
	PublicURL string

	// Path is the accepted request path. Derived from PublicURL when empty.
	Path string

	// IPAddress, when set, is passed to setWebhook so the API server bypasses
	// DNS resolution.
	IPAddress string

	// Certificate is an optional self-signed TLS certificate (PEM) uploaded
	// to the API server during registration. It forces the multipart path of
	// setWebhook.
	Certificate []byte

	// MaxConnections caps simultaneous deliveries (1..100). Zero keeps the
	// server default.
	MaxConnections int

	// AllowedUpdates narrows the update kinds the server delivers.
	AllowedUpdates []string

	// SecretToken, when set, must be echoed in the secret token header of
	// every delivery; requests without it are ignored. Generate one with
	// NewSecretToken.
	SecretToken string

	// DropPending discards the pending update backlog during registration.
	DropPending bool

	// Commands, when non-empty, is published via setMyCommands during
	// startup.
	Commands []telegram.BotCommand

	// RequestTimeout bounds the registration calls. Default: 60s.
	RequestTimeout time.Duration

	// TLSConfig serves the listener over TLS when set. Use AutocertTLS for
	// Let's Encrypt certificates or SelfSignedTLS for a local keypair.
	TLSConfig *tls.Config

	// Logger receives driver-level records. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the production webhook settings.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8443",
		RequestTimeout: 60 * time.Second,
	}
}

func (c *Config) normalize() error {
	if c.PublicURL == "" {
		return errors.New("webhook: public URL is required")
	}
	if c.Addr == "" {
		c.Addr = ":8443"
	}
	if c.Path == "" {
		if i := strings.Index(c.PublicURL, "://"); i >= 0 {
			rest := c.PublicURL[i+3:]
			if j := strings.IndexByte(rest, '/'); j >= 0 {
				c.Path = rest[j:]
			}
		}
		if c.Path == "" {
			c.Path = "/"
		}
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 60 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// NewSecretToken generates a token suitable for Config.SecretToken.
func NewSecretToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Server receives updates pushed by the API server.
type Server struct {
	bot        *telegram.Bot
	dispatcher Dispatcher
	cfg        Config
}

// New creates a webhook driver feeding dispatcher.
func New(bot *telegram.Bot, dispatcher Dispatcher, cfg Config) (*Server, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &Server{bot: bot, dispatcher: dispatcher, cfg: cfg}, nil
}

// Run registers the webhook, publishes the command menu, and serves until
// ctx is canceled. The registration is removed on shutdown.
func (s *Server) Run(ctx context.Context) error {
	if err := s.register(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:      s.cfg.Addr,
		Handler:   s.Handler(),
		TLSConfig: s.cfg.TLSConfig,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.cfg.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.cfg.Logger.Info("webhook serving", "addr", s.cfg.Addr, "path", s.cfg.Path)

	select {
	case err := <-errCh:
		return fmt.Errorf("webhook serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
	defer cancel()
	if err := s.bot.DeleteWebhook(shutdownCtx, false); err != nil {
		s.cfg.Logger.Warn("webhook deregistration failed", "error", err)
	}
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) register(ctx context.Context) error {
	params := telegram.SetWebhookParams{
		URL:                s.cfg.PublicURL,
		IPAddress:          s.cfg.IPAddress,
		MaxConnections:     s.cfg.MaxConnections,
		AllowedUpdates:     s.cfg.AllowedUpdates,
		DropPendingUpdates: s.cfg.DropPending,
		SecretToken:        s.cfg.SecretToken,
	}
	if len(s.cfg.Certificate) > 0 {
		params.Certificate = telegram.FileBytes("certificate.pem", s.cfg.Certificate)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	err := s.bot.SetWebhook(callCtx, params)
	cancel()
	if err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	if len(s.cfg.Commands) > 0 {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		err := s.bot.SetMyCommands(callCtx, s.cfg.Commands)
		cancel()
		if err != nil {
			return fmt.Errorf("set commands: %w", err)
		}
	}
	return nil
}

// Handler returns the HTTP handler implementing the acceptance rule: POST,
// exact path, JSON content type, and the secret token when configured.
// Non-conforming requests receive an empty 200 without dispatching.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !s.accepts(req) {
			w.WriteHeader(http.StatusOK)
			return
		}

		body, err := io.ReadAll(req.Body)
		if err != nil {
			s.cfg.Logger.Error("webhook body read failed", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		update, err := telegram.DecodeUpdate(body)
		if err != nil {
			s.cfg.Logger.Error("webhook update malformed", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		s.dispatcher.Dispatch(req.Context(), update)
		w.WriteHeader(http.StatusOK)
	})
}

func (s *Server) accepts(req *http.Request) bool {
	if req.Method != http.MethodPost {
		return false
	}
	if req.URL.Path != s.cfg.Path {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return false
	}
	if s.cfg.SecretToken != "" && req.Header.Get(secretTokenHeader) != s.cfg.SecretToken {
		return false
	}
	return true
}
