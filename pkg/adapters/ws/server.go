package ws

import (
	"log/slog"
	"net/http"

	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/transport"
	"github.com/gorilla/websocket"
)

// NameParam is the query parameter carrying the port name.
const NameParam = "name"

// Option configures a Handler or Dialer.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	origins []string
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAllowedOrigins restricts the Origin header of upgrade requests.
// No origins, or "*", allows all.
func WithAllowedOrigins(origins ...string) Option {
	return func(o *options) {
		o.origins = origins
	}
}

func newOptions(opts []Option) options {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func makeUpgrader(allowed []string) websocket.Upgrader {
	allowAll := len(allowed) == 0 || (len(allowed) == 1 && allowed[0] == "*")
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || set[origin]
		},
	}
}

// Handler upgrades requests to websocket ports and hands each one to accept,
// the same way transport.Bus hands in-memory ports to its acceptor.
func Handler(accept func(transport.Port), opts ...Option) http.Handler {
	o := newOptions(opts)
	upgrader := makeUpgrader(o.origins)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get(NameParam)
		if name == "" {
			http.Error(w, "missing port name", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			o.logger.Warn("websocket upgrade failed", "err", err)
			return
		}
		o.logger.Debug("port connected", "port", name, "remote", r.RemoteAddr)
		go accept(newPort(name, conn, o.logger))
	})
}
