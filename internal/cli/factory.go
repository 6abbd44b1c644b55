package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/skury"
	"github.com/aretw0/skury/internal/config"
	"github.com/aretw0/skury/pkg/adapters/file"
	"github.com/aretw0/skury/pkg/adapters/keyring"
	"github.com/aretw0/skury/pkg/adapters/memory"
	"github.com/aretw0/skury/pkg/adapters/redis"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/gemini"
	"github.com/aretw0/skury/pkg/liveness"
	"github.com/aretw0/skury/pkg/persistence/middleware"
	"github.com/aretw0/skury/pkg/ports"
)

// ParseLevel maps a config log level to slog. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// OpenStore builds the preference store described by cfg.
// The returned close function releases the backend connection, if any.
func OpenStore(cfg config.Config, secure ports.PreferenceStore) (ports.PreferenceStore, func() error, error) {
	var (
		base    ports.PreferenceStore
		closeFn = func() error { return nil }
	)
	switch cfg.Store.Backend {
	case config.StoreMemory:
		base = memory.NewStore()
	case config.StoreFile:
		base = file.New(cfg.Store.Path)
	case config.StoreRedis:
		r := redis.New(cfg.Store.Redis.Addr, "", cfg.Store.Redis.DB, redis.WithPrefix(cfg.Store.Redis.Prefix))
		base, closeFn = r, r.Close
	default:
		return nil, nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalid, cfg.Store.Backend)
	}

	var mws []middleware.Middleware
	key, err := cfg.Key()
	if err != nil {
		return nil, nil, err
	}
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: key,
			Keys:      []string{domain.KeyAPICredential},
		}))
	}
	if cfg.Credential == config.CredentialKeyring {
		if secure == nil {
			secure = keyring.New(keyring.DefaultService)
		}
		mws = append(mws, middleware.NewRouteMiddleware(secure, domain.KeyAPICredential))
	}
	return middleware.Chain(base, mws...), closeFn, nil
}

// NewCoordinator assembles a coordinator from cfg. A key from the environment
// takes precedence over the stored credential.
func NewCoordinator(cfg config.Config, store ports.PreferenceStore, logger *slog.Logger) (*skury.Coordinator, error) {
	geminiOpts := []gemini.Option{
		gemini.WithLogger(logger),
		gemini.WithEndpoint(cfg.Endpoint),
		gemini.WithModel(cfg.Model),
		gemini.WithTimeout(cfg.RequestTimeout),
	}
	opts := []skury.Option{
		skury.WithLogger(logger),
		skury.WithStore(store),
		skury.WithReplyTimeout(cfg.ReplyTimeout),
		skury.WithKeeperOptions(
			liveness.WithReconnectDelay(cfg.ReconnectDelay),
			liveness.WithPingInterval(cfg.PingInterval),
		),
	}
	if cfg.APIKey != "" {
		opts = append(opts, skury.WithModel(gemini.New(gemini.StaticKey(cfg.APIKey), geminiOpts...)))
	} else {
		opts = append(opts, skury.WithGeminiOptions(geminiOpts...))
	}

	coord, err := skury.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing coordinator: %w", err)
	}
	return coord, nil
}
