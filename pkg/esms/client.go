// Package esms is the composition root: it builds the default client
// graph (store, transport, session manager, service clients) from one
// Config. Components take collaborators explicitly; nothing here is
// package-global, and tests wire fakes directly instead of using New.
package esms

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/esms-io/esms-go/pkg/auth"
	"github.com/esms-io/esms-go/pkg/config"
	"github.com/esms-io/esms-go/pkg/reservation"
	"github.com/esms-io/esms-go/pkg/resource"
	"github.com/esms-io/esms-go/pkg/store"
	"github.com/esms-io/esms-go/pkg/telemetry"
	"github.com/esms-io/esms-go/pkg/transport"
)

const storeFileName = "store.json"

// Client bundles the wired collaborators. Construct one per process.
type Client struct {
	Config       config.Config
	Store        store.Store
	Transport    *transport.Client
	Auth         *auth.Manager
	Reservations *reservation.Service
	Resources    *resource.Service

	tel *telemetry.Manager
	log zerolog.Logger
}

// New builds the client graph from cfg. With a StoreDir the session
// survives restarts in a file-backed store shared with sibling
// processes; without one it lives in memory.
func New(ctx context.Context, cfg config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("esms: log level %q: %w", cfg.LogLevel, err)
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	var tel *telemetry.Manager
	if cfg.OTLPEndpoint != "" {
		tel, err = telemetry.NewManager(ctx, telemetry.Config{
			ServiceName: "esms-go",
			Endpoint:    cfg.OTLPEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("esms: telemetry: %w", err)
		}
	}

	var st store.Store
	if cfg.StoreDir != "" {
		fs, err := store.NewFileStore(filepath.Join(cfg.StoreDir, storeFileName))
		if err != nil {
			return nil, err
		}
		st = fs
	} else {
		st = store.NewMemoryStore()
	}

	// The token source closes over the manager variable assigned just
	// below, so the transport always reads the freshest stored token.
	var mgr *auth.Manager
	client := transport.New(transport.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Logger:  log.With().Str("component", "transport").Logger(),
		Tracer:  tel.Tracer(),
		TokenSource: func() string {
			if mgr == nil {
				return ""
			}
			if s := mgr.LoadSession(); s != nil {
				return s.AccessToken
			}
			return ""
		},
	})
	mgr = auth.NewManager(auth.ManagerOptions{
		Client:      client,
		Store:       st,
		SessionKey:  cfg.SessionKey,
		RefreshLead: cfg.RefreshLead,
		Logger:      log.With().Str("component", "auth").Logger(),
	})

	return &Client{
		Config:       cfg,
		Store:        st,
		Transport:    client,
		Auth:         mgr,
		Reservations: reservation.NewService(client),
		Resources:    resource.NewService(client),
		tel:          tel,
		log:          log,
	}, nil
}

// NewBinding builds a reactive binding over the client's session
// manager, wired to the store's change notifications when the store
// supports them. Call Start on the result.
func (c *Client) NewBinding(onChange func(auth.State)) *auth.Binding {
	watcher, _ := c.Store.(store.Watcher)
	return auth.NewBinding(c.Auth, auth.BindingOptions{
		Watcher:  watcher,
		Interval: c.Config.RefreshInterval,
		OnChange: onChange,
		Logger:   c.log.With().Str("component", "binding").Logger(),
	})
}

// Close flushes telemetry. Bindings are stopped by their own teardown
// functions.
func (c *Client) Close(ctx context.Context) error {
	return c.tel.Shutdown(ctx)
}
