package skury

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/adapters/memory"
	"github.com/aretw0/skury/pkg/bridge"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/gemini"
	"github.com/aretw0/skury/pkg/liveness"
	"github.com/aretw0/skury/pkg/observability"
	"github.com/aretw0/skury/pkg/page"
	"github.com/aretw0/skury/pkg/panel"
	"github.com/aretw0/skury/pkg/ports"
	"github.com/aretw0/skury/pkg/router"
	"github.com/aretw0/skury/pkg/surface"
	"github.com/aretw0/skury/pkg/transport"
)

// Version is the release of this module.
const Version = "0.4.0"

// Client addresses used by the coordinator's own callers.
const (
	// ActionAddress is the toolbar button.
	ActionAddress transport.Address = "action"
	// ClientAddress is used by Dispatch for adapters such as HTTP and MCP.
	ClientAddress transport.Address = "client"
)

// installNotice is logged once when the coordinator starts without a credential.
const installNotice = "Set your Gemini API key with `skury config set-key` " +
	"or the " + domain.KeyAPICredential + " preference."

// Coordinator wires the bus, the router, the surfaces and their pages and panels.
type Coordinator struct {
	bus      *transport.Bus
	store    ports.PreferenceStore
	model    ports.Model
	registry *surface.Registry
	router   *router.Router
	acceptor *liveness.Acceptor
	metrics  *observability.Metrics

	action *transport.Endpoint
	client *transport.Endpoint

	geminiOpts   []gemini.Option
	keeperOpts   []liveness.Option
	replyTimeout time.Duration
	logger       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*page.Session
	panels   map[string]*panel.Panel
	bridges  map[string]func()
	keepers  []*liveness.Keeper
}

// New assembles a coordinator. Without WithStore preferences live in memory,
// and without WithModel the Gemini client reads its key from the store.
func New(opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		logger:   logging.NewNop(),
		sessions: make(map[string]*page.Session),
		panels:   make(map[string]*panel.Panel),
		bridges:  make(map[string]func()),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		c.store = memory.NewStore()
	}
	if c.model == nil {
		c.model = gemini.New(c.storedKey, append([]gemini.Option{gemini.WithLogger(c.logger)}, c.geminiOpts...)...)
	}
	if c.metrics == nil {
		c.metrics = observability.NewMetrics()
	}

	c.bus = transport.NewBus(transport.WithLogger(c.logger))
	c.acceptor = liveness.NewAcceptor(c.logger)
	c.bus.OnConnect(c.acceptor.Accept)

	c.registry = surface.NewRegistry(
		surface.WithContentScript(c.runContentScript),
		surface.WithLogger(c.logger),
	)

	c.router = router.New(c.bus.Endpoint(transport.Coordinator), c.model,
		router.WithLogger(c.logger),
		router.WithLocator(c.registry),
		router.WithInjector(c.registry),
		router.WithCapturer(c.registry),
		router.WithLifecycleHooks(c.metrics.Hooks()),
	)
	if err := c.router.Start(); err != nil {
		return nil, fmt.Errorf("failed to start router: %w", err)
	}
	c.metrics.WatchPorts(c.acceptor.Connected, c.reconnects)

	c.action = c.bus.Endpoint(ActionAddress)
	c.client = c.bus.Endpoint(ClientAddress)

	c.logger.Info("coordinator started", "version", Version)
	c.noticeCredential(context.Background())
	return c, nil
}

func (c *Coordinator) storedKey(ctx context.Context) (string, error) {
	vals, err := c.store.Get(ctx, domain.KeyAPICredential)
	if err != nil {
		return "", err
	}
	return vals[domain.KeyAPICredential], nil
}

func (c *Coordinator) noticeCredential(ctx context.Context) {
	key, err := c.storedKey(ctx)
	if err != nil {
		c.logger.Warn("could not read credential", "err", err)
		return
	}
	if key == "" {
		c.logger.Info(installNotice)
	}
}

// runContentScript starts a page session in s. It is the registry's injection.
func (c *Coordinator) runContentScript(ctx context.Context, s surface.Surface) error {
	ep := c.bus.Endpoint(transport.SurfaceAddress(s.ID))
	opts := []page.Option{page.WithLogger(c.logger)}
	if s.Viewport.W > 0 && s.Viewport.H > 0 {
		opts = append(opts, page.WithViewport(s.Viewport))
	}
	sess, err := page.New(ep, transport.NewRuntime(ep, c.store), s.URL, s.HTML, opts...)
	if err != nil {
		return err
	}
	sess.LoadTheme(ctx)

	c.mu.Lock()
	if prev, ok := c.sessions[s.ID]; ok && prev != sess {
		prev.Close()
	}
	c.sessions[s.ID] = sess
	c.mu.Unlock()
	return nil
}

// OpenSurface registers a loaded document and makes it active.
// The content script runs right away unless the URL is restricted.
func (c *Coordinator) OpenSurface(ctx context.Context, s surface.Surface) (string, error) {
	id := c.registry.Open(s)
	if surface.Restricted(s.URL) {
		c.logger.Debug("surface opened without content script", "surface_id", id, "url", s.URL)
		return id, nil
	}
	if err := c.registry.Inject(ctx, id); err != nil {
		return id, err
	}
	return id, nil
}

// OpenBareSurface registers a document whose content script has not run yet.
// Requests to it go through the router's injection remediation.
func (c *Coordinator) OpenBareSurface(s surface.Surface) string {
	return c.registry.Open(s)
}

// CloseSurface tears down the page and panel of id.
func (c *Coordinator) CloseSurface(id string) {
	c.mu.Lock()
	sess := c.sessions[id]
	pnl := c.panels[id]
	closeBridge := c.bridges[id]
	delete(c.sessions, id)
	delete(c.panels, id)
	delete(c.bridges, id)
	c.mu.Unlock()

	if pnl != nil {
		pnl.Close()
	}
	if closeBridge != nil {
		closeBridge()
	}
	if sess != nil {
		sess.Close()
	}
	c.registry.Close(id)
}

// Activate focuses surface id.
func (c *Coordinator) Activate(id string) error {
	return c.registry.Activate(id)
}

// Session returns the page session running in surface id.
func (c *Coordinator) Session(id string) (*page.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	return s, ok
}

// Panel returns the panel of surface id, if it was opened.
func (c *Coordinator) Panel(id string) (*panel.Panel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.panels[id]
	return p, ok
}

// ClickAction is the toolbar button: it toggles the in-page panel of the active
// surface, injecting the content script when needed, and shows or hides the
// panel's keepalive accordingly.
func (c *Coordinator) ClickAction(ctx context.Context) (domain.Response, error) {
	resp, err := c.action.Send(ctx, transport.Coordinator, domain.TogglePanel{})
	if err != nil {
		return resp, err
	}
	if resp.IsError() {
		return resp, resp.Err()
	}

	id, err := c.registry.ActiveSurface(ctx)
	if err != nil {
		return resp, nil
	}
	sess, ok := c.Session(id)
	if !ok {
		return resp, nil
	}
	if sess.PanelOpen() {
		if _, err := c.OpenPanel(id); err != nil {
			return resp, err
		}
	} else if p, ok := c.Panel(id); ok {
		p.Hide()
	}
	return resp, nil
}

// OpenPanel creates, or reuses, the panel of surface id and makes it visible.
func (c *Coordinator) OpenPanel(id string) (*panel.Panel, error) {
	c.mu.Lock()
	if p, ok := c.panels[id]; ok {
		c.mu.Unlock()
		p.Show()
		return p, nil
	}
	c.mu.Unlock()

	if _, ok := c.registry.Get(id); !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoTarget, id)
	}

	keeper := liveness.NewKeeper(c.bus, append([]liveness.Option{liveness.WithLogger(c.logger)}, c.keeperOpts...)...)
	ep := c.bus.Endpoint(transport.PanelAddress(id))
	opts := []panel.Option{panel.WithLogger(c.logger), panel.WithKeeper(keeper)}
	if c.replyTimeout > 0 {
		opts = append(opts, panel.WithReplyTimeout(c.replyTimeout))
	}

	// The panel runs in the page world and reaches the runtime through the bridge.
	doc := bridge.NewDocumentChannel()
	listener := bridge.NewListener(doc, transport.NewRuntime(ep, c.store), bridge.WithLogger(c.logger))
	proxy := bridge.NewProxy(doc, bridge.WithLogger(c.logger))
	closeBridge := func() {
		proxy.Close()
		listener.Close()
	}

	p, err := panel.New(ep, proxy, opts...)
	if err != nil {
		closeBridge()
		return nil, err
	}

	c.mu.Lock()
	if existing, ok := c.panels[id]; ok {
		c.mu.Unlock()
		p.Close()
		closeBridge()
		existing.Show()
		return existing, nil
	}
	c.panels[id] = p
	c.bridges[id] = closeBridge
	c.keepers = append(c.keepers, keeper)
	c.mu.Unlock()

	if err := p.LoadTheme(context.Background()); err != nil {
		c.logger.Debug("panel theme not loaded", "surface_id", id, "err", err)
	}
	p.Show()
	return p, nil
}

func (c *Coordinator) reconnects() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range c.keepers {
		n += k.Reconnects()
	}
	return n
}

// Dispatch sends msg to the router as a non-page client and returns its reply.
// Failures are reported inside the response, like for any other sender.
func (c *Coordinator) Dispatch(ctx context.Context, msg domain.Message) (domain.Response, error) {
	return c.client.Send(ctx, transport.Coordinator, msg)
}

// Ask runs one chat call and returns the model's reply text.
func (c *Coordinator) Ask(ctx context.Context, prompt string) (string, error) {
	return c.AskImage(ctx, prompt, "")
}

// AskImage is Ask with an image attached as a data URL.
func (c *Coordinator) AskImage(ctx context.Context, prompt, imageData string) (string, error) {
	resp, err := c.Dispatch(ctx, domain.RemoteCall{Prompt: prompt, ImageData: imageData})
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// SetAPIKey stores the model credential.
func (c *Coordinator) SetAPIKey(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("empty api key")
	}
	return c.store.Set(ctx, map[string]string{domain.KeyAPICredential: key})
}

// Surfaces lists the open surfaces and the id of the active one.
func (c *Coordinator) Surfaces() ([]surface.Surface, string) {
	active, _ := c.registry.ActiveSurface(context.Background())
	return c.registry.List(), active
}

// Store returns the preference store shared by every context.
func (c *Coordinator) Store() ports.PreferenceStore { return c.store }

// Registry returns the surface registry.
func (c *Coordinator) Registry() *surface.Registry { return c.registry }

// Metrics returns the coordinator's collectors.
func (c *Coordinator) Metrics() *observability.Metrics { return c.metrics }

// Acceptor returns the coordinator side of keepalive ports, for remote ports
// such as the websocket adapter.
func (c *Coordinator) Acceptor() *liveness.Acceptor { return c.acceptor }

// Bus returns the message bus.
func (c *Coordinator) Bus() *transport.Bus { return c.bus }

// Close tears down every context. Open keepalive ports are asked to close first.
func (c *Coordinator) Close() {
	c.acceptor.CloseAll()

	c.mu.Lock()
	panels := make([]*panel.Panel, 0, len(c.panels))
	for _, p := range c.panels {
		panels = append(panels, p)
	}
	bridges := make([]func(), 0, len(c.bridges))
	for _, fn := range c.bridges {
		bridges = append(bridges, fn)
	}
	c.mu.Unlock()
	for _, p := range panels {
		p.Close()
	}
	for _, fn := range bridges {
		fn()
	}

	c.bus.Close()
	c.logger.Info("coordinator stopped")
}
