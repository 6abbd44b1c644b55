package liveness

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/transport"
)

const (
	DefaultReconnectDelay = 1500 * time.Millisecond
	DefaultPingInterval   = 30 * time.Second
)

// State is the keeper's view of its port.
type State int

const (
	StateClosed State = iota
	StateOpening
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// Dialer opens named ports towards the coordinator.
// transport.Bus and the websocket adapter both implement it.
type Dialer interface {
	Connect(name string) (transport.Port, error)
}

// Option configures a Keeper.
type Option func(*Keeper)

// WithReconnectDelay sets the wait before the single reconnect attempt.
func WithReconnectDelay(d time.Duration) Option {
	return func(k *Keeper) { k.reconnectDelay = d }
}

// WithPingInterval sets how often a ping is posted while open.
func WithPingInterval(d time.Duration) Option {
	return func(k *Keeper) { k.pingInterval = d }
}

// WithOnCloseSelf registers the callback run when the coordinator asks the UI to close.
func WithOnCloseSelf(fn func()) Option {
	return func(k *Keeper) { k.onCloseSelf = fn }
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(k *Keeper) { k.logger = logger }
}

// Keeper is the UI side of the liveness port.
type Keeper struct {
	dialer         Dialer
	reconnectDelay time.Duration
	pingInterval   time.Duration
	onCloseSelf    func()
	logger         *slog.Logger

	mu      sync.Mutex
	visible bool
	state   State
	port    transport.Port
	timer   *time.Timer

	reconnects atomic.Int64
	pongs      atomic.Int64
}

// NewKeeper creates a closed keeper. Non-positive durations fall back to the defaults.
func NewKeeper(d Dialer, opts ...Option) *Keeper {
	k := &Keeper{
		dialer:         d,
		reconnectDelay: DefaultReconnectDelay,
		pingInterval:   DefaultPingInterval,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.reconnectDelay <= 0 {
		k.reconnectDelay = DefaultReconnectDelay
	}
	if k.pingInterval <= 0 {
		k.pingInterval = DefaultPingInterval
	}
	return k
}

// Show marks the UI visible and opens the port if none is open.
func (k *Keeper) Show() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.visible = true
	if k.port == nil && k.state == StateClosed {
		k.open()
	}
}

// Hide marks the UI hidden, cancels a pending reconnect and closes the port.
func (k *Keeper) Hide() {
	k.mu.Lock()
	k.visible = false
	if k.timer != nil {
		k.timer.Stop()
		k.timer = nil
	}
	p := k.port
	k.port = nil
	k.state = StateClosed
	k.mu.Unlock()

	if p != nil {
		_ = p.Close()
	}
}

// State returns the current state.
func (k *Keeper) State() State {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state
}

// Reconnects returns how many reconnect attempts were made.
func (k *Keeper) Reconnects() int64 { return k.reconnects.Load() }

// Pongs returns how many pongs were received.
func (k *Keeper) Pongs() int64 { return k.pongs.Load() }

// open must be called with mu held.
func (k *Keeper) open() {
	k.state = StateOpening
	p, err := k.dialer.Connect(transport.KeepaliveName)
	if err != nil {
		k.state = StateClosed
		k.logger.Warn("could not open keepalive port", "err", err)
		return
	}
	k.port = p
	k.state = StateOpen
	k.logger.Debug("keepalive port opened")
	go k.watch(p)
}

func (k *Keeper) watch(p transport.Port) {
	ticker := time.NewTicker(k.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-p.Receive():
			switch msg.Type {
			case transport.PortPong:
				k.pongs.Add(1)
				k.logger.Debug("keepalive pong")
			case transport.PortCloseSelf:
				k.logger.Info("close-self message received")
				if k.onCloseSelf != nil {
					k.onCloseSelf()
				}
			}
		case <-ticker.C:
			if err := p.Post(transport.PortMessage{Type: transport.PortPing}); err != nil {
				k.logger.Debug("ping failed", "err", err)
			}
		case <-p.Done():
			k.disconnected(p)
			return
		}
	}
}

func (k *Keeper) disconnected(p transport.Port) {
	k.mu.Lock()
	defer k.mu.Unlock()

	// Hide already took this port down.
	if k.port != p {
		return
	}
	k.port = nil
	k.state = StateClosed
	k.logger.Info("keepalive port disconnected")

	if !k.visible {
		return
	}
	if k.timer != nil {
		k.timer.Stop()
	}
	k.timer = time.AfterFunc(k.reconnectDelay, func() {
		k.mu.Lock()
		defer k.mu.Unlock()
		k.timer = nil
		if !k.visible || k.port != nil {
			return
		}
		k.reconnects.Add(1)
		k.open()
	})
}
