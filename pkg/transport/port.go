package transport

import (
	"errors"
	"sync"
)

// Port message types.
const (
	PortPing      = "ping"
	PortPong      = "pong"
	PortCloseSelf = "close-self"
)

// KeepaliveName is the port name the coordinator keeps alive.
const KeepaliveName = "skury-keepalive"

// ErrPortClosed is returned when posting on a disconnected port.
var ErrPortClosed = errors.New("port closed")

// PortMessage is the unit exchanged over a Port.
type PortMessage struct {
	Type string `json:"type"`
}

// Port is a long-lived duplex channel between exactly two endpoints.
type Port interface {
	Name() string
	// Post sends msg to the other end. It fails with ErrPortClosed after disconnect.
	Post(msg PortMessage) error
	// Receive yields messages from the other end. Select on Done alongside it.
	Receive() <-chan PortMessage
	// Done is closed when either end closes the port.
	Done() <-chan struct{}
	Close() error
}

type pipeState struct {
	once sync.Once
	done chan struct{}
}

type pipeEnd struct {
	name  string
	in    chan PortMessage
	peer  *pipeEnd
	state *pipeState
}

// NewPipe returns the two connected ends of an in-memory port.
func NewPipe(name string) (Port, Port) {
	st := &pipeState{done: make(chan struct{})}
	a := &pipeEnd{name: name, in: make(chan PortMessage, 16), state: st}
	b := &pipeEnd{name: name, in: make(chan PortMessage, 16), state: st}
	a.peer, b.peer = b, a
	return a, b
}

func (p *pipeEnd) Name() string { return p.name }

func (p *pipeEnd) Post(msg PortMessage) error {
	select {
	case <-p.state.done:
		return ErrPortClosed
	default:
	}
	select {
	case <-p.state.done:
		return ErrPortClosed
	case p.peer.in <- msg:
		return nil
	}
}

func (p *pipeEnd) Receive() <-chan PortMessage { return p.in }

func (p *pipeEnd) Done() <-chan struct{} { return p.state.done }

func (p *pipeEnd) Close() error {
	p.state.once.Do(func() { close(p.state.done) })
	return nil
}
