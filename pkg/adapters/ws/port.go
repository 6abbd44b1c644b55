package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/skury/pkg/transport"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Port is a transport.Port over one websocket connection.
type Port struct {
	name   string
	conn   *websocket.Conn
	logger *slog.Logger

	in   chan transport.PortMessage
	done chan struct{}
	once sync.Once

	writeMu sync.Mutex
}

var _ transport.Port = (*Port)(nil)

func newPort(name string, conn *websocket.Conn, logger *slog.Logger) *Port {
	p := &Port{
		name:   name,
		conn:   conn,
		logger: logger,
		in:     make(chan transport.PortMessage, 16),
		done:   make(chan struct{}),
	}
	go p.readLoop()
	return p
}

func (p *Port) Name() string { return p.name }

func (p *Port) Post(msg transport.PortMessage) error {
	select {
	case <-p.done:
		return transport.ErrPortClosed
	default:
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := p.conn.WriteJSON(msg); err != nil {
		p.shutdown()
		return errors.Join(transport.ErrPortClosed, err)
	}
	return nil
}

func (p *Port) Receive() <-chan transport.PortMessage { return p.in }

func (p *Port) Done() <-chan struct{} { return p.done }

// Close sends a close frame and releases the connection.
func (p *Port) Close() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	p.writeMu.Lock()
	_ = p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	p.writeMu.Unlock()
	p.shutdown()
	return nil
}

func (p *Port) shutdown() {
	p.once.Do(func() {
		close(p.done)
		_ = p.conn.Close()
	})
}

func (p *Port) readLoop() {
	defer p.shutdown()
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				p.logger.Debug("port read failed", "port", p.name, "err", err)
			}
			return
		}
		var msg transport.PortMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			p.logger.Warn("invalid port message", "port", p.name, "err", err)
			continue
		}
		select {
		case p.in <- msg:
		case <-p.done:
			return
		}
	}
}
