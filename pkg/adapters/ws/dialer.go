package ws

import (
	"fmt"
	"net/url"

	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/transport"
	"github.com/gorilla/websocket"
)

// Dialer opens ports against a Handler. It satisfies liveness.Dialer.
type Dialer struct {
	url  string
	opts options
}

// NewDialer targets the websocket URL of a Handler, such as ws://host/v1/ports.
func NewDialer(rawURL string, opts ...Option) *Dialer {
	return &Dialer{url: rawURL, opts: newOptions(opts)}
}

// Connect dials a new port named name.
func (d *Dialer) Connect(name string) (transport.Port, error) {
	u, err := url.Parse(d.url)
	if err != nil {
		return nil, fmt.Errorf("parse port url: %w", err)
	}
	q := u.Query()
	q.Set(NameParam, name)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", domain.ErrNoReceiver, u.Redacted(), err)
	}
	return newPort(name, conn, d.opts.logger), nil
}
