package bridge

import "sync"

// Channel is an untyped broadcast shared by every script of one document.
// Posted values are delivered to every subscriber, including the poster,
// and must be treated as read-only.
type Channel interface {
	Post(msg map[string]any)
	// Subscribe returns the delivery channel and the function that ends the subscription.
	Subscribe() (<-chan map[string]any, func())
}

// DocumentChannel is the in-memory Channel of a single document.
type DocumentChannel struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewDocumentChannel creates an empty channel.
func NewDocumentChannel() *DocumentChannel {
	return &DocumentChannel{subs: make(map[*subscriber]struct{})}
}

// Post never blocks; each subscriber has an unbounded queue.
func (c *DocumentChannel) Post(msg map[string]any) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for s := range c.subs {
		s.push(msg)
	}
}

func (c *DocumentChannel) Subscribe() (<-chan map[string]any, func()) {
	s := &subscriber{
		notify: make(chan struct{}, 1),
		out:    make(chan map[string]any),
		done:   make(chan struct{}),
	}
	c.mu.Lock()
	c.subs[s] = struct{}{}
	c.mu.Unlock()

	go s.pump()

	var once sync.Once
	return s.out, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, s)
			c.mu.Unlock()
			close(s.done)
		})
	}
}

type subscriber struct {
	mu     sync.Mutex
	queue  []map[string]any
	notify chan struct{}
	out    chan map[string]any
	done   chan struct{}
}

func (s *subscriber) push(msg map[string]any) {
	s.mu.Lock()
	s.queue = append(s.queue, msg)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		msg := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- msg:
		case <-s.done:
			return
		}
	}
}
