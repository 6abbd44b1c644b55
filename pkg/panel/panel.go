package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/liveness"
	"github.com/aretw0/skury/pkg/ports"
	"github.com/aretw0/skury/pkg/transport"
)

// Transcript texts.
const (
	Thinking        = "Thinking..."
	AnalyzingPage   = "Analyzing page..."
	TimedOut        = "Request timed out. Please try again."
	NoResponse      = "No response from background."
	ContentCaptured = "Content captured from active tab"
	SnipFailed      = "Snip failed."

	summarizePrefix = "Please analyze and summarize the following webpage content:\n\n"
)

// ErrNothingToSend is returned by Send without a prompt or an attachment.
var ErrNothingToSend = errors.New("nothing to send")

// Panel is the chat UI of one surface.
type Panel struct {
	ep           *transport.Endpoint
	rt           ports.Runtime
	keeper       *liveness.Keeper
	replyTimeout time.Duration
	logger       *slog.Logger

	mu         sync.Mutex
	entries    []Entry
	nextID     int
	attachment string
	theme      domain.Theme

	inflight sync.WaitGroup
}

// New starts a panel listening at ep for snip deliveries.
// rt reaches the coordinator and storage; usually it wraps ep.
func New(ep *transport.Endpoint, rt ports.Runtime, opts ...Option) (*Panel, error) {
	p := &Panel{
		ep:           ep,
		rt:           rt,
		replyTimeout: DefaultReplyTimeout,
		logger:       logging.NewNop(),
		theme:        domain.DefaultTheme,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := ep.Listen(p.handle); err != nil {
		return nil, err
	}
	return p, nil
}

// Show marks the panel visible.
func (p *Panel) Show() {
	if p.keeper != nil {
		p.keeper.Show()
	}
}

// Hide marks the panel hidden.
func (p *Panel) Hide() {
	if p.keeper != nil {
		p.keeper.Hide()
	}
}

// Close hides the panel and stops listening.
func (p *Panel) Close() {
	p.Hide()
	p.ep.Close()
}

// Wait blocks until every in-flight call has settled.
func (p *Panel) Wait() { p.inflight.Wait() }

func (p *Panel) handle(_ context.Context, req transport.Request, _ *transport.Reply) {
	switch msg := req.Message.(type) {
	case domain.SnipResult:
		if msg.Image == "" {
			return
		}
		p.mu.Lock()
		p.attachment = msg.Image
		p.mu.Unlock()
		p.logger.Debug("snip attached", "bytes", len(msg.Image))
	case domain.SnipError:
		text := msg.Error
		if text == "" {
			text = SnipFailed
		}
		p.add(SenderSystem, text, "")
	default:
		p.logger.Debug("ignoring message", "kind", req.Message.Kind())
	}
}

// Attachment returns the pending snip image, if any.
func (p *Panel) Attachment() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attachment
}

// DismissAttachment drops the pending snip.
func (p *Panel) DismissAttachment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attachment = ""
}

// Send posts prompt, with the pending snip if any, to the model.
// It returns the reply entry once the call settles or the advisory timeout fires.
func (p *Panel) Send(ctx context.Context, prompt string) (Entry, error) {
	prompt = strings.TrimSpace(prompt)

	p.mu.Lock()
	image := p.attachment
	p.attachment = ""
	p.mu.Unlock()

	if prompt == "" && image == "" {
		return Entry{}, ErrNothingToSend
	}
	if image != "" {
		p.add(SenderSnip, "", image)
	}
	if prompt != "" {
		p.add(SenderYou, prompt, "")
	}
	return p.ask(ctx, remoteCall(prompt, image), Thinking, NoResponse), nil
}

// ReadPage reads the active page and asks the model to summarize it.
func (p *Panel) ReadPage(ctx context.Context) Entry {
	resp, err := p.rt.SendMessage(ctx, domain.ReadPageContent{})
	switch {
	case err != nil:
		return p.add(SenderError, err.Error(), "")
	case resp.Content != "":
		p.add(SenderContent, ContentCaptured, "")
		return p.ask(ctx, remoteCall(summarizePrefix+resp.Content, ""), AnalyzingPage, NoResponse)
	case resp.IsError():
		return p.add(SenderError, resp.Error, "")
	}
	return Entry{}
}

// Capture asks the page to start a snip.
func (p *Panel) Capture(ctx context.Context) error {
	_, err := p.rt.SendMessage(ctx, domain.InitiateCapture{})
	return err
}

// Regenerate re-sends the most recent prompt.
func (p *Panel) Regenerate(ctx context.Context) (Entry, error) {
	p.mu.Lock()
	last := ""
	for i := len(p.entries) - 1; i >= 0; i-- {
		if p.entries[i].Sender == SenderYou {
			last = p.entries[i].Text
			break
		}
	}
	p.mu.Unlock()

	if last == "" {
		return Entry{}, ErrNothingToSend
	}
	return p.Send(ctx, last)
}

// Action is a greeting shortcut.
type Action string

const (
	ActionSummarize Action = "summarize"
	ActionExplain   Action = "explain"
	ActionTranslate Action = "translate"
	ActionSnip      Action = "snip"
)

// QuickAction runs a greeting shortcut.
func (p *Panel) QuickAction(ctx context.Context, a Action) (Entry, error) {
	p.Clear()
	switch a {
	case ActionSummarize:
		return p.ReadPage(ctx), nil
	case ActionExplain:
		return p.Send(ctx, "Explain the selected text on this page")
	case ActionTranslate:
		return p.Send(ctx, "Translate the selected text to English")
	case ActionSnip:
		return Entry{}, p.Capture(ctx)
	}
	return Entry{}, fmt.Errorf("%w: unknown quick action %q", domain.ErrInvalidRequest, a)
}

func remoteCall(prompt, image string) domain.RemoteCall {
	return domain.RemoteCall{Prompt: prompt, ImageData: image}
}

type outcome struct {
	resp domain.Response
	err  error
}

// ask issues a remote call behind a loading entry. The call keeps running
// past the advisory timeout and past ctx; its late result is dropped.
func (p *Panel) ask(ctx context.Context, call domain.RemoteCall, loading, noResponse string) Entry {
	id := p.add(SenderModel, loading, "").ID

	settled := make(chan Entry, 1)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		settled <- p.await(context.WithoutCancel(ctx), id, call, noResponse)
	}()

	select {
	case e := <-settled:
		return e
	case <-ctx.Done():
		return p.entry(id)
	}
}

func (p *Panel) await(ctx context.Context, id int, call domain.RemoteCall, noResponse string) Entry {
	result := make(chan outcome, 1)
	go func() {
		resp, err := p.rt.SendMessage(ctx, call)
		result <- outcome{resp, err}
	}()

	timer := time.NewTimer(p.replyTimeout)
	defer timer.Stop()

	select {
	case o := <-result:
		switch {
		case o.err != nil:
			return p.update(id, SenderError, o.err.Error())
		case o.resp.IsError():
			return p.update(id, SenderError, o.resp.Error)
		case o.resp.Reply == "":
			return p.update(id, SenderError, noResponse)
		}
		return p.update(id, SenderModel, o.resp.Reply)
	case <-timer.C:
		p.logger.Warn("remote call timed out", "after", p.replyTimeout)
		return p.update(id, SenderError, TimedOut)
	}
}
