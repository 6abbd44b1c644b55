package page

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/aretw0/skury/internal/logging"
	"github.com/aretw0/skury/pkg/capture"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/extract"
	"github.com/aretw0/skury/pkg/ports"
	"github.com/aretw0/skury/pkg/transport"
)

const (
	bubbleID = "aiBubble"
	panelID  = "skuryPanel"

	answerMarker = "skury-answer-marker"
	hintDot      = "skury-hint-dot"
)

// Session is the content script instance of one surface.
type Session struct {
	surfaceID string
	host      string
	ep        *transport.Endpoint
	rt        ports.Runtime
	viewport  capture.Viewport
	logger    *slog.Logger

	mu        sync.Mutex
	doc       *goquery.Document
	panelOpen bool
	theme     domain.Theme
	snip      *snip
	form      []extract.FormQuestion
}

// New parses html, installs the bubble and starts listening on ep.
// ep must be bound to a surface address; rt reaches the coordinator and storage.
func New(ep *transport.Endpoint, rt ports.Runtime, pageURL, html string, opts ...Option) (*Session, error) {
	surfaceID, ok := ep.Address().SurfaceID()
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a surface address", domain.ErrInvalidRequest, ep.Address())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	host := ""
	if u, err := url.Parse(pageURL); err == nil {
		host = u.Hostname()
	}

	s := &Session{
		surfaceID: surfaceID,
		host:      host,
		ep:        ep,
		rt:        rt,
		logger:    logging.NewNop(),
		doc:       doc,
		theme:     domain.DefaultTheme,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("surface_id", surfaceID)

	s.installBubble()

	if err := ep.Listen(s.handle); err != nil {
		return nil, err
	}
	return s, nil
}

// SurfaceID returns the id of the surface this session runs in.
func (s *Session) SurfaceID() string { return s.surfaceID }

// Close stops listening.
func (s *Session) Close() { s.ep.Close() }

// HTML renders the annotated document.
func (s *Session) HTML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Html()
}

func (s *Session) handle(ctx context.Context, req transport.Request, reply *transport.Reply) {
	s.logger.Debug("page message", "kind", req.Message.Kind())

	switch msg := req.Message.(type) {
	case domain.TogglePanel:
		s.TogglePanel()
	case domain.InitiateCapture:
		s.StartSnip()
	case domain.ThemeChanged:
		s.ApplyTheme(msg.Theme)
		reply.Send(domain.Ok())
	case domain.GetSurfaceTheme:
		reply.Send(domain.DarkReply(s.IsDark()))
	case domain.ReadPageContent:
		content, err := s.Content()
		if err != nil {
			reply.Send(domain.Fail(err))
			return
		}
		reply.Send(domain.Response{Content: content})
	case domain.SolveVisibleForm:
		reply.Send(s.Solve(ctx))
	case domain.AnalyzeStructuredForm:
		reply.Send(s.Analyze())
	case domain.RevealHint:
		s.RevealHint(msg.QuestionID, msg.OptionID)
		reply.Send(domain.Ok())
	case domain.CleanupHints:
		s.CleanupHints()
		reply.Send(domain.Ok())
	default:
		s.logger.Debug("ignoring message", "kind", req.Message.Kind())
	}
}

// Content returns the readable text of the page.
func (s *Session) Content() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return extract.PageContent(s.doc)
}

// IsDark reports whether the page background is dark.
func (s *Session) IsDark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return extract.IsDark(s.doc)
}
