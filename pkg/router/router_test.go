package router_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/gemini"
	"github.com/aretw0/skury/pkg/mcq"
	"github.com/aretw0/skury/pkg/router"
	"github.com/aretw0/skury/pkg/surface"
	"github.com/aretw0/skury/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	reply string
	err   error

	mu      sync.Mutex
	prompts []domain.Prompt
}

func (m *fakeModel) Generate(_ context.Context, p domain.Prompt) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, p)
	m.mu.Unlock()
	return m.reply, m.err
}

func (m *fakeModel) last(t *testing.T) domain.Prompt {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.prompts)
	return m.prompts[len(m.prompts)-1]
}

// fakePage answers page-bound kinds with canned replies and records what it received.
type fakePage struct {
	replies map[domain.Kind]domain.Response

	mu       sync.Mutex
	received []domain.Message
}

func (p *fakePage) handle(_ context.Context, req transport.Request, reply *transport.Reply) {
	p.mu.Lock()
	p.received = append(p.received, req.Message)
	p.mu.Unlock()
	if resp, ok := p.replies[req.Message.Kind()]; ok {
		reply.Send(resp)
	}
}

func (p *fakePage) messages() []domain.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Message(nil), p.received...)
}

type harness struct {
	bus      *transport.Bus
	registry *surface.Registry
	model    *fakeModel
	popup    *transport.Endpoint

	injections   atomic.Int32
	scriptPage   *fakePage
	scriptListen bool

	mu           sync.Mutex
	dispatched   []router.DispatchEvent
	remediations []router.RemediationEvent
	remote       []router.RemoteEvent
}

func newHarness(t *testing.T, opts ...router.Option) *harness {
	t.Helper()
	h := &harness{
		bus:          transport.NewBus(),
		model:        &fakeModel{reply: "ok"},
		scriptPage:   &fakePage{},
		scriptListen: true,
	}
	t.Cleanup(h.bus.Close)

	h.registry = surface.NewRegistry(surface.WithContentScript(func(_ context.Context, s surface.Surface) error {
		h.injections.Add(1)
		if !h.scriptListen {
			return nil
		}
		return h.bus.Endpoint(transport.SurfaceAddress(s.ID)).Listen(h.scriptPage.handle)
	}))

	hooks := router.Hooks{
		OnDispatch: func(_ context.Context, e router.DispatchEvent) {
			h.mu.Lock()
			h.dispatched = append(h.dispatched, e)
			h.mu.Unlock()
		},
		OnRemoteCall: func(_ context.Context, e router.RemoteEvent) {
			h.mu.Lock()
			h.remote = append(h.remote, e)
			h.mu.Unlock()
		},
		OnRemediation: func(_ context.Context, e router.RemediationEvent) {
			h.mu.Lock()
			h.remediations = append(h.remediations, e)
			h.mu.Unlock()
		},
	}

	base := []router.Option{
		router.WithLocator(h.registry),
		router.WithInjector(h.registry),
		router.WithCapturer(h.registry),
		router.WithLifecycleHooks(hooks),
	}
	r := router.New(h.bus.Endpoint(transport.Coordinator), h.model, append(base, opts...)...)
	require.NoError(t, r.Start())

	h.popup = h.bus.Endpoint("popup")
	return h
}

// openPage opens a surface with a listening page session.
func (h *harness) openPage(t *testing.T, id, url string, p *fakePage) {
	t.Helper()
	h.registry.Open(surface.Surface{ID: id, URL: url})
	if p != nil {
		require.NoError(t, h.bus.Endpoint(transport.SurfaceAddress(id)).Listen(p.handle))
	}
}

func (h *harness) send(t *testing.T, from *transport.Endpoint, msg domain.Message) domain.Response {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := from.Send(ctx, transport.Coordinator, msg)
	require.NoError(t, err)
	return resp
}

func (h *harness) remediationCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.remediations)
}

func TestRouter_NoTarget(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		msg  domain.Message
		text string
	}{
		{domain.TogglePanel{}, "No active tab to toggle panel."},
		{domain.InitiateCapture{}, "No active tab to initiate snip."},
		{domain.SolveVisibleForm{}, "No active tab to solve form."},
		{domain.AnalyzeStructuredForm{}, "No active tab to analyze form."},
		{domain.ReadPageContent{}, "No active tab to read."},
		{domain.ThemeChanged{Theme: domain.ThemeLight}, "No active tab to apply theme."},
		{domain.RevealHint{QuestionID: "q1", OptionID: "o1"}, "No active tab to reveal hint."},
		{domain.CleanupHints{}, "No active tab to clean up hints."},
	}
	for _, tc := range cases {
		t.Run(string(tc.msg.Kind()), func(t *testing.T) {
			resp := h.send(t, h.popup, tc.msg)
			assert.Equal(t, tc.text, resp.Error)
			assert.Equal(t, domain.CodeNoTarget, resp.Code)
		})
	}

	t.Run("theme query falls back to dark", func(t *testing.T) {
		resp := h.send(t, h.popup, domain.GetSurfaceTheme{})
		require.False(t, resp.IsError())
		require.NotNil(t, resp.IsDark)
		assert.True(t, *resp.IsDark)
	})
}

func TestRouter_ForwardsToActiveSurface(t *testing.T) {
	h := newHarness(t)
	first := &fakePage{replies: map[domain.Kind]domain.Response{
		domain.KindReadPageContent: {Content: "first page"},
	}}
	second := &fakePage{replies: map[domain.Kind]domain.Response{
		domain.KindReadPageContent: {Content: "second page"},
	}}
	h.openPage(t, "a", "https://example.com/a", first)
	h.openPage(t, "b", "https://example.com/b", second)

	resp := h.send(t, h.popup, domain.ReadPageContent{})
	assert.Equal(t, "second page", resp.Content)

	require.NoError(t, h.registry.Activate("a"))
	resp = h.send(t, h.popup, domain.ReadPageContent{})
	assert.Equal(t, "first page", resp.Content)
}

func TestRouter_PanelTargetsItsOwnSurface(t *testing.T) {
	h := newHarness(t)
	first := &fakePage{replies: map[domain.Kind]domain.Response{
		domain.KindReadPageContent: {Content: "first page"},
	}}
	second := &fakePage{replies: map[domain.Kind]domain.Response{
		domain.KindReadPageContent: {Content: "second page"},
	}}
	h.openPage(t, "a", "https://example.com/a", first)
	h.openPage(t, "b", "https://example.com/b", second)

	panel := h.bus.Endpoint(transport.PanelAddress("a"))
	resp := h.send(t, panel, domain.ReadPageContent{})
	assert.Equal(t, "first page", resp.Content)
	assert.Empty(t, second.messages())
}

func TestRouter_RemediationInjectsAndRetries(t *testing.T) {
	h := newHarness(t)
	h.scriptPage.replies = map[domain.Kind]domain.Response{
		domain.KindSolveVisibleForm: {Solved: true, Count: 2},
	}
	h.openPage(t, "a", "https://docs.google.com/forms/d/x", nil)

	resp := h.send(t, h.popup, domain.SolveVisibleForm{})
	require.False(t, resp.IsError(), resp.Error)
	assert.True(t, resp.Solved)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, int32(1), h.injections.Load())
	assert.Equal(t, 1, h.remediationCount())

	// The page now listens, so no further injection happens.
	resp = h.send(t, h.popup, domain.SolveVisibleForm{})
	assert.True(t, resp.Solved)
	assert.Equal(t, int32(1), h.injections.Load())
}

func TestRouter_ToggleReportsInjection(t *testing.T) {
	h := newHarness(t)
	h.openPage(t, "a", "https://example.com", nil)

	resp := h.send(t, h.popup, domain.TogglePanel{})
	assert.Equal(t, domain.Response{Success: true, InPage: true, Injected: true}, resp)

	resp = h.send(t, h.popup, domain.TogglePanel{})
	assert.Equal(t, domain.Response{Success: true, InPage: true}, resp)
}

func TestRouter_RestrictedSurface(t *testing.T) {
	h := newHarness(t)
	h.openPage(t, "settings", "chrome://settings", nil)

	cases := []struct {
		msg  domain.Message
		text string
	}{
		{domain.SolveVisibleForm{}, "Cannot inject content script to solve form."},
		{domain.ReadPageContent{}, "Could not read page content. Make sure the page is loaded."},
		{domain.AnalyzeStructuredForm{}, "Failed to analyze form. Make sure you are on a Google Form."},
		{domain.TogglePanel{}, "Content script not available on this page."},
		{domain.InitiateCapture{}, "Cannot inject into restricted pages."},
	}
	for _, tc := range cases {
		t.Run(string(tc.msg.Kind()), func(t *testing.T) {
			resp := h.send(t, h.popup, tc.msg)
			assert.Equal(t, tc.text, resp.Error)
			assert.Equal(t, domain.CodeInjectionRefused, resp.Code)
		})
	}

	resp := h.send(t, h.popup, domain.GetSurfaceTheme{})
	require.NotNil(t, resp.IsDark)
	assert.True(t, *resp.IsDark)
	assert.Equal(t, int32(0), h.injections.Load(), "restricted pages never run the script")
}

func TestRouter_RetryFailsOnce(t *testing.T) {
	h := newHarness(t)
	h.scriptListen = false
	h.openPage(t, "a", "https://example.com", nil)

	resp := h.send(t, h.popup, domain.ReadPageContent{})
	assert.Equal(t, "Could not read page content. Make sure the page is loaded.", resp.Error)
	assert.Equal(t, domain.CodeNoReceiver, resp.Code)
	assert.Equal(t, int32(1), h.injections.Load(), "exactly one remediation attempt")

	resp = h.send(t, h.popup, domain.SolveVisibleForm{})
	assert.Equal(t, "Content script unavailable for form solving.", resp.Error)
}

func TestRouter_WithoutInjector(t *testing.T) {
	h := newHarness(t, router.WithInjector(nil))
	h.openPage(t, "a", "https://example.com", nil)

	resp := h.send(t, h.popup, domain.AnalyzeStructuredForm{})
	assert.Equal(t, "Failed to analyze form. Make sure you are on a Google Form.", resp.Error)
	assert.Equal(t, domain.CodeNoReceiver, resp.Code)
	assert.Equal(t, int32(0), h.injections.Load())
}

func TestRouter_PageErrorsPassThrough(t *testing.T) {
	h := newHarness(t)
	h.openPage(t, "a", "https://example.com", &fakePage{replies: map[domain.Kind]domain.Response{
		domain.KindAnalyzeStructuredForm: domain.Failf(domain.ErrExtractionFailed, "Not on a Google Form page."),
	}})

	resp := h.send(t, h.popup, domain.AnalyzeStructuredForm{})
	assert.Equal(t, "Not on a Google Form page.", resp.Error)
	assert.Equal(t, domain.CodeExtractionFailed, resp.Code)
}

func TestRouter_EmptyPageReplies(t *testing.T) {
	h := newHarness(t)
	h.openPage(t, "a", "https://example.com", &fakePage{})

	cases := []struct {
		msg  domain.Message
		text string
	}{
		{domain.SolveVisibleForm{}, "No response from form solver."},
		{domain.AnalyzeStructuredForm{}, "No data received from content script."},
		{domain.ReadPageContent{}, "No content received"},
	}
	for _, tc := range cases {
		resp := h.send(t, h.popup, tc.msg)
		assert.Equal(t, tc.text, resp.Error, tc.msg.Kind())
	}

	for _, msg := range []domain.Message{
		domain.InitiateCapture{}, domain.CleanupHints{}, domain.RevealHint{QuestionID: "q", OptionID: "o"},
	} {
		assert.Equal(t, domain.Ok(), h.send(t, h.popup, msg), msg.Kind())
	}

	resp := h.send(t, h.popup, domain.GetSurfaceTheme{})
	require.NotNil(t, resp.IsDark)
	assert.True(t, *resp.IsDark)
}

func TestRouter_SurfaceTheme(t *testing.T) {
	h := newHarness(t)
	h.openPage(t, "a", "https://example.com", &fakePage{replies: map[domain.Kind]domain.Response{
		domain.KindGetSurfaceTheme: domain.DarkReply(false),
	}})

	resp := h.send(t, h.popup, domain.GetSurfaceTheme{})
	require.NotNil(t, resp.IsDark)
	assert.False(t, *resp.IsDark)
}

func TestRouter_ThemeChangedIsNormalized(t *testing.T) {
	h := newHarness(t)
	p := &fakePage{}
	h.openPage(t, "a", "https://example.com", p)

	assert.Equal(t, domain.Ok(), h.send(t, h.popup, domain.ThemeChanged{Theme: "solarized"}))
	assert.Equal(t, domain.Ok(), h.send(t, h.popup, domain.ThemeChanged{Theme: domain.ThemeLight}))

	got := p.messages()
	require.Len(t, got, 2)
	assert.Equal(t, domain.ThemeChanged{Theme: domain.ThemeDark}, got[0])
	assert.Equal(t, domain.ThemeChanged{Theme: domain.ThemeLight}, got[1])
}

func TestRouter_RemoteCall(t *testing.T) {
	t.Run("rejects an empty request", func(t *testing.T) {
		h := newHarness(t)
		resp := h.send(t, h.popup, domain.RemoteCall{})
		assert.Equal(t, "No prompt or image provided.", resp.Error)
		assert.Equal(t, domain.CodeInvalidRequest, resp.Code)
	})

	t.Run("prepends the style instruction", func(t *testing.T) {
		h := newHarness(t)
		h.model.reply = "Paris is the capital of France."

		resp := h.send(t, h.popup, domain.RemoteCall{Prompt: "Capital of France?"})
		assert.Equal(t, "Paris is the capital of France.", resp.Reply)

		p := h.model.last(t)
		assert.Equal(t, []string{gemini.StyleInstruction, "Capital of France?"}, p.Parts)
		assert.Nil(t, p.Image)
		assert.Zero(t, p.MaxOutputTokens)
	})

	t.Run("attaches an image", func(t *testing.T) {
		h := newHarness(t)
		h.send(t, h.popup, domain.RemoteCall{ImageData: "data:image/jpeg;base64,QUJD"})

		p := h.model.last(t)
		assert.Equal(t, []string{gemini.StyleInstruction}, p.Parts)
		require.NotNil(t, p.Image)
		assert.Equal(t, domain.Image{MimeType: "image/jpeg", Data: "QUJD"}, *p.Image)
	})

	t.Run("reduces multiple choice replies to a letter", func(t *testing.T) {
		h := newHarness(t)
		h.model.reply = "The answer is B."

		resp := h.send(t, h.popup, domain.RemoteCall{Prompt: "Pick one: A) red B) blue C) green"})
		assert.Equal(t, "B", resp.Reply)
	})

	t.Run("missing credential shows the setup text", func(t *testing.T) {
		h := newHarness(t)
		h.model.err = fmt.Errorf("load key: %w", domain.ErrMissingCredential)

		resp := h.send(t, h.popup, domain.RemoteCall{Prompt: "hi"})
		assert.Equal(t, domain.CodeMissingCredential, resp.Code)
		assert.True(t, strings.HasPrefix(resp.Error, "Please set your Gemini API key using the console command:"))
	})

	t.Run("model failures pass through", func(t *testing.T) {
		h := newHarness(t)
		h.model.err = domain.Userf(domain.ErrRemoteCallFailed, "Gemini API error: quota exceeded")

		resp := h.send(t, h.popup, domain.RemoteCall{Prompt: "hi"})
		assert.Equal(t, "Gemini API error: quota exceeded", resp.Error)
		assert.Equal(t, domain.CodeRemoteCallFailed, resp.Code)
	})

	t.Run("without a model", func(t *testing.T) {
		bus := transport.NewBus()
		t.Cleanup(bus.Close)
		require.NoError(t, router.New(bus.Endpoint(transport.Coordinator), nil).Start())

		resp, err := bus.Endpoint("popup").Send(context.Background(), transport.Coordinator, domain.RemoteCall{Prompt: "hi"})
		require.NoError(t, err)
		assert.Equal(t, domain.CodeMissingCredential, resp.Code)
	})
}

func TestRouter_SuggestAnswer(t *testing.T) {
	options := []domain.Option{{Text: "3"}, {Text: "4"}, {Text: "5"}}

	t.Run("invalid", func(t *testing.T) {
		h := newHarness(t)
		for _, msg := range []domain.SuggestAnswer{
			{Options: options},
			{QuestionText: "2+2?"},
		} {
			resp := h.send(t, h.popup, msg)
			assert.Equal(t, "Invalid request: questionText and options required.", resp.Error)
		}
	})

	t.Run("letter found", func(t *testing.T) {
		h := newHarness(t)
		h.model.reply = "Option B"

		resp := h.send(t, h.popup, domain.SuggestAnswer{QuestionText: "2+2?", Options: options})
		require.NotNil(t, resp.OptionIndex)
		assert.Equal(t, 1, *resp.OptionIndex)
		assert.Equal(t, "B", resp.OptionLetter)
		assert.Equal(t, "Option B", resp.Explanation)
		assert.InDelta(t, 0.85, resp.Confidence, 1e-9)

		p := h.model.last(t)
		assert.Equal(t, []string{mcq.BuildPrompt("2+2?", options)}, p.Parts)
		assert.Equal(t, gemini.SuggestMaxOutputTokens, p.MaxOutputTokens)
	})

	t.Run("no letter", func(t *testing.T) {
		h := newHarness(t)
		h.model.reply = "not sure"

		resp := h.send(t, h.popup, domain.SuggestAnswer{QuestionText: "2+2?", Options: options})
		require.NotNil(t, resp.OptionIndex)
		assert.Equal(t, -1, *resp.OptionIndex)
		assert.Empty(t, resp.OptionLetter)
		assert.InDelta(t, 0.5, resp.Confidence, 1e-9)
	})

	t.Run("missing credential", func(t *testing.T) {
		h := newHarness(t)
		h.model.err = domain.ErrMissingCredential

		resp := h.send(t, h.popup, domain.SuggestAnswer{QuestionText: "2+2?", Options: options})
		assert.True(t, strings.HasPrefix(resp.Error, "Please set your Gemini API key using:\n"))
	})
}

func TestRouter_CaptureVisibleSurface(t *testing.T) {
	h := newHarness(t)

	resp := h.send(t, h.popup, domain.CaptureVisibleSurface{})
	assert.Equal(t, domain.CodeNoTarget, resp.Code)

	id := h.registry.Open(surface.Surface{URL: "https://example.com"})
	resp = h.send(t, h.popup, domain.CaptureVisibleSurface{})
	assert.True(t, resp.IsError())

	require.NoError(t, h.registry.SetFrame(id, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	resp = h.send(t, h.popup, domain.CaptureVisibleSurface{})
	require.False(t, resp.IsError(), resp.Error)
	assert.True(t, strings.HasPrefix(resp.DataURL, "data:image/png;base64,"))

	bare := newHarness(t, router.WithCapturer(nil))
	resp = bare.send(t, bare.popup, domain.CaptureVisibleSurface{})
	assert.Equal(t, "Screen capture is not available.", resp.Error)
}

func TestRouter_PanelKindsAreNotServed(t *testing.T) {
	h := newHarness(t)

	for _, msg := range []domain.Message{domain.SnipResult{Image: "data:,"}, domain.SnipError{Error: "x"}} {
		resp := h.send(t, h.popup, msg)
		assert.Equal(t, domain.CodeUnknownKind, resp.Code)
		assert.True(t, errors.Is(resp.Err(), domain.ErrUnknownKind))
	}
}

func TestRouter_Hooks(t *testing.T) {
	h := newHarness(t)
	h.openPage(t, "a", "https://example.com", nil)
	h.scriptPage.replies = map[domain.Kind]domain.Response{
		domain.KindReadPageContent: {Content: "text"},
	}

	h.send(t, h.popup, domain.ReadPageContent{})
	h.send(t, h.popup, domain.RemoteCall{Prompt: "hi"})
	h.send(t, h.popup, domain.RemoteCall{})

	assert.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.dispatched) == 3
	}, time.Second, 10*time.Millisecond)

	h.mu.Lock()
	defer h.mu.Unlock()

	byKind := map[domain.Kind][]string{}
	for _, e := range h.dispatched {
		byKind[e.Kind] = append(byKind[e.Kind], e.Code)
	}
	assert.Equal(t, []string{""}, byKind[domain.KindReadPageContent])
	assert.ElementsMatch(t, []string{"", domain.CodeInvalidRequest}, byKind[domain.KindRemoteCall])

	require.Len(t, h.remediations, 1)
	assert.Equal(t, "a", h.remediations[0].Surface)
	assert.NoError(t, h.remediations[0].Err)

	require.Len(t, h.remote, 1, "validation failures never reach the model")
	assert.Equal(t, domain.KindRemoteCall, h.remote[0].Kind)
}
