package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/skury"
	skuryhttp "github.com/aretw0/skury/pkg/adapters/http"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoModel struct{}

func (echoModel) Generate(_ context.Context, p domain.Prompt) (string, error) {
	return "echo: " + p.Parts[len(p.Parts)-1], nil
}

const page = `<html><body><main><p>` +
	`The coordinator answers HTTP clients with the same envelopes the panel receives.` +
	`</p></main></body></html>`

func newServer(t *testing.T) (*skury.Coordinator, http.Handler) {
	t.Helper()
	c, err := skury.New(skury.WithModel(echoModel{}))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	h, err := skuryhttp.NewHandler(c, skuryhttp.WithMetrics(c.Metrics().Handler()))
	require.NoError(t, err)
	return c, h
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) domain.Response {
	t.Helper()
	var resp domain.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestLoadSpec(t *testing.T) {
	doc, err := skuryhttp.LoadSpec()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/v1/messages"))
}

func TestInfo(t *testing.T) {
	_, h := newServer(t)

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, skury.Version, info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])
}

func TestMessages(t *testing.T) {
	_, h := newServer(t)

	t.Run("no surface", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/v1/messages", `{"type":"read-page-content"}`)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "No active tab to read.", resp.Error)
		assert.Equal(t, "no-target", resp.Code)
	})

	t.Run("read page", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/v1/surfaces",
			`{"url":"https://example.com/a","html":`+jsonString(page)+`,"width":800,"height":600}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = do(t, h, http.MethodPost, "/v1/messages", `{"type":"read-page-content"}`)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Empty(t, resp.Error)
		assert.Contains(t, resp.Content, "The coordinator answers HTTP clients")
	})

	t.Run("remote call", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/v1/messages", `{"type":"remote-call","prompt":"hi"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "echo: hi", decodeResponse(t, w).Reply)
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/v1/messages", `{"type":"format-disk"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid-request", decodeResponse(t, w).Code)
	})

	t.Run("missing type is rejected", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/v1/messages", `{"prompt":"hi"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSurfaces(t *testing.T) {
	c, h := newServer(t)

	w := do(t, h, http.MethodPost, "/v1/surfaces", `{"url":"https://example.com/one","html":"<p>one</p>"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	first := created["id"]
	require.NotEmpty(t, first)

	w = do(t, h, http.MethodPost, "/v1/surfaces", `{"url":"https://example.com/two","html":"<p>two</p>"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodPost, "/v1/surfaces/"+first+"/activate", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, active := c.Surfaces()
	assert.Equal(t, first, active)

	w = do(t, h, http.MethodGet, "/v1/surfaces", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = do(t, h, http.MethodPost, "/v1/surfaces/missing/activate", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodDelete, "/v1/surfaces/"+first, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	got, _ := c.Surfaces()
	assert.Len(t, got, 1)
}

func TestSurfaces_RequiresURL(t *testing.T) {
	_, h := newServer(t)
	w := do(t, h, http.MethodPost, "/v1/surfaces", `{"html":"<p>x</p>"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAction_Restricted(t *testing.T) {
	_, h := newServer(t)

	w := do(t, h, http.MethodPost, "/v1/surfaces", `{"url":"chrome://settings"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodPost, "/v1/action", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Content script not available on this page.", resp.Error)
	assert.Equal(t, "injection-refused", resp.Code)
}

func TestPreferences(t *testing.T) {
	c, h := newServer(t)

	w := do(t, h, http.MethodPut, "/v1/preferences",
		`{"geminiApiKey":"secret","skuryTheme":"sepia"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	stored, err := c.Store().Get(context.Background(), domain.KeyAPICredential, domain.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "secret", stored[domain.KeyAPICredential])
	assert.Equal(t, "dark", stored[domain.KeyTheme])

	w = do(t, h, http.MethodGet, "/v1/preferences", "")
	require.Equal(t, http.StatusOK, w.Code)
	var prefs map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prefs))
	assert.Equal(t, middleware.Masked, prefs[domain.KeyAPICredential])
	assert.Equal(t, "dark", prefs[domain.KeyTheme])

	w = do(t, h, http.MethodGet, "/v1/preferences?keys=skuryTheme", "")
	require.Equal(t, http.StatusOK, w.Code)
	prefs = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prefs))
	assert.Equal(t, map[string]string{domain.KeyTheme: "dark"}, prefs)
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newServer(t)

	do(t, h, http.MethodPost, "/v1/messages", `{"type":"get-surface-theme"}`)

	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "skury_keepalive_ports_open")
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestCORS(t *testing.T) {
	c, err := skury.New(skury.WithModel(echoModel{}))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	h, err := skuryhttp.NewHandler(c, skuryhttp.WithAllowedOrigins("chrome-extension://skury"))
	require.NoError(t, err)

	send := func(method, origin, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/v1/preferences", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	t.Run("foreign origin refused", func(t *testing.T) {
		w := send(http.MethodPut, "https://evil.example", `{"geminiApiKey":"stolen"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

		vals, err := c.Store().Get(context.Background(), domain.KeyAPICredential)
		require.NoError(t, err)
		assert.Empty(t, vals[domain.KeyAPICredential])
	})

	t.Run("allowed origin", func(t *testing.T) {
		w := send(http.MethodOptions, "chrome-extension://skury", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "chrome-extension://skury", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no origin", func(t *testing.T) {
		w := send(http.MethodGet, "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same origin", func(t *testing.T) {
		w := send(http.MethodGet, "http://example.com", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
