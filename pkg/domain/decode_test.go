package domain_test

import (
	"errors"
	"testing"

	"github.com/aretw0/skury/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_TypedPayloads(t *testing.T) {
	msg, err := domain.Decode(map[string]any{"type": "remote-call", "prompt": "hi", "imageData": "data:image/png;base64,AA=="})
	require.NoError(t, err)
	call, ok := msg.(domain.RemoteCall)
	require.True(t, ok)
	assert.Equal(t, "hi", call.Prompt)
	assert.Equal(t, "data:image/png;base64,AA==", call.ImageData)

	msg, err = domain.Decode(map[string]any{
		"type":         "suggest-answer",
		"questionText": "2+2?",
		"options":      []any{map[string]any{"text": "3"}, map[string]any{"text": "4"}},
	})
	require.NoError(t, err)
	suggest := msg.(domain.SuggestAnswer)
	assert.Len(t, suggest.Options, 2)
	assert.Equal(t, "4", suggest.Options[1].Text)
}

func TestDecode_EmptyPayloadKinds(t *testing.T) {
	for _, k := range []domain.Kind{domain.KindTogglePanel, domain.KindReadPageContent, domain.KindCleanupHints} {
		msg, err := domain.Decode(map[string]any{"type": string(k)})
		require.NoError(t, err)
		assert.Equal(t, k, msg.Kind())
	}
}

func TestDecode_UnknownKind(t *testing.T) {
	_, err := domain.Decode(map[string]any{"type": "callGemini"})
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	_, err = domain.Decode(map[string]any{})
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestEncode_RoundTrip(t *testing.T) {
	raw, err := domain.Encode(domain.ThemeChanged{Theme: domain.ThemeLight})
	require.NoError(t, err)
	assert.Equal(t, "theme-changed", raw["type"])

	msg, err := domain.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeChanged{Theme: domain.ThemeLight}, msg)
}

func TestNew_CoversEveryKind(t *testing.T) {
	for _, k := range domain.Kinds() {
		msg, err := domain.New(k)
		require.NoError(t, err, k)
		assert.Equal(t, k, msg.Kind())
	}
}

func TestResponse_ErrRestoresTaxonomy(t *testing.T) {
	resp := domain.Failf(domain.ErrNoTarget, "No active tab to read.")
	assert.Equal(t, domain.CodeNoTarget, resp.Code)
	assert.True(t, resp.IsError())

	err := resp.Err()
	assert.ErrorIs(t, err, domain.ErrNoTarget)
	assert.Equal(t, "No active tab to read.", err.Error())

	assert.NoError(t, domain.Ok().Err())
	assert.True(t, domain.Response{}.Empty())
	assert.False(t, domain.DarkReply(false).Empty())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "", domain.CodeOf(nil))
	assert.Equal(t, domain.CodeInternal, domain.CodeOf(errors.New("boom")))
	assert.Equal(t, domain.CodeNoReceiver, domain.CodeOf(errors.Join(errors.New("x"), domain.ErrNoReceiver)))
}

func TestNormalizeTheme(t *testing.T) {
	assert.Equal(t, domain.ThemeLight, domain.NormalizeTheme("light"))
	assert.Equal(t, domain.ThemeDark, domain.NormalizeTheme("dark"))
	assert.Equal(t, domain.ThemeDark, domain.NormalizeTheme("adaptive"))
	assert.Equal(t, domain.ThemeDark, domain.NormalizeTheme(""))
}

func TestKind_PageBound(t *testing.T) {
	assert.True(t, domain.KindReadPageContent.PageBound())
	assert.False(t, domain.KindRemoteCall.PageBound())
	assert.False(t, domain.KindSnipResult.PageBound())
}
