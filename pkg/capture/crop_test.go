package capture_test

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/aretw0/skury/pkg/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frame is 200x100 device pixels: red on the left half, blue on the right.
func frame(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= 100 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	url, err := capture.PNGDataURL(img)
	require.NoError(t, err)
	return url
}

func decodeJPEG(t *testing.T, url string) image.Image {
	t.Helper()
	payload, ok := strings.CutPrefix(url, "data:image/jpeg;base64,")
	require.True(t, ok, "expected a jpeg data url")
	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestCrop_ScalesByFrameToViewportRatio(t *testing.T) {
	// Viewport is half the frame size, like a device pixel ratio of 2.
	out, err := capture.Crop(frame(t), capture.Rect{X: 60, Y: 10, W: 20, H: 20}, capture.Viewport{W: 100, H: 50})
	require.NoError(t, err)

	img := decodeJPEG(t, out)
	assert.Equal(t, image.Rect(0, 0, 20, 20), img.Bounds())

	r, _, b, _ := img.At(10, 10).RGBA()
	assert.Greater(t, b>>8, uint32(200), "selection right of center must be blue")
	assert.Less(t, r>>8, uint32(60))
}

func TestCrop_OffscreenPartStaysBlank(t *testing.T) {
	// Half of the 100px selection lies right of the 100px viewport.
	out, err := capture.Crop(frame(t), capture.Rect{X: 50, Y: 10, W: 100, H: 20}, capture.Viewport{W: 100, H: 50})
	require.NoError(t, err)

	img := decodeJPEG(t, out)
	assert.Equal(t, image.Rect(0, 0, 100, 20), img.Bounds())

	_, _, b, _ := img.At(25, 10).RGBA()
	assert.Greater(t, b>>8, uint32(200), "on-screen part keeps its size")

	r, g, b, _ := img.At(75, 10).RGBA()
	assert.Less(t, r>>8, uint32(60))
	assert.Less(t, g>>8, uint32(60))
	assert.Less(t, b>>8, uint32(60), "off-screen part must not be stretched over")
}

func TestCrop_TinySelectionProducesNothing(t *testing.T) {
	out, err := capture.Crop(frame(t), capture.Rect{X: 5, Y: 5, W: 1, H: 40}, capture.Viewport{W: 100, H: 50})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCrop_InvalidInput(t *testing.T) {
	_, err := capture.Crop("not a data url", capture.Rect{W: 10, H: 10}, capture.Viewport{W: 10, H: 10})
	assert.ErrorIs(t, err, capture.ErrInvalidDataURL)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, capture.Rect{X: 10, Y: 5, W: 30, H: 15}, capture.Normalize(40, 20, 10, 5))
}
