// Package capture crops screenshots to a user selection.
package capture

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

// JPEGQuality is the quality of cropped snips.
const JPEGQuality = 85

// MinSide is the smallest selection side, in CSS pixels, that produces an image.
const MinSide = 2

// ErrInvalidDataURL is returned when a screenshot is not a base64 image data URL.
var ErrInvalidDataURL = errors.New("invalid image data url")

// Rect is a selection in CSS pixels relative to the viewport.
type Rect struct {
	X, Y, W, H float64
}

// Normalize builds the rectangle spanned by two corner points.
func Normalize(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X: math.Min(x0, x1),
		Y: math.Min(y0, y1),
		W: math.Abs(x1 - x0),
		H: math.Abs(y1 - y0),
	}
}

// Viewport is the size of the visible surface in CSS pixels.
type Viewport struct {
	W, H float64
}

// Crop cuts r out of a screenshot and returns it as a JPEG data URL.
// The screenshot may be larger than the viewport (device pixel ratio, zoom);
// coordinates are scaled by the frame to viewport ratio and the result keeps
// the selection's CSS size. Selections under MinSide return "" and no error.
func Crop(dataURL string, r Rect, vp Viewport) (string, error) {
	if r.W < MinSide || r.H < MinSide {
		return "", nil
	}

	src, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	b := src.Bounds()

	scaleX, scaleY := 1.0, 1.0
	if vp.W > 0 && vp.H > 0 {
		scaleX = float64(b.Dx()) / vp.W
		scaleY = float64(b.Dy()) / vp.H
	}

	sx := b.Min.X + round(r.X*scaleX)
	sy := b.Min.Y + round(r.Y*scaleY)
	full := image.Rect(sx, sy, sx+round(r.W*scaleX), sy+round(r.H*scaleY))
	area := full.Intersect(b)
	if area.Empty() {
		return "", fmt.Errorf("selection lies outside the captured frame")
	}

	// The part of the selection outside the frame stays blank.
	dst := image.NewRGBA(image.Rect(0, 0, max(1, round(r.W)), max(1, round(r.H))))
	target := image.Rect(
		round(float64(area.Min.X-full.Min.X)/scaleX),
		round(float64(area.Min.Y-full.Min.Y)/scaleY),
		round(float64(area.Max.X-full.Min.X)/scaleX),
		round(float64(area.Max.Y-full.Min.Y)/scaleY),
	).Intersect(dst.Bounds())
	if !target.Empty() {
		draw.ApproxBiLinear.Scale(dst, target, src, area, draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode snip: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decodeDataURL(s string) (image.Image, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return img, nil
}

func round(v float64) int {
	return int(math.Round(v))
}
