package capture

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
)

// PNGDataURL encodes img as a PNG data URL, the format of a visible-surface capture.
func PNGDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
