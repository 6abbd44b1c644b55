package gemini

import (
	"regexp"
	"strings"

	"github.com/aretw0/skury/pkg/domain"
)

var dataURL = regexp.MustCompile(`^data:(.*?);base64,(.*)$`)

// ParseImageData accepts a data URL or raw base64. Raw base64 is assumed to be PNG,
// and any non-image mime type is replaced with image/png.
func ParseImageData(s string) domain.Image {
	img := domain.Image{MimeType: "image/png", Data: s}
	if strings.HasPrefix(s, "data:") {
		if m := dataURL.FindStringSubmatch(s); m != nil {
			if m[1] != "" {
				img.MimeType = m[1]
			}
			img.Data = m[2]
		} else {
			_, after, _ := strings.Cut(s, ",")
			img.Data = after
		}
	}
	if !strings.HasPrefix(img.MimeType, "image/") {
		img.MimeType = "image/png"
	}
	return img
}
