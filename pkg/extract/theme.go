package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DarkThreshold is the brightness under which a page counts as dark.
const DarkThreshold = 128

var (
	digits          = regexp.MustCompile(`\d+`)
	backgroundColor = regexp.MustCompile(`(?i)background(?:-color)?\s*:\s*([^;]+)`)
)

// Transparent is what a body without a declared background resolves to.
const Transparent = "rgba(0, 0, 0, 0)"

var named = map[string]string{
	"white":       "rgb(255, 255, 255)",
	"black":       "rgb(0, 0, 0)",
	"transparent": Transparent,
}

// BodyBackground returns the body's declared background as an rgb()/rgba() string.
// Inline style wins over the legacy bgcolor attribute.
func BodyBackground(doc *goquery.Document) string {
	body := doc.Find("body").First()
	if m := backgroundColor.FindStringSubmatch(body.AttrOr("style", "")); m != nil {
		return normalizeColor(m[1])
	}
	if bg, ok := body.Attr("bgcolor"); ok {
		return normalizeColor(bg)
	}
	return Transparent
}

// Brightness averages the first three numbers of a color string.
// A string without numbers counts as fully bright.
func Brightness(color string) float64 {
	found := digits.FindAllString(color, 3)
	if len(found) == 0 {
		return 255
	}
	var sum float64
	for _, d := range found {
		v, _ := strconv.Atoi(d)
		sum += float64(v)
	}
	return sum / 3
}

// IsDark reports whether doc's background is darker than DarkThreshold.
func IsDark(doc *goquery.Document) bool {
	return Brightness(BodyBackground(doc)) < DarkThreshold
}

func normalizeColor(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	c = strings.TrimSpace(strings.TrimSuffix(c, "!important"))
	if v, ok := named[c]; ok {
		return v
	}
	if hex, ok := strings.CutPrefix(c, "#"); ok {
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) >= 6 {
			r, errR := strconv.ParseUint(hex[0:2], 16, 8)
			g, errG := strconv.ParseUint(hex[2:4], 16, 8)
			b, errB := strconv.ParseUint(hex[4:6], 16, 8)
			if errR == nil && errG == nil && errB == nil {
				return "rgb(" + strconv.FormatUint(r, 10) + ", " + strconv.FormatUint(g, 10) + ", " + strconv.FormatUint(b, 10) + ")"
			}
		}
	}
	return c
}
