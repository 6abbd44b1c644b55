package panel

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxFileChars bounds the text of an uploaded file sent to the model.
	MaxFileChars = 20000
	// MaxImageBytes bounds uploaded images.
	MaxImageBytes = 2 * 1024 * 1024

	truncatedMarker = "\n...[truncated]"
	noFileResponse  = "No response"
)

var (
	textMIME  = regexp.MustCompile(`^text/|json|javascript|csv|markdown|xml`)
	textExt   = regexp.MustCompile(`(?i)\.(txt|md|json|csv|log|html?|js|ts|tsx|py|java|c(pp)?|cs|rb|go)$`)
	imageMIME = regexp.MustCompile(`^image/`)
	imageExt  = regexp.MustCompile(`(?i)\.(png|jpe?g|gif|webp)$`)
	docMIME   = regexp.MustCompile(`pdf|msword|officedocument|rtf`)
	docExt    = regexp.MustCompile(`(?i)\.(pdf|doc|docx|rtf)$`)
)

// File is an uploaded file.
type File struct {
	Name string
	MIME string
	Data []byte
}

func (f File) mime() string { return strings.ToLower(f.MIME) }

func (f File) isImage() bool {
	return imageMIME.MatchString(f.mime()) || imageExt.MatchString(f.Name)
}

func (f File) isText() bool {
	return textMIME.MatchString(f.mime()) || textExt.MatchString(f.Name)
}

func (f File) isDoc() bool {
	return docMIME.MatchString(f.mime()) || docExt.MatchString(f.Name)
}

// Upload sends f to the model, optionally with a user prompt.
// Images are sent inline, text-like files as part of the prompt.
func (p *Panel) Upload(ctx context.Context, f File, prompt string) Entry {
	prompt = strings.TrimSpace(prompt)

	switch {
	case f.isImage():
		if len(f.Data) > MaxImageBytes {
			return p.add(SenderModel, fmt.Sprintf("Image too large (>%dMB). Please pick a smaller image.", MaxImageBytes/1024/1024), "")
		}
		mime := f.mime()
		if mime == "" {
			mime = http.DetectContentType(f.Data)
		}
		dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
		p.add(SenderImage, "", dataURL)

		if prompt == "" {
			prompt = fmt.Sprintf("Describe and analyze this image (%s).", f.Name)
		}
		return p.ask(ctx, remoteCall(prompt, dataURL), "Analyzing image...", noFileResponse)

	case f.isText():
		if !utf8.Valid(f.Data) {
			return p.add(SenderModel, "Unsupported file format.", "")
		}
		text := string(f.Data)
		length := utf8.RuneCountInString(text)
		note := ""
		if length > MaxFileChars {
			text = string([]rune(text)[:MaxFileChars]) + truncatedMarker
			note = ", truncated"
		}
		p.add(SenderYou, fmt.Sprintf("Uploaded file: %s (%d chars%s)", f.Name, length, note), "")

		if prompt != "" {
			prompt = fmt.Sprintf("%s\n\nFile (%s):\n%s", prompt, f.Name, text)
		} else {
			prompt = fmt.Sprintf("Summarize and analyze the following file (%s):\n\n%s", f.Name, text)
		}
		return p.ask(ctx, remoteCall(prompt, ""), "Analyzing file...", noFileResponse)

	case f.isDoc():
		return p.add(SenderModel, fmt.Sprintf("Direct reading of %s isn't supported yet. Convert to text or image, or paste content here.", f.Name), "")
	}
	return p.add(SenderModel, fmt.Sprintf("Unsupported file type: %s", f.Name), "")
}
