package domain

// Image is an inline image attached to a prompt.
type Image struct {
	MimeType string
	// Data is base64 without the data URL prefix.
	Data string
}

// Prompt is one request to the remote model.
type Prompt struct {
	// Parts are sent as text parts, in order, before the image.
	Parts []string
	Image *Image
	// MaxOutputTokens overrides the model default when positive.
	MaxOutputTokens int
}
