package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/skury/pkg/domain"
)

// APIError is a non-success HTTP status from the model API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error (%d): %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return domain.ErrRemoteCallFailed }

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := "Unknown error"
	if json.Unmarshal(body, &payload) == nil && payload.Error.Message != "" {
		msg = payload.Error.Message
	}
	return &APIError{Status: status, Message: msg}
}
