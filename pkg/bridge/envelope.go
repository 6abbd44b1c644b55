package bridge

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Source tags every bridge envelope so foreign traffic can be told apart.
const Source = "skury-bridge"

// Directions.
const (
	DirectionRequest  = "request"
	DirectionResponse = "response"
)

// Supported privileged APIs.
const (
	APISendMessage = "runtime.sendMessage"
	APIStorageGet  = "storage.get"
	APIStorageSet  = "storage.set"
)

var (
	// ErrBridgeTimeout is returned when a response does not arrive within the configured timeout.
	ErrBridgeTimeout = errors.New("bridge request timed out")

	// ErrUnknownAPI is returned for an api name the listener does not serve.
	ErrUnknownAPI = errors.New("unknown bridge api")
)

type request struct {
	Source    string         `mapstructure:"source"`
	Direction string         `mapstructure:"direction"`
	ID        string         `mapstructure:"id"`
	API       string         `mapstructure:"api"`
	Payload   map[string]any `mapstructure:"payload"`
}

type response struct {
	Source    string `mapstructure:"source"`
	Direction string `mapstructure:"direction"`
	ID        string `mapstructure:"id"`
	Result    any    `mapstructure:"result"`
	Error     string `mapstructure:"error"`
	Code      string `mapstructure:"code"`
}

type storageGetPayload struct {
	Keys []string `mapstructure:"keys"`
}

type storageSetPayload struct {
	Items map[string]string `mapstructure:"items"`
}

func (r request) wire() map[string]any {
	return map[string]any{
		"source":    Source,
		"direction": DirectionRequest,
		"id":        r.ID,
		"api":       r.API,
		"payload":   r.Payload,
	}
}

func (r response) wire() map[string]any {
	m := map[string]any{
		"source":    Source,
		"direction": DirectionResponse,
		"id":        r.ID,
		"result":    r.Result,
	}
	if r.Error != "" {
		m["error"] = r.Error
		m["code"] = r.Code
	}
	return m
}

// isBridge reports whether raw is a bridge envelope going in direction.
func isBridge(raw map[string]any, direction string) bool {
	src, _ := raw["source"].(string)
	dir, _ := raw["direction"].(string)
	return src == Source && dir == direction
}

func decodeEnvelope(raw map[string]any, out any) error {
	if err := mapstructure.Decode(raw, out); err != nil {
		return fmt.Errorf("malformed bridge envelope: %w", err)
	}
	return nil
}
