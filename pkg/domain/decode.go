package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode builds a typed message from an untyped record such as
// {"type": "remote-call", "prompt": "hi"}. The "type" key selects the Kind;
// the remaining keys are decoded into that kind's payload.
func Decode(raw map[string]any) (Message, error) {
	t, _ := raw["type"].(string)
	k, err := ParseKind(t)
	if err != nil {
		return nil, err
	}

	switch k {
	case KindThemeChanged:
		return decodeAs[ThemeChanged](raw)
	case KindRemoteCall:
		return decodeAs[RemoteCall](raw)
	case KindSuggestAnswer:
		return decodeAs[SuggestAnswer](raw)
	case KindRevealHint:
		return decodeAs[RevealHint](raw)
	case KindSnipResult:
		return decodeAs[SnipResult](raw)
	case KindSnipError:
		return decodeAs[SnipError](raw)
	default:
		return New(k)
	}
}

// Encode flattens a message into the untyped record form accepted by Decode.
func Encode(msg Message) (map[string]any, error) {
	out := map[string]any{}
	if err := mapstructure.Decode(msg, &out); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", msg.Kind(), err)
	}
	out["type"] = string(msg.Kind())
	return out, nil
}

func decodeAs[T Message](raw map[string]any) (Message, error) {
	var m T
	if err := DecodeInto(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %v", ErrInvalidRequest, m.Kind(), err)
	}
	return m, nil
}

// DecodeInto decodes an untyped record into out, accepting loosely typed input
// (numbers as strings and similar) the way JSON-bridged payloads arrive.
func DecodeInto(raw any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// EncodeResponse flattens a reply into an untyped record.
func EncodeResponse(resp Response) (map[string]any, error) {
	out := map[string]any{}
	if err := mapstructure.Decode(resp, &out); err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return out, nil
}

// DecodeResponse rebuilds a reply from an untyped record.
func DecodeResponse(raw any) (Response, error) {
	var resp Response
	if raw == nil {
		return resp, nil
	}
	if err := DecodeInto(raw, &resp); err != nil {
		return Response{}, fmt.Errorf("%w: response: %v", ErrInvalidRequest, err)
	}
	return resp, nil
}
