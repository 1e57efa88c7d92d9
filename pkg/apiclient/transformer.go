package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/apiclient/internal/constants"
)

// Transformer maps a successful raw response to the value a caller receives.
// A returned error that is not an *Error is wrapped as KindUnclassified.
type Transformer[T any] func(resp *Response) (T, error)

// Shape identifies which response convention a body follows.
type Shape int

const (
	// ShapeUnknown means the body carries neither flag.
	ShapeUnknown Shape = iota
	// ShapeLegacy bodies carry a boolean "success" field.
	ShapeLegacy
	// ShapeStatus bodies carry a boolean "status" field.
	ShapeStatus
)

// String returns the field name the shape is keyed on.
func (s Shape) String() string {
	switch s {
	case ShapeLegacy:
		return "success"
	case ShapeStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Envelope is the whole decoded body of a successful call.
type Envelope[T any] struct {
	Shape   Shape  `json:"-"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
	// Body is the undecoded response body.
	Body json.RawMessage `json:"-"`
}

// outcome is the single internal form both backend conventions normalize to.
type outcome struct {
	shape   Shape
	ok      bool
	message string
	data    json.RawMessage
}

// normalize reads the success flag, preferring "success" over "status".
// A flag that is not a JSON boolean counts as absent.
func normalize(body []byte) outcome {
	var fields map[string]json.RawMessage
	if json.Unmarshal(body, &fields) != nil {
		return outcome{}
	}

	result := outcome{
		message: stringField(fields["message"]),
		data:    fields["data"],
	}

	if flag, ok := boolField(fields["success"]); ok {
		result.shape = ShapeLegacy
		result.ok = flag
	} else if flag, ok := boolField(fields["status"]); ok {
		result.shape = ShapeStatus
		result.ok = flag
	}

	return result
}

func boolField(raw json.RawMessage) (bool, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false, false
	}

	var value bool
	if json.Unmarshal(raw, &value) != nil {
		return false, false
	}

	return value, true
}

// ParseEnvelope normalizes body into an Envelope and decodes its data
// field into T. It does not judge the success flag.
func ParseEnvelope[T any](body []byte) (*Envelope[T], error) {
	out := normalize(body)

	env := &Envelope[T]{
		Shape:   out.shape,
		Success: out.ok,
		Message: out.message,
		Body:    json.RawMessage(body),
	}

	data := bytes.TrimSpace(out.data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return env, nil
	}

	err := json.Unmarshal(data, &env.Data)
	if err != nil {
		return env, fmt.Errorf("decoding response data: %w", err)
	}

	return env, nil
}

// DefaultTransformer accepts a body whose success flag is true and returns
// it whole. A false or missing flag rejects with the body's message.
func DefaultTransformer[T any]() Transformer[*Envelope[T]] {
	return func(resp *Response) (*Envelope[T], error) {
		out := normalize(resp.Body)
		if !out.ok {
			message := out.message
			if message == "" {
				message = constants.MessageRequestFailed
			}

			return nil, &Error{Kind: KindClientError, Message: message, StatusCode: resp.StatusCode}
		}

		env, err := ParseEnvelope[T](resp.Body)
		if err != nil {
			return nil, &Error{Kind: KindUnclassified, Message: err.Error(), StatusCode: resp.StatusCode, Err: err}
		}

		return env, nil
	}
}

// JSONTransformer decodes the whole body into T without looking at any flag.
func JSONTransformer[T any]() Transformer[T] {
	return func(resp *Response) (T, error) {
		var value T

		if len(bytes.TrimSpace(resp.Body)) == 0 {
			return value, nil
		}

		err := json.Unmarshal(resp.Body, &value)
		if err != nil {
			return value, fmt.Errorf("decoding response: %w", err)
		}

		return value, nil
	}
}

// RawTransformer returns the response untouched.
func RawTransformer() Transformer[*Response] {
	return func(resp *Response) (*Response, error) {
		return resp, nil
	}
}
