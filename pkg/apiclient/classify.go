package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/apiclient/internal/constants"
)

// ClassificationInterceptor turns failed responses into *Error values and
// fires handler for 401 and 403. Successful responses pass through.
func ClassificationInterceptor(baseURL string, handler SessionExpiredHandler) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		apiErr := Classify(resp)
		if apiErr == nil {
			return nil
		}

		if apiErr.Kind == KindAuthExpired && handler != nil {
			handler.SessionExpired(ctx, SessionEvent{
				BaseURL:    baseURL,
				Method:     req.Method,
				Path:       req.Path,
				StatusCode: resp.StatusCode,
			})
		}

		return apiErr
	}
}

// Classify maps a response to the error taxonomy. It returns nil for a 2xx
// response. Checks run in a fixed order: timeout, 401/403, validation,
// 5xx, other 4xx, anything else.
func Classify(resp *Response) *Error {
	if resp == nil {
		return &Error{Kind: KindUnclassified, Message: constants.MessageRequestFailed}
	}

	if resp.Error != nil {
		if isTimeout(resp.Error) {
			return &Error{Kind: KindTimeout, Message: constants.MessageTimeout, Err: resp.Error}
		}

		return &Error{Kind: KindUnclassified, Message: resp.Error.Error(), Err: resp.Error}
	}

	if resp.OK() {
		return nil
	}

	status := resp.StatusCode
	body := parseErrorBody(resp.Body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: KindAuthExpired, Message: constants.MessageSessionExpired, StatusCode: status}

	case status == http.StatusBadRequest && body.fieldErrors != nil:
		message := body.title
		if message == "" {
			message = constants.MessageValidationFailed
		}

		return &Error{
			Kind:        KindValidation,
			Message:     message,
			Title:       body.title,
			StatusCode:  status,
			FieldErrors: body.fieldErrors,
		}

	case status >= http.StatusInternalServerError:
		return &Error{Kind: KindServerError, Message: constants.MessageServerError, StatusCode: status}

	case status >= http.StatusBadRequest:
		message := body.message
		if message == "" {
			message = constants.MessageRequestFailed
		}

		return &Error{Kind: KindClientError, Message: message, StatusCode: status}

	default:
		return &Error{
			Kind:       KindUnclassified,
			Message:    fmt.Sprintf("unexpected status %d", status),
			StatusCode: status,
		}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

type errorBody struct {
	message string
	title   string
	// fieldErrors is nil unless the body has an object-shaped "errors" key.
	fieldErrors map[string]string
}

func parseErrorBody(data []byte) errorBody {
	var result errorBody

	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &fields) != nil {
		return result
	}

	result.message = stringField(fields["message"])
	result.title = stringField(fields["title"])

	raw := bytes.TrimSpace(fields["errors"])
	if len(raw) == 0 || raw[0] != '{' {
		return result
	}

	var perField map[string]json.RawMessage
	if json.Unmarshal(raw, &perField) != nil {
		return result
	}

	result.fieldErrors = make(map[string]string, len(perField))
	for field, messages := range perField {
		result.fieldErrors[field] = joinMessages(messages)
	}

	return result
}

func stringField(raw json.RawMessage) string {
	var value string
	if json.Unmarshal(raw, &value) != nil {
		return ""
	}

	return value
}

// joinMessages joins a list of messages with single spaces. A value that
// is not a list is rendered on its own.
func joinMessages(raw json.RawMessage) string {
	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, messageText(item))
		}

		return strings.Join(parts, " ")
	}

	return messageText(raw)
}

// messageText returns a string item as-is and anything else as compact JSON.
func messageText(raw json.RawMessage) string {
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return text
	}

	var compact bytes.Buffer
	if json.Compact(&compact, raw) != nil {
		return string(raw)
	}

	return compact.String()
}
