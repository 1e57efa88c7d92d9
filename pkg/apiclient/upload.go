package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"slices"

	"github.com/fivetwenty-io/apiclient/internal/constants"
)

// Upload is a file plus extra form fields sent as multipart/form-data.
// Size and type are not checked here; the backend decides what it accepts.
type Upload struct {
	// FieldName is the form field for the file. Defaults to "file".
	FieldName string
	// FileName is the file name reported to the backend.
	FileName string
	// Content is the file data.
	Content io.Reader
	// Fields are extra form values. Every value is sent as a string.
	Fields map[string]interface{}
}

// encode builds the multipart body and returns it with its content type.
func (u *Upload) encode() ([]byte, string, error) {
	if u == nil || u.Content == nil {
		return nil, "", ErrUploadRequired
	}

	fieldName := u.FieldName
	if fieldName == "" {
		fieldName = constants.DefaultUploadFieldName
	}

	fileName := u.FileName
	if fileName == "" {
		fileName = constants.DefaultUploadFileName
	}

	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		return nil, "", fmt.Errorf("creating file part: %w", err)
	}

	_, err = io.Copy(part, u.Content)
	if err != nil {
		return nil, "", fmt.Errorf("copying file content: %w", err)
	}

	for _, key := range slices.Sorted(maps.Keys(u.Fields)) {
		value, err := stringifyField(u.Fields[key])
		if err != nil {
			return nil, "", fmt.Errorf("encoding field %s: %w", key, err)
		}

		err = writer.WriteField(key, value)
		if err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", key, err)
		}
	}

	err = writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// stringifyField renders a form value. Scalars use their plain text form;
// maps, slices and structs are sent as JSON.
func stringifyField(value interface{}) (string, error) {
	switch typed := value.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	case []byte:
		return string(typed), nil
	case fmt.Stringer:
		return typed.String(), nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(typed), nil
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return "", err
		}

		return string(data), nil
	}
}
