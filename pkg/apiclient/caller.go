package apiclient

import (
	"context"
	"net/url"
)

// Caller is the typed surface of a Client: every verb runs the raw call
// and then the transformer.
type Caller[T any] struct {
	client    *Client
	transform Transformer[T]
}

// For returns a Caller that uses DefaultTransformer, so results are whole
// envelopes with Data decoded as T.
//
//	users, err := apiclient.For[UserList](client).Get(ctx, "/users", url.Values{"page": {"1"}}, nil)
//	if err != nil { ... }
//	_ = users.Data.Users
func For[T any](client *Client) Caller[*Envelope[T]] {
	return Caller[*Envelope[T]]{client: client, transform: DefaultTransformer[T]()}
}

// Transform returns a Caller that applies transform to every successful
// response.
func Transform[T any](client *Client, transform Transformer[T]) Caller[T] {
	return Caller[T]{client: client, transform: transform}
}

// Client returns the underlying client.
func (c Caller[T]) Client() *Client {
	return c.client
}

// Get performs a GET request.
func (c Caller[T]) Get(ctx context.Context, path string, params url.Values, headers map[string]string) (T, error) {
	return c.apply(c.client.Get(ctx, path, params, headers))
}

// Delete performs a DELETE request.
func (c Caller[T]) Delete(ctx context.Context, path string, params url.Values, headers map[string]string) (T, error) {
	return c.apply(c.client.Delete(ctx, path, params, headers))
}

// Post performs a POST request.
func (c Caller[T]) Post(ctx context.Context, path string, body interface{}, headers map[string]string) (T, error) {
	return c.apply(c.client.Post(ctx, path, body, headers))
}

// Put performs a PUT request.
func (c Caller[T]) Put(ctx context.Context, path string, body interface{}, headers map[string]string) (T, error) {
	return c.apply(c.client.Put(ctx, path, body, headers))
}

// Patch performs a PATCH request.
func (c Caller[T]) Patch(ctx context.Context, path string, body interface{}, headers map[string]string) (T, error) {
	return c.apply(c.client.Patch(ctx, path, body, headers))
}

// UploadFile POSTs a multipart upload.
func (c Caller[T]) UploadFile(ctx context.Context, path string, upload *Upload, headers map[string]string) (T, error) {
	return c.apply(c.client.UploadFile(ctx, path, upload, headers))
}

// UploadFileWithPut PUTs a multipart upload.
func (c Caller[T]) UploadFileWithPut(ctx context.Context, path string, upload *Upload, headers map[string]string) (T, error) {
	return c.apply(c.client.UploadFileWithPut(ctx, path, upload, headers))
}

func (c Caller[T]) apply(resp *Response, err error) (T, error) {
	var zero T

	if err != nil {
		return zero, err
	}

	if c.transform == nil {
		return zero, asError(ErrNilTransformer)
	}

	value, err := c.transform(resp)
	if err != nil {
		return zero, asError(err)
	}

	return value, nil
}
