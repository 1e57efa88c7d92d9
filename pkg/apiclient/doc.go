// Package apiclient is the shared client layer for the platform's REST
// backends.
//
// # Overview
//
// A Client is bound to one Endpoint (base URL, default headers, timeout)
// for its whole life. Several clients usually coexist, one per backend
// area, and share a CredentialProvider and a SessionExpiredHandler. The
// services package wires the standard set.
//
// Getting a client
//
//	store := apiclient.NewTokenStore(apiclient.NewFileStorage(path), apiclient.NewMemoryStorage(), nil)
//	client, err := apiclient.New(
//	  apiclient.NewEndpoint("https://api.example.com/api", 30*time.Second),
//	  apiclient.WithCredentials(store),
//	  apiclient.WithSessionExpiredHandler(&apiclient.LogoutRedirect{Store: store, Navigator: nav}),
//	)
//	if err != nil { log.Fatal(err) }
//
// # Typed and raw calls
//
// For[T] gives a Caller whose verbs return *Envelope[T]; the success flag
// has already been checked and Data decoded:
//
//	env, err := apiclient.For[UserList](client).Get(ctx, "/users", url.Values{"page": {"1"}}, nil)
//
// Transform[T] plugs in any other Transformer. The Client's own methods are
// the raw surface and return the full *Response.
//
// # Errors
//
// Every failure is an *Error whose Kind is one of Timeout, AuthExpired,
// Validation, ServerError, ClientError or Unclassified. Use the Is*
// helpers, KindOf or errors.Is with the Err* sentinels. Validation errors
// carry FieldErrors. A 401 or 403 from any endpoint also runs the
// SessionExpiredHandler, which by default clears all stored credentials and
// navigates to the login route.
package apiclient
