package errors

import "errors"

// This package defines a centralized set of sentinel errors for the application.
// Using sentinel errors allows services to return specific, recognizable error types
// without coupling them to implementation details like HTTP status codes. The API
// layer can then use `errors.Is()` to check for these specific errors and map
// them to the correct HTTP responses.

var (
	// ErrNotFound signifies that a requested resource could not be located,
	// e.g. a conversation id that is not present in the store.
	// This is typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data provided by a client failed
	// business rule validation.
	// This is typically mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownKey signifies that a model name or personality was looked up
	// in the catalog and is not registered there. Configuration referencing an
	// unknown key is rejected at the boundary instead of falling back silently.
	ErrUnknownKey = errors.New("unknown catalog key")

	// ErrLastConversation signifies an attempt to delete the only remaining
	// conversation. The store must never be left empty, so the operation is
	// refused and no mutation occurs.
	ErrLastConversation = errors.New("cannot delete the last conversation")

	// ErrMalformedData signifies that an imported conversation blob failed to
	// parse or did not match the export shape. The store is left unchanged.
	ErrMalformedData = errors.New("malformed conversation data")

	// ErrMissingCredentials signifies that no API key has been supplied for
	// this session yet. All pipeline operations are blocked until it is set.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrInvalidCredentials signifies that client construction was rejected,
	// e.g. an empty API key.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTurnInFlight signifies that a turn is already being processed for the
	// conversation. At most one turn may be in flight per conversation.
	// This is typically mapped to a 409 Conflict HTTP status.
	ErrTurnInFlight = errors.New("a turn is already in flight for this conversation")

	// ErrInternal signifies an unexpected error on the server. This is a generic
	// error used to prevent leaking sensitive implementation details to the client.
	// This is typically mapped to a 500 Internal Server Error HTTP status.
	ErrInternal = errors.New("internal server error")
)
