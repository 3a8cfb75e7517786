package repository

import "errors"

// ErrNotFound is a repository-specific sentinel error, returned when a query
// for a single conversation finds no rows. It abstracts away the underlying
// driver's error (sql.ErrNoRows) so callers stay database-agnostic.
var ErrNotFound = errors.New("repository: not found")
