package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a referenced user or item does not exist.
	ErrNotFound = errors.New("catalog: not found")

	// ErrForbidden is returned when the acting user does not own the item
	// being modified.
	ErrForbidden = errors.New("catalog: not your item")

	// ErrBlankQuery is returned by ValidateQuery for empty or whitespace-only
	// search text.
	ErrBlankQuery = errors.New("catalog: blank search query")
)

// StatusError is returned by HTTPClient when the API answers with a
// non-2xx status. The response body is not inspected.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Status string // status text, e.g. "Not Found"
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: API error: %d %s", e.Code, e.Status)
}

// Is lets callers test remote failures against the same sentinels the
// in-process stores return.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrForbidden:
		return e.Code == http.StatusForbidden
	}
	return false
}

func userNotFound(id int64) error {
	return fmt.Errorf("user %d: %w", id, ErrNotFound)
}

func itemNotFound(id int64) error {
	return fmt.Errorf("item %d: %w", id, ErrNotFound)
}

func notOwner(itemID, ownerID int64) error {
	return fmt.Errorf("item %d, user %d: %w", itemID, ownerID, ErrForbidden)
}
