package domain

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by FetchError.
var (
	ErrUnauthorized      = errors.New("catalog service rejected the credentials")
	ErrStoreNotFound     = errors.New("catalog service store not found")
	ErrMalformedResponse = errors.New("catalog service returned a malformed response")
	ErrEmptyCatalog      = errors.New("catalog service returned no products")
	ErrNotLoaded         = errors.New("catalog not loaded yet")
)

// FetchError is the typed failure of a catalog source.
// It is never retried automatically; a manual reload is the only recovery path.
type FetchError struct {
	Source   string // "shopify", "file", "index"
	Cause    error
	Guidance string // actionable hint shown to the user
}

func (e *FetchError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: catalog fetch failed", e.Source)
	}
	return fmt.Sprintf("%s: catalog fetch failed: %v", e.Source, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// NewFetchError builds a FetchError with a default guidance derived from the cause.
func NewFetchError(source string, cause error) *FetchError {
	return &FetchError{
		Source:   source,
		Cause:    cause,
		Guidance: defaultGuidance(cause),
	}
}

// AsFetchError returns err as a *FetchError, wrapping it when needed.
// A nil error stays nil.
func AsFetchError(source string, err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return NewFetchError(source, err)
}

func defaultGuidance(cause error) string {
	switch {
	case errors.Is(cause, ErrUnauthorized):
		return "Check the storefront access token configuration."
	case errors.Is(cause, ErrStoreNotFound):
		return "Check the store domain configuration."
	case errors.Is(cause, ErrEmptyCatalog):
		return "The store has no published products. Publish products to the storefront channel, then reload."
	case errors.Is(cause, ErrNotLoaded):
		return "The catalog is still loading. Try again in a moment."
	default:
		return "Check the catalog service configuration and network access, then reload."
	}
}
