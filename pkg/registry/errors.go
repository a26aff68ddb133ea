package registry

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches a StatusError carrying 401, i.e. the registry
// would not serve the manifest even after the token exchange.
var ErrUnauthorized = errors.New("registry: unauthorized")

// StatusError is a non-200 response from a registry endpoint.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.Code == http.StatusUnauthorized
}
