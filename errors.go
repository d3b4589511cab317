package osmapi

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// An APIError is returned for any response with a non-success status code.
// It carries the raw response body for diagnosis.
type APIError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api error %s from %s", e.Status, e.URL)
	}
	return fmt.Sprintf("api error %s from %s: %s", e.Status, e.URL, e.Body)
}

// A PreconditionError reports a request that was rejected client side,
// before any call to the server was made.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

func preconditionf(format string, args ...interface{}) error {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}

// IsPrecondition returns whether err was raised before any request was made.
func IsPrecondition(err error) bool {
	_, ok := errors.Cause(err).(*PreconditionError)
	return ok
}

func hasStatus(err error, code int) bool {
	apiErr, ok := errors.Cause(err).(*APIError)
	return ok && apiErr.StatusCode == code
}

// IsNotFound returns whether err reports an element or changeset that does
// not exist on the server.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsGone returns whether err reports an element that was deleted.
func IsGone(err error) bool {
	return hasStatus(err, http.StatusGone)
}

// IsConflict returns whether err reports a version conflict or an operation
// against a closed changeset. After a conflicting diff upload the caller
// must re-fetch the affected elements before retrying.
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}
