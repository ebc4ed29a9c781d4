package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates the record no longer exists server-side.
	ErrNotFound = errors.New("api: not found")
	// ErrUnauthorized indicates a missing or expired session token.
	ErrUnauthorized = errors.New("api: unauthorized")
)

// LinkedRef identifies a record that blocks a delete or deactivate.
type LinkedRef struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employeeid"`
	Code       string `json:"code"`
}

// Label renders the reference the way the blocking dialog lists it.
func (l LinkedRef) Label() string {
	switch {
	case l.EmployeeID != "":
		return fmt.Sprintf("%s (%s)", l.Name, l.EmployeeID)
	case l.Code != "":
		return fmt.Sprintf("%s (%s)", l.Name, l.Code)
	default:
		return l.Name
	}
}

// Error is the decoded failure payload of any platform API call.
type Error struct {
	Status  int
	Message string `json:"message"`

	LinkedUsers         []LinkedRef `json:"linkedUsers"`
	LinkedBranches      []LinkedRef `json:"linkedBranches"`
	LinkedUsersCount    int         `json:"linkedUsersCount"`
	LinkedBranchesCount int         `json:"linkedBranchesCount"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api: request failed with status %d", e.Status)
}

// Blocked reports whether the failure carries relationship blockers.
func (e *Error) Blocked() bool {
	return len(e.LinkedUsers) > 0 || len(e.LinkedBranches) > 0
}

// Unwrap maps well-known statuses onto sentinel errors.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return nil
	}
}

// decodeError builds an *Error from a non-2xx response body. Bodies that are
// not JSON still yield a usable error carrying the status.
func decodeError(status int, body []byte) *Error {
	apiErr := &Error{Status: status}
	_ = json.Unmarshal(body, apiErr)
	return apiErr
}

// Reason extracts the user-facing message for err: the server message when
// present, then the Go error text, then the given fallback. Every screen
// funnels through this single extraction.
func Reason(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
