package api

import (
	"errors"
	"fmt"
)

// Code classifies a gateway failure. Screens branch on codes, never on
// message substrings.
type Code string

const (
	// CodeUnauthorized means the credential is invalid or expired; the
	// caller should route back to the login screen.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden indicates a misconfigured key or blocked access.
	CodeForbidden Code = "forbidden"
	// CodeRateLimited maps HTTP 429.
	CodeRateLimited Code = "rate_limited"
	// CodeBadRequest maps HTTP 400.
	CodeBadRequest Code = "bad_request"
	// CodeAlreadyRegistered is the structured form of the backend's
	// duplicate-account rejection on register.
	CodeAlreadyRegistered Code = "already_registered"
	// CodeNetwork covers transport failures and undecodable responses.
	CodeNetwork Code = "network"
	// CodeRemote is any other non-2xx status.
	CodeRemote Code = "remote"
)

// Error is a classified gateway failure.
type Error struct {
	Code   Code
	Status int    // HTTP status, 0 for transport failures
	Detail string // server-provided detail when available
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api: %s (status %d): %s", e.Code, e.Status, e.Detail)
	}
	return fmt.Sprintf("api: %s: %s", e.Code, e.Detail)
}

// CodeOf extracts the classification from err, or CodeNetwork when err is
// not a gateway error.
func CodeOf(err error) Code {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeNetwork
}

// IsUnauthorized reports whether err should send the user back to login.
func IsUnauthorized(err error) bool {
	return CodeOf(err) == CodeUnauthorized
}

func classify(status int, detail string) *Error {
	code := CodeRemote
	switch status {
	case 401:
		code = CodeUnauthorized
	case 403:
		code = CodeForbidden
	case 429:
		code = CodeRateLimited
	case 400:
		code = CodeBadRequest
	}
	return &Error{Code: code, Status: status, Detail: detail}
}
