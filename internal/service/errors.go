package service

import (
	"errors"
	"fmt"
	"strings"
)

// Messages shown to clients verbatim.
const (
	MsgMissingCredentials = "Please enter both username and password."
	MsgInvalidCredentials = "Invalid username or password."
	MsgDuplicateIdentity  = "An account or registration with these details already exists."
	MsgUploadFailed       = "Failed to upload document. Please try again."
	MsgInternal           = "Something went wrong. Please try again later."
	MsgWeakPassword       = "Password must be at least 8 characters long and contain a letter and a digit."
	MsgInvalidToken       = "This verification link is invalid or has expired."
	MsgResendThrottled    = "Please wait a minute before requesting another verification email."
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicate          = errors.New("identity already registered")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrRequestNotFound    = errors.New("registration request not found")
	ErrInvalidToken       = errors.New("invalid verification token")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrResendThrottled    = errors.New("verification resend throttled")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrNotificationFailed = errors.New("notification could not be sent")
)

// ValidationError carries every user-facing validation failure of one request.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// UploadError reports a failure to persist an uploaded document.
type UploadError struct {
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// StoreError wraps an unexpected credential store failure. Its text is
// logged, never returned to clients.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
