package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("weak password")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCancelled          = errors.New("sign-in cancelled")
	ErrNoFederated        = errors.New("no federated provider configured")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Reason turns an authentication error into a message for the user.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return "Sign-in process was cancelled."
	case errors.Is(err, ErrInvalidEmail):
		return "The email address is badly formatted."
	case errors.Is(err, ErrWeakPassword):
		return "Password should be at least 6 characters."
	case errors.Is(err, ErrEmailInUse):
		return "The email address is already in use by another account."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, ErrNoFederated):
		return "Federated sign-in is not available."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again."
	default:
		return err.Error()
	}
}
