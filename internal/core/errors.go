package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeInvalidCommand   = "invalid_command"
	ErrCodeNotLoggedIn      = "not_logged_in"
	ErrCodeNotInChannel     = "not_in_channel"
	ErrCodeChannelFull      = "channel_full"
	ErrCodeWrongPassword    = "wrong_password"
	ErrCodeAlreadyInChannel = "already_in_channel"
	ErrCodeInternal         = "internal"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExists    = errors.New("session already exists")
	ErrNotAuthenticated = errors.New("session not authenticated")
)

// CoreError wraps a code and the human-readable reply sent to the client.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

func errInvalidCommand() *CoreError {
	return coreError(ErrCodeInvalidCommand, "Invalid command.")
}

func errNotLoggedIn() *CoreError {
	return coreError(ErrCodeNotLoggedIn, "You must log in first.")
}

func errNotInChannel() *CoreError {
	return coreError(ErrCodeNotInChannel, "You are not in a channel.")
}

func errChannelFull(channel string) *CoreError {
	return coreError(ErrCodeChannelFull, "Channel "+channel+" is full.")
}

func errWrongPassword() *CoreError {
	return coreError(ErrCodeWrongPassword, "Wrong password.")
}

func errLoginFailed() *CoreError {
	return coreError(ErrCodeInternal, "Login failed, try again later.")
}

func errAlreadyInChannel(channel string) *CoreError {
	return coreError(ErrCodeAlreadyInChannel, "You are already in channel "+channel+".")
}
