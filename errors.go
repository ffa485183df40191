package goPass

import "errors"

var (
	// ErrInvalidIdentity is returned when a username is empty or white space only.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrUnknownIdentity is returned when a well-formed username is not registered.
	ErrUnknownIdentity = errors.New("unknown identity")
	// ErrInvalidCredential is returned when a presented token is empty or white space only.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrMalformedCredential is returned when a presented token is not a UUID.
	ErrMalformedCredential = errors.New("malformed credential")
	// ErrStoreUnavailable wraps credential store failures.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrRegistrationUnsupported is returned by Register when the configured
	// store cannot create users.
	ErrRegistrationUnsupported = errors.New("credential store does not support registration")
	// ErrEngineNotReady is returned when an Engine was not built through Builder.Build.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// CredentialError is returned for caller errors in Generate, Verify and
// Register. Error returns the caller-facing message; errors.Is matches the
// wrapped sentinel (ErrInvalidIdentity, ErrUnknownIdentity,
// ErrInvalidCredential or ErrMalformedCredential).
type CredentialError struct {
	Kind    error
	Message string
}

func (e *CredentialError) Error() string {
	return e.Message
}

func (e *CredentialError) Unwrap() error {
	return e.Kind
}

func invalidIdentityError(username string) error {
	return &CredentialError{
		Kind:    ErrInvalidIdentity,
		Message: "User name '" + username + "' is not valid.",
	}
}

func unknownIdentityError(username string) error {
	return &CredentialError{
		Kind:    ErrUnknownIdentity,
		Message: "User name '" + username + "' does not exist.",
	}
}

func invalidCredentialError(token string) error {
	return &CredentialError{
		Kind:    ErrInvalidCredential,
		Message: "Password '" + token + "' is not valid.",
	}
}

func malformedCredentialError(token string) error {
	return &CredentialError{
		Kind:    ErrMalformedCredential,
		Message: "Password '" + token + "' must be a valid Guid.",
	}
}
