package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced alongside structured errors so clients and logs can
// branch without string-matching messages.
const (
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeUserExists        = "USER_ALREADY_EXISTS"
	TextCodeNotAuthorized     = "NOT_AUTHORIZED"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeTooManyAttempts   = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeEmptyPassword     = "EMPTY_PASSWORD"
	TextCodePasswordTooLong   = "PASSWORD_TOO_LONG"
	TextCodeMissingSigningKey = "MISSING_SIGNING_KEY"
)

// ErrInvalidCredentials is the single error both login failure arms collapse
// into: unknown identifier and wrong password are indistinguishable to the
// caller, which keeps the endpoint unusable for user enumeration.
var ErrInvalidCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserExists is returned on register when either the email or the
// username is already taken. One message for both; no field enumeration.
var ErrUserExists = goerrors.New("the user already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeUserExists).
	WithCode(goerrors.CodeConflict)

// ErrNotAuthorized covers every verify/middleware failure: missing token,
// bad token, expired token, or a token whose user has vanished.
var ErrNotAuthorized = goerrors.New("not authorized", goerrors.CategoryAuth).
	WithTextCode(TextCodeNotAuthorized).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound)

// ErrTokenExpired marks tokens outside their validity window.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed marks tokens that failed parsing or signature checks.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTooManyLoginAttempts is returned when an account is inside its
// cool down window. The HTTP layer still surfaces a uniform 401.
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrNoEmptyString rejects empty plaintext before it reaches bcrypt.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrPasswordTooLong rejects plaintext beyond what bcrypt will key off.
var ErrPasswordTooLong = goerrors.New("password must be at most 72 bytes", goerrors.CategoryValidation).
	WithTextCode(TextCodePasswordTooLong)

// ErrMismatchedHashAndPassword is the hasher-level mismatch error.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrMissingSigningKey refuses token service construction without a secret.
// This is the one condition that should halt the process at startup.
var ErrMissingSigningKey = goerrors.New("signing key is required", goerrors.CategoryOperation).
	WithTextCode(TextCodeMissingSigningKey)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsUniqueViolation reports whether a driver error came from a unique
// index. Covers sqlite ("UNIQUE constraint failed") and postgres
// ("duplicate key value violates unique constraint").
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
