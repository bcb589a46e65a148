package auth

import (
	"errors"

	"github.com/abduss/gotask/internal/apperror"
)

// Store-level errors. They never reach clients directly.
var (
	// ErrUserNotFound signals that the user could not be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrRefreshTokenNotFound means no user holds a live refresh token with the given hash.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// Client-facing failures.
var (
	// ErrEmailAlreadyExists indicates the email is already registered.
	ErrEmailAlreadyExists = apperror.New(apperror.KindConflict, apperror.CodeDuplicateValue, "Email already registered")
	// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthenticated, apperror.CodeInvalidCredentials, "Invalid credentials")
	// ErrMissingRefreshToken is returned when refresh is called without a token.
	ErrMissingRefreshToken = apperror.New(apperror.KindValidation, apperror.CodeMissingRefreshToken, "Refresh token is required")
	// ErrInvalidRefreshToken covers unknown, rotated, cleared and expired refresh tokens alike.
	ErrInvalidRefreshToken = apperror.New(apperror.KindUnauthenticated, apperror.CodeInvalidRefreshToken, "Invalid or expired refresh token")
	// ErrNotAuthenticated is the single response for every session-authenticator rejection.
	ErrNotAuthenticated = apperror.New(apperror.KindUnauthenticated, apperror.CodeUnauthorized, "Not authorized to access this route")
	// ErrTokenInvalid marks a malformed access token or a bad signature.
	ErrTokenInvalid = apperror.New(apperror.KindInvalidCredential, apperror.CodeInvalidToken, "Invalid token")
	// ErrTokenExpired marks a correctly signed access token past its expiry.
	ErrTokenExpired = apperror.New(apperror.KindCredentialExpired, apperror.CodeTokenExpired, "Token expired")
	// ErrNameRequired rejects names that are empty once trimmed.
	ErrNameRequired = apperror.Validation("Please add a name")
	// ErrPasswordTooLong rejects passwords bcrypt would silently truncate.
	ErrPasswordTooLong = apperror.Validation("Password can not be more than 72 bytes")
)
