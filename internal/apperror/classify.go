package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the classifier understands.
const (
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgInvalidTextRepresent = "22P02"
)

// Classify translates any error into a classified *Error. It never returns nil for a non-nil input.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return New(KindCredentialExpired, CodeTokenExpired, "Token expired").Wrap(err)
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return New(KindInvalidCredential, CodeInvalidToken, "Invalid token").Wrap(err)
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Validation(describeValidation(validationErrs)).Wrap(err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var numErr *strconv.NumError
	var timeErr *time.ParseError
	switch {
	case errors.As(err, &syntaxErr):
		return Validation("Malformed JSON body").Wrap(err)
	case errors.As(err, &typeErr):
		return Validation(fmt.Sprintf("Invalid value for field %s", typeErr.Field)).Wrap(err)
	case errors.As(err, &numErr):
		return Validation(fmt.Sprintf("Invalid value %q", numErr.Num)).Wrap(err)
	case errors.As(err, &timeErr):
		return Validation(fmt.Sprintf("Invalid date %q", timeErr.Value)).Wrap(err)
	case errors.Is(err, io.EOF):
		return Validation("Request body is required").Wrap(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return New(KindConflict, CodeDuplicateValue, "Duplicate field value entered").Wrap(err)
		case pgCheckViolation:
			return Validation("Invalid field value").Wrap(err)
		case pgInvalidTextRepresent:
			return New(KindNotFound, CodeResourceNotFound, "Resource not found").Wrap(err)
		}
	}

	return Server(err)
}

func describeValidation(errs validator.ValidationErrors) string {
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		messages = append(messages, describeField(fe))
	}
	return strings.Join(messages, ", ")
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please add a %s", field)
	case "email":
		return fmt.Sprintf("Please add a valid %s", field)
	case "max":
		return fmt.Sprintf("%s can not be more than %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
