package apierr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
)

// Numeric codes handed to upstream callers for mapping onto their own
// transport status.
const (
	CodeApplication      = 5000
	CodeThread           = 1250
	CodeThreadUpdate     = 1251
	CodeThreadDelete     = 1252
	CodeSummaryUpdate    = 1253
	CodeValidation       = 1254
	CodeConflict         = 1255
	CodeInvalidReference = 1256
)

var defaultMessages = map[int]string{
	CodeApplication:      "An unexpected error occurred",
	CodeThread:           "Thread operation failed",
	CodeThreadUpdate:     "Thread update failed: Thread not found",
	CodeThreadDelete:     "Thread deletion failed: Thread not found",
	CodeSummaryUpdate:    "Summary update failed: Summary not found",
	CodeValidation:       "Invalid input",
	CodeConflict:         "Record already exists",
	CodeInvalidReference: "Referenced record does not exist",
}

// Sentinels for errors.Is; any *Error with the same Code matches.
var (
	ErrApplication      = &Error{Code: CodeApplication}
	ErrThread           = &Error{Code: CodeThread}
	ErrThreadUpdate     = &Error{Code: CodeThreadUpdate}
	ErrThreadDelete     = &Error{Code: CodeThreadDelete}
	ErrSummaryUpdate    = &Error{Code: CodeSummaryUpdate}
	ErrValidation       = &Error{Code: CodeValidation}
	ErrConflict         = &Error{Code: CodeConflict}
	ErrInvalidReference = &Error{Code: CodeInvalidReference}
)

type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = DefaultMessage(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so callers can compare against the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: strings.TrimSpace(message), Err: err}
}

func DefaultMessage(code int) string {
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return defaultMessages[CodeApplication]
}

func ThreadUpdate(message string) *Error { return New(CodeThreadUpdate, message, nil) }

func ThreadDelete(message string) *Error { return New(CodeThreadDelete, message, nil) }

func SummaryUpdate(message string) *Error { return New(CodeSummaryUpdate, message, nil) }

func Validation(message string, err error) *Error { return New(CodeValidation, message, err) }

// CodeOf returns the code carried by err, or 0 when err is not an *Error.
func CodeOf(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return 0
	}
	return e.Code
}

// MapError tags store and validation failures with an error code. Anything
// it does not recognise is returned wrapped with op and no code.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return New(CodeValidation, op+": "+formatValidation(verrs), err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return New(CodeConflict, op, err)
		case "23503": // foreign_key_violation
			return New(CodeInvalidReference, op, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"), strings.Contains(msg, "duplicate key"):
		return New(CodeConflict, op, err)
	case strings.Contains(msg, "foreign key constraint failed"):
		return New(CodeInvalidReference, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func formatValidation(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
