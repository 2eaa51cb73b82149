package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error codes surfaced to clients.
const (
	CodeValidationFailed           = "VALIDATION_FAILED"
	CodeNotFound                   = "NOT_FOUND"
	CodeUnauthorized               = "UNAUTHORIZED"
	CodeInvalidCredentials         = "INVALID_CREDENTIALS"
	CodeForbidden                  = "FORBIDDEN"
	CodeConflict                   = "CONFLICT"
	CodeIdentityNotFound           = "IDENTITY_NOT_FOUND"
	CodeEstablishmentNotFound      = "ESTABLISHMENT_NOT_FOUND"
	CodeFeedbackNotFound           = "FEEDBACK_NOT_FOUND"
	CodeNoFeedbackForEstablishment = "NO_FEEDBACK_FOR_ESTABLISHMENT"
	CodeDuplicateSubmission        = "DUPLICATE_SUBMISSION"
	CodeEmailAlreadyRegistered     = "EMAIL_ALREADY_REGISTERED"
	CodeInternal                   = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "invalid email or password", http.StatusUnauthorized, nil)
}

// NewIdentityNotFound reports a verified subject with no matching customer.
func NewIdentityNotFound() error {
	return NewDomainError(CodeIdentityNotFound, "authenticated customer not found", http.StatusNotFound, nil)
}

func NewEstablishmentNotFound(id int64) error {
	return NewDomainError(CodeEstablishmentNotFound,
		fmt.Sprintf("establishment with id %d not found", id),
		http.StatusNotFound,
		map[string]any{"establishmentId": id})
}

// NewFeedbackNotFound is returned both when the feedback is missing and when it
// belongs to someone else; callers cannot tell the two apart.
func NewFeedbackNotFound(id int64) error {
	return NewDomainError(CodeFeedbackNotFound,
		fmt.Sprintf("feedback not found for id %d", id),
		http.StatusNotFound,
		map[string]any{"feedbackId": id})
}

func NewNoFeedbackForEstablishment(establishmentID int64) error {
	return NewDomainError(CodeNoFeedbackForEstablishment,
		fmt.Sprintf("no feedback found for establishment id %d", establishmentID),
		http.StatusNotFound,
		map[string]any{"establishmentId": establishmentID})
}

func NewDuplicateSubmission(establishmentID int64) error {
	return NewDomainError(CodeDuplicateSubmission,
		"feedback for this establishment was already submitted",
		http.StatusConflict,
		map[string]any{"establishmentId": establishmentID})
}

func NewEmailAlreadyRegistered() error {
	return NewDomainError(CodeEmailAlreadyRegistered, "email already registered", http.StatusConflict, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Unknown errors become
// an opaque INTERNAL_ERROR that keeps the cause only for logging.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromFiberError(fiberErr)
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func fromFiberError(err *fiber.Error) *DomainError {
	switch err.Code {
	case http.StatusNotFound:
		return NewDomainError(CodeNotFound, err.Message, err.Code, nil)
	case http.StatusUnauthorized:
		return NewDomainError(CodeUnauthorized, err.Message, err.Code, nil)
	case http.StatusForbidden:
		return NewDomainError(CodeForbidden, err.Message, err.Code, nil)
	case http.StatusConflict:
		return NewDomainError(CodeConflict, err.Message, err.Code, nil)
	}
	if err.Code >= 400 && err.Code < 500 {
		return NewDomainError(CodeValidationFailed, err.Message, err.Code, nil)
	}
	return &DomainError{Code: CodeInternal, Message: "internal server error", HTTPStatus: http.StatusInternalServerError, Err: err}
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
