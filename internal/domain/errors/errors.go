// Package errors provides standardized error types for the domain layer.
// These errors provide consistent error handling across all services
// and enable proper error categorization for HTTP responses.
package errors

import (
	"errors"
	"fmt"
)

// Standard error categories
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates invalid input was provided
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request is not authorized
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the request is forbidden
	ErrForbidden = errors.New("forbidden")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrConflict indicates a conflict with the current state
	ErrConflict = errors.New("conflict")

	// ErrExpired indicates the resource is past its validity window
	ErrExpired = errors.New("expired")

	// ErrPaused indicates the subsystem is administratively paused
	ErrPaused = errors.New("paused")

	// ErrServiceUnavailable indicates the service is temporarily unavailable
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Router error codes surfaced to API clients
const (
	CodeUnsupportedChain        = "UNSUPPORTED_CHAIN"
	CodeDestinationNotSupported = "DESTINATION_NOT_SUPPORTED"
	CodeInvalidAmount           = "INVALID_AMOUNT"
	CodeInvalidSlippage         = "INVALID_SLIPPAGE"
	CodeInvalidRecipient        = "INVALID_RECIPIENT"
	CodeQuoteExpired            = "QUOTE_EXPIRED"
	CodeNoBridgeAvailable       = "NO_BRIDGE_AVAILABLE"
	CodeMessageNotFound         = "MESSAGE_NOT_FOUND"
	CodeMessageAlreadyDelivered = "MESSAGE_ALREADY_DELIVERED"
	CodeSystemPaused            = "SYSTEM_PAUSED"
)

// DomainError represents a domain-specific error with additional context
type DomainError struct {
	Err       error
	Code      string
	Message   string
	Details   map[string]interface{}
	Retryable bool
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target
func (e *DomainError) Is(target error) bool {
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(err error, code, message string) *DomainError {
	return &DomainError{
		Err:     err,
		Code:    code,
		Message: message,
	}
}

// WithDetails adds details to the error
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	e.Details = details
	return e
}

// WithRetryable marks the error as retryable
func (e *DomainError) WithRetryable(retryable bool) *DomainError {
	e.Retryable = retryable
	return e
}

// IsRetryable returns true if the error is retryable
func (e *DomainError) IsRetryable() bool {
	return e.Retryable
}

// NotFoundError creates a not found error
func NotFoundError(resource string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Code:    fmt.Sprintf("%s_NOT_FOUND", resource),
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// AlreadyExistsError creates an already exists error
func AlreadyExistsError(resource string) *DomainError {
	return &DomainError{
		Err:     ErrAlreadyExists,
		Code:    fmt.Sprintf("%s_ALREADY_EXISTS", resource),
		Message: fmt.Sprintf("%s already exists", resource),
	}
}

// ValidationError creates a validation error
func ValidationError(field, message string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidInput,
		Code:    "VALIDATION_ERROR",
		Message: message,
		Details: map[string]interface{}{
			"field": field,
		},
	}
}

// UnauthorizedError creates an unauthorized error
func UnauthorizedError(message string) *DomainError {
	return &DomainError{
		Err:     ErrUnauthorized,
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

// ForbiddenError creates a forbidden error
func ForbiddenError(message string) *DomainError {
	return &DomainError{
		Err:     ErrForbidden,
		Code:    "FORBIDDEN",
		Message: message,
	}
}

// InternalError creates an internal error
func InternalError(message string, err error) *DomainError {
	de := &DomainError{
		Err:     ErrInternal,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if err != nil {
		de.Details = map[string]interface{}{
			"cause": err.Error(),
		}
	}
	return de
}

// ServiceUnavailableError creates a service unavailable error
func ServiceUnavailableError(service string, err error) *DomainError {
	de := &DomainError{
		Err:       ErrServiceUnavailable,
		Code:      "SERVICE_UNAVAILABLE",
		Message:   fmt.Sprintf("%s service is temporarily unavailable", service),
		Retryable: true,
	}
	if err != nil {
		de.Details = map[string]interface{}{
			"cause": err.Error(),
		}
	}
	return de
}

// UnsupportedChainError rejects a chain outside the supported set
func UnsupportedChainError(chain string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidInput,
		Code:    CodeUnsupportedChain,
		Message: fmt.Sprintf("chain %q is not supported", chain),
		Details: map[string]interface{}{
			"chain": chain,
		},
	}
}

// DestinationNotSupportedError rejects a destination no bridge can reach
func DestinationNotSupportedError(source, dest string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidInput,
		Code:    CodeDestinationNotSupported,
		Message: fmt.Sprintf("no route from %s to %s", source, dest),
		Details: map[string]interface{}{
			"source_chain": source,
			"dest_chain":   dest,
		},
	}
}

// InvalidAmountError rejects a non-positive or malformed amount
func InvalidAmountError(amount string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidInput,
		Code:    CodeInvalidAmount,
		Message: "amount must be a positive decimal",
		Details: map[string]interface{}{
			"amount": amount,
		},
	}
}

// InvalidSlippageError rejects an out-of-range slippage bound
func InvalidSlippageError(slippage string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidInput,
		Code:    CodeInvalidSlippage,
		Message: "max_slippage must be between 0 and 1",
		Details: map[string]interface{}{
			"max_slippage": slippage,
		},
	}
}

// InvalidRecipientError rejects an empty or malformed recipient address
func InvalidRecipientError(recipient string) *DomainError {
	return &DomainError{
		Err:     ErrInvalidInput,
		Code:    CodeInvalidRecipient,
		Message: "recipient address is invalid",
		Details: map[string]interface{}{
			"recipient": recipient,
		},
	}
}

// QuoteExpiredError rejects execution of a quote past its validity window
func QuoteExpiredError(quoteID string) *DomainError {
	return &DomainError{
		Err:     ErrExpired,
		Code:    CodeQuoteExpired,
		Message: "quote has expired, request a new one",
		Details: map[string]interface{}{
			"quote_id": quoteID,
		},
	}
}

// NoBridgeAvailableError signals that no active bridge serves a route
func NoBridgeAvailableError(source, dest string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Code:    CodeNoBridgeAvailable,
		Message: fmt.Sprintf("no active bridge serves %s to %s", source, dest),
		Details: map[string]interface{}{
			"source_chain": source,
			"dest_chain":   dest,
		},
	}
}

// MessageNotFoundError signals an unknown message id
func MessageNotFoundError(messageID string) *DomainError {
	return &DomainError{
		Err:     ErrNotFound,
		Code:    CodeMessageNotFound,
		Message: "message not found",
		Details: map[string]interface{}{
			"message_id": messageID,
		},
	}
}

// MessageAlreadyDeliveredError rejects a second delivery of the same message
func MessageAlreadyDeliveredError(messageID string) *DomainError {
	return &DomainError{
		Err:     ErrConflict,
		Code:    CodeMessageAlreadyDelivered,
		Message: "message has already been delivered",
		Details: map[string]interface{}{
			"message_id": messageID,
		},
	}
}

// SystemPausedError rejects sends while the messenger is paused
func SystemPausedError() *DomainError {
	return &DomainError{
		Err:       ErrPaused,
		Code:      CodeSystemPaused,
		Message:   "message sending is paused",
		Retryable: true,
	}
}

// Error helpers for common patterns

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidInput checks if an error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnauthorized checks if an error is an unauthorized error
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden checks if an error is a forbidden error
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsExpired checks if an error is an expiry error
func IsExpired(err error) bool {
	return errors.Is(err, ErrExpired)
}

// IsPaused checks if an error is a paused error
func IsPaused(err error) bool {
	return errors.Is(err, ErrPaused)
}

// IsServiceUnavailable checks if an error is a service unavailable error
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// GetErrorCode extracts the error code from a domain error
func GetErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "UNKNOWN_ERROR"
}

// GetErrorDetails extracts details from a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapWithCode wraps an error with a code and message
func WrapWithCode(err error, code, message string) *DomainError {
	return &DomainError{
		Err:     err,
		Code:    code,
		Message: message,
	}
}
