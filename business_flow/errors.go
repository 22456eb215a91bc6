// Package businessflow contains the core business logic for the signal
// intake and ICP scoring pipeline.
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Monitor-related errors
	ErrMonitorNotFound      = errors.New("monitor not found")
	ErrMonitorAccessDenied  = errors.New("monitor access denied")
	ErrMonitorInactive      = errors.New("monitor is inactive")
	ErrInvalidMonitorKind   = errors.New("invalid monitor kind")
	ErrMonitorTargetEmpty   = errors.New("monitor target is required")
	ErrCadenceTooShort      = errors.New("scan cadence is too short")
	ErrMonitorUpdateEmpty   = errors.New("at least one field must be provided for update")
	ErrMonitorAlreadyExists = errors.New("monitor already exists for this target")

	// Lead-related errors
	ErrLeadNotFound       = errors.New("lead not found")
	ErrLeadAccessDenied   = errors.New("lead access denied")
	ErrProfileURLRequired = errors.New("profile URL is required")
	ErrWorkspaceRequired  = errors.New("workspace is required")

	// Event-related errors
	ErrInvalidSignalType  = errors.New("invalid signal type")
	ErrOccurredAtRequired = errors.New("event occurrence time is required")

	// ICP filter errors
	ErrFilterSetNotFound   = errors.New("ICP filter set not found")
	ErrCompanySizeInverted = errors.New("company size min cannot exceed max")
	ErrInvalidSeniority    = errors.New("invalid seniority level")

	// Push-related errors
	ErrNothingToPush      = errors.New("no qualified leads to push")
	ErrOutreachRejected   = errors.New("outreach service rejected the batch")
	ErrPushBatchTooLarge  = errors.New("push batch exceeds maximum size")
	ErrLeadAlreadyPushed  = errors.New("lead already pushed to outbound")
	ErrLeadNotQualified   = errors.New("lead does not match the ICP filters")
	ErrOutreachUnavailable = errors.New("outreach service is unavailable")

	// Filter/pagination errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 200")

	// Auth errors
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrInvalidAPIKey     = errors.New("invalid API key")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error classification helpers for handlers
func IsMonitorNotFound(err error) bool      { return errors.Is(err, ErrMonitorNotFound) }
func IsMonitorAccessDenied(err error) bool  { return errors.Is(err, ErrMonitorAccessDenied) }
func IsMonitorInactive(err error) bool      { return errors.Is(err, ErrMonitorInactive) }
func IsMonitorAlreadyExists(err error) bool { return errors.Is(err, ErrMonitorAlreadyExists) }
func IsInvalidMonitorKind(err error) bool   { return errors.Is(err, ErrInvalidMonitorKind) }
func IsCadenceTooShort(err error) bool      { return errors.Is(err, ErrCadenceTooShort) }
func IsMonitorUpdateEmpty(err error) bool   { return errors.Is(err, ErrMonitorUpdateEmpty) }
func IsLeadNotFound(err error) bool         { return errors.Is(err, ErrLeadNotFound) }
func IsLeadAccessDenied(err error) bool     { return errors.Is(err, ErrLeadAccessDenied) }
func IsCompanySizeInverted(err error) bool  { return errors.Is(err, ErrCompanySizeInverted) }
func IsInvalidSeniority(err error) bool     { return errors.Is(err, ErrInvalidSeniority) }
func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage) || errors.Is(err, ErrInvalidPageSize)
}
