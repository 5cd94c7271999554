package workflow

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the API layer. The controller maps these to HTTP
// statuses; the UI maps them to localized messages.
const (
	KindInvalidStateTransition  = "InvalidStateTransition"
	KindAttemptBudgetExhausted  = "AttemptBudgetExhausted"
	KindDuplicatePendingRequest = "DuplicatePendingRequest"
	KindBudgetNotExhausted      = "BudgetNotExhausted"
	KindRequestAlreadyDecided   = "RequestAlreadyDecided"
	KindAlreadyEnrolled         = "AlreadyEnrolled"
	KindForbidden               = "Forbidden"
	KindNotFound                = "NotFound"
	KindIssuanceFailed          = "IssuanceFailed"
	KindInvalidInput            = "InvalidInput"
)

// Error is a structured workflow error: a machine-readable kind plus enough
// context (current vs. attempted state) for the caller to build a message.
type Error struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Current   string `json:"current,omitempty"`
	Attempted string `json:"attempted,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf extracts the workflow error kind, or "" for foreign errors.
func KindOf(err error) string {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

func errInvalidTransition(current, attempted string) *Error {
	return &Error{
		Kind:      KindInvalidStateTransition,
		Message:   fmt.Sprintf("cannot move from %q to %q", current, attempted),
		Current:   current,
		Attempted: attempted,
	}
}

func errAlreadyEnrolled() *Error {
	return &Error{
		Kind:    KindAlreadyEnrolled,
		Message: "student already has an active enrollment in this course",
	}
}

func errDuplicatePendingRequest() *Error {
	return &Error{
		Kind:    KindDuplicatePendingRequest,
		Message: "an extra-attempt request is already pending for this enrollment",
	}
}

func errNotFound(what string, id interface{}) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s %v not found", what, id),
	}
}
