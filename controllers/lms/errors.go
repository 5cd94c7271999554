package controllers

import (
	"errors"
	"log"

	"qlms/middleware"
	"qlms/workflow"

	"github.com/gofiber/fiber/v2"
)

// statusForKind maps workflow error kinds to HTTP statuses.
var statusForKind = map[string]int{
	workflow.KindInvalidStateTransition:  fiber.StatusConflict,
	workflow.KindAttemptBudgetExhausted:  fiber.StatusConflict,
	workflow.KindDuplicatePendingRequest: fiber.StatusConflict,
	workflow.KindBudgetNotExhausted:      fiber.StatusConflict,
	workflow.KindRequestAlreadyDecided:   fiber.StatusConflict,
	workflow.KindAlreadyEnrolled:         fiber.StatusConflict,
	workflow.KindForbidden:               fiber.StatusForbidden,
	workflow.KindNotFound:                fiber.StatusNotFound,
	workflow.KindInvalidInput:            fiber.StatusBadRequest,
	workflow.KindIssuanceFailed:          fiber.StatusInternalServerError,
}

// workflowError renders a workflow error as the standard envelope, keeping
// the structured kind and state context in the data payload.
func workflowError(c *fiber.Ctx, err error) error {
	var we *workflow.Error
	if errors.As(err, &we) {
		status, ok := statusForKind[we.Kind]
		if !ok {
			status = fiber.StatusInternalServerError
		}
		return middleware.JsonResponse(c, status, false, we.Message, we)
	}

	log.Printf("workflow error: %v", err)
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
}
