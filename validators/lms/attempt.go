package lmsValidator

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

// AttemptRequest is a scored test submission.
type AttemptRequest struct {
	EnrollmentID uint            `json:"enrollment_id" validate:"required"`
	Score        *int            `json:"score" validate:"required,min=0,max=100"`
	Answers      json.RawMessage `json:"answers"`
}

// SubmitAttempt validates POST /tests/:test_id/attempts
func SubmitAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !paramID(c, "test_id", "testID") {
			return nil
		}
		reqData := new(AttemptRequest)
		if !body(c, reqData) {
			return nil
		}
		c.Locals("validatedAttempt", reqData)
		return c.Next()
	}
}

// ExtraAttemptBody is the student's replenishment request.
type ExtraAttemptBody struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

// RequestExtraAttempt validates POST /enrollments/:id/extra-attempt-requests
func RequestExtraAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !paramID(c, "id", "enrollmentID") {
			return nil
		}
		reqData := new(ExtraAttemptBody)
		if !body(c, reqData) {
			return nil
		}
		c.Locals("validatedExtraAttempt", reqData)
		return c.Next()
	}
}

// DecideBody is an approve/reject decision payload.
type DecideBody struct {
	Approve *bool  `json:"approve" validate:"required"`
	Reason  string `json:"reason" validate:"max=255"`
}

// DecideRequest validates POST /extra-attempt-requests/:id/decide and the
// PDEK decision routes, which share the payload shape.
func DecideRequest(idKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !paramID(c, "id", idKey) {
			return nil
		}
		reqData := new(DecideBody)
		if !body(c, reqData) {
			return nil
		}
		c.Locals("validatedDecision", reqData)
		return c.Next()
	}
}
