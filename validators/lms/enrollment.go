package lmsValidator

import (
	"github.com/gofiber/fiber/v2"
)

// AssignRequest is the admin assignment payload.
type AssignRequest struct {
	UserID   uint `json:"user_id" validate:"required"`
	CourseID uint `json:"course_id" validate:"required"`
}

// AssignEnrollment validates POST /enrollments/
func AssignEnrollment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AssignRequest)
		if !body(c, reqData) {
			return nil
		}
		c.Locals("validatedAssign", reqData)
		return c.Next()
	}
}

// ProgressRequest carries a lesson-completion progress update.
type ProgressRequest struct {
	Percent *int `json:"percent" validate:"required,min=0,max=100"`
}

// LessonComplete validates POST /enrollments/:id/lessons/:lesson_id/complete
func LessonComplete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !paramID(c, "id", "enrollmentID") {
			return nil
		}
		if !paramID(c, "lesson_id", "lessonID") {
			return nil
		}
		reqData := new(ProgressRequest)
		if !body(c, reqData) {
			return nil
		}
		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}

// AnnulRequest carries the admin annulment reason.
type AnnulRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=255"`
}

// AnnulEnrollment validates POST /enrollments/:id/annul
func AnnulEnrollment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !paramID(c, "id", "enrollmentID") {
			return nil
		}
		reqData := new(AnnulRequest)
		if !body(c, reqData) {
			return nil
		}
		c.Locals("validatedAnnul", reqData)
		return c.Next()
	}
}

// EnrollmentID validates routes that only take the :id parameter.
func EnrollmentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !paramID(c, "id", "enrollmentID") {
			return nil
		}
		return c.Next()
	}
}
