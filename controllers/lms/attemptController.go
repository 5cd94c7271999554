package controllers

import (
	"qlms/database"
	"qlms/middleware"
	"qlms/utils"
	"qlms/workflow"

	lmsValidator "qlms/validators/lms"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// SubmitTestAttempt submits and scores one test attempt
func SubmitTestAttempt(c *fiber.Ctx) error {
	testID := c.Locals("testID").(uint)
	reqData, ok := c.Locals("validatedAttempt").(*lmsValidator.AttemptRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	result, err := workflow.SubmitTestAttempt(
		database.Database.Db,
		reqData.EnrollmentID,
		testID,
		*reqData.Score,
		datatypes.JSON(reqData.Answers),
	)
	if err != nil {
		return workflowError(c, err)
	}

	if result.Certificate != nil {
		go utils.NotifyCertificateIssued(result.Enrollment.UserID, result.Certificate.Number)
	}
	if result.Review != nil {
		go utils.NotifyPDEKSignatureRequested(result.Review.ID, result.Enrollment.CourseID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempt recorded!", result)
}
