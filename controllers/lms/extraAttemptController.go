package controllers

import (
	"qlms/database"
	"qlms/middleware"
	"qlms/models/lms"
	"qlms/workflow"

	lmsValidator "qlms/validators/lms"

	"github.com/gofiber/fiber/v2"
)

// RequestExtraAttempt opens a replenishment request for an exhausted budget
func RequestExtraAttempt(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData, ok := c.Locals("validatedExtraAttempt").(*lmsValidator.ExtraAttemptBody)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	request, err := workflow.RequestExtraAttempt(database.Database.Db, enrollmentID, reqData.Reason)
	if err != nil {
		return workflowError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Extra-attempt request submitted!", request)
}

// DecideExtraAttempt approves or rejects a pending request (admin only)
func DecideExtraAttempt(c *fiber.Ctx) error {
	requestID := c.Locals("requestID").(uint)
	reviewerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedDecision").(*lmsValidator.DecideBody)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	result, err := workflow.DecideExtraAttempt(database.Database.Db, requestID, *reqData.Approve, reviewerID)
	if err != nil {
		return workflowError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Request decided!", result)
}

// GetExtraAttemptRequests lists requests for the admin review screen
func GetExtraAttemptRequests(c *fiber.Ctx) error {
	query := database.Database.Db.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []lms.ExtraAttemptRequest
	if err := query.Find(&requests).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch requests!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Requests fetched successfully!", fiber.Map{
		"requests": requests,
		"total":    len(requests),
	})
}
