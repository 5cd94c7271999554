package controllers

import (
	"qlms/database"
	"qlms/middleware"
	"qlms/models/lms"
	"qlms/utils"
	"qlms/workflow"

	lmsValidator "qlms/validators/lms"

	"github.com/gofiber/fiber/v2"
)

// SubmitMemberDecision records the committee member signature
func SubmitMemberDecision(c *fiber.Ctx) error {
	reviewID := c.Locals("reviewID").(uint)
	memberID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedDecision").(*lmsValidator.DecideBody)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	result, err := workflow.SubmitMemberDecision(database.Database.Db, reviewID, memberID, *reqData.Approve, reqData.Reason)
	if err != nil {
		return workflowError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Member decision recorded!", result)
}

// SubmitChairmanDecision records the committee chairman signature
func SubmitChairmanDecision(c *fiber.Ctx) error {
	reviewID := c.Locals("reviewID").(uint)
	chairmanID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedDecision").(*lmsValidator.DecideBody)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	result, err := workflow.SubmitChairmanDecision(database.Database.Db, reviewID, chairmanID, *reqData.Approve, reqData.Reason)
	if err != nil {
		return workflowError(c, err)
	}

	if result.Certificate != nil {
		go utils.NotifyCertificateIssued(result.Enrollment.UserID, result.Certificate.Number)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Chairman decision recorded!", result)
}

// GetPDEKReviews lists review protocols for the committee queue
func GetPDEKReviews(c *fiber.Ctx) error {
	query := database.Database.Db.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var reviews []lms.PDEKReview
	if err := query.Find(&reviews).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch reviews!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully!", fiber.Map{
		"reviews": reviews,
		"total":   len(reviews),
	})
}
