package controllers

import (
	"strings"

	"qlms/database"
	"qlms/middleware"
	"qlms/models/lms"
	"qlms/workflow"

	"github.com/gofiber/fiber/v2"
)

// VerifyCertificate is the public, unauthenticated certificate lookup
func VerifyCertificate(c *fiber.Ctx) error {
	number := strings.TrimSpace(c.Params("number"))
	if number == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Certificate number is required!", nil)
	}

	result, err := workflow.Verify(database.Database.Db, number)
	if err != nil {
		return workflowError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification complete.", result)
}

// GetMyCertificates lists the current student's certificates
func GetMyCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var certificates []lms.Certificate
	if err := database.Database.Db.Where("user_id = ?", userID).
		Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
		"total":        len(certificates),
	})
}
