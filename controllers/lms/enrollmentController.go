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

// AssignEnrollment assigns a student to a course (admin only)
func AssignEnrollment(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedAssign").(*lmsValidator.AssignRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	enrollment, err := workflow.Assign(database.Database.Db, reqData.UserID, reqData.CourseID)
	if err != nil {
		return workflowError(c, err)
	}

	go utils.NotifyCourseAssigned(enrollment.UserID, enrollment.CourseID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Student assigned to course!", enrollment)
}

// CompleteLessonProgress records lesson completion progress for an enrollment
func CompleteLessonProgress(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData, ok := c.Locals("validatedProgress").(*lmsValidator.ProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	enrollment, err := workflow.RecordLessonProgress(database.Database.Db, enrollmentID, *reqData.Percent)
	if err != nil {
		return workflowError(c, err)
	}

	if enrollment.Status == lms.StatusExamAvailable {
		go utils.NotifyExamAvailable(enrollment.UserID, enrollment.CourseID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated!", enrollment)
}

// AnnulEnrollment moves an enrollment to the terminal annulled state (admin only)
func AnnulEnrollment(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData, ok := c.Locals("validatedAnnul").(*lmsValidator.AnnulRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	enrollment, err := workflow.Annul(database.Database.Db, enrollmentID, reqData.Reason)
	if err != nil {
		return workflowError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment annulled!", enrollment)
}

// GetEnrollments lists all enrollments (admin only)
func GetEnrollments(c *fiber.Ctx) error {
	var enrollments []lms.Enrollment
	if err := database.Database.Db.Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"total":       len(enrollments),
	})
}

// GetMyEnrollments lists the current student's enrollments
func GetMyEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var enrollments []lms.Enrollment
	if err := database.Database.Db.Where("user_id = ?", userID).
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"total":       len(enrollments),
	})
}

// GetEnrollmentAttempts returns the attempt history and remaining budget
func GetEnrollmentAttempts(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)

	var attempts []lms.TestAttempt
	if err := database.Database.Db.Where("enrollment_id = ?", enrollmentID).
		Order("attempt_number asc").Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	remaining, err := workflow.RemainingAttempts(database.Database.Db, enrollmentID)
	if err != nil {
		return workflowError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", fiber.Map{
		"attempts":           attempts,
		"remaining_attempts": remaining,
	})
}
