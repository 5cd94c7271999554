package lmsRoutes

import (
	controllers "qlms/controllers/lms"
	"qlms/middleware"
	"qlms/models"
	lmsValidator "qlms/validators/lms"

	"github.com/gofiber/fiber/v2"
)

// SetupLMSRoutes wires the enrollment/certification workflow routes
func SetupLMSRoutes(app *fiber.App) {
	enrollments := app.Group("/enrollments")

	// Admin assigns a student to a course
	enrollments.Post("/", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin),
		lmsValidator.AssignEnrollment(), controllers.AssignEnrollment)

	// Listings
	enrollments.Get("/", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin),
		controllers.GetEnrollments)
	enrollments.Get("/my", middleware.JWTMiddleware, middleware.RequireRole(models.RoleStudent),
		controllers.GetMyEnrollments)

	// Lesson progress
	enrollments.Post("/:id/lessons/:lesson_id/complete", middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleStudent, models.RoleAdmin),
		lmsValidator.LessonComplete(), controllers.CompleteLessonProgress)

	// Attempt history
	enrollments.Get("/:id/attempts", middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleStudent, models.RoleAdmin),
		lmsValidator.EnrollmentID(), controllers.GetEnrollmentAttempts)

	// Extra-attempt requests
	enrollments.Post("/:id/extra-attempt-requests", middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleStudent),
		lmsValidator.RequestExtraAttempt(), controllers.RequestExtraAttempt)

	// Annulment
	enrollments.Post("/:id/annul", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin),
		lmsValidator.AnnulEnrollment(), controllers.AnnulEnrollment)

	// Test attempt submission
	app.Post("/tests/:test_id/attempts", middleware.JWTMiddleware,
		middleware.RequireRole(models.RoleStudent),
		lmsValidator.SubmitAttempt(), controllers.SubmitTestAttempt)

	// Extra-attempt decisions (admin)
	requests := app.Group("/extra-attempt-requests")
	requests.Get("/", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin),
		controllers.GetExtraAttemptRequests)
	requests.Post("/:id/decide", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin),
		lmsValidator.DecideRequest("requestID"), controllers.DecideExtraAttempt)

	// PDEK committee gates
	reviews := app.Group("/pdek-reviews")
	reviews.Get("/", middleware.JWTMiddleware,
		middleware.RequireRole(models.RolePDEKMember, models.RolePDEKChairman),
		controllers.GetPDEKReviews)
	reviews.Post("/:id/member-decision", middleware.JWTMiddleware,
		middleware.RequireRole(models.RolePDEKMember),
		lmsValidator.DecideRequest("reviewID"), controllers.SubmitMemberDecision)
	reviews.Post("/:id/chairman-decision", middleware.JWTMiddleware,
		middleware.RequireRole(models.RolePDEKChairman),
		lmsValidator.DecideRequest("reviewID"), controllers.SubmitChairmanDecision)

	// Student certificate list
	app.Get("/certificates/my", middleware.JWTMiddleware, middleware.RequireRole(models.RoleStudent),
		controllers.GetMyCertificates)

	// Public verification, no auth
	app.Get("/verify/:number", controllers.VerifyCertificate)
}
