package utils

import (
	"fmt"
	"log"

	"qlms/database"
	"qlms/models"
	"qlms/models/lms"
)

func lookupUser(userID uint) (*models.User, bool) {
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).
		First(&user).Error; err != nil {
		log.Printf("notification skipped, user %d not found", userID)
		return nil, false
	}
	return &user, true
}

func lookupCourse(courseID uint) (*models.Course, bool) {
	var course models.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).
		First(&course).Error; err != nil {
		log.Printf("notification skipped, course %d not found", courseID)
		return nil, false
	}
	return &course, true
}

// NotifyCourseAssigned tells a student about a fresh assignment. Failures
// are logged, never surfaced to the workflow caller.
func NotifyCourseAssigned(userID, courseID uint) {
	user, ok := lookupUser(userID)
	if !ok {
		return
	}
	course, ok := lookupCourse(courseID)
	if !ok {
		return
	}

	if user.Email != "" {
		if err := SendCourseAssignedEmail(user.Email, user.FullName, course.Title); err != nil {
			log.Printf("assignment email to %s failed: %v", user.Email, err)
		}
	}
	if user.Phone != "" {
		_ = SendSMS(user.Phone, fmt.Sprintf("You were assigned to course: %s", course.Title))
	}
}

// NotifyExamAvailable tells a student their final test is unlocked.
func NotifyExamAvailable(userID, courseID uint) {
	user, ok := lookupUser(userID)
	if !ok {
		return
	}
	course, ok := lookupCourse(courseID)
	if !ok {
		return
	}

	if user.Phone != "" {
		_ = SendSMS(user.Phone, fmt.Sprintf("The exam for %q is now available.", course.Title))
	}
}

// NotifyCertificateIssued congratulates a student and shares the number.
func NotifyCertificateIssued(userID uint, certificateNumber string) {
	user, ok := lookupUser(userID)
	if !ok {
		return
	}

	courseTitle := ""
	var cert lms.Certificate
	if err := database.Database.Db.Where("number = ?", certificateNumber).First(&cert).Error; err == nil {
		if course, ok := lookupCourse(cert.CourseID); ok {
			courseTitle = course.Title
		}
	}

	if user.Email != "" {
		if err := SendCertificateEmail(user.Email, user.FullName, courseTitle, certificateNumber); err != nil {
			log.Printf("certificate email to %s failed: %v", user.Email, err)
		}
	}
	if user.Phone != "" {
		_ = SendSMS(user.Phone, fmt.Sprintf("Your certificate %s has been issued.", certificateNumber))
	}
}

// NotifyPDEKSignatureRequested pings the committee members assigned to the
// course that a protocol awaits the first signature.
func NotifyPDEKSignatureRequested(reviewID, courseID uint) {
	course, ok := lookupCourse(courseID)
	if !ok {
		return
	}

	var members []models.User
	if err := database.Database.Db.
		Where("role = ? AND is_deleted = ? AND is_active = ?", models.RolePDEKMember, false, true).
		Find(&members).Error; err != nil {
		log.Printf("notification skipped, member lookup failed: %v", err)
		return
	}

	for _, member := range members {
		if member.Email == "" {
			continue
		}
		if err := SendPDEKSignatureEmail(member.Email, member.FullName, course.Title); err != nil {
			log.Printf("signature request email to %s failed: %v", member.Email, err)
		}
	}
}
