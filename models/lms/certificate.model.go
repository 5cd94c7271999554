package lms

import (
	"time"

	"gorm.io/gorm"
)

// Certificate is an issued completion certificate. Numbers are globally
// unique and never reused, including for revoked certificates. Rows are
// never deleted; revocation flips the flag and nothing else.
type Certificate struct {
	gorm.Model
	Number       string     `json:"number" gorm:"size:40;uniqueIndex;not null"`
	EnrollmentID uint       `json:"enrollment_id" gorm:"index;not null"`
	UserID       uint       `json:"user_id" gorm:"index;not null"`
	CourseID     uint       `json:"course_id" gorm:"index;not null"`
	IssuedAt     time.Time  `json:"issued_at"`
	ValidUntil   *time.Time `json:"valid_until"`
	Revoked      bool       `json:"revoked" gorm:"default:false"`
	QRCode       string     `json:"qr_code" gorm:"size:255"` // public verify URL for this number
}
