package lms

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TestAttempt is one scored submission. Attempt history is append-only:
// rows are never updated or deleted.
type TestAttempt struct {
	gorm.Model
	EnrollmentID  uint           `json:"enrollment_id" gorm:"index;not null"`
	TestID        uint           `json:"test_id" gorm:"index;not null"`
	AttemptNumber int            `json:"attempt_number" gorm:"not null"` // 1-based, gapless per enrollment
	ScorePercent  int            `json:"score_percent" gorm:"not null"`
	Passed        bool           `json:"passed" gorm:"default:false"`
	Answers       datatypes.JSON `json:"answers,omitempty"` // raw submitted answers, kept for audit
	SubmittedAt   time.Time      `json:"submitted_at"`
}

// Extra-attempt request statuses.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// ExtraAttemptRequest asks an admin to replenish an exhausted attempt budget.
// At most one pending request may exist per enrollment.
type ExtraAttemptRequest struct {
	gorm.Model
	EnrollmentID uint       `json:"enrollment_id" gorm:"index;not null"`
	Reason       string     `json:"reason" gorm:"size:500"`
	Status       string     `json:"status" gorm:"size:10;default:'pending'"`
	ReviewedBy   *uint      `json:"reviewed_by"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
}
