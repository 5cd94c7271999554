package lms

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses. Kept as a closed set; the workflow package owns the
// legal transitions between them.
const (
	StatusAssigned      = "assigned"
	StatusInProgress    = "in_progress"
	StatusExamAvailable = "exam_available"
	StatusPendingPDEK   = "pending_pdek"
	StatusExamPassed    = "exam_passed"
	StatusExamFailed    = "exam_failed"
	StatusCompleted     = "completed"
	StatusAnnulled      = "annulled"
)

// Enrollment tracks one student's progress through one course instance.
// Rows are never deleted; annulment is a terminal status so the audit
// history survives.
type Enrollment struct {
	gorm.Model
	UserID          uint       `json:"user_id" gorm:"index;not null"`
	CourseID        uint       `json:"course_id" gorm:"index;not null"`
	Status          string     `json:"status" gorm:"size:20;default:'assigned'"`
	ProgressPercent int        `json:"progress_percent" gorm:"default:0"` // 0-100
	ExtraAttempts   int        `json:"extra_attempts" gorm:"default:0"`   // granted on top of the test budget
	Version         uint       `json:"-" gorm:"default:1"`                // optimistic lock, bumped on every transition
	EnrolledAt      time.Time  `json:"enrolled_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	AnnulReason     string     `json:"annul_reason,omitempty" gorm:"size:255"`
}
