package lms

import (
	"time"

	"gorm.io/gorm"
)

// PDEK review statuses and decisions.
const (
	ReviewAwaitingMember   = "awaiting_member"
	ReviewAwaitingChairman = "awaiting_chairman"
	ReviewApproved         = "approved"
	ReviewRejected         = "rejected"

	DecisionNone    = "none"
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// PDEKReview is the committee sign-off protocol for one passed exam.
// The member signs first; the chairman may only sign after a member
// approval. Both signatures are kept for the audit trail.
type PDEKReview struct {
	gorm.Model
	EnrollmentID     uint       `json:"enrollment_id" gorm:"index;not null"`
	ExamScore        int        `json:"exam_score"`
	ExamDate         time.Time  `json:"exam_date"`
	MemberDecision   string     `json:"member_decision" gorm:"size:10;default:'none'"`
	MemberID         *uint      `json:"member_id"`
	MemberSignedAt   *time.Time `json:"member_signed_at"`
	ChairmanDecision string     `json:"chairman_decision" gorm:"size:10;default:'none'"`
	ChairmanID       *uint      `json:"chairman_id"`
	ChairmanSignedAt *time.Time `json:"chairman_signed_at"`
	Status           string     `json:"status" gorm:"size:20;default:'awaiting_member'"`
	RejectionReason  string     `json:"rejection_reason,omitempty" gorm:"size:255"`
}
