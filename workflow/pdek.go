package workflow

import (
	"time"

	"qlms/models"
	"qlms/models/lms"

	"gorm.io/gorm"
)

// ReviewResult bundles the review with the enrollment (and certificate, when
// a chairman approval completes the course).
type ReviewResult struct {
	Review      lms.PDEKReview   `json:"review"`
	Enrollment  lms.Enrollment   `json:"enrollment"`
	Certificate *lms.Certificate `json:"certificate,omitempty"`
}

// openReview creates the committee protocol for a passed exam. The member
// signs first; the chairman gate stays closed until then.
func openReview(tx *gorm.DB, enr *lms.Enrollment, score int, examDate time.Time) (*lms.PDEKReview, error) {
	review := &lms.PDEKReview{
		EnrollmentID:     enr.ID,
		ExamScore:        score,
		ExamDate:         examDate,
		MemberDecision:   lms.DecisionNone,
		ChairmanDecision: lms.DecisionNone,
		Status:           lms.ReviewAwaitingMember,
	}
	if err := tx.Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func getReview(tx *gorm.DB, id uint) (*lms.PDEKReview, error) {
	var review lms.PDEKReview
	if err := tx.First(&review, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errNotFound("pdek review", id)
		}
		return nil, err
	}
	return &review, nil
}

// casReview flips the review status with a compare-and-swap on the expected
// current status, so two concurrent decisions on the same review cannot both
// win.
func casReview(tx *gorm.DB, review *lms.PDEKReview, expect string, cols map[string]interface{}) error {
	res := tx.Model(&lms.PDEKReview{}).
		Where("id = ? AND status = ?", review.ID, expect).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var current lms.PDEKReview
		if err := tx.First(&current, review.ID).Error; err != nil {
			return err
		}
		return errInvalidTransition(current.Status, cols["status"].(string))
	}
	return nil
}

// rejectEnrollment moves a pending_pdek enrollment to exam_failed. The
// rejection does not consume a test attempt: when budget remains, the next
// submission resolves the failure back to exam_available.
func rejectEnrollment(tx *gorm.DB, enr *lms.Enrollment) error {
	return transition(tx, enr, lms.StatusExamFailed, nil)
}

// SubmitMemberDecision records the first-gate committee signature. A
// rejection short-circuits the review without chairman input.
func SubmitMemberDecision(db *gorm.DB, reviewID, memberID uint, approve bool, reason string) (*ReviewResult, error) {
	var result *ReviewResult
	err := db.Transaction(func(tx *gorm.DB) error {
		review, err := getReview(tx, reviewID)
		if err != nil {
			return err
		}
		if review.Status != lms.ReviewAwaitingMember {
			return errInvalidTransition(review.Status, lms.ReviewAwaitingChairman)
		}

		enr, err := getEnrollment(tx, review.EnrollmentID)
		if err != nil {
			return err
		}

		now := time.Now()
		decision := lms.DecisionReject
		next := lms.ReviewRejected
		if approve {
			decision = lms.DecisionApprove
			next = lms.ReviewAwaitingChairman
		}

		cols := map[string]interface{}{
			"status":           next,
			"member_decision":  decision,
			"member_id":        memberID,
			"member_signed_at": now,
		}
		if !approve {
			cols["rejection_reason"] = reason
		}
		if err := casReview(tx, review, lms.ReviewAwaitingMember, cols); err != nil {
			return err
		}
		review.Status = next
		review.MemberDecision = decision
		review.MemberID = &memberID
		review.MemberSignedAt = &now
		if !approve {
			review.RejectionReason = reason
			if err := rejectEnrollment(tx, enr); err != nil {
				return err
			}
		}

		result = &ReviewResult{Review: *review, Enrollment: *enr}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitChairmanDecision records the final-gate signature. Valid only after
// a member approval; an approval here completes the enrollment and issues
// the certificate.
func SubmitChairmanDecision(db *gorm.DB, reviewID, chairmanID uint, approve bool, reason string) (*ReviewResult, error) {
	var result *ReviewResult
	err := db.Transaction(func(tx *gorm.DB) error {
		review, err := getReview(tx, reviewID)
		if err != nil {
			return err
		}
		if review.Status != lms.ReviewAwaitingChairman {
			return errInvalidTransition(review.Status, lms.ReviewApproved)
		}

		enr, err := getEnrollment(tx, review.EnrollmentID)
		if err != nil {
			return err
		}

		now := time.Now()
		decision := lms.DecisionReject
		next := lms.ReviewRejected
		if approve {
			decision = lms.DecisionApprove
			next = lms.ReviewApproved
		}

		cols := map[string]interface{}{
			"status":             next,
			"chairman_decision":  decision,
			"chairman_id":        chairmanID,
			"chairman_signed_at": now,
		}
		if !approve {
			cols["rejection_reason"] = reason
		}
		if err := casReview(tx, review, lms.ReviewAwaitingChairman, cols); err != nil {
			return err
		}
		review.Status = next
		review.ChairmanDecision = decision
		review.ChairmanID = &chairmanID
		review.ChairmanSignedAt = &now

		result = &ReviewResult{}
		if approve {
			if err := transition(tx, enr, lms.StatusExamPassed, nil); err != nil {
				return err
			}
			var course models.Course
			if err := tx.First(&course, enr.CourseID).Error; err != nil {
				return errNotFound("course", enr.CourseID)
			}
			cert, err := finalize(tx, enr, &course)
			if err != nil {
				return err
			}
			result.Certificate = cert
		} else {
			review.RejectionReason = reason
			if err := rejectEnrollment(tx, enr); err != nil {
				return err
			}
		}

		result.Review = *review
		result.Enrollment = *enr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
