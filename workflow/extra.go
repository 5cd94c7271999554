package workflow

import (
	"errors"
	"time"

	"qlms/models"
	"qlms/models/lms"

	"gorm.io/gorm"
)

// RequestResult bundles the request with the (possibly transitioned)
// enrollment.
type RequestResult struct {
	Request    lms.ExtraAttemptRequest `json:"request"`
	Enrollment lms.Enrollment          `json:"enrollment"`
}

// RequestExtraAttempt opens a replenishment request. Only meaningful once
// the budget is spent, i.e. from exam_failed with no attempts remaining, and
// only one pending request may exist per enrollment.
func RequestExtraAttempt(db *gorm.DB, enrollmentID uint, reason string) (*lms.ExtraAttemptRequest, error) {
	var req *lms.ExtraAttemptRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		enr, err := getEnrollment(tx, enrollmentID)
		if err != nil {
			return err
		}
		if enr.Status != lms.StatusExamFailed {
			return errInvalidTransition(enr.Status, lms.StatusExamFailed)
		}

		var pending lms.ExtraAttemptRequest
		err = tx.Where("enrollment_id = ? AND status = ?",
			enr.ID, lms.RequestPending).First(&pending).Error
		if err == nil {
			return errDuplicatePendingRequest()
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		remaining, err := remainingWithin(tx, enr)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return &Error{
				Kind:    KindBudgetNotExhausted,
				Message: "attempts remain; an extra attempt cannot be requested yet",
			}
		}

		req = &lms.ExtraAttemptRequest{
			EnrollmentID: enr.ID,
			Reason:       reason,
			Status:       lms.RequestPending,
		}

		// A racing request trips the partial unique index on pending rows;
		// the savepoint keeps the outer transaction usable for the re-check
		// that translates the violation.
		if err := tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(req).Error
		}); err != nil {
			if lookupErr := tx.Where("enrollment_id = ? AND status = ?",
				enr.ID, lms.RequestPending).First(&pending).Error; lookupErr == nil {
				return errDuplicatePendingRequest()
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// DecideExtraAttempt resolves a pending request. Approval grows the budget
// by one and reopens the exam; rejection leaves the enrollment in
// exam_failed. A second decision fails with RequestAlreadyDecided.
func DecideExtraAttempt(db *gorm.DB, requestID uint, approve bool, reviewerID uint) (*RequestResult, error) {
	var result *RequestResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var req lms.ExtraAttemptRequest
		if err := tx.First(&req, requestID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errNotFound("extra-attempt request", requestID)
			}
			return err
		}

		next := lms.RequestRejected
		if approve {
			next = lms.RequestApproved
		}

		now := time.Now()
		res := tx.Model(&lms.ExtraAttemptRequest{}).
			Where("id = ? AND status = ?", req.ID, lms.RequestPending).
			Updates(map[string]interface{}{
				"status":      next,
				"reviewed_by": reviewerID,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &Error{
				Kind:    KindRequestAlreadyDecided,
				Message: "this request has already been decided",
			}
		}
		req.Status = next
		req.ReviewedBy = &reviewerID
		req.ReviewedAt = &now

		enr, err := getEnrollment(tx, req.EnrollmentID)
		if err != nil {
			return err
		}

		if approve {
			// Budget growth and the reopening transition are one atomic CAS,
			// so an approval cannot interleave with a concurrent attempt.
			if err := transition(tx, enr, lms.StatusExamAvailable, map[string]interface{}{
				"extra_attempts": enr.ExtraAttempts + 1,
			}); err != nil {
				return err
			}
			enr.ExtraAttempts++
		}

		result = &RequestResult{Request: req, Enrollment: *enr}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// remainingWithin mirrors RemainingAttempts but runs inside an open
// transaction.
func remainingWithin(tx *gorm.DB, enr *lms.Enrollment) (int, error) {
	var test models.CourseTest
	if err := tx.Where("course_id = ? AND is_deleted = ? AND is_active = ?",
		enr.CourseID, false, true).First(&test).Error; err != nil {
		return 0, errNotFound("test for course", enr.CourseID)
	}
	used, err := attemptsUsed(tx, enr.ID)
	if err != nil {
		return 0, err
	}
	remaining := budgetFor(&test, enr) - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
