package workflow

import (
	"errors"
	"time"

	"qlms/models"
	"qlms/models/lms"

	"gorm.io/gorm"
)

// transition applies a compare-and-swap status change on the enrollment row.
// extra carries additional columns mutated together with the status. The
// version check guarantees two concurrent transitions from the same source
// state cannot both win; the loser gets InvalidStateTransition with the
// status the winner left behind.
func transition(tx *gorm.DB, enr *lms.Enrollment, to string, extra map[string]interface{}) error {
	if !canTransition(enr.Status, to) {
		return errInvalidTransition(enr.Status, to)
	}

	cols := map[string]interface{}{
		"status":  to,
		"version": enr.Version + 1,
	}
	for k, v := range extra {
		cols[k] = v
	}

	res := tx.Model(&lms.Enrollment{}).
		Where("id = ? AND version = ?", enr.ID, enr.Version).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race; report whatever state the winner left.
		var current lms.Enrollment
		if err := tx.First(&current, enr.ID).Error; err != nil {
			return err
		}
		return errInvalidTransition(current.Status, to)
	}

	enr.Status = to
	enr.Version++
	return nil
}

// bumpVersion serializes budget-sensitive operations that keep the status
// unchanged (a failed attempt with budget remaining still has to fence off a
// concurrent extra-attempt approval).
func bumpVersion(tx *gorm.DB, enr *lms.Enrollment) error {
	res := tx.Model(&lms.Enrollment{}).
		Where("id = ? AND version = ?", enr.ID, enr.Version).
		Update("version", enr.Version+1)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var current lms.Enrollment
		if err := tx.First(&current, enr.ID).Error; err != nil {
			return err
		}
		return errInvalidTransition(current.Status, enr.Status)
	}
	enr.Version++
	return nil
}

func getEnrollment(tx *gorm.DB, id uint) (*lms.Enrollment, error) {
	var enr lms.Enrollment
	if err := tx.First(&enr, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errNotFound("enrollment", id)
		}
		return nil, err
	}
	return &enr, nil
}

// Assign enrolls a student into a course. Fails with AlreadyEnrolled when an
// active (non-annulled) enrollment for the pair exists.
func Assign(db *gorm.DB, userID, courseID uint) (*lms.Enrollment, error) {
	var enr *lms.Enrollment
	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
			return errNotFound("user", userID)
		}

		var course models.Course
		if err := tx.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
			return errNotFound("course", courseID)
		}

		var existing lms.Enrollment
		err := tx.Where("user_id = ? AND course_id = ? AND status <> ?",
			userID, courseID, lms.StatusAnnulled).First(&existing).Error
		if err == nil {
			return errAlreadyEnrolled()
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		enr = &lms.Enrollment{
			UserID:     userID,
			CourseID:   courseID,
			Status:     lms.StatusAssigned,
			Version:    1,
			EnrolledAt: time.Now(),
		}

		// A racing assignment for the same pair trips the partial unique
		// index; the savepoint keeps the outer transaction usable for the
		// re-check that translates the violation.
		if err := tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(enr).Error
		}); err != nil {
			if lookupErr := tx.Where("user_id = ? AND course_id = ? AND status <> ?",
				userID, courseID, lms.StatusAnnulled).First(&existing).Error; lookupErr == nil {
				return errAlreadyEnrolled()
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enr, nil
}

// RecordLessonProgress updates progress and drives the pre-exam transitions:
// assigned -> in_progress on first progress, -> exam_available at 100%.
// Idempotent no-op once the enrollment is past the learning phase.
func RecordLessonProgress(db *gorm.DB, enrollmentID uint, percent int) (*lms.Enrollment, error) {
	if percent < 0 || percent > 100 {
		return nil, &Error{Kind: KindInvalidInput, Message: "progress must be between 0 and 100"}
	}

	var out *lms.Enrollment
	err := db.Transaction(func(tx *gorm.DB) error {
		enr, err := getEnrollment(tx, enrollmentID)
		if err != nil {
			return err
		}

		switch enr.Status {
		case lms.StatusAnnulled:
			return errInvalidTransition(enr.Status, lms.StatusInProgress)
		case lms.StatusAssigned, lms.StatusInProgress:
			// fallthrough to the update below
		default:
			// already past the learning phase
			out = enr
			return nil
		}

		if percent < enr.ProgressPercent {
			percent = enr.ProgressPercent // progress never moves backwards
		}

		next := enr.Status
		if percent >= 100 {
			next = lms.StatusExamAvailable
		} else if percent > 0 {
			next = lms.StatusInProgress
		}

		if next == enr.Status {
			res := tx.Model(&lms.Enrollment{}).
				Where("id = ? AND version = ?", enr.ID, enr.Version).
				Updates(map[string]interface{}{"progress_percent": percent, "version": enr.Version + 1})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errInvalidTransition(enr.Status, next)
			}
			enr.Version++
		} else if err := transition(tx, enr, next, map[string]interface{}{"progress_percent": percent}); err != nil {
			return err
		}

		enr.ProgressPercent = percent
		out = enr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Annul moves the enrollment to the terminal annulled state from any other
// state and revokes an issued certificate. Admin only; there is no way back.
func Annul(db *gorm.DB, enrollmentID uint, reason string) (*lms.Enrollment, error) {
	var out *lms.Enrollment
	err := db.Transaction(func(tx *gorm.DB) error {
		enr, err := getEnrollment(tx, enrollmentID)
		if err != nil {
			return err
		}

		if err := transition(tx, enr, lms.StatusAnnulled, map[string]interface{}{
			"annul_reason": reason,
		}); err != nil {
			return err
		}
		enr.AnnulReason = reason

		var cert lms.Certificate
		err = tx.Where("enrollment_id = ? AND revoked = ?", enr.ID, false).
			First(&cert).Error
		switch {
		case err == nil:
			if err := revoke(tx, &cert); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		out = enr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// finalize completes an enrollment that just entered exam_passed: issues the
// certificate (idempotently, so crash-retry is safe) and moves to completed.
func finalize(tx *gorm.DB, enr *lms.Enrollment, course *models.Course) (*lms.Certificate, error) {
	cert, err := issue(tx, enr, course)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := transition(tx, enr, lms.StatusCompleted, map[string]interface{}{
		"completed_at":     &now,
		"progress_percent": 100,
	}); err != nil {
		return nil, err
	}
	enr.CompletedAt = &now
	enr.ProgressPercent = 100
	return cert, nil
}
