package workflow

import (
	"time"

	"qlms/models"
	"qlms/models/lms"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AttemptResult is everything a mutating attempt submission returns, so the
// caller never needs a follow-up read.
type AttemptResult struct {
	Attempt           lms.TestAttempt  `json:"attempt"`
	Enrollment        lms.Enrollment   `json:"enrollment"`
	Certificate       *lms.Certificate `json:"certificate,omitempty"`
	Review            *lms.PDEKReview  `json:"review,omitempty"`
	RemainingAttempts int              `json:"remaining_attempts"`
}

func getTest(tx *gorm.DB, testID uint) (*models.CourseTest, error) {
	var test models.CourseTest
	if err := tx.Where("id = ? AND is_deleted = ? AND is_active = ?", testID, false, true).
		First(&test).Error; err != nil {
		return nil, errNotFound("test", testID)
	}
	return &test, nil
}

func attemptsUsed(tx *gorm.DB, enrollmentID uint) (int, error) {
	var count int64
	err := tx.Model(&lms.TestAttempt{}).
		Where("enrollment_id = ?", enrollmentID).
		Count(&count).Error
	return int(count), err
}

func budgetFor(test *models.CourseTest, enr *lms.Enrollment) int {
	return test.MaxAttempts + enr.ExtraAttempts
}

// SubmitTestAttempt records one scored attempt. Valid only in exam_available.
// On pass the enrollment goes to pending_pdek (committee courses, opening the
// review protocol) or straight through exam_passed to completed with a
// certificate. On fail it drops back to exam_available while budget remains,
// or rests in exam_failed once the budget is spent.
func SubmitTestAttempt(db *gorm.DB, enrollmentID, testID uint, scorePercent int, answers datatypes.JSON) (*AttemptResult, error) {
	if scorePercent < 0 || scorePercent > 100 {
		return nil, &Error{Kind: KindInvalidInput, Message: "score must be between 0 and 100"}
	}

	var result *AttemptResult
	err := db.Transaction(func(tx *gorm.DB) error {
		enr, err := getEnrollment(tx, enrollmentID)
		if err != nil {
			return err
		}
		if enr.Status != lms.StatusExamAvailable && enr.Status != lms.StatusExamFailed {
			return errInvalidTransition(enr.Status, lms.StatusExamPassed)
		}

		test, err := getTest(tx, testID)
		if err != nil {
			return err
		}
		if test.CourseID != enr.CourseID {
			return errNotFound("test for this course", testID)
		}

		var course models.Course
		if err := tx.First(&course, enr.CourseID).Error; err != nil {
			return errNotFound("course", enr.CourseID)
		}

		used, err := attemptsUsed(tx, enr.ID)
		if err != nil {
			return err
		}
		budget := budgetFor(test, enr)
		if used+1 > budget {
			return &Error{
				Kind:    KindAttemptBudgetExhausted,
				Message: "no test attempts remaining; request an extra attempt",
			}
		}

		// A rested failure (committee rejection) with budget remaining
		// resolves silently back to exam_available at submission time.
		if enr.Status == lms.StatusExamFailed {
			if err := transition(tx, enr, lms.StatusExamAvailable, nil); err != nil {
				return err
			}
		}

		attempt := lms.TestAttempt{
			EnrollmentID:  enr.ID,
			TestID:        test.ID,
			AttemptNumber: used + 1,
			ScorePercent:  scorePercent,
			Passed:        scorePercent >= test.PassingScore,
			Answers:       answers,
			SubmittedAt:   time.Now(),
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}

		result = &AttemptResult{Attempt: attempt}

		if attempt.Passed {
			if course.RequiresCommitteeReview {
				if err := transition(tx, enr, lms.StatusPendingPDEK, nil); err != nil {
					return err
				}
				review, err := openReview(tx, enr, scorePercent, attempt.SubmittedAt)
				if err != nil {
					return err
				}
				result.Review = review
			} else {
				if err := transition(tx, enr, lms.StatusExamPassed, nil); err != nil {
					return err
				}
				cert, err := finalize(tx, enr, &course)
				if err != nil {
					return err
				}
				result.Certificate = cert
			}
		} else if budget-attempt.AttemptNumber > 0 {
			// Budget remains: the student may retake immediately. The version
			// bump still fences off concurrent budget mutations.
			if err := bumpVersion(tx, enr); err != nil {
				return err
			}
		} else if err := transition(tx, enr, lms.StatusExamFailed, nil); err != nil {
			return err
		}

		result.Enrollment = *enr
		result.RemainingAttempts = budget - attempt.AttemptNumber
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemainingAttempts is a pure query: budget minus attempts used.
func RemainingAttempts(db *gorm.DB, enrollmentID uint) (int, error) {
	enr, err := getEnrollment(db, enrollmentID)
	if err != nil {
		return 0, err
	}

	var test models.CourseTest
	if err := db.Where("course_id = ? AND is_deleted = ? AND is_active = ?",
		enr.CourseID, false, true).First(&test).Error; err != nil {
		return 0, errNotFound("test for course", enr.CourseID)
	}

	used, err := attemptsUsed(db, enr.ID)
	if err != nil {
		return 0, err
	}

	remaining := budgetFor(&test, enr) - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
