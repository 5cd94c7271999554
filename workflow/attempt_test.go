package workflow

import (
	"testing"

	"qlms/models/lms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassWithoutCommitteeReview(t *testing.T) {
	f := newFixture(t, false)
	enr := f.enrollReady(t)

	// budget 3, passing score 80: two failures auto-retry, third passes
	scores := []int{60, 70, 95}

	for i, score := range scores[:2] {
		result, err := SubmitTestAttempt(f.db, enr.ID, f.test.ID, score, nil)
		require.NoError(t, err)
		assert.Equal(t, i+1, result.Attempt.AttemptNumber)
		assert.False(t, result.Attempt.Passed)
		assert.Equal(t, lms.StatusExamAvailable, result.Enrollment.Status)
		assert.Equal(t, 2-i, result.RemainingAttempts)
	}

	result, err := SubmitTestAttempt(f.db, enr.ID, f.test.ID, scores[2], nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Attempt.AttemptNumber)
	assert.True(t, result.Attempt.Passed)
	assert.Equal(t, lms.StatusCompleted, result.Enrollment.Status)
	assert.NotNil(t, result.Enrollment.CompletedAt)
	require.NotNil(t, result.Certificate)
	assert.False(t, result.Certificate.Revoked)
	assert.NotEmpty(t, result.Certificate.Number)

	// exactly one certificate exists
	var count int64
	require.NoError(t, f.db.Model(&lms.Certificate{}).
		Where("enrollment_id = ?", enr.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAttemptNumbersAreMonotonic(t *testing.T) {
	f := newFixture(t, false)
	enr := f.enrollReady(t)

	for _, score := range []int{10, 20, 30} {
		_, err := SubmitTestAttempt(f.db, enr.ID, f.test.ID, score, nil)
		require.NoError(t, err)
	}

	var attempts []lms.TestAttempt
	require.NoError(t, f.db.Where("enrollment_id = ?", enr.ID).
		Order("attempt_number asc").Find(&attempts).Error)
	require.Len(t, attempts, 3)
	for i, attempt := range attempts {
		assert.Equal(t, i+1, attempt.AttemptNumber)
	}
}

func TestBudgetExhaustion(t *testing.T) {
	f := newFixture(t, false)
	enr := f.enrollReady(t)

	for _, score := range []int{10, 20, 30} {
		_, err := SubmitTestAttempt(f.db, enr.ID, f.test.ID, score, nil)
		require.NoError(t, err)
	}

	got := f.reload(t, enr.ID)
	assert.Equal(t, lms.StatusExamFailed, got.Status)

	remaining, err := RemainingAttempts(f.db, enr.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	// a fourth submission is refused on budget, not state
	_, err = SubmitTestAttempt(f.db, enr.ID, f.test.ID, 90, nil)
	assert.Equal(t, KindAttemptBudgetExhausted, KindOf(err))
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t, false)
	enr := f.enrollReady(t)

	_, err := SubmitTestAttempt(f.db, enr.ID, f.test.ID, 101, nil)
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = SubmitTestAttempt(f.db, enr.ID, f.test.ID, -5, nil)
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = SubmitTestAttempt(f.db, enr.ID, 9999, 50, nil)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = SubmitTestAttempt(f.db, 9999, f.test.ID, 50, nil)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSubmitBeforeExamAvailable(t *testing.T) {
	f := newFixture(t, false)

	enr, err := Assign(f.db, f.user.ID, f.course.ID)
	require.NoError(t, err)

	_, err = SubmitTestAttempt(f.db, enr.ID, f.test.ID, 95, nil)
	assert.Equal(t, KindInvalidStateTransition, KindOf(err))

	_, err = RecordLessonProgress(f.db, enr.ID, 50)
	require.NoError(t, err)

	_, err = SubmitTestAttempt(f.db, enr.ID, f.test.ID, 95, nil)
	assert.Equal(t, KindInvalidStateTransition, KindOf(err))
}

func TestRemainingAttempts(t *testing.T) {
	f := newFixture(t, false)
	enr := f.enrollReady(t)

	remaining, err := RemainingAttempts(f.db, enr.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)

	_, err = SubmitTestAttempt(f.db, enr.ID, f.test.ID, 10, nil)
	require.NoError(t, err)

	remaining, err = RemainingAttempts(f.db, enr.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}
