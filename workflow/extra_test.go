package workflow

import (
	"errors"
	"testing"

	"qlms/models/lms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// exhaustBudget fails all default attempts, leaving the enrollment in
// exam_failed with nothing remaining.
func exhaustBudget(t *testing.T, f *fixture, enr *lms.Enrollment) {
	t.Helper()
	for _, score := range []int{10, 20, 30} {
		_, err := SubmitTestAttempt(f.db, enr.ID, f.test.ID, score, nil)
		require.NoError(t, err)
	}
	require.Equal(t, lms.StatusExamFailed, f.reload(t, enr.ID).Status)
}

func TestExtraAttemptApprovalReopensExam(t *testing.T) {
	f := newFixture(t, false)
	enr := f.enrollReady(t)
	exhaustBudget(t, f, enr)

	req, err := RequestExtraAttempt(f.db, enr.ID, "equipment failure during the test")
	require.NoError(t, err)
	assert.Equal(t, lms.RequestPending, req.Status)

	admin := uint(42)
	result, err := DecideExtraAttempt(f.db, req.ID, true, admin)
	require.NoError(t, err)
	assert.Equal(t, lms.RequestApproved, result.Request.Status)
	require.NotNil(t, result.Request.ReviewedBy)
	assert.Equal(t, admin, *result.Request.ReviewedBy)
	assert.NotNil(t, result.Request.ReviewedAt)

	// budget grew to 4 and the exam reopened
	assert.Equal(t, lms.StatusExamAvailable, result.Enrollment.Status)
	assert.Equal(t, 1, result.Enrollment.ExtraAttempts)

	remaining, err := RemainingAttempts(f.db, enr.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	attempt, err := SubmitTestAttempt(f.db, enr.ID, f.test.ID, 90, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, attempt.Attempt.AttemptNumber)
	assert.Equal(t, lms.StatusCompleted, attempt.Enrollment.Status)
}

func TestDuplicatePendingRequest(t *testing.T) {
	f := newFixture(t, false)
	enr := f.enrollReady(t)
	exhaustBudget(t, f, enr)

	_, err := RequestExtraAttempt(f.db, enr.ID, "first request for a retake")
	require.NoError(t, err)

	_, err = RequestExtraAttempt(f.db, enr.ID, "second request for a retake")
	assert.Equal(t, KindDuplicatePendingRequest, KindOf(err))
}

func TestPendingRequestUniqueIndex(t *testing.T) {
	f := newFixture(t, false)
	enr := f.enrollReady(t)
	exhaustBudget(t, f, enr)

	req, err := RequestExtraAttempt(f.db, enr.ID, "first request for a retake")
	require.NoError(t, err)

	// the schema itself rejects a second pending row, even when inserted
	// outside RequestExtraAttempt
	dup := lms.ExtraAttemptRequest{
		EnrollmentID: enr.ID,
		Reason:       "smuggled duplicate",
		Status:       lms.RequestPending,
	}
	require.Error(t, f.db.Create(&dup).Error)

	// decided rows leave the partial index
	_, err = DecideExtraAttempt(f.db, req.ID, false, 42)
	require.NoError(t, err)

	_, err = RequestExtraAttempt(f.db, enr.ID, "second request after rejection")
	require.NoError(t, err)
}

func TestRequestLookupErrorPropagates(t *testing.T) {
	f := newFixture(t, false)
	enr := f.enrollReady(t)
	exhaustBudget(t, f, enr)

	boom := errors.New("connection reset by peer")
	require.NoError(t, f.db.Callback().Query().Before("gorm:query").
		Register("fail_request_lookup", func(tx *gorm.DB) {
			if _, ok := tx.Statement.Model.(*lms.ExtraAttemptRequest); ok {
				tx.AddError(boom)
			}
		}))

	// a transient failure of the pending-request check must surface, not be
	// read as "no pending request"
	_, err := RequestExtraAttempt(f.db, enr.ID, "retake after outage")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "", KindOf(err))

	require.NoError(t, f.db.Callback().Query().Remove("fail_request_lookup"))

	var count int64
	require.NoError(t, f.db.Model(&lms.ExtraAttemptRequest{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRequestWithBudgetRemaining(t *testing.T) {
	f := newFixture(t, false)
	enr := f.enrollReady(t)

	// exam_failed by committee rejection leaves budget remaining; a request
	// is premature then
	require.NoError(t, f.db.Model(&lms.Enrollment{}).Where("id = ?", enr.ID).
		Updates(map[string]interface{}{"status": lms.StatusExamFailed, "version": enr.Version + 1}).Error)

	_, err := RequestExtraAttempt(f.db, enr.ID, "let me try once more")
	assert.Equal(t, KindBudgetNotExhausted, KindOf(err))
}

func TestRequestOutsideExamFailed(t *testing.T) {
	f := newFixture(t, false)
	enr := f.enrollReady(t)

	_, err := RequestExtraAttempt(f.db, enr.ID, "premature request text")
	assert.Equal(t, KindInvalidStateTransition, KindOf(err))
}

func TestDecideTwice(t *testing.T) {
	f := newFixture(t, false)
	enr := f.enrollReady(t)
	exhaustBudget(t, f, enr)

	req, err := RequestExtraAttempt(f.db, enr.ID, "retake after illness")
	require.NoError(t, err)

	result, err := DecideExtraAttempt(f.db, req.ID, false, 42)
	require.NoError(t, err)
	assert.Equal(t, lms.RequestRejected, result.Request.Status)
	// rejection leaves the enrollment where it was
	assert.Equal(t, lms.StatusExamFailed, result.Enrollment.Status)

	_, err = DecideExtraAttempt(f.db, req.ID, true, 42)
	assert.Equal(t, KindRequestAlreadyDecided, KindOf(err))
}

func TestApproveAfterAnnulRollsBack(t *testing.T) {
	f := newFixture(t, false)
	enr := f.enrollReady(t)
	exhaustBudget(t, f, enr)

	req, err := RequestExtraAttempt(f.db, enr.ID, "retake after illness")
	require.NoError(t, err)

	_, err = Annul(f.db, enr.ID, "contract terminated")
	require.NoError(t, err)

	// approval cannot reopen an annulled enrollment, and the failed
	// transaction must not leave the request half-decided
	_, err = DecideExtraAttempt(f.db, req.ID, true, 42)
	assert.Equal(t, KindInvalidStateTransition, KindOf(err))

	var got lms.ExtraAttemptRequest
	require.NoError(t, f.db.First(&got, req.ID).Error)
	assert.Equal(t, lms.RequestPending, got.Status)
}
