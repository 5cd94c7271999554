package workflow

import (
	"sync"
	"testing"

	"qlms/models/lms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passIntoReview submits a passing attempt on a committee course and returns
// the opened review.
func passIntoReview(t *testing.T, f *fixture, enr *lms.Enrollment) *lms.PDEKReview {
	t.Helper()

	result, err := SubmitTestAttempt(f.db, enr.ID, f.test.ID, 92, nil)
	require.NoError(t, err)
	require.Equal(t, lms.StatusPendingPDEK, result.Enrollment.Status)
	require.NotNil(t, result.Review)
	require.Nil(t, result.Certificate)
	return result.Review
}

func TestReviewOpensOnPass(t *testing.T) {
	f := newFixture(t, true)
	enr := f.enrollReady(t)

	review := passIntoReview(t, f, enr)
	assert.Equal(t, lms.ReviewAwaitingMember, review.Status)
	assert.Equal(t, lms.DecisionNone, review.MemberDecision)
	assert.Equal(t, lms.DecisionNone, review.ChairmanDecision)
	assert.Equal(t, 92, review.ExamScore)
	assert.False(t, review.ExamDate.IsZero())
}

func TestMemberApproveThenChairmanApprove(t *testing.T) {
	f := newFixture(t, true)
	enr := f.enrollReady(t)
	review := passIntoReview(t, f, enr)

	member, chairman := uint(101), uint(102)

	memberResult, err := SubmitMemberDecision(f.db, review.ID, member, true, "")
	require.NoError(t, err)
	assert.Equal(t, lms.ReviewAwaitingChairman, memberResult.Review.Status)
	assert.Equal(t, lms.DecisionApprove, memberResult.Review.MemberDecision)
	require.NotNil(t, memberResult.Review.MemberSignedAt)
	assert.Equal(t, lms.StatusPendingPDEK, memberResult.Enrollment.Status)

	chairmanResult, err := SubmitChairmanDecision(f.db, review.ID, chairman, true, "")
	require.NoError(t, err)
	assert.Equal(t, lms.ReviewApproved, chairmanResult.Review.Status)
	assert.Equal(t, lms.StatusCompleted, chairmanResult.Enrollment.Status)
	require.NotNil(t, chairmanResult.Certificate)
	assert.False(t, chairmanResult.Certificate.Revoked)
}

func TestChairmanRejectLeavesExamFailed(t *testing.T) {
	f := newFixture(t, true)
	enr := f.enrollReady(t)
	review := passIntoReview(t, f, enr)

	_, err := SubmitMemberDecision(f.db, review.ID, 101, true, "")
	require.NoError(t, err)

	result, err := SubmitChairmanDecision(f.db, review.ID, 102, false, "protocol filled out incorrectly")
	require.NoError(t, err)
	assert.Equal(t, lms.ReviewRejected, result.Review.Status)
	assert.Equal(t, "protocol filled out incorrectly", result.Review.RejectionReason)
	assert.Equal(t, lms.StatusExamFailed, result.Enrollment.Status)
	assert.Nil(t, result.Certificate)

	// no certificate issued, budget untouched
	var count int64
	require.NoError(t, f.db.Model(&lms.Certificate{}).
		Where("enrollment_id = ?", enr.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// the consumed pass stays consumed, but budget remains: the next
	// submission silently reopens the exam
	retry, err := SubmitTestAttempt(f.db, enr.ID, f.test.ID, 85, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, retry.Attempt.AttemptNumber)
	assert.Equal(t, lms.StatusPendingPDEK, retry.Enrollment.Status)
}

func TestMemberRejectShortCircuits(t *testing.T) {
	f := newFixture(t, true)
	enr := f.enrollReady(t)
	review := passIntoReview(t, f, enr)

	result, err := SubmitMemberDecision(f.db, review.ID, 101, false, "identity not confirmed")
	require.NoError(t, err)
	assert.Equal(t, lms.ReviewRejected, result.Review.Status)
	assert.Equal(t, lms.DecisionReject, result.Review.MemberDecision)
	assert.Equal(t, lms.DecisionNone, result.Review.ChairmanDecision)
	assert.Equal(t, lms.StatusExamFailed, result.Enrollment.Status)

	// the chairman gate never opens on a member rejection
	_, err = SubmitChairmanDecision(f.db, review.ID, 102, true, "")
	assert.Equal(t, KindInvalidStateTransition, KindOf(err))
}

func TestChairmanBeforeMember(t *testing.T) {
	f := newFixture(t, true)
	enr := f.enrollReady(t)
	review := passIntoReview(t, f, enr)

	_, err := SubmitChairmanDecision(f.db, review.ID, 102, true, "")
	assert.Equal(t, KindInvalidStateTransition, KindOf(err))

	// review untouched
	var got lms.PDEKReview
	require.NoError(t, f.db.First(&got, review.ID).Error)
	assert.Equal(t, lms.ReviewAwaitingMember, got.Status)
}

func TestDoubleChairmanDecision(t *testing.T) {
	f := newFixture(t, true)
	enr := f.enrollReady(t)
	review := passIntoReview(t, f, enr)

	_, err := SubmitMemberDecision(f.db, review.ID, 101, true, "")
	require.NoError(t, err)

	_, err = SubmitChairmanDecision(f.db, review.ID, 102, true, "")
	require.NoError(t, err)

	// the review is already decided: the compare-and-swap refuses a second
	// decision, so of two racing calls exactly one can ever win
	_, err = SubmitChairmanDecision(f.db, review.ID, 103, false, "changed my mind")
	assert.Equal(t, KindInvalidStateTransition, KindOf(err))

	got := f.reload(t, enr.ID)
	assert.Equal(t, lms.StatusCompleted, got.Status)
}

func TestConcurrentChairmanDecisions(t *testing.T) {
	f := newFixture(t, true)
	enr := f.enrollReady(t)
	review := passIntoReview(t, f, enr)

	_, err := SubmitMemberDecision(f.db, review.ID, 101, true, "")
	require.NoError(t, err)

	// one pooled connection keeps the sqlite driver from erroring both
	// writers out with a lock conflict; the status CAS still picks the winner
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = SubmitChairmanDecision(f.db, review.ID, 102, true, "")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = SubmitChairmanDecision(f.db, review.ID, 103, false, "quorum not met")
	}()
	wg.Wait()

	// exactly one decision wins, in either order
	winners := 0
	for _, e := range errs {
		if e == nil {
			winners++
			continue
		}
		assert.Equal(t, KindInvalidStateTransition, KindOf(e))
	}
	assert.Equal(t, 1, winners)

	var got lms.PDEKReview
	require.NoError(t, f.db.First(&got, review.ID).Error)

	final := f.reload(t, enr.ID)
	switch got.Status {
	case lms.ReviewApproved:
		assert.Equal(t, lms.StatusCompleted, final.Status)
	case lms.ReviewRejected:
		assert.Equal(t, lms.StatusExamFailed, final.Status)
	default:
		t.Fatalf("review rested in %q after two decisions", got.Status)
	}
}

func TestMemberDecisionOnUnknownReview(t *testing.T) {
	f := newFixture(t, true)

	_, err := SubmitMemberDecision(f.db, 9999, 101, true, "")
	assert.Equal(t, KindNotFound, KindOf(err))
}
