package workflow

import (
	"fmt"
	"sync/atomic"
	"testing"

	"qlms/database"
	"qlms/models"
	"qlms/models/lms"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

// openTestDB opens a fresh in-memory database with the full model set.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:workflow_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

// fixture is one student, one course and its final test.
type fixture struct {
	db     *gorm.DB
	user   models.User
	course models.Course
	test   models.CourseTest
}

func newFixture(t *testing.T, committeeReview bool) *fixture {
	t.Helper()

	f := &fixture{db: openTestDB(t)}

	f.user = models.User{
		FullName: "Aslan Bekov",
		Phone:    "+77010000001",
		Email:    "aslan@example.kz",
		Role:     models.RoleStudent,
		IsActive: true,
	}
	require.NoError(t, f.db.Create(&f.user).Error)

	f.course = models.Course{
		Title:                   "Industrial Safety Basics",
		Category:                "industrial_safety",
		Status:                  "published",
		RequiresCommitteeReview: committeeReview,
		ValidityMonths:          12,
	}
	require.NoError(t, f.db.Create(&f.course).Error)

	f.test = models.CourseTest{
		CourseID:     f.course.ID,
		Title:        "Final test",
		PassingScore: 80,
		MaxAttempts:  3,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(&f.test).Error)

	return f
}

// enrollReady assigns the fixture student and walks the enrollment to
// exam_available.
func (f *fixture) enrollReady(t *testing.T) *lms.Enrollment {
	t.Helper()

	enr, err := Assign(f.db, f.user.ID, f.course.ID)
	require.NoError(t, err)

	enr, err = RecordLessonProgress(f.db, enr.ID, 100)
	require.NoError(t, err)
	require.Equal(t, lms.StatusExamAvailable, enr.Status)
	return enr
}

func (f *fixture) reload(t *testing.T, id uint) *lms.Enrollment {
	t.Helper()

	var enr lms.Enrollment
	require.NoError(t, f.db.First(&enr, id).Error)
	return &enr
}
