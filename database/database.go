package database

import (
	"fmt"
	"log"
	"os"

	"qlms/models"
	"qlms/models/lms"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes a connection to PostgreSQL
func ConnectDb() {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		os.Exit(2)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	runMigrations(db)

	// Save database instance globally
	Database = DbInstance{Db: db}
}

// RunMigrations performs database migrations on the given connection.
// Exposed so tests can migrate an in-memory database with the same model set.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseTest{},
		&lms.Enrollment{},
		&lms.TestAttempt{},
		&lms.ExtraAttemptRequest{},
		&lms.PDEKReview{},
		&lms.Certificate{},
	); err != nil {
		return err
	}

	// Partial unique indexes enforce "one active enrollment per pair" and
	// "one pending request per enrollment" at the schema level, so two
	// concurrent inserts cannot both commit.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollments_active_pair
		ON enrollments(user_id, course_id) WHERE status <> 'annulled'`).Error; err != nil {
		return err
	}
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_extra_attempt_requests_pending
		ON extra_attempt_requests(enrollment_id) WHERE status = 'pending'`).Error
}

func runMigrations(db *gorm.DB) {
	log.Println("Running Migrations...")

	if err := RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully.")
}
