package workflow

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"qlms/config"
	"qlms/models"
	"qlms/models/lms"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const issueRetries = 3

// NewCertificateNumber builds a globally unique certificate number like
// "KZ-2026-3F2A9C0B11D4". Uniqueness is backed by the unique index on the
// certificates table; the uuid entropy makes index collisions vanishingly
// rare even across revoked numbers.
func NewCertificateNumber(prefix string) string {
	id := uuid.New()
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().Year(),
		strings.ToUpper(hex.EncodeToString(id[:6])))
}

func certNumberPrefix() string {
	if config.AppConfig != nil && config.AppConfig.CertNumberPrefix != "" {
		return config.AppConfig.CertNumberPrefix
	}
	return "KZ"
}

func verifyBaseURL() string {
	if config.AppConfig != nil && config.AppConfig.VerifyBaseURL != "" {
		return config.AppConfig.VerifyBaseURL
	}
	return "/verify"
}

// issue creates the certificate for a completed enrollment. Idempotent: a
// second call returns the existing non-revoked certificate, so completion is
// safe to retry after a crash. Number collisions retry with fresh entropy
// before surfacing IssuanceFailed.
func issue(tx *gorm.DB, enr *lms.Enrollment, course *models.Course) (*lms.Certificate, error) {
	var existing lms.Certificate
	err := tx.Where("enrollment_id = ? AND revoked = ?", enr.ID, false).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	var validUntil *time.Time
	if course.ValidityMonths > 0 {
		v := now.AddDate(0, course.ValidityMonths, 0)
		validUntil = &v
	}

	var lastErr error
	for i := 0; i < issueRetries; i++ {
		cert := lms.Certificate{
			Number:       NewCertificateNumber(certNumberPrefix()),
			EnrollmentID: enr.ID,
			UserID:       enr.UserID,
			CourseID:     enr.CourseID,
			IssuedAt:     now,
			ValidUntil:   validUntil,
		}
		cert.QRCode = fmt.Sprintf("%s/%s", verifyBaseURL(), cert.Number)

		// Nested transaction = savepoint, so a unique-index collision does
		// not poison the outer transaction before the retry.
		if err := tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(&cert).Error
		}); err != nil {
			lastErr = err
			continue
		}
		return &cert, nil
	}
	return nil, &Error{
		Kind:    KindIssuanceFailed,
		Message: fmt.Sprintf("could not issue certificate: %v", lastErr),
	}
}

// revoke flags a certificate as revoked. Irreversible.
func revoke(tx *gorm.DB, cert *lms.Certificate) error {
	if err := tx.Model(&lms.Certificate{}).
		Where("id = ?", cert.ID).
		Update("revoked", true).Error; err != nil {
		return err
	}
	cert.Revoked = true
	return nil
}

// RevokeCertificate revokes by certificate id.
func RevokeCertificate(db *gorm.DB, certificateID uint) (*lms.Certificate, error) {
	var cert lms.Certificate
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cert, certificateID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errNotFound("certificate", certificateID)
			}
			return err
		}
		return revoke(tx, &cert)
	})
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// Verification reasons returned by Verify.
const (
	VerifyReasonNotFound = "not_found"
	VerifyReasonRevoked  = "revoked"
	VerifyReasonExpired  = "expired"
)

// VerificationResult is the public verify response.
type VerificationResult struct {
	Valid       bool             `json:"valid"`
	Certificate *lms.Certificate `json:"certificate,omitempty"`
	Reason      string           `json:"reason,omitempty"`
}

// Verify looks up a certificate by its public number. Unauthenticated. Every
// outcome does the same single indexed lookup and branches on the fetched
// row, so the reason is not distinguishable from response timing.
func Verify(db *gorm.DB, number string) (*VerificationResult, error) {
	var cert lms.Certificate
	err := db.Where("number = ?", number).First(&cert).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &VerificationResult{Valid: false, Reason: VerifyReasonNotFound}, nil
		}
		return nil, err
	}

	if cert.Revoked {
		return &VerificationResult{Valid: false, Reason: VerifyReasonRevoked}, nil
	}
	if cert.ValidUntil != nil && time.Now().After(*cert.ValidUntil) {
		return &VerificationResult{Valid: false, Reason: VerifyReasonExpired}, nil
	}
	return &VerificationResult{Valid: true, Certificate: &cert}, nil
}
