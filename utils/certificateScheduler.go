package utils

import (
	"log"
	"time"

	"qlms/config"
	"qlms/database"
	"qlms/models"
	"qlms/models/lms"

	"github.com/robfig/cron/v3"
)

func logScheduler(message string) {
	log.Printf("[CERT-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// sendExpiryReminders emails students whose certificates expire within the
// configured reminder window. Read-only with respect to workflow state.
func sendExpiryReminders() {
	db := database.Database.Db
	now := time.Now()
	window := now.AddDate(0, 0, config.AppConfig.ExpiryReminderDays)

	var certs []lms.Certificate
	if err := db.Where("revoked = ? AND valid_until IS NOT NULL AND valid_until BETWEEN ? AND ?",
		false, now, window).Find(&certs).Error; err != nil {
		logScheduler("Error fetching expiring certificates: " + err.Error())
		return
	}

	for _, cert := range certs {
		var user models.User
		if err := db.First(&user, cert.UserID).Error; err != nil || user.Email == "" {
			continue
		}
		if err := SendExpiryReminderEmail(user.Email, user.FullName, cert.Number,
			cert.ValidUntil.Format("2006-01-02")); err != nil {
			logScheduler("Reminder for " + cert.Number + " failed: " + err.Error())
			continue
		}
		logScheduler("Reminder sent for certificate " + cert.Number)
	}
}

// StartCertificateScheduler runs the daily expiry-reminder sweep.
func StartCertificateScheduler() *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("0 8 * * *", sendExpiryReminders); err != nil {
		log.Fatalf("Failed to schedule certificate sweep: %v", err)
	}

	c.Start()
	logScheduler("Certificate scheduler started")
	return c
}
