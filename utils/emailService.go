package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"qlms/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers an HTML email. SendGrid when an API key is configured,
// plain SMTP otherwise.
func SendEmail(to []string, subject string, htmlBody string) error {
	if config.AppConfig != nil && config.AppConfig.SendGridAPIKey != "" {
		return sendViaSendGrid(to, subject, htmlBody)
	}
	return sendViaSMTP(to, subject, htmlBody)
}

func sendViaSendGrid(to []string, subject string, htmlBody string) error {
	from := mail.NewEmail("Training Center", config.AppConfig.EmailSender)
	client := sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)

	for _, addr := range to {
		message := mail.NewSingleEmail(from, subject, mail.NewEmail("", addr), "", htmlBody)
		resp, err := client.Send(message)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
		}
	}
	return nil
}

func sendViaSMTP(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Training Center <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	return smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
}

// emailTemplate wraps body content in the shared layout.
func emailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #00004D; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #00004D; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #d7b56d; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">%s</div>
			<div class="footer">This is an automated message from the training center.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendCertificateEmail notifies a student that their certificate was issued.
func SendCertificateEmail(email, userName, courseName, certificateNumber string) error {
	body := fmt.Sprintf(`
		<h2>Congratulations, %s!</h2>
		<p>You have completed the course:</p>
		<h3>%s</h3>
		<div class="info-box">Certificate number: <strong>%s</strong></div>
		<p>Use this number for public verification of your certificate.</p>
	`, userName, courseName, certificateNumber)

	return SendEmail([]string{email}, "Certificate issued", emailTemplate("Certificate of Completion", body))
}

// SendExpiryReminderEmail warns a student about an expiring certificate.
func SendExpiryReminderEmail(email, userName, certificateNumber, validUntil string) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your certificate <strong>%s</strong> expires on <strong>%s</strong>.</p>
		<p>Contact the training center to schedule recertification.</p>
	`, userName, certificateNumber, validUntil)

	return SendEmail([]string{email}, "Certificate expiring soon", emailTemplate("Certificate Expiry Reminder", body))
}

// SendCourseAssignedEmail notifies a student about a new course assignment.
func SendCourseAssignedEmail(email, userName, courseName string) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have been assigned to the course:</p>
		<h3>%s</h3>
		<p>Log in to start learning. The final test unlocks once all lessons are complete.</p>
	`, userName, courseName)

	return SendEmail([]string{email}, "Course assigned", emailTemplate("New Course Assignment", body))
}

// SendPDEKSignatureEmail asks a committee reviewer for a signature.
func SendPDEKSignatureEmail(email, userName, courseName string) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>An exam protocol for the course <strong>%s</strong> awaits your signature.</p>
		<p>Please review it in the committee queue.</p>
	`, userName, courseName)

	return SendEmail([]string{email}, "Signature requested", emailTemplate("PDEK Signature Request", body))
}
