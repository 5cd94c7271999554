package utils

import (
	"fmt"
	"log"

	"qlms/config"

	"github.com/go-resty/resty/v2"
)

var smsClient = resty.New()

// SendSMS pushes a short status notification through the configured SMS
// gateway. A missing gateway configuration is not an error; the message is
// just logged and dropped.
func SendSMS(mobile, message string) error {
	if config.AppConfig == nil || config.AppConfig.LocalTextApiUrl == "" {
		log.Printf("SMS gateway not configured, dropping message to %s", mobile)
		return nil
	}

	resp, err := smsClient.R().
		SetHeader("Authorization", config.AppConfig.LocalTextApi).
		SetBody(map[string]string{
			"recipient": mobile,
			"text":      message,
		}).
		Post(config.AppConfig.LocalTextApiUrl)
	if err != nil {
		log.Printf("Error while sending SMS: %v", err)
		return err
	}

	if resp.StatusCode() >= 300 {
		log.Printf("Failed to send SMS, response code: %d", resp.StatusCode())
		return fmt.Errorf("failed to send SMS, code: %d", resp.StatusCode())
	}

	return nil
}
