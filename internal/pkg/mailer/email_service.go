// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendOpsAlert(subject, detail string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	opsEmail    string
}

func NewEmailService(host string, port int, username, password, senderEmail, opsEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		opsEmail:    opsEmail,
	}
}

// SendOpsAlert notifies the operations mailbox about a failure that needs a
// human, e.g. an audit record that could not be persisted after retries.
func (s *emailService) SendOpsAlert(subject, detail string) error {
	if s.opsEmail == "" {
		return fmt.Errorf("ops email not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", s.opsEmail)
	m.SetHeader("Subject", "[Knowledge Copilot] "+subject)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<pre style="background: #f5f5f5; padding: 12px; border-radius: 4px;">%s</pre>
			<p>Check the application logs for the full trace.</p>
		</div>
	`, subject, detail)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send ops alert: %v\n", err)
		return err
	}

	fmt.Printf("[MAILER] Ops alert sent to %s\n", s.opsEmail)
	return nil
}
