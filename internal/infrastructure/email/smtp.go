package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	BaseURL     string // Base URL for email links (e.g., "https://app.fiscus.example")
}

type SMTPEmailService struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPEmailService(config SMTPConfig) *SMTPEmailService {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &SMTPEmailService{
		config: config,
		dialer: dialer,
	}
}

// SendMemberInvite notifies a newly provisioned member that a workspace is
// waiting for them.
func (s *SMTPEmailService) SendMemberInvite(to string) error {
	loginURL := fmt.Sprintf("%s/login", s.config.BaseURL)

	subject := "You've Been Invited to a Workspace"
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>You've been invited</h2>
			<p>A workspace administrator has added you as a member. Sign in to get started:</p>
			<p><a href="%s">Open Workspace</a></p>
			<p>Or copy and paste this URL into your browser:</p>
			<p>%s</p>
			<p>If you weren't expecting this invitation, you can ignore this email.</p>
		</body>
		</html>
	`, loginURL, loginURL)

	plainBody := fmt.Sprintf(`
You've been invited

A workspace administrator has added you as a member. Sign in to get started:
%s

If you weren't expecting this invitation, you can ignore this email.
	`, loginURL)

	return s.sendEmail(to, subject, htmlBody, plainBody)
}

func (s *SMTPEmailService) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromAddress)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
