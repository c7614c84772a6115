package email

import (
	"context"
	"fmt"
	"net/smtp"

	"connect-digitals-backend/pkg/logger"
)

type VerificationEmailData struct {
	Email      string `json:"email"`
	VerifyLink string `json:"verifyLink"`
	ExpiresIn  string `json:"expiresIn"`
}

type ResetPasswordData struct {
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresIn string `json:"expiresIn"`
}

type ContactMessageData struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type EmailService interface {
	SendVerificationEmail(ctx context.Context, data VerificationEmailData) error
	SendResetPasswordEmail(ctx context.Context, data ResetPasswordData) error
	SendContactEmail(ctx context.Context, data ContactMessageData) error
}

type smtpEmailService struct {
	smtpAddr string
	from     string
	adminTo  string
}

// NewSMTPEmailService sends plain-text mail through the configured relay.
// adminTo receives contact form submissions.
func NewSMTPEmailService(smtpHost, smtpPort, from, adminTo string) EmailService {
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		from:     from,
		adminTo:  adminTo,
	}
}

func (s *smtpEmailService) SendVerificationEmail(ctx context.Context, data VerificationEmailData) error {
	subject := "Verify your Connect Digitals account"
	body := fmt.Sprintf(`Hello,

Please click the link below to verify your account:
%s

The link is valid for %s.

If you did not create this account, you can safely ignore this email.`, data.VerifyLink, data.ExpiresIn)

	return s.send(data.Email, subject, body)
}

func (s *smtpEmailService) SendResetPasswordEmail(ctx context.Context, data ResetPasswordData) error {
	subject := "Reset your Connect Digitals password"
	body := fmt.Sprintf(`Hello,

Use the following token to reset your password:
%s

The token is valid for %s.

If you did not request a reset, you can safely ignore this email.`, data.Token, data.ExpiresIn)

	return s.send(data.Email, subject, body)
}

func (s *smtpEmailService) SendContactEmail(ctx context.Context, data ContactMessageData) error {
	subject := fmt.Sprintf("Contact form: %s", data.Subject)
	body := fmt.Sprintf(`New contact form submission

From: %s <%s>

%s`, data.Name, data.Email, data.Message)

	return s.send(s.adminTo, subject, body)
}

func (s *smtpEmailService) send(to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.from, to, subject, body))

	if err := smtp.SendMail(s.smtpAddr, nil, s.from, []string{to}, msg); err != nil {
		logger.Error("failed to send email", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
