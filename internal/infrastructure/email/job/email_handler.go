package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"connect-digitals-backend/internal/infrastructure/email"
	"connect-digitals-backend/internal/shared"
)

type EmailVerificationHandler struct {
	emailService email.EmailService
}

func NewEmailVerificationHandler(emailService email.EmailService) *EmailVerificationHandler {
	return &EmailVerificationHandler{emailService: emailService}
}

func (h *EmailVerificationHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload email.VerificationEmailData
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal EmailVerification payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := h.emailService.SendVerificationEmail(ctx, payload); err != nil {
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to send verification email")
		return fmt.Errorf("send verification email: %w", err)
	}

	log.Info().Str("email", payload.Email).Msg("Verification email sent")
	return nil
}

type ResetPasswordEmailHandler struct {
	emailService email.EmailService
}

func NewResetPasswordEmailHandler(emailService email.EmailService) *ResetPasswordEmailHandler {
	return &ResetPasswordEmailHandler{emailService: emailService}
}

func (h *ResetPasswordEmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload email.ResetPasswordData
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ResetPasswordEmail payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := h.emailService.SendResetPasswordEmail(ctx, payload); err != nil {
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to send reset password email")
		return fmt.Errorf("send reset password email: %w", err)
	}

	log.Info().Str("email", payload.Email).Msg("Reset password email sent")
	return nil
}

type ContactEmailHandler struct {
	emailService email.EmailService
}

func NewContactEmailHandler(emailService email.EmailService) *ContactEmailHandler {
	return &ContactEmailHandler{emailService: emailService}
}

func (h *ContactEmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ContactMessagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ContactMessage payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	data := email.ContactMessageData{
		Name:    payload.Name,
		Email:   payload.Email,
		Subject: payload.Subject,
		Message: payload.Message,
	}
	if err := h.emailService.SendContactEmail(ctx, data); err != nil {
		log.Error().Err(err).Str("from", payload.Email).Msg("Failed to forward contact message")
		return fmt.Errorf("send contact email: %w", err)
	}

	log.Info().Str("from", payload.Email).Msg("Contact message forwarded")
	return nil
}
