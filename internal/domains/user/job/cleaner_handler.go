package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"connect-digitals-backend/internal/domains/user"
)

// CleanupExpiredTokensHandler clears verification and reset tokens that
// are past their expiry. Scheduled hourly.
type CleanupExpiredTokensHandler struct {
	repo user.Repository
}

func NewCleanupExpiredTokensHandler(repo user.Repository) *CleanupExpiredTokensHandler {
	return &CleanupExpiredTokensHandler{repo: repo}
}

func (h *CleanupExpiredTokensHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	cleared, err := h.repo.DeleteExpiredTokens(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to clear expired tokens")
		return err
	}

	if cleared > 0 {
		log.Info().Int64("cleared", cleared).Msg("Expired auth tokens cleared")
	}
	return nil
}
