package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"connect-digitals-backend/internal/shared"
	"connect-digitals-backend/pkg/logger"
)

// Scheduler registers recurring background jobs.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr, redisPassword string, redisDB int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

// RegisterJobs wires all cron entries. Currently a single hourly sweep
// removing expired verification and password reset tokens.
func (s *Scheduler) RegisterJobs() error {
	payload, err := json.Marshal(shared.CleanupExpiredTokensPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeCleanupExpiredTokens, payload)

	_, err = s.scheduler.Register(
		"0 * * * *", // hourly
		task,
		asynq.Queue(shared.QueueUser),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register CleanupExpiredTokens job", err)
		return err
	}

	logger.Info("Registered CleanupExpiredTokens: hourly", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
