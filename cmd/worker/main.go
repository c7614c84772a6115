package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"connect-digitals-backend/internal/config"
	userJob "connect-digitals-backend/internal/domains/user/job"
	"connect-digitals-backend/internal/infrastructure/email"
	emailJob "connect-digitals-backend/internal/infrastructure/email/job"
	"connect-digitals-backend/internal/infrastructure/queue"
	"connect-digitals-backend/internal/shared"
	"connect-digitals-backend/pkg/container"
	"connect-digitals-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file found, using system environment variables")
	}

	c, err := container.NewContainer()
	if err != nil {
		logger.Error("failed to initialize container", err)
		os.Exit(1)
	}
	defer c.Cleanup()

	cfg := c.Config
	logger.Init(cfg.App.Environment)

	srv := newAsynqServer(cfg)
	mux := newTaskMux(c, cfg)

	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Error("worker server stopped", err)
			os.Exit(1)
		}
	}()

	scheduler := queue.NewScheduler(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := scheduler.RegisterJobs(); err != nil {
		logger.Error("failed to register scheduled jobs", err)
		os.Exit(1)
	}

	go func() {
		if err := scheduler.Start(); err != nil {
			logger.Error("scheduler stopped", err)
			os.Exit(1)
		}
	}()

	logger.Info("worker started", map[string]interface{}{
		"queues": []string{shared.QueueDefault, shared.QueueEmail, shared.QueueUser},
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker", nil)
	scheduler.Shutdown()
	srv.Shutdown()
	logger.Info("worker exited gracefully", nil)
}

func newAsynqServer(cfg *config.Config) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Host,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				shared.QueueDefault: 3,
				shared.QueueEmail:   5,
				shared.QueueUser:    2,
			},
		},
	)
}

func newTaskMux(c *container.Container, cfg *config.Config) *asynq.ServeMux {
	emailService := email.NewSMTPEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.From,
		cfg.Email.ContactTo,
	)

	verificationHandler := emailJob.NewEmailVerificationHandler(emailService)
	resetHandler := emailJob.NewResetPasswordEmailHandler(emailService)
	contactHandler := emailJob.NewContactEmailHandler(emailService)
	cleanupHandler := userJob.NewCleanupExpiredTokensHandler(c.UserRepo)

	mux := asynq.NewServeMux()
	mux.HandleFunc(shared.TypeSendVerificationEmail, verificationHandler.ProcessTask)
	mux.HandleFunc(shared.TypeSendResetEmail, resetHandler.ProcessTask)
	mux.HandleFunc(shared.TypeSendContactEmail, contactHandler.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupExpiredTokens, cleanupHandler.ProcessTask)

	return mux
}
