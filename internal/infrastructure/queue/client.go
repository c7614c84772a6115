package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"connect-digitals-backend/internal/infrastructure/email"
	"connect-digitals-backend/internal/shared"
)

// Client enqueues background tasks for the worker process.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, redisPassword string, redisDB int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		}),
	}
}

func (c *Client) EnqueueVerificationEmail(data email.VerificationEmailData) error {
	return c.enqueue(shared.TypeSendVerificationEmail, data, shared.QueueEmail, 3)
}

func (c *Client) EnqueueResetPasswordEmail(data email.ResetPasswordData) error {
	return c.enqueue(shared.TypeSendResetEmail, data, shared.QueueEmail, 3)
}

func (c *Client) EnqueueContactMessage(payload shared.ContactMessagePayload) error {
	return c.enqueue(shared.TypeSendContactEmail, payload, shared.QueueEmail, 5)
}

func (c *Client) enqueue(taskType string, payload interface{}, queue string, maxRetry int) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}

	task := asynq.NewTask(taskType, data)
	_, err = c.client.Enqueue(task,
		asynq.Queue(queue),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
