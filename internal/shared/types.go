package shared

// Asynq task types and queues.
const (
	TypeSendVerificationEmail = "email:verification"
	TypeSendResetEmail        = "email:reset_password"
	TypeSendContactEmail      = "email:contact"
	TypeCleanupExpiredTokens  = "auth:cleanup_expired_tokens"

	QueueDefault = "default"
	QueueEmail   = "email"
	QueueUser    = "user"
)

// CleanupExpiredTokensPayload is intentionally empty; the handler scans
// for anything past its expiry.
type CleanupExpiredTokensPayload struct{}

// ContactMessagePayload carries a contact form submission to the worker.
type ContactMessagePayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}
