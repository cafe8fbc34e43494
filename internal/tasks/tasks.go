package tasks

const (
	TypeRecoveryCodeEmail = "email:recovery_code"

	QUEUE_NAME = "default"
)

// RecoveryCodeEmailPayload carries a freshly issued recovery code to the
// email worker. The code exists in plaintext only in flight; it is never
// written to any store.
type RecoveryCodeEmailPayload struct {
	TaskID string `json:"task_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Code   string `json:"code"`
}
