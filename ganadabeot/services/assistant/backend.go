package assistant

import "context"

// Run statuses reported by the remote service.
const (
	StatusQueued         = "queued"
	StatusInProgress     = "in_progress"
	StatusCancelling     = "cancelling"
	StatusCompleted      = "completed"
	StatusFailed         = "failed"
	StatusCancelled      = "cancelled"
	StatusExpired        = "expired"
	StatusIncomplete     = "incomplete"
	StatusRequiresAction = "requires_action"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Run is the polled state of one assistant execution.
type Run struct {
	ID     string
	Status string
	// LastError is set by the service for failed runs.
	LastErrorCode    string
	LastErrorMessage string
}

// Message is one thread entry reduced to its text.
type Message struct {
	ID        string
	Role      string
	Text      string
	CreatedAt int64
}

// Backend is the remote conversation service.
// ListMessages returns messages newest-first.
type Backend interface {
	CreateThread(ctx context.Context) (string, error)
	CreateMessage(ctx context.Context, threadID, role, content string) error
	CreateRun(ctx context.Context, threadID, assistantID string) (Run, error)
	GetRun(ctx context.Context, threadID, runID string) (Run, error)
	CancelRun(ctx context.Context, threadID, runID string) error
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
	DeleteThread(ctx context.Context, threadID string) error
}

// pending reports whether polling should continue. An empty status is
// treated as not started yet.
func pending(status string) bool {
	switch status {
	case "", StatusQueued, StatusInProgress, StatusCancelling:
		return true
	}
	return false
}
