package assistant

import (
	"context"
	"net/http"
	"strings"
	"time"

	"ganadabeot/ganadabeot/utils/textutils"

	openai "github.com/sashabaranov/go-openai"
)

// messagesPageSize is enough for a one-shot thread: one user message plus the replies of a single run.
const messagesPageSize = 20

// OpenAIBackend talks to the OpenAI Assistants API (threads, messages, runs).
type OpenAIBackend struct {
	client *openai.Client
}

// NewOpenAIBackend builds a backend for apiKey. baseURL overrides the API
// endpoint when non-empty (proxies, compatible gateways, tests).
func NewOpenAIBackend(apiKey, baseURL string) *OpenAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	return &OpenAIBackend{client: openai.NewClientWithConfig(cfg)}
}

func (b *OpenAIBackend) CreateThread(ctx context.Context) (string, error) {
	thread, err := b.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", err
	}
	return thread.ID, nil
}

func (b *OpenAIBackend) CreateMessage(ctx context.Context, threadID, role, content string) error {
	_, err := b.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    role,
		Content: content,
	})
	return err
}

func (b *OpenAIBackend) CreateRun(ctx context.Context, threadID, assistantID string) (Run, error) {
	run, err := b.client.CreateRun(ctx, threadID, openai.RunRequest{AssistantID: assistantID})
	if err != nil {
		return Run{}, err
	}
	return toRun(run), nil
}

func (b *OpenAIBackend) GetRun(ctx context.Context, threadID, runID string) (Run, error) {
	run, err := b.client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return Run{}, err
	}
	return toRun(run), nil
}

func (b *OpenAIBackend) CancelRun(ctx context.Context, threadID, runID string) error {
	_, err := b.client.CancelRun(ctx, threadID, runID)
	return err
}

func (b *OpenAIBackend) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	limit := messagesPageSize
	order := "desc"
	list, err := b.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(list.Messages))
	for _, m := range list.Messages {
		out = append(out, Message{
			ID:        m.ID,
			Role:      m.Role,
			Text:      messageText(m),
			CreatedAt: int64(m.CreatedAt),
		})
	}
	return out, nil
}

func (b *OpenAIBackend) DeleteThread(ctx context.Context, threadID string) error {
	_, err := b.client.DeleteThread(ctx, threadID)
	return err
}

func toRun(r openai.Run) Run {
	run := Run{ID: r.ID, Status: string(r.Status)}
	if r.LastError != nil {
		run.LastErrorCode = string(r.LastError.Code)
		run.LastErrorMessage = r.LastError.Message
	}
	return run
}

// messageText joins the text parts of a message; image parts are skipped.
// Citation markers and invisible characters are removed.
func messageText(m openai.Message) string {
	var parts []string
	for _, c := range m.Content {
		if c.Text != nil && c.Text.Value != "" {
			parts = append(parts, c.Text.Value)
		}
	}
	return textutils.CleanReply(strings.Join(parts, "\n"))
}
