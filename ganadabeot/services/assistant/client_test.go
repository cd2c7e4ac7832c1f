package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend scripts run statuses and the final message list.
type fakeBackend struct {
	mu sync.Mutex

	createThreadErr error
	runStatus       string
	statuses        []string // returned by successive GetRun calls; last one repeats
	lastErrMessage  string
	messages        []Message

	threads   int
	runs      int
	polls     int
	cancelled []string
	deleted   []string
	posted    []Message
	assistant string
}

func (f *fakeBackend) CreateThread(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createThreadErr != nil {
		return "", f.createThreadErr
	}
	f.threads++
	return "thread_1", nil
}

func (f *fakeBackend) CreateMessage(ctx context.Context, threadID, role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, Message{Role: role, Text: content})
	return nil
}

func (f *fakeBackend) CreateRun(ctx context.Context, threadID, assistantID string) (Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	f.assistant = assistantID
	status := f.runStatus
	if status == "" {
		status = StatusQueued
	}
	return Run{ID: "run_1", Status: status}, nil
}

func (f *fakeBackend) GetRun(ctx context.Context, threadID, runID string) (Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	i := min(f.polls, len(f.statuses)-1)
	f.polls++
	return Run{ID: runID, Status: f.statuses[i], LastErrorMessage: f.lastErrMessage}, nil
}

func (f *fakeBackend) CancelRun(ctx context.Context, threadID, runID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, runID)
	return nil
}

func (f *fakeBackend) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages, nil
}

func (f *fakeBackend) DeleteThread(ctx context.Context, threadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, threadID)
	return nil
}

func fastOptions() Options {
	return Options{
		PollInterval:    time.Millisecond,
		PollMaxInterval: 2 * time.Millisecond,
		Timeout:         2 * time.Second,
	}
}

func TestCompleteReturnsNewestAssistantMessage(t *testing.T) {
	fb := &fakeBackend{
		statuses: []string{StatusInProgress, StatusCompleted},
		messages: []Message{
			{Role: RoleAssistant, Text: "B"},
			{Role: RoleUser, Text: "A"},
		},
	}
	c := NewClient(fb, fastOptions())

	got, err := c.Complete(context.Background(), "A", "asst_1")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "B" {
		t.Errorf("expected %q, got %q", "B", got)
	}
	if fb.threads != 1 || fb.runs != 1 {
		t.Errorf("expected one thread and one run, got %d/%d", fb.threads, fb.runs)
	}
	if len(fb.posted) != 1 || fb.posted[0].Role != RoleUser || fb.posted[0].Text != "A" {
		t.Errorf("unexpected posted messages: %+v", fb.posted)
	}
	if fb.assistant != "asst_1" {
		t.Errorf("run bound to %q", fb.assistant)
	}
	if len(fb.deleted) != 0 {
		t.Errorf("threads must be kept unless deletion is enabled")
	}
}

func TestCompleteFallbackWithoutAssistantMessage(t *testing.T) {
	fb := &fakeBackend{
		statuses: []string{StatusCompleted},
		messages: []Message{{Role: RoleUser, Text: "A"}},
	}
	c := NewClient(fb, fastOptions())

	res, err := c.Exchange(context.Background(), "A", "asst_1", nil)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if res.Text != FallbackReply || !res.Fallback {
		t.Errorf("expected fallback reply, got %+v", res)
	}
	if Outcome(res, nil) != "fallback" {
		t.Errorf("unexpected outcome %q", Outcome(res, nil))
	}
}

func TestCompleteSkipsPollingWhenRunAlreadyCompleted(t *testing.T) {
	fb := &fakeBackend{
		runStatus: StatusCompleted,
		statuses:  []string{StatusCompleted},
		messages:  []Message{{Role: RoleAssistant, Text: "done"}},
	}
	res, err := NewClient(fb, fastOptions()).Exchange(context.Background(), "x", "asst_1", nil)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if res.Polls != 0 || fb.polls != 0 {
		t.Errorf("expected no polls, got %d", fb.polls)
	}
}

func TestCompleteStopsAfterMaxPolls(t *testing.T) {
	fb := &fakeBackend{statuses: []string{StatusInProgress}}
	opts := fastOptions()
	opts.MaxPolls = 5
	c := NewClient(fb, opts)

	_, err := c.Complete(context.Background(), "A", "asst_1")
	if !errors.Is(err, ErrRunTimeout) {
		t.Fatalf("expected ErrRunTimeout, got %v", err)
	}
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TimeoutError, got %T", err)
	}
	if te.Polls != 5 || fb.polls != 5 {
		t.Errorf("expected exactly 5 polls, got %d (backend %d)", te.Polls, fb.polls)
	}
	if len(fb.cancelled) != 1 {
		t.Errorf("expected timed out run to be cancelled, got %v", fb.cancelled)
	}
}

func TestCompleteStopsAtTimeout(t *testing.T) {
	fb := &fakeBackend{statuses: []string{StatusQueued}}
	opts := fastOptions()
	opts.Timeout = 30 * time.Millisecond

	done := make(chan error, 1)
	go func() {
		_, err := NewClient(fb, opts).Complete(context.Background(), "A", "asst_1")
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrRunTimeout) {
			t.Fatalf("expected ErrRunTimeout, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not terminate")
	}
}

func TestCompleteTerminalFailureStatuses(t *testing.T) {
	for _, status := range []string{StatusFailed, StatusCancelled, StatusExpired, StatusIncomplete, StatusRequiresAction} {
		t.Run(status, func(t *testing.T) {
			fb := &fakeBackend{statuses: []string{StatusInProgress, status}, lastErrMessage: "rate limited"}
			res, err := NewClient(fb, fastOptions()).Exchange(context.Background(), "A", "asst_1", nil)

			var rf *RunFailedError
			if !errors.As(err, &rf) {
				t.Fatalf("expected *RunFailedError, got %v", err)
			}
			if rf.Status != status || rf.Message != "rate limited" {
				t.Errorf("unexpected error %+v", rf)
			}
			if fb.polls != 2 {
				t.Errorf("expected polling to stop at the terminal status, got %d polls", fb.polls)
			}
			if Outcome(res, err) != "run_"+status {
				t.Errorf("unexpected outcome %q", Outcome(res, err))
			}
		})
	}
}

func TestCompleteKeepsPollingOnEmptyStatus(t *testing.T) {
	fb := &fakeBackend{
		statuses: []string{"", StatusInProgress, StatusCompleted},
		messages: []Message{{Role: RoleAssistant, Text: "B", CreatedAt: 2}},
	}
	res, err := NewClient(fb, fastOptions()).Exchange(context.Background(), "A", "asst_1", nil)
	if err != nil {
		t.Fatalf("empty status should keep polling, got %v", err)
	}
	if res.Text != "B" || fb.polls != 3 {
		t.Errorf("unexpected result %q after %d polls", res.Text, fb.polls)
	}
	if !pending("") {
		t.Error("empty status must be pending")
	}
}

func TestCompleteCreateThreadFailure(t *testing.T) {
	boom := errors.New("connection refused")
	fb := &fakeBackend{createThreadErr: boom}

	_, err := NewClient(fb, fastOptions()).Complete(context.Background(), "A", "asst_1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	var se *StepError
	if !errors.As(err, &se) || se.Step != "create thread" {
		t.Errorf("expected create thread step error, got %v", err)
	}
	if fb.runs != 0 {
		t.Errorf("no run should be created after thread failure")
	}
}

func TestCompleteHonoursCallerCancellation(t *testing.T) {
	fb := &fakeBackend{statuses: []string{StatusInProgress}}
	opts := fastOptions()
	opts.Timeout = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewClient(fb, opts).Complete(ctx, "A", "asst_1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected caller deadline, got %v", err)
	}
	if errors.Is(err, ErrRunTimeout) {
		t.Errorf("caller cancellation must not be reported as a run timeout")
	}
}

func TestExchangeDeletesThreadWhenEnabled(t *testing.T) {
	fb := &fakeBackend{
		statuses: []string{StatusCompleted},
		messages: []Message{{Role: RoleAssistant, Text: "ok"}},
	}
	opts := fastOptions()
	opts.DeleteThreads = true

	if _, err := NewClient(fb, opts).Complete(context.Background(), "A", "asst_1"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(fb.deleted) != 1 || fb.deleted[0] != "thread_1" {
		t.Errorf("expected thread_1 deleted, got %v", fb.deleted)
	}
}

func TestExchangeReportsProgress(t *testing.T) {
	fb := &fakeBackend{
		statuses: []string{StatusInProgress, StatusCompleted},
		messages: []Message{{Role: RoleAssistant, Text: "ok"}},
	}
	var stages []string
	_, err := NewClient(fb, fastOptions()).Exchange(context.Background(), "A", "asst_1", func(p Progress) {
		stages = append(stages, p.Stage)
	})
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	want := []string{StageThread, StageMessage, StageRun, StagePoll, StagePoll, StageReply}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage %d = %q, want %q", i, stages[i], want[i])
		}
	}
}

func TestSelectReply(t *testing.T) {
	tests := []struct {
		name string
		msgs []Message
		want string
		ok   bool
	}{
		{
			name: "newest first",
			msgs: []Message{{Role: RoleAssistant, Text: "B"}, {Role: RoleUser, Text: "A"}},
			want: "B", ok: true,
		},
		{
			name: "sorted by creation time",
			msgs: []Message{
				{Role: RoleAssistant, Text: "old", CreatedAt: 1},
				{Role: RoleUser, Text: "q", CreatedAt: 2},
				{Role: RoleAssistant, Text: "new", CreatedAt: 3},
			},
			want: "new", ok: true,
		},
		{
			name: "skips empty assistant text",
			msgs: []Message{{Role: RoleAssistant, Text: "  "}, {Role: RoleAssistant, Text: "real"}},
			want: "real", ok: true,
		},
		{
			name: "no assistant",
			msgs: []Message{{Role: RoleUser, Text: "A"}},
			ok:   false,
		},
		{name: "empty", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectReply(tt.msgs)
			if got != tt.want || ok != tt.ok {
				t.Errorf("SelectReply = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}
