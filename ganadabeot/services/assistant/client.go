// Package assistant drives one prompt/reply exchange against a hosted
// assistant: create a thread, post the user message, start a run, poll it
// to completion and read back the newest assistant message.
package assistant

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"ganadabeot/ganadabeot/services/metrics"
	"ganadabeot/ganadabeot/utils/logging"

	"go.uber.org/zap"
)

// FallbackReply is returned when the run completes without an assistant message.
const FallbackReply = "no response retrieved"

const (
	defaultPollInterval    = 500 * time.Millisecond
	defaultPollMaxInterval = 3 * time.Second
	defaultTimeout         = 2 * time.Minute
	backoffFactor          = 1.5
	cleanupTimeout         = 10 * time.Second
)

// Progress stages.
const (
	StageThread  = "thread_created"
	StageMessage = "message_added"
	StageRun     = "run_started"
	StagePoll    = "run_polled"
	StageReply   = "reply_fetched"
)

type Options struct {
	// PollInterval is the wait before the first status poll.
	PollInterval time.Duration
	// PollMaxInterval caps the backoff between polls.
	PollMaxInterval time.Duration
	// Timeout bounds the polling phase.
	Timeout time.Duration
	// MaxPolls bounds the number of status polls; 0 leaves only Timeout.
	MaxPolls int
	// DeleteThreads removes the remote thread once the reply is read.
	DeleteThreads bool
	Metrics       *metrics.Metrics
}

type Progress struct {
	Stage  string `json:"stage"`
	Status string `json:"status,omitempty"`
	Poll   int    `json:"poll,omitempty"`
}

type ProgressFunc func(Progress)

// Result describes a finished exchange. Exchange returns it even on error,
// filled in as far as the exchange got.
type Result struct {
	Text     string
	ThreadID string
	RunID    string
	Status   string
	Polls    int
	Duration time.Duration
	Fallback bool
}

type Client struct {
	backend Backend
	opts    Options
}

func NewClient(backend Backend, opts Options) *Client {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.PollMaxInterval < opts.PollInterval {
		opts.PollMaxInterval = max(defaultPollMaxInterval, opts.PollInterval)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNopMetrics()
	}
	return &Client{backend: backend, opts: opts}
}

// Complete sends prompt to the assistant on a fresh thread and returns its reply.
func (c *Client) Complete(ctx context.Context, prompt, assistantID string) (string, error) {
	res, err := c.Exchange(ctx, prompt, assistantID, nil)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Exchange is Complete with progress reporting and exchange details.
// onProgress runs on the calling goroutine and may be nil.
func (c *Client) Exchange(ctx context.Context, prompt, assistantID string, onProgress ProgressFunc) (res *Result, err error) {
	defer logging.LogDuration(ctx, "assistant_exchange")()

	start := time.Now()
	res = &Result{}
	c.opts.Metrics.RoundTripsInFlight.Inc()
	defer func() {
		c.opts.Metrics.RoundTripsInFlight.Dec()
		res.Duration = time.Since(start)
		c.observe(res, err)
	}()

	notify := func(p Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	threadID, err := c.backend.CreateThread(ctx)
	if err != nil {
		return res, &StepError{Step: "create thread", Err: err}
	}
	res.ThreadID = threadID
	notify(Progress{Stage: StageThread})
	if c.opts.DeleteThreads {
		defer c.deleteThread(ctx, threadID)
	}

	if err := c.backend.CreateMessage(ctx, threadID, RoleUser, prompt); err != nil {
		return res, &StepError{Step: "create message", Err: err}
	}
	notify(Progress{Stage: StageMessage})

	run, err := c.backend.CreateRun(ctx, threadID, assistantID)
	if err != nil {
		return res, &StepError{Step: "create run", Err: err}
	}
	if run.Status == "" {
		run.Status = StatusQueued
	}
	res.RunID = run.ID
	res.Status = run.Status
	notify(Progress{Stage: StageRun, Status: run.Status})

	if err := c.waitForRun(ctx, threadID, run, res, notify); err != nil {
		return res, err
	}

	msgs, err := c.backend.ListMessages(ctx, threadID)
	if err != nil {
		return res, &StepError{Step: "list messages", Err: err}
	}
	text, ok := SelectReply(msgs)
	if !ok {
		text = FallbackReply
		res.Fallback = true
	}
	res.Text = text
	notify(Progress{Stage: StageReply})
	return res, nil
}

func (c *Client) waitForRun(ctx context.Context, threadID string, run Run, res *Result, notify ProgressFunc) error {
	start := time.Now()
	pollCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	interval := c.opts.PollInterval
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		if run.Status == StatusCompleted {
			return nil
		}
		if !pending(run.Status) {
			if run.Status == StatusRequiresAction {
				c.cancelRun(ctx, threadID, run.ID)
			}
			return &RunFailedError{
				ThreadID: threadID,
				RunID:    run.ID,
				Status:   run.Status,
				Code:     run.LastErrorCode,
				Message:  run.LastErrorMessage,
			}
		}
		if c.opts.MaxPolls > 0 && res.Polls >= c.opts.MaxPolls {
			return c.timedOut(ctx, threadID, run, res.Polls, time.Since(start))
		}

		select {
		case <-pollCtx.Done():
			if err := ctx.Err(); err != nil {
				return err
			}
			return c.timedOut(ctx, threadID, run, res.Polls, time.Since(start))
		case <-timer.C:
		}

		next, err := c.backend.GetRun(pollCtx, threadID, run.ID)
		res.Polls++
		c.opts.Metrics.RunPollsTotal.Inc()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if pollCtx.Err() != nil {
				return c.timedOut(ctx, threadID, run, res.Polls, time.Since(start))
			}
			return &StepError{Step: "get run", Err: err}
		}
		run = next
		res.Status = run.Status
		notify(Progress{Stage: StagePoll, Status: run.Status, Poll: res.Polls})

		interval = min(time.Duration(float64(interval)*backoffFactor), c.opts.PollMaxInterval)
		timer.Reset(interval)
	}
}

func (c *Client) timedOut(ctx context.Context, threadID string, run Run, polls int, elapsed time.Duration) error {
	c.cancelRun(ctx, threadID, run.ID)
	return &TimeoutError{
		ThreadID: threadID,
		RunID:    run.ID,
		Status:   run.Status,
		Polls:    polls,
		Elapsed:  elapsed,
	}
}

// cancelRun is best effort; the run may already have finished.
func (c *Client) cancelRun(ctx context.Context, threadID, runID string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := c.backend.CancelRun(cctx, threadID, runID); err != nil {
		logging.AppLogger.Warn("assistant run cancel failed",
			zap.String("thread_id", threadID), zap.String("run_id", runID), zap.Error(err))
	}
}

func (c *Client) deleteThread(ctx context.Context, threadID string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := c.backend.DeleteThread(cctx, threadID); err != nil {
		c.opts.Metrics.ThreadDeletesFailed.Inc()
		logging.ErrorLogger.Error("assistant thread delete failed",
			zap.String("thread_id", threadID), zap.Error(err))
	}
}

func (c *Client) observe(res *Result, err error) {
	outcome := Outcome(res, err)
	c.opts.Metrics.RoundTripsTotal.WithLabelValues(outcome).Inc()
	c.opts.Metrics.RoundTripDuration.WithLabelValues(outcome).Observe(res.Duration.Seconds())

	fields := []zap.Field{
		zap.String("outcome", outcome),
		zap.String("thread_id", res.ThreadID),
		zap.String("run_id", res.RunID),
		zap.String("status", res.Status),
		zap.Int("polls", res.Polls),
		zap.Int64("duration_ms", res.Duration.Milliseconds()),
	}
	if err != nil {
		logging.ErrorLogger.Error("assistant exchange failed", append(fields, zap.Error(err))...)
		return
	}
	logging.AppLogger.Info("assistant exchange finished", fields...)
}

// Outcome classifies an exchange for metrics and the exchange log.
func Outcome(res *Result, err error) string {
	var failed *RunFailedError
	switch {
	case err == nil && res != nil && res.Fallback:
		return "fallback"
	case err == nil:
		return "completed"
	case errors.Is(err, ErrRunTimeout):
		return "timeout"
	case errors.As(err, &failed):
		return "run_" + failed.Status
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

// SelectReply returns the newest assistant message with text.
// msgs is expected newest-first; it is stable-sorted by CreatedAt
// descending so a backend with weaker ordering still yields the newest reply.
func SelectReply(msgs []Message) (string, bool) {
	ordered := slices.Clone(msgs)
	slices.SortStableFunc(ordered, func(a, b Message) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
	for _, m := range ordered {
		if m.Role == RoleAssistant && strings.TrimSpace(m.Text) != "" {
			return m.Text, true
		}
	}
	return "", false
}
