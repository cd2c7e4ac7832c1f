// ganadabeot/controllers/writing.go
package controllers

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"ganadabeot/ganadabeot/config"
	"ganadabeot/ganadabeot/services/assistant"
	"ganadabeot/ganadabeot/sources/psql/models"
	"ganadabeot/ganadabeot/sources/session"
	"ganadabeot/ganadabeot/utils/logging"

	"go.uber.org/zap"
)

var (
	ErrEmptyInput  = errors.New("empty input")
	ErrUnknownMode = errors.New("unknown writing mode")
	ErrSessionBusy = session.ErrBusy
)

// Inline messages shown next to the form.
const (
	MsgEmptyInput   = "내용을 입력해주세요."
	MsgSessionBusy  = "이전 요청을 처리 중입니다. 잠시 후 다시 시도해주세요."
	MsgTimeout      = "AI 응답 시간이 초과되었습니다. 잠시 후 다시 시도해주세요."
	MsgRemoteFailed = "AI 응답을 가져오지 못했습니다."
	MsgUnknownMode  = "지원하지 않는 요청입니다."
)

// Completer is the assistant round trip.
type Completer interface {
	Exchange(ctx context.Context, prompt, assistantID string, onProgress assistant.ProgressFunc) (*assistant.Result, error)
}

// ExchangeRecorder persists one row per round trip.
type ExchangeRecorder interface {
	Record(ctx context.Context, ex *models.Exchange) error
}

type WritingController struct {
	assistant   Completer
	prompts     config.Prompts
	assistantID string
	recorder    ExchangeRecorder
}

// NewWritingController wires the assistant. recorder may be nil.
func NewWritingController(c Completer, prompts config.Prompts, assistantID string, recorder ExchangeRecorder) *WritingController {
	return &WritingController{
		assistant:   c,
		prompts:     prompts,
		assistantID: assistantID,
		recorder:    recorder,
	}
}

// Review asks the assistant to rewrite a draft.
func (c *WritingController) Review(ctx context.Context, sess *session.Session, draft string) (string, error) {
	return c.Submit(ctx, sess, config.ModeReview, draft, nil)
}

// Generate asks the assistant to write a draft from a topic.
func (c *WritingController) Generate(ctx context.Context, sess *session.Session, topic string) (string, error) {
	return c.Submit(ctx, sess, config.ModeGenerate, topic, nil)
}

// Submit runs one writing action for sess. Blank text is rejected before
// any remote call; a second submission while one is outstanding gets
// ErrSessionBusy. The reply is kept on the session for the next render.
func (c *WritingController) Submit(ctx context.Context, sess *session.Session, mode, text string, onProgress assistant.ProgressFunc) (string, error) {
	pm, ok := c.prompts.Mode(mode)
	if !ok {
		return "", ErrUnknownMode
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	if err := sess.TryBegin(); err != nil {
		return "", ErrSessionBusy
	}
	defer sess.End()
	epoch := sess.Epoch()

	assistantID := pm.Assistant(c.assistantID)
	res, err := c.assistant.Exchange(ctx, pm.Build(text), assistantID, onProgress)
	c.record(ctx, sess.ID, mode, assistantID, text, res, err)
	if err != nil {
		return "", err
	}
	if !sess.SetResultIn(epoch, mode, res.Text) {
		logging.AppLogger.Info("reply dropped, session logged out during exchange", zap.String("session_id", sess.ID))
	}
	return res.Text, nil
}

func (c *WritingController) record(ctx context.Context, sessionID, mode, assistantID, text string, res *assistant.Result, err error) {
	if c.recorder == nil {
		return
	}
	if res == nil {
		res = &assistant.Result{}
	}
	ex := &models.Exchange{
		SessionID:   sessionID,
		Mode:        mode,
		AssistantID: assistantID,
		ThreadID:    res.ThreadID,
		RunID:       res.RunID,
		Status:      res.Status,
		Outcome:     assistant.Outcome(res, err),
		PromptChars: utf8.RuneCountInString(text),
		ReplyChars:  utf8.RuneCountInString(res.Text),
		Polls:       res.Polls,
		DurationMS:  res.Duration.Milliseconds(),
	}
	if err != nil {
		ex.Error = err.Error()
	}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if rerr := c.recorder.Record(rctx, ex); rerr != nil {
		logging.ErrorLogger.Error("exchange record failed", zap.String("session_id", sessionID), zap.Error(rerr))
	}
}

// UserMessage turns a Submit error into the short inline message shown to the user.
func UserMessage(err error) string {
	var failed *assistant.RunFailedError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return MsgEmptyInput
	case errors.Is(err, ErrUnknownMode):
		return MsgUnknownMode
	case errors.Is(err, ErrSessionBusy):
		return MsgSessionBusy
	case errors.Is(err, assistant.ErrRunTimeout):
		return MsgTimeout
	case errors.As(err, &failed) && failed.Message != "":
		return MsgRemoteFailed + " (" + failed.Message + ")"
	default:
		return MsgRemoteFailed + " (" + err.Error() + ")"
	}
}
