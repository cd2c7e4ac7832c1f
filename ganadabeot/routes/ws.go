package routes

import (
	"net/http"

	"ganadabeot/ganadabeot/config"
	"ganadabeot/ganadabeot/controllers"
	"ganadabeot/ganadabeot/middlewares"
	"ganadabeot/ganadabeot/services/assistant"
	"ganadabeot/ganadabeot/utils/logging"
	"ganadabeot/ganadabeot/utils/types"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// WritingSocket runs one writing action per connection: the client sends a
// WritingRequest, the server streams progress events and finishes with a
// result or error event.
func WritingSocket(ctrl *controllers.WritingController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middlewares.SessionFromContext(r.Context())
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			logging.ErrorLogger.Error("websocket accept error", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		ctx := r.Context()
		var req types.WritingRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			conn.Close(websocket.StatusUnsupportedData, "invalid request")
			return
		}
		// cancelled when the browser goes away
		ctx = conn.CloseRead(ctx)
		if req.Mode == config.ModeReview || req.Mode == config.ModeGenerate {
			sess.SetDraft(req.Mode, req.Text)
		}

		progress := func(p assistant.Progress) {
			ev := types.WritingEvent{Type: types.EventProgress, Stage: p.Stage, Status: p.Status, Poll: p.Poll}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				logging.AppLogger.Debug("progress write failed", zap.String("session_id", sess.ID), zap.Error(err))
			}
		}

		text, err := ctrl.Submit(ctx, sess, req.Mode, req.Text, progress)
		if err != nil {
			wsjson.Write(ctx, conn, types.WritingEvent{Type: types.EventError, Message: controllers.UserMessage(err)})
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
		if err := wsjson.Write(ctx, conn, types.WritingEvent{Type: types.EventResult, Text: text}); err != nil {
			logging.ErrorLogger.Error("result write failed", zap.String("session_id", sess.ID), zap.Error(err))
			return
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}
}
