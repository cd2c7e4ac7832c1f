package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"ganadabeot/ganadabeot/controllers"
	"ganadabeot/ganadabeot/middlewares"
	"ganadabeot/ganadabeot/services/assistant"
	httputils "ganadabeot/ganadabeot/utils/http"
	"ganadabeot/ganadabeot/utils/logging"
	"ganadabeot/ganadabeot/utils/types"

	"go.uber.org/zap"
)

// WritingHandler runs one review or generate action. Form posts are
// answered with a redirect back to the tab (result or message kept on the
// session); JSON posts get the reply as JSON.
func WritingHandler(ctrl *controllers.WritingController, mode string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middlewares.SessionFromContext(r.Context())

		if httputils.IsJSONRequest(r) {
			var req types.WritingRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httputils.WriteError(w, http.StatusBadRequest, "invalid json")
				return
			}
			text, err := ctrl.Submit(r.Context(), sess, mode, req.Text, nil)
			if err != nil {
				httputils.WriteError(w, statusFor(err), controllers.UserMessage(err))
				return
			}
			httputils.WriteJSON(w, http.StatusOK, types.WritingResponse{Mode: mode, Text: text})
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		text := r.PostForm.Get("text")
		sess.SetDraft(mode, text)
		if _, err := ctrl.Submit(r.Context(), sess, mode, text, nil); err != nil {
			if !errors.Is(err, controllers.ErrEmptyInput) {
				logging.ErrorLogger.Error("writing request failed",
					zap.String("session_id", sess.ID),
					zap.String("mode", mode),
					zap.Error(err))
			}
			sess.SetFlash(controllers.UserMessage(err))
		}
		http.Redirect(w, r, "/?tab="+mode, http.StatusSeeOther)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, controllers.ErrEmptyInput), errors.Is(err, controllers.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, controllers.ErrSessionBusy):
		return http.StatusConflict
	case errors.Is(err, assistant.ErrRunTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
