// ganadabeot/utils/http/httputils.go
package httputils

import (
	"encoding/json"
	"mime"
	"net/http"

	"ganadabeot/ganadabeot/utils/logging"
	"ganadabeot/ganadabeot/utils/types"

	"go.uber.org/zap"
)

// WriteJSON encodes body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.ErrorLogger.Error("json encode failed", zap.Error(err))
	}
}

// WriteError sends {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, types.ErrorResponse{Error: msg})
}

// IsJSONRequest reports whether the request body is JSON.
func IsJSONRequest(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
