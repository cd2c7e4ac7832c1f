package controllers

import (
	"net/http"

	httputils "ganadabeot/ganadabeot/utils/http"
)

// SessionCounter reports how many sessions are held.
type SessionCounter interface {
	Len() int
}

type HealthController struct {
	sessions SessionCounter
}

func NewHealthController(sessions SessionCounter) *HealthController {
	return &HealthController{sessions: sessions}
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (h *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.sessions != nil {
		resp.Sessions = h.sessions.Len()
	}
	httputils.WriteJSON(w, http.StatusOK, resp)
}
