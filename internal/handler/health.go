package handler

import (
	"net/http"

	"github.com/sakif/gitbot-link/internal/service"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Linking string `json:"linking"` // "ready" or "misconfigured"
}

// HealthHandler reports liveness plus whether the initiator is configured.
//
// It always answers 200: a misconfigured OAuth app is an operator problem,
// not a reason for the orchestrator to restart the process.
type HealthHandler struct {
	links *service.LinkService
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(links *service.LinkService) *HealthHandler {
	return &HealthHandler{links: links}
}

// HandleHealth serves GET /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Linking: "ready"}
	if err := h.links.Ready(); err != nil {
		resp.Linking = "misconfigured"
	}
	writeJSON(w, http.StatusOK, resp)
}
