package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ActivityHandler handles activity leaderboard requests.
type ActivityHandler struct {
	deps ActivityDependencies
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(deps ActivityDependencies) *ActivityHandler {
	return &ActivityHandler{deps: deps}
}

// HandleLeaders handles GET /report/activity requests.
func (h *ActivityHandler) HandleLeaders(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_activity"
	section, err := h.deps.ActivityLeaders(r.Context())
	if err != nil {
		writeUpstreamError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, section)
}

// HandleLeader handles GET /report/activity/{category} requests.
func (h *ActivityHandler) HandleLeader(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_activity_leader"
	category := strings.TrimSpace(chi.URLParam(r, "category"))
	if category == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	leader, err := h.deps.ActivityLeader(r.Context(), category)
	if err != nil {
		writeUpstreamError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, leader)
}
