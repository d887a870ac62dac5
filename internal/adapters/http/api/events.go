package api

import (
	"context"
	"net/http"

	"github.com/okian/recap/internal/domain/types"
)

// EventsDependencies covers the community event list.
type EventsDependencies interface {
	Events(ctx context.Context) (*types.EventsSection, error)
}

// EventsHandler handles event list requests.
type EventsHandler struct {
	deps EventsDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventsDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleEvents handles GET /report/events requests.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_events"
	section, err := h.deps.Events(r.Context())
	if err != nil {
		writeUpstreamError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, section)
}
