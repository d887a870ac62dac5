package api

import (
	"context"
	"net/http"

	"github.com/okian/recap/internal/domain/types"
)

// StaffDependencies covers the staff roster.
type StaffDependencies interface {
	StaffRoster(ctx context.Context) (*types.RosterSection, error)
}

// StaffHandler handles roster requests.
type StaffHandler struct {
	deps StaffDependencies
}

// NewStaffHandler creates a new staff handler.
func NewStaffHandler(deps StaffDependencies) *StaffHandler {
	return &StaffHandler{deps: deps}
}

// HandleRoster handles GET /report/staff requests.
func (h *StaffHandler) HandleRoster(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_staff"
	section, err := h.deps.StaffRoster(r.Context())
	if err != nil {
		writeUpstreamError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, section)
}
