package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/recap/internal/domain/types"
)

// MatchDependencies covers scrimmage win rates.
type MatchDependencies interface {
	WinRates(ctx context.Context, game string) (*types.MatchSection, error)
	WinRatesByGame(ctx context.Context) ([]*types.MatchSection, error)
}

// MatchHandler handles win-rate requests.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

// HandleWinRates handles GET /report/matches?game=&labels=a,b requests.
// Listed labels that never won are included at 0%.
func (h *MatchHandler) HandleWinRates(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_win_rates"
	q := r.URL.Query()
	section, err := h.deps.WinRates(r.Context(), strings.TrimSpace(q.Get("game")))
	if err != nil {
		writeUpstreamError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, withLabels(section, splitList(q.Get("labels"))))
}

// HandleWinRatesByGame handles GET /report/matches/by-game requests.
func (h *MatchHandler) HandleWinRatesByGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_win_rates_by_game"
	sections, err := h.deps.WinRatesByGame(r.Context())
	if err != nil {
		writeUpstreamError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func withLabels(section *types.MatchSection, labels []string) *types.MatchSection {
	if len(labels) == 0 {
		return section
	}
	seen := make(map[string]bool, len(section.Rates))
	for _, rate := range section.Rates {
		seen[rate.Label] = true
	}
	out := *section
	out.Rates = append([]types.WinRate(nil), section.Rates...)
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out.Rates = append(out.Rates, types.WinRate{Label: l})
		}
	}
	return &out
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
