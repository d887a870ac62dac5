// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/recap/internal/app"
	"github.com/okian/recap/internal/domain/aggregate"
	"github.com/okian/recap/internal/domain/series"
	"github.com/okian/recap/internal/domain/types"
	"github.com/okian/recap/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ReportDependencies
	ActivityDependencies
	MatchDependencies
	StaffDependencies
	EventsDependencies
}

// ReportDependencies covers the whole report, the member series and the session.
type ReportDependencies interface {
	Report(ctx context.Context) (*types.Report, error)
	MemberSeries(ctx context.Context, overrides ...series.Option) (series.Series, error)
	ExportMembers(ctx context.Context, w io.Writer, overrides ...series.Option) error
	Reset(ctx context.Context) (string, error)
}

// ActivityDependencies covers activity leaderboards.
type ActivityDependencies interface {
	ActivityLeaders(ctx context.Context) (*types.ActivitySection, error)
	ActivityLeader(ctx context.Context, category string) (aggregate.Leader, error)
}

// Server wires HTTP routes for the report API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	reportHandler   *ReportHandler
	activityHandler *ActivityHandler
	matchHandler    *MatchHandler
	staffHandler    *StaffHandler
	eventsHandler   *EventsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		reportHandler:   NewReportHandler(deps),
		activityHandler: NewActivityHandler(deps),
		matchHandler:    NewMatchHandler(deps),
		staffHandler:    NewStaffHandler(deps),
		eventsHandler:   NewEventsHandler(deps),
	}
}

// NewRouter returns a chi router with the standard middleware stack.
func NewRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/report", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.reportHandler.HandleReport, "report"))
		r.Post("/reset", MetricsMiddleware(s.reportHandler.HandleReset, "report_reset"))
		r.Get("/members", MetricsMiddleware(s.reportHandler.HandleMembers, "members"))
		r.Get("/members.xlsx", MetricsMiddleware(s.reportHandler.HandleMembersExport, "members_export"))
		r.Get("/activity", MetricsMiddleware(s.activityHandler.HandleLeaders, "activity"))
		r.Get("/activity/{category}", MetricsMiddleware(s.activityHandler.HandleLeader, "activity_category"))
		r.Get("/matches", MetricsMiddleware(s.matchHandler.HandleWinRates, "matches"))
		r.Get("/matches/by-game", MetricsMiddleware(s.matchHandler.HandleWinRatesByGame, "matches_by_game"))
		r.Get("/staff", MetricsMiddleware(s.staffHandler.HandleRoster, "staff"))
		r.Get("/events", MetricsMiddleware(s.eventsHandler.HandleEvents, "events"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeUpstreamError translates service errors to a status and code.
func writeUpstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBadRequest) {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	code := service.Code(err)
	writeError(w, statusFor(code), code, err)
}

func statusFor(code string) int {
	switch code {
	case service.CodeDatasetNotFound, service.CodeNoRecords:
		return http.StatusNotFound
	case service.CodeDirectoryMissing:
		return http.StatusServiceUnavailable
	case service.CodeMalformedDataset, service.CodeEmptyObservations, service.CodeInvalidSeries:
		return http.StatusUnprocessableEntity
	case service.CodeCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
