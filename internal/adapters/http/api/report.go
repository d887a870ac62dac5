package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/recap/internal/adapters/dataset"
	"github.com/okian/recap/internal/domain/series"
	"github.com/okian/recap/internal/domain/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles the full report, member series and session requests.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleReport handles GET /report requests. Section failures are reported
// inside the body; the response itself is always 200.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report"
	report, err := h.deps.Report(r.Context())
	if err != nil {
		writeUpstreamError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleMembers handles GET /report/members?policy=&start=&end= requests.
func (h *ReportHandler) HandleMembers(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_members"
	opts, err := seriesQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	s, err := h.deps.MemberSeries(r.Context(), opts...)
	if err != nil {
		writeUpstreamError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewMemberSection(s))
}

// HandleMembersExport handles GET /report/members.xlsx requests.
func (h *ReportHandler) HandleMembersExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_members"
	opts, err := seriesQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	// buffer so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.deps.ExportMembers(r.Context(), &buf, opts...); err != nil {
		writeUpstreamError(w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="members.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleReset handles POST /report/reset requests.
func (h *ReportHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset"
	session, err := h.deps.Reset(r.Context())
	if err != nil {
		writeUpstreamError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "session": session})
}

// seriesQuery turns member-series query parameters into reconstruction
// overrides.
func seriesQuery(q url.Values) ([]series.Option, error) {
	var opts []series.Option

	if v := q.Get("policy"); v != "" {
		p, err := series.ParsePolicy(v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, series.WithPolicy(p))
	}

	start, err := queryDate(q, "start")
	if err != nil {
		return nil, err
	}
	end, err := queryDate(q, "end")
	if err != nil {
		return nil, err
	}
	if !start.IsZero() || !end.IsZero() {
		opts = append(opts, series.WithRange(start, end))
	}

	cutoff, err := queryDate(q, "cutoff")
	if err != nil {
		return nil, err
	}
	if !cutoff.IsZero() {
		opts = append(opts, series.WithCutoff(cutoff))
	}

	if v := q.Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid window %q", v)
		}
		opts = append(opts, series.WithWindow(n))
	}

	if v := q.Get("increment"); v != "" {
		inc, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid increment %q", v)
		}
		opts = append(opts, series.WithDailyIncrement(inc))
	}

	if v := q.Get("round"); v != "" {
		round, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid round %q", v)
		}
		opts = append(opts, series.WithRounding(round))
	}

	return opts, nil
}

func queryDate(q url.Values, key string) (time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	d, err := dataset.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
