package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/couchcryptid/flood-alert-dashboard/internal/dashboard"
	"github.com/couchcryptid/flood-alert-dashboard/internal/dataset"
	"github.com/couchcryptid/flood-alert-dashboard/internal/domain"
)

// Page names used as the "page" metric label.
const (
	pageDataset      = "dataset"
	pageOptions      = "options"
	pageIntroduction = "introduction"
	pageAlerts       = "alerts"
	pageGeneralMap   = "general_map"
	pageTerritoryMap = "territory_map"
)

type datasetResponse struct {
	Meta dataset.Meta `json:"meta"`
	Rows []domain.Row `json:"rows"`
}

func (s *Server) handleDataset(w http.ResponseWriter, _ *http.Request) {
	if !s.ensureData(w, pageDataset) {
		return
	}
	s.ok(w, pageDataset, datasetResponse{Meta: s.data.Meta(), Rows: s.data.Rows()})
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	if !s.ensureData(w, pageOptions) {
		return
	}
	s.ok(w, pageOptions, dashboard.SelectorOptions(s.data))
}

func (s *Server) handleIntroduction(w http.ResponseWriter, _ *http.Request) {
	if !s.ensureData(w, pageIntroduction) {
		return
	}
	s.ok(w, pageIntroduction, dashboard.IntroductionPage(s.data))
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if !s.ensureData(w, pageAlerts) {
		return
	}
	q := r.URL.Query()

	year, err := intParam(q.Get("year"), "year", dashboard.FirstYear)
	if err != nil {
		s.badRequest(w, pageAlerts, err)
		return
	}

	page, err := dashboard.AlertsPage(s.data, dashboard.AlertsQuery{
		Basin:     stringParam(q.Get("basin"), domain.Basins()[0].Name),
		Year:      year,
		Territory: stringParam(q.Get("territory"), domain.Territories()[0].Name),
	})
	if err != nil {
		s.badRequest(w, pageAlerts, err)
		return
	}
	s.ok(w, pageAlerts, page)
}

func (s *Server) handleGeneralMap(w http.ResponseWriter, r *http.Request) {
	if !s.ensureData(w, pageGeneralMap) {
		return
	}
	q := r.URL.Query()

	year, err := intParam(q.Get("year"), "year", dashboard.FirstYear)
	if err != nil {
		s.badRequest(w, pageGeneralMap, err)
		return
	}
	defaultLevel := 0
	if levels := dashboard.SelectorOptions(s.data).Levels; len(levels) > 0 {
		defaultLevel = levels[0]
	}
	level, err := intParam(q.Get("level"), "level", defaultLevel)
	if err != nil {
		s.badRequest(w, pageGeneralMap, err)
		return
	}

	s.ok(w, pageGeneralMap, dashboard.GeneralMap(s.data, year, level))
}

func (s *Server) handleTerritoryMap(w http.ResponseWriter, r *http.Request) {
	if !s.ensureData(w, pageTerritoryMap) {
		return
	}
	q := r.URL.Query()

	year, err := intParam(q.Get("year"), "year", dashboard.FirstYear)
	if err != nil {
		s.badRequest(w, pageTerritoryMap, err)
		return
	}

	m, err := dashboard.TerritoryMap(s.data, year, stringParam(q.Get("territory"), domain.Territories()[0].Name))
	if err != nil {
		s.badRequest(w, pageTerritoryMap, err)
		return
	}
	s.ok(w, pageTerritoryMap, m)
}

// ensureData refuses to answer when no dataset is held: pages must never
// render from partial or missing data.
func (s *Server) ensureData(w http.ResponseWriter, page string) bool {
	if s.data != nil && s.data.Len() > 0 {
		return true
	}
	s.metrics.PageRequests.WithLabelValues(page, "unavailable").Inc()
	writeError(w, http.StatusServiceUnavailable, errNoDataset)
	return false
}

func (s *Server) ok(w http.ResponseWriter, page string, v any) {
	s.metrics.PageRequests.WithLabelValues(page, "ok").Inc()
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) badRequest(w http.ResponseWriter, page string, err error) {
	s.metrics.PageRequests.WithLabelValues(page, "bad_request").Inc()
	s.logger.Debug("rejected page query", "page", page, "error", err)
	writeError(w, http.StatusBadRequest, err)
}

func intParam(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

func stringParam(raw, def string) string {
	if raw == "" {
		return def
	}
	return raw
}
