// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/jllopis/gedboard/pkg/alert"
	"github.com/jllopis/gedboard/pkg/analysis"
	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/ged"
	"github.com/jllopis/gedboard/pkg/health"
	"github.com/jllopis/gedboard/pkg/report"
)

type option struct {
	Value string
	Label string
}

// formView drives the filter form of a dashboard page.
type formView struct {
	Dashboard  report.Dashboard
	Query      report.Query
	Category   string
	Alert1     string
	Alert2     string
	Projects   []string
	Groups     []string
	Types      []string
	Indices    []string
	Lots       []string
	Categories []option
	Stats      []option
	Periods    []option
	Alerts1    []option
	Alerts2    []option
}

type dashboardPage struct {
	Form   formView
	Report *reportView
	Error  string
	Status int
}

// DefaultDashboard is where the root path redirects.
const DefaultDashboard = "alerts"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboards/"+DefaultDashboard, http.StatusFound)
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	page, status := s.dashboardData(r)
	title := page.Form.Dashboard.Title
	if title == "" {
		title = "Tableau inconnu"
	}
	s.renderPage(w, status, "dashboard", title, page.Form.Dashboard.ID, page)
}

func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	page, status := s.dashboardData(r)
	s.renderPartial(w, status, "report", page)
}

func (s *Server) dashboardData(r *http.Request) (dashboardPage, int) {
	id := r.PathValue("id")
	page := dashboardPage{Status: http.StatusOK}
	page.Form = s.newForm(report.Query{})

	d, err := report.Lookup(id)
	if err != nil {
		return s.failed(r, page, err)
	}
	page.Form.Dashboard = d

	q, err := report.ParseQuery(r.URL.Query())
	if err != nil {
		return s.failed(r, page, err)
	}
	page.Form = s.newForm(q)
	page.Form.Dashboard = d

	rep, err := s.gen.Build(r.Context(), id, q)
	if err != nil {
		return s.failed(r, page, err)
	}
	page.Form.Query = rep.Query
	page.Form.fillOptions(rep.Meta)
	v := newReportView(rep)
	page.Report = &v
	return page, http.StatusOK
}

func (s *Server) failed(r *http.Request, page dashboardPage, err error) (dashboardPage, int) {
	ge := errors.As(err)
	if ge.StatusCode >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "dashboard request failed", "path", r.URL.Path, "error", ge)
	}
	page.Error = ge.Message
	page.Status = ge.StatusCode
	return page, ge.StatusCode
}

func (s *Server) newForm(q report.Query) formView {
	f := formView{
		Query:    q,
		Projects: s.gen.Source().Names(),
		Categories: []option{
			{Value: ged.FieldLot.String(), Label: ged.FieldLot.Header()},
			{Value: ged.FieldDocumentType.String(), Label: ged.FieldDocumentType.Header()},
		},
	}
	if q.Category != 0 {
		f.Category = q.Category.String()
	}
	if q.Alert1 != nil {
		f.Alert1 = q.Alert1.String()
	}
	if q.Alert2 != nil {
		f.Alert2 = q.Alert2.String()
	}
	for _, st := range []analysis.Stat{analysis.StatMean, analysis.StatMax, analysis.StatMedian, analysis.StatMin} {
		f.Stats = append(f.Stats, option{Value: string(st), Label: st.Label()})
	}
	for _, p := range []analysis.Period{analysis.Period6M, analysis.Period12M, analysis.PeriodAll} {
		f.Periods = append(f.Periods, option{Value: string(p), Label: p.Label()})
	}
	for _, l := range []alert.Level{alert.OK, alert.Watch, alert.Critical} {
		f.Alerts1 = append(f.Alerts1, option{Value: l.String(), Label: l.Label(alert.IndexCount)})
		f.Alerts2 = append(f.Alerts2, option{Value: l.String(), Label: l.Label(alert.TopShare)})
	}
	return f
}

func (f *formView) fillOptions(meta map[string]any) {
	get := func(key string) []string {
		v, _ := meta[key].([]string)
		return v
	}
	f.Groups = get("groups")
	f.Types = get("types")
	f.Indices = get("indices")
	f.Lots = get("lots")
	if lot, ok := meta["lot"].(string); ok && f.Query.Lot == "" {
		f.Query.Lot = lot
	}
}

func (s *Server) handleAPIDashboards(w http.ResponseWriter, _ *http.Request) {
	type item struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		PerProject  bool     `json:"per_project"`
		Filters     []string `json:"filters,omitempty"`
	}
	var out []item
	for _, d := range report.Dashboards() {
		out = append(out, item{ID: d.ID, Title: d.Title, Description: d.Description, PerProject: d.PerProject, Filters: d.Filters})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAPIDashboard serves a report as JSON, or as CSV with ?format=csv.
func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := report.ParseQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	rep, err := s.gen.Build(r.Context(), id, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	switch format {
	case report.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.csv"`)
		if err := report.RenderCSV(w, rep); err != nil {
			s.logger.WarnContext(r.Context(), "write csv", "error", err)
		}
	case report.FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := report.RenderText(w, rep); err != nil {
			s.logger.WarnContext(r.Context(), "write text", "error", err)
		}
	default:
		writeJSON(w, http.StatusOK, rep)
	}
}

func (s *Server) handleAPIProjects(w http.ResponseWriter, _ *http.Request) {
	names := s.gen.Source().Names()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": names})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	results, overall := s.health.CheckAll(r.Context())
	status := http.StatusOK
	if overall == health.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"status": overall, "checks": results})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ge := errors.As(err)
	if ge.StatusCode >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "api request failed", "path", r.URL.Path, "error", ge)
	}
	writeJSON(w, ge.StatusCode, map[string]any{"error": ge})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
