// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/ged"
	"github.com/jllopis/gedboard/pkg/health"
	"github.com/jllopis/gedboard/pkg/report"
)

type memSource map[string]*ged.Dataset

func (m memSource) Names() []string {
	var names []string
	for _, n := range []string{"P17", "EMPTY"} {
		if _, ok := m[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

func (m memSource) Dataset(_ context.Context, name string) (*ged.Dataset, error) {
	ds, ok := m[name]
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "project %q not found", name)
	}
	return ds, nil
}

func day(m time.Month, d int) time.Time {
	return time.Date(2023, m, d, 0, 0, 0, 0, time.UTC)
}

func testSource() memSource {
	recs := []ged.Record{
		{DepositDate: day(1, 2), DocumentType: "PLAN", Issuer: "ARCHI", Lot: "GO", Index: "A", Label: "Plan RDC", AddedBy: "Dupont", Project: "P17"},
		{DepositDate: day(1, 12), DocumentType: "PLAN", Issuer: "ARCHI", Lot: "GO", Index: "B", Label: "Plan RDC", AddedBy: "Dupont", Project: "P17"},
		{DepositDate: day(2, 11), DocumentType: "PLAN", Issuer: "ARCHI", Lot: "GO", Index: "C", Label: "Plan RDC", AddedBy: "Durand", Project: "P17"},
		{DepositDate: day(1, 5), DocumentType: "NOTE", Issuer: "BET", Lot: "CVC", Index: "A", Label: "Note calcul", AddedBy: "Martin", Project: "P17"},
		{DepositDate: day(3, 6), DocumentType: "NOTE", Issuer: "BET", Lot: "CVC", Index: "B", Label: "Note calcul", AddedBy: "Martin", Project: "P17"},
		{DepositDate: day(1, 20), DocumentType: "PLAN", Issuer: "ARCHI", Lot: "CVC", Index: "A", Label: "Plan R+1", AddedBy: "Dupont", Project: "P17"},
	}
	return memSource{
		"P17":   {Name: "P17", Records: recs},
		"EMPTY": {Name: "EMPTY"},
	}
}

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	s, err := New(report.NewGenerator(testSource()), opts...)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestIndexRedirects(t *testing.T) {
	ts := newTestServer(t)
	client := ts.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboards/alerts", resp.Header.Get("Location"))

	resp, _ = get(t, ts, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDashboardPage(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts, "/dashboards/alerts?project=P17")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, `hx-get="/ui/dashboards/alerts"`)
	assert.Contains(t, body, `href="/dashboards/mass"`)
	assert.Contains(t, body, `<option value="P17" selected>P17</option>`)
	assert.Contains(t, body, "<td>CVC</td>")
	assert.Contains(t, body, cssColors["yellow"], "watch cells are highlighted")
	assert.Contains(t, body, `<option value="GO">GO</option>`, "groups feed the filter form")
}

func TestDashboardPartial(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts, "/ui/dashboards/calendar?project=P17&category=type")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, "Calendrier par TYPE DE DOCUMENT")
	assert.Contains(t, body, "gantt-bar")
}

func TestDashboardErrors(t *testing.T) {
	ts := newTestServer(t)
	for path, status := range map[string]int{
		"/dashboards/nope":                    http.StatusNotFound,
		"/ui/dashboards/alerts?alert1=maybe":  http.StatusBadRequest,
		"/ui/dashboards/flows?project=EMPTY":  http.StatusUnprocessableEntity,
		"/ui/dashboards/lot-calendar?lot=ZZZ": http.StatusNotFound,
		"/dashboards/index-stats?project=P99": http.StatusNotFound,
	} {
		resp, body := get(t, ts, path)
		assert.Equal(t, status, resp.StatusCode, path)
		assert.Contains(t, body, `class="error"`, path)
	}
}

func TestAPIDashboard(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts, "/api/dashboards/alerts?project=P17")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(body), &rep))
	assert.Equal(t, "alerts", rep.Dashboard)
	assert.Equal(t, "P17", rep.Project)
	assert.NotEmpty(t, rep.Tables)

	resp, body = get(t, ts, "/api/dashboards/actors?format=csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "Documents par émetteur et type\n"), body)

	resp, body = get(t, ts, "/api/dashboards/flows?project=EMPTY")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	assert.Equal(t, "EMPTY_DATASET", payload.Error.Code)

	resp, _ = get(t, ts, "/api/dashboards/flows?format=xml")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIListings(t *testing.T) {
	ts := newTestServer(t)
	_, body := get(t, ts, "/api/projects")
	assert.JSONEq(t, `{"projects": ["P17", "EMPTY"]}`, body)

	_, body = get(t, ts, "/api/dashboards")
	var list []struct {
		ID         string `json:"id"`
		PerProject bool   `json:"per_project"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	assert.Len(t, list, len(report.Dashboards()))
	assert.Equal(t, "alerts", list[0].ID)
}

func TestHealthz(t *testing.T) {
	reg := health.NewRegistry()
	reg.Register("catalog", health.CheckerFunc(func(context.Context) health.Result {
		return health.Result{Status: health.Degraded, Message: "no project"}
	}))
	ts := newTestServer(t, WithHealth(reg))
	resp, body := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status": "DEGRADED"`)

	reg.Register("data", health.CheckerFunc(func(context.Context) health.Result {
		return health.Result{Status: health.Unhealthy}
	}))
	resp, _ = get(t, ts, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetricsAndStatic(t *testing.T) {
	ts := newTestServer(t)
	get(t, ts, "/dashboards/nope")

	resp, body := get(t, ts, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `gedboard_http_requests_total{code="404",method="GET",route="dashboard_page"} 1`)

	resp, body = get(t, ts, "/static/style.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, ".gantt-bar")
}

func TestServeShutsDown(t *testing.T) {
	s, err := New(report.NewGenerator(testSource()), WithAddr("127.0.0.1:0"))
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
