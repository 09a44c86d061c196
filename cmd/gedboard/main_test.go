// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = `Date dépôt GED;TYPE DE DOCUMENT;PROJET;EMET;LOT;INDICE;Libellé du document;Ajouté par
03/01/2023;PLAN;P17;ARCHI;GO;A;Plan RDC;Dupont
17/01/2023;PLAN;P17;ARCHI;GO;B;Plan RDC;Dupont
not a date;NOTE;P17;BET;CVC;A;Note calcul;Martin
05/02/2023;NOTE;P17;BET;CVC;B;Note calcul;Martin
`

// dataDir writes the export under dir/P17.csv in UTF-8.
func dataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "P17.csv"), []byte(export), 0o644))
	return dir
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	return runCLIContext(context.Background(), args...)
}

func runCLIContext(ctx context.Context, args ...string) result {
	var stdout, stderr bytes.Buffer
	code := run(ctx, args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// utf8Args points the CLI at dir and reads the exports as UTF-8.
func utf8Args(dir string, args ...string) []string {
	return append([]string{"--data-dir", dir, "--set", "csv.encoding=utf-8", "--log-level", "error"}, args...)
}

func TestVersion(t *testing.T) {
	r := runCLI(t, "version")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "gedboard version dev")
}

func TestVersion_IgnoresBrokenConfig(t *testing.T) {
	r := runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	assert.Equal(t, 0, r.code, r.stderr)
}

func TestConfigError(t *testing.T) {
	r := runCLI(t, "--set", "csv.separator=;;", "dashboards")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Error [Invalid Input]: configuration error")
	assert.Contains(t, r.stderr, "csv.separator must be a single character")
}

func TestDashboards(t *testing.T) {
	r := runCLI(t, "dashboards")
	require.Equal(t, 0, r.code, r.stderr)
	for _, id := range []string{"alerts", "index-stats", "durations", "evolution", "flows", "distribution", "actors", "mass", "calendar", "lot-calendar", "sequence"} {
		assert.Contains(t, r.stdout, id)
	}

	r = runCLI(t, "--json", "dashboards")
	require.Equal(t, 0, r.code, r.stderr)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &listed))
	assert.Len(t, listed, 11)
	assert.Equal(t, "alerts", listed[0]["id"])
}

func TestProjects(t *testing.T) {
	dir := dataDir(t)

	r := runCLI(t, utf8Args(dir, "projects")...)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "PROJECT")
	assert.Contains(t, r.stdout, "P17")
	assert.Contains(t, r.stdout, "2023-01-03")
	assert.Contains(t, r.stdout, "2023-02-05")

	r = runCLI(t, utf8Args(dir, "--json", "projects")...)
	require.Equal(t, 0, r.code, r.stderr)
	var infos []projectInfo
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, projectInfo{
		Name:    "P17",
		Path:    filepath.Join(dir, "P17.csv"),
		Records: 4,
		Skipped: 1,
		First:   "2023-01-03",
		Last:    "2023-02-05",
	}, infos[0])
}

func TestProjects_MissingDataDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	r := runCLI(t, utf8Args(missing, "projects")...)
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Not Found")
	assert.Contains(t, r.stderr, "--data-dir")
}

func TestReport_JSON(t *testing.T) {
	dir := dataDir(t)
	r := runCLI(t, utf8Args(dir, "report", "alerts", "--project", "P17", "--category", "type", "--format", "json")...)
	require.Equal(t, 0, r.code, r.stderr)

	var rep struct {
		Dashboard string `json:"dashboard"`
		Project   string `json:"project"`
		Query     struct {
			Category string `json:"category"`
		} `json:"query"`
		Tables []struct {
			Title string     `json:"title"`
			Rows  [][]string `json:"rows"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &rep))
	assert.Equal(t, "alerts", rep.Dashboard)
	assert.Equal(t, "P17", rep.Project)
	assert.Equal(t, "type", rep.Query.Category)
	require.NotEmpty(t, rep.Tables)
	assert.Equal(t, "Alertes par TYPE DE DOCUMENT", rep.Tables[0].Title)
}

func TestReport_Text(t *testing.T) {
	dir := dataDir(t)
	r := runCLI(t, utf8Args(dir, "report", "calendar")...)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Calendrier")
	assert.Contains(t, r.stdout, "P17")
}

func TestReport_OutFile(t *testing.T) {
	dir := dataDir(t)
	out := filepath.Join(t.TempDir(), "stats.csv")
	r := runCLI(t, utf8Args(dir, "report", "index-stats", "--stat", "max", "-f", "csv", "-o", out)...)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Empty(t, r.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), ";")
	assert.Contains(t, string(data), "PLAN")
}

func TestReport_Errors(t *testing.T) {
	dir := dataDir(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown dashboard", []string{"report", "nope"}, "Error [Not Found]: dashboard 'nope' not found"},
		{"unknown project", []string{"report", "alerts", "--project", "P99"}, "Error [Not Found]"},
		{"bad category", []string{"report", "alerts", "--category", "bogus"}, "Error [Invalid Input]"},
		{"bad period", []string{"report", "sequence", "--period", "3y"}, "Error [Invalid Input]"},
		{"bad format", []string{"report", "alerts", "--format", "xml"}, "Error [Invalid Input]"},
		{"missing dashboard", []string{"report"}, "Error: accepts 1 arg(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runCLI(t, utf8Args(dir, tt.args...)...)
			assert.Equal(t, 1, r.code)
			assert.Contains(t, r.stderr, tt.want)
		})
	}
}

func TestReport_JSONErrors(t *testing.T) {
	dir := dataDir(t)
	r := runCLI(t, utf8Args(dir, "--json", "report", "alerts", "--project", "P99")...)
	assert.Equal(t, 1, r.code)

	var payload struct {
		Error struct {
			Code string `json:"code"`
			Hint string `json:"hint"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(r.stderr)), &payload), r.stderr)
	assert.Equal(t, "NOT_FOUND", payload.Error.Code)
	assert.Contains(t, payload.Error.Hint, "gedboard projects")
}

func TestQueryValues(t *testing.T) {
	a := &app{}
	cmd := a.reportCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--project", "P17",
		"--types", "PLAN,NOTE",
		"--types", "CR",
		"--period", "12m",
	}))

	v := queryValues(cmd)
	assert.Equal(t, "P17", v.Get("project"))
	assert.Equal(t, "12m", v.Get("period"))
	assert.Equal(t, []string{"PLAN", "NOTE", "CR"}, v["types"])
	assert.NotContains(t, v, "category", "unset flags stay out of the query")
	assert.NotContains(t, v, "indices")
}

func TestValidate(t *testing.T) {
	dir := dataDir(t)
	good := filepath.Join(dir, "P17.csv")
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Date dépôt GED;TYPE DE DOCUMENT;PROJET\n03/01/2023;PLAN;P17\n"), 0o644))

	r := runCLI(t, utf8Args(dir, "validate", good)...)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "⚠ "+good+": 4 records, 2023-01-03 to 2023-02-05, 1 without a valid date (lines 4)")
	assert.Contains(t, r.stdout, "⚠ Validation completed with warnings")

	r = runCLI(t, utf8Args(dir, "validate", good, bad)...)
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stdout, "✗ "+bad)
	assert.Contains(t, r.stdout, "missing columns: LOT, INDICE")
	assert.Contains(t, r.stdout, "✗ Validation failed")
	assert.Empty(t, r.stderr, "the report already explains the failure")

	r = runCLI(t, utf8Args(dir, "--json", "validate", bad, filepath.Join(dir, "absent.csv"))...)
	assert.Equal(t, 1, r.code)
	var res validateResult
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &res))
	assert.Equal(t, "error", res.Overall)
	require.Len(t, res.Files, 2)
	assert.Equal(t, []string{"LOT", "INDICE"}, res.Files[0].Missing)
	assert.Equal(t, "error", res.Files[1].Status)
}

func TestServe_StopsOnCancel(t *testing.T) {
	dir := dataDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan result, 1)
	go func() {
		done <- runCLIContext(ctx, utf8Args(dir, "serve", "--addr", "127.0.0.1:0", "--watch")...)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case r := <-done:
		assert.Equal(t, 0, r.code, r.stderr)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServe_ManifestOnlyWatch(t *testing.T) {
	exports := dataDir(t)
	manifestDir := t.TempDir()
	manifest := filepath.Join(manifestDir, "projects.yaml")
	body := "projects:\n  - name: P17\n    path: " + filepath.Join(exports, "P17.csv") + "\n"
	require.NoError(t, os.WriteFile(manifest, []byte(body), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan result, 1)
	go func() {
		done <- runCLIContext(ctx,
			"--set", `data.dir=""`,
			"--set", "data.manifest="+manifest,
			"--set", "csv.encoding=utf-8",
			"--log-level", "error",
			"serve", "--addr", "127.0.0.1:0", "--watch")
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case r := <-done:
		assert.Equal(t, 0, r.code, r.stderr)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}
