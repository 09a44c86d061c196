// SPDX-License-Identifier: Apache-2.0

// Package dashboard serves the dashboards as HTML pages, htmx partials and
// a JSON API.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/health"
	"github.com/jllopis/gedboard/pkg/report"
	"github.com/jllopis/gedboard/pkg/telemetry"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8088"

const shutdownTimeout = 5 * time.Second

//go:embed web/templates/*.html web/static/*
var webFS embed.FS

var funcs = template.FuncMap{
	"lower": strings.ToLower,
	"join":  strings.Join,
	"has": func(values []string, v string) bool {
		for _, x := range values {
			if x == v {
				return true
			}
		}
		return false
	},
}

// Server serves the dashboards of a generator.
type Server struct {
	gen      *report.Generator
	health   *health.Registry
	logger   *slog.Logger
	metrics  *httpMetrics
	addr     string
	pages    map[string]*template.Template
	partials *template.Template
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if strings.TrimSpace(addr) != "" {
			s.addr = addr
		}
	}
}

// WithHealth sets the registry behind /healthz.
func WithHealth(reg *health.Registry) Option {
	return func(s *Server) { s.health = reg }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New parses the embedded templates and returns a server.
func New(gen *report.Generator, opts ...Option) (*Server, error) {
	s := &Server{
		gen:     gen,
		health:  health.NewRegistry(),
		logger:  slog.Default(),
		metrics: newHTTPMetrics(),
		addr:    DefaultAddr,
		pages:   make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = telemetry.Component(s.logger, "dashboard")

	var err error
	s.partials, err = template.New("partials").Funcs(funcs).ParseFS(webFS, "web/templates/report.html")
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "parse partial templates", err)
	}
	for _, page := range []string{"dashboard"} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(webFS,
			"web/templates/layout.html", "web/templates/report.html", "web/templates/"+page+".html")
		if err != nil {
			return nil, errors.New(errors.CodeInternal, "parse page templates", err).WithContext("page", page)
		}
		s.pages[page] = tmpl
	}
	return s, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the instrumented route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	staticFS, _ := fs.Sub(webFS, "web/static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	route := func(pattern, name string, h http.HandlerFunc) {
		mux.Handle(pattern, s.metrics.instrument(name, h))
	}
	route("GET /{$}", "index", s.handleIndex)
	route("GET /dashboards/{id}", "dashboard_page", s.handleDashboardPage)
	route("GET /ui/dashboards/{id}", "dashboard_partial", s.handleDashboardPartial)
	route("GET /api/dashboards", "api_dashboards", s.handleAPIDashboards)
	route("GET /api/dashboards/{id}", "api_dashboard", s.handleAPIDashboard)
	route("GET /api/projects", "api_projects", s.handleAPIProjects)
	route("GET /healthz", "healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.handler())

	return otelhttp.NewHandler(mux, "gedboard.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.New(errors.CodeInternal, "listen", err).WithContext("addr", s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	displayAddr := ln.Addr().String()
	if strings.HasPrefix(s.addr, ":") {
		displayAddr = "localhost" + s.addr
	}
	s.logger.Info("dashboards listening", "url", "http://"+displayAddr)

	err := httpServer.Serve(ln)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	<-done
	return nil
}

type pageData struct {
	Title      string
	Active     string
	Dashboards []report.Dashboard
	Data       any
}

// renderPage executes into a buffer so that a template error still yields
// a clean 500.
func (s *Server) renderPage(w http.ResponseWriter, status int, page, title, active string, data any) {
	tmpl, ok := s.pages[page]
	if !ok {
		http.Error(w, "page template not found", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	payload := pageData{Title: title, Active: active, Dashboards: report.Dashboards(), Data: data}
	if err := tmpl.ExecuteTemplate(&buf, "layout", payload); err != nil {
		s.logger.Error("render page", "page", page, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderPartial(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.partials.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render partial", "partial", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
