// SPDX-License-Identifier: Apache-2.0

// Package health reports whether the data behind the dashboards is usable.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jllopis/gedboard/pkg/errors"
)

// Status represents the health state of a component.
type Status string

const (
	// Healthy indicates the component is fully operational.
	Healthy Status = "HEALTHY"

	// Degraded indicates the component serves requests with stale or partial data.
	Degraded Status = "DEGRADED"

	// Unhealthy indicates the component cannot serve requests.
	Unhealthy Status = "UNHEALTHY"
)

// Result is the outcome of one check.
type Result struct {
	Status    Status    `json:"status"`
	Component string    `json:"component"`
	Message   string    `json:"message,omitempty"`
	LastCheck time.Time `json:"last_check"`
}

// Checker checks the health of a component.
type Checker interface {
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) Result

// Check calls f and stamps LastCheck when unset.
func (f CheckerFunc) Check(ctx context.Context) Result {
	r := f(ctx)
	if r.LastCheck.IsZero() {
		r.LastCheck = time.Now()
	}
	return r
}

// Registry runs named checkers.
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[string]Checker)}
}

// Register adds or replaces the checker of a component.
func (r *Registry) Register(name string, c Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = c
}

// Check runs the checker of one component.
func (r *Registry) Check(ctx context.Context, name string) (Result, error) {
	r.mu.RLock()
	c, ok := r.checkers[name]
	r.mu.RUnlock()
	if !ok {
		return Result{}, errors.Newf(errors.CodeNotFound, "checker not registered: %s", name)
	}
	res := c.Check(ctx)
	res.Component = name
	return res, nil
}

// CheckAll runs every checker, sorted by component name. The overall
// status is the worst individual status, Healthy when none is registered.
func (r *Registry) CheckAll(ctx context.Context) ([]Result, Status) {
	r.mu.RLock()
	names := make([]string, 0, len(r.checkers))
	checkers := make(map[string]Checker, len(r.checkers))
	for name, c := range r.checkers {
		names = append(names, name)
		checkers[name] = c
	}
	r.mu.RUnlock()
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	overall := Healthy
	for _, name := range names {
		res := checkers[name].Check(ctx)
		res.Component = name
		results = append(results, res)
		switch {
		case res.Status == Unhealthy:
			overall = Unhealthy
		case res.Status == Degraded && overall == Healthy:
			overall = Degraded
		}
	}
	return results, overall
}
