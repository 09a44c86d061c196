// SPDX-License-Identifier: Apache-2.0

package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// Catalog is the part of *ged.Catalog the checker reads.
type Catalog interface {
	Dir() string
	Len() int
}

// CatalogChecker is unhealthy when the data directory is gone and degraded
// when it holds no project.
func CatalogChecker(c Catalog) Checker {
	return CheckerFunc(func(ctx context.Context) Result {
		if _, err := os.Stat(c.Dir()); err != nil {
			return Result{Status: Unhealthy, Message: fmt.Sprintf("data directory: %v", err)}
		}
		n := c.Len()
		if n == 0 {
			return Result{Status: Degraded, Message: "no project found in " + c.Dir()}
		}
		return Result{Status: Healthy, Message: fmt.Sprintf("%d projects", n)}
	})
}

// ReloadChecker tracks the outcome of the last catalog reload.
type ReloadChecker struct {
	mu      sync.RWMutex
	lastErr error
	at      time.Time
}

// Observe records a reload result. It matches watch.OnReload.
func (r *ReloadChecker) Observe(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastErr = err
	r.at = time.Now()
}

// Check is degraded after a failed reload, the previous catalog being
// still served.
func (r *ReloadChecker) Check(context.Context) Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch {
	case r.at.IsZero():
		return Result{Status: Healthy, Message: "no reload yet", LastCheck: time.Now()}
	case r.lastErr != nil:
		return Result{Status: Degraded, Message: "last reload failed: " + r.lastErr.Error(), LastCheck: r.at}
	}
	return Result{Status: Healthy, Message: "reloaded " + r.at.Format(time.RFC3339), LastCheck: r.at}
}
