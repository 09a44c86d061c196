// SPDX-License-Identifier: Apache-2.0

package alert

import "github.com/jllopis/gedboard/pkg/config"

// Thresholds holds the boundaries of both index alerts.
type Thresholds struct {
	WatchMin      int     // distinct indices from which a group is watched
	CriticalAbove int     // distinct indices above which a group is critical
	ShareOKMin    float64 // top share (percent) from which a group is OK
	TopN          int     // number of leading indices summed into the top share
}

// DefaultThresholds returns the thresholds used when nothing is configured.
func DefaultThresholds() Thresholds {
	return Thresholds{WatchMin: 3, CriticalAbove: 6, ShareOKMin: 80, TopN: 2}
}

// FromConfig builds thresholds from the alerts config section.
func FromConfig(cfg config.AlertsConfig) Thresholds {
	return Thresholds{
		WatchMin:      cfg.WatchMin,
		CriticalAbove: cfg.CriticalAbove,
		ShareOKMin:    cfg.ShareOKMin,
		TopN:          cfg.TopN,
	}
}

// ClassifyIndexCount grades a group by its number of distinct indices.
func (t Thresholds) ClassifyIndexCount(n int) Level {
	switch {
	case n > t.CriticalAbove:
		return Critical
	case n >= t.WatchMin:
		return Watch
	default:
		return OK
	}
}

// ClassifyTopShare grades a group by the rounded share of its leading indices.
func (t Thresholds) ClassifyTopShare(pct float64) Level {
	if pct >= t.ShareOKMin {
		return OK
	}
	return Watch
}
