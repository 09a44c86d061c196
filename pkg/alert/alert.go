// SPDX-License-Identifier: Apache-2.0

// Package alert classifies revision metrics into threshold alert levels.
package alert

import (
	"fmt"
	"strings"

	"github.com/jllopis/gedboard/pkg/errors"
)

// Level is an alert level. Levels are ordered: OK < WATCH < CRITICAL.
type Level int

const (
	OK Level = iota
	Watch
	Critical
)

// Kind selects which of the two index alerts a label or colour belongs to.
type Kind int

const (
	// IndexCount is the alert on the number of distinct indices.
	IndexCount Kind = iota + 1
	// TopShare is the alert on the share held by the leading indices.
	TopShare
)

// String returns the level code used in filters and JSON.
func (l Level) String() string {
	switch l {
	case OK:
		return "OK"
	case Watch:
		return "WATCH"
	case Critical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Label returns the message displayed for the level.
func (l Level) Label(kind Kind) string {
	switch l {
	case OK:
		if kind == TopShare {
			return "Tout va bien !"
		}
		return "Tout va bien"
	case Watch:
		return "Attention ! Des indices à surveiller"
	case Critical:
		return "Alerte !!! Trop d’indice à haut risque !!!"
	}
	return ""
}

// Color returns the chart colour of the level.
func (l Level) Color(kind Kind) string {
	switch l {
	case OK:
		return "lightgreen"
	case Watch:
		if kind == TopShare {
			return "orange"
		}
		return "yellow"
	case Critical:
		return "red"
	}
	return "grey"
}

// ParseLevel accepts a level code (OK, WATCH, CRITICAL) or one of the
// displayed labels, case-insensitively.
func ParseLevel(s string) (Level, error) {
	v := strings.TrimSpace(s)
	switch strings.ToUpper(v) {
	case "OK":
		return OK, nil
	case "WATCH":
		return Watch, nil
	case "CRITICAL":
		return Critical, nil
	}
	for _, l := range []Level{OK, Watch, Critical} {
		for _, k := range []Kind{IndexCount, TopShare} {
			if strings.EqualFold(v, l.Label(k)) {
				return l, nil
			}
		}
	}
	return OK, errors.Newf(errors.CodeInvalidInput, "unknown alert level %q", s).
		WithContext("level", s)
}
