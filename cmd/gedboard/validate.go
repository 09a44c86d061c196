// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jllopis/gedboard/pkg/errors"
	"github.com/jllopis/gedboard/pkg/ged"
)

// maxBadLines caps the line numbers listed for rows without a date.
const maxBadLines = 5

type validateResult struct {
	Config  checkResult   `json:"config"`
	Files   []checkResult `json:"files"`
	Overall string        `json:"overall"`
}

type checkResult struct {
	Name     string   `json:"name"`
	Status   string   `json:"status"` // "ok", "warn", "error", "skip"
	Message  string   `json:"message,omitempty"`
	Records  int      `json:"records,omitempty"`
	Skipped  int      `json:"skipped,omitempty"`
	Missing  []string `json:"missing_columns,omitempty"`
	BadLines []int    `json:"bad_lines,omitempty"`
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.csv>...",
		Short: "Check CSV exports for missing columns and bad dates",
		Long: `Load each export with the configured separator, encoding, date layout
and column names. Files missing a required column fail; rows whose
deposit date cannot be parsed are reported as warnings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := a.validate(cmd.Context(), args)
			if a.flags.JSON {
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				printValidateResult(cmd.OutOrStdout(), result)
			}
			if result.Overall == "error" {
				return exitError{}
			}
			return nil
		},
	}
}

func (a *app) validate(ctx context.Context, files []string) validateResult {
	result := validateResult{Files: []checkResult{}}
	hasError := false
	hasWarn := false

	result.Config = checkResult{Name: "config", Status: "ok", Message: "defaults"}
	if a.flags.ConfigPath != "" {
		result.Config.Message = a.flags.ConfigPath
	}

	opts := ged.OptionsFromConfig(a.cfg)
	for _, path := range files {
		r := validateFile(ctx, path, opts)
		switch r.Status {
		case "error":
			hasError = true
		case "warn":
			hasWarn = true
		}
		result.Files = append(result.Files, r)
	}

	switch {
	case hasError:
		result.Overall = "error"
	case hasWarn:
		result.Overall = "warn"
	default:
		result.Overall = "ok"
	}
	return result
}

func validateFile(ctx context.Context, path string, opts ged.Options) checkResult {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ds, err := ged.Load(ctx, name, path, opts)
	if err != nil {
		ge := errors.As(err)
		r := checkResult{Name: path, Status: "error", Message: ge.Message}
		if missing, ok := ge.Context["missing"].([]string); ok {
			r.Missing = missing
		}
		if ge.Err != nil {
			r.Message += ": " + ge.Err.Error()
		}
		return r
	}

	r := checkResult{Name: path, Status: "ok", Records: ds.Len(), Skipped: ds.Skipped}
	if ds.Len() == 0 {
		r.Status = "warn"
		r.Message = "header only, no records"
		return r
	}

	r.Message = humanize.Comma(int64(ds.Len())) + " records"
	if first, last, ok := ds.DateRange(); ok {
		r.Message += fmt.Sprintf(", %s to %s", first.Format(dateLayout), last.Format(dateLayout))
	}
	if ds.Skipped > 0 {
		r.Status = "warn"
		for _, rec := range ds.Records {
			if !rec.HasDate() {
				r.BadLines = append(r.BadLines, rec.Line)
				if len(r.BadLines) == maxBadLines {
					break
				}
			}
		}
		r.Message += fmt.Sprintf(", %d without a valid date (lines %s)", ds.Skipped, joinLines(r.BadLines, ds.Skipped))
	}
	return r
}

func joinLines(lines []int, total int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = strconv.Itoa(l)
	}
	s := strings.Join(parts, ", ")
	if total > len(lines) {
		s += ", ..."
	}
	return s
}

func printValidateResult(w io.Writer, result validateResult) {
	statusIcon := map[string]string{
		"ok":    "✓",
		"warn":  "⚠",
		"error": "✗",
		"skip":  "○",
	}

	fmt.Fprintln(w, "GED Export Validation")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintln(w)

	printCheck(w, statusIcon, result.Config)
	for _, r := range result.Files {
		printCheck(w, statusIcon, r)
		if len(r.Missing) > 0 {
			fmt.Fprintf(w, "    missing columns: %s\n", strings.Join(r.Missing, ", "))
		}
	}

	fmt.Fprintln(w)
	switch result.Overall {
	case "ok":
		fmt.Fprintln(w, "✓ All files are valid")
	case "warn":
		fmt.Fprintln(w, "⚠ Validation completed with warnings")
	case "error":
		fmt.Fprintln(w, "✗ Validation failed")
	}
}

func printCheck(w io.Writer, icons map[string]string, r checkResult) {
	icon := icons[r.Status]
	if r.Message != "" {
		fmt.Fprintf(w, "%s %s: %s\n", icon, r.Name, r.Message)
	} else {
		fmt.Fprintf(w, "%s %s\n", icon, r.Name)
	}
}
