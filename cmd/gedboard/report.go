// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jllopis/gedboard/pkg/report"
)

var (
	queryFlags = []string{"project", "category", "group", "search", "alert1", "alert2", "stat", "period", "lot"}
	listFlags  = []string{"projects", "types", "indices"}
)

func (a *app) reportCmd() *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "report <dashboard>",
		Short: "Render one dashboard in the terminal or as JSON/CSV",
		Example: `  gedboard report alerts --project P17 --category type
  gedboard report index-stats --stat max --format csv --out stats.csv
  gedboard report sequence --period 12m --lot GO --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return WrapError(err)
			}
			q, err := report.ParseQuery(queryValues(cmd))
			if err != nil {
				return WrapError(err)
			}
			if _, err := report.Lookup(args[0]); err != nil {
				return NewNotFoundError("dashboard", args[0])
			}

			catalog, err := a.catalog()
			if err != nil {
				return err
			}
			gen := report.NewGenerator(catalog,
				report.WithSettings(func() report.Settings { return report.SettingsFromConfig(a.cfg) }),
				report.WithLogger(a.logger),
			)
			rep, err := gen.Build(cmd.Context(), args[0], q)
			if err != nil {
				return WrapError(err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return NewInvalidArgumentError("out", err.Error())
				}
				defer file.Close()
				w = file
			}
			if err := report.Render(w, rep, f); err != nil {
				return WrapError(err)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.String("project", "", "project name (default: first project of the catalog)")
	fl.String("category", "", "grouping category: lot or type")
	fl.String("group", "", "restrict alerts to one lot or document type")
	fl.String("search", "", "case-insensitive filter on group names")
	fl.String("alert1", "", "index count alert level: ok, watch or critical")
	fl.String("alert2", "", "top indices share alert level: ok, watch or critical")
	fl.String("stat", "", "statistic: mean or max")
	fl.String("period", "", "time window: 6m, 12m or all")
	fl.String("lot", "", "lot filter (lot-calendar, sequence)")
	fl.StringSlice("projects", nil, "projects compared by the mass dashboard")
	fl.StringSlice("types", nil, "document types shown by the evolution dashboard")
	fl.StringSlice("indices", nil, "indices kept by the distribution dashboard")
	fl.StringVarP(&format, "format", "f", "text", "output format: text, json or csv")
	fl.StringVarP(&out, "out", "o", "", "write to a file instead of stdout")
	return cmd
}

// queryValues maps the flags the user set onto dashboard URL parameters.
func queryValues(cmd *cobra.Command) url.Values {
	v := url.Values{}
	fl := cmd.Flags()
	for _, name := range queryFlags {
		if !fl.Changed(name) {
			continue
		}
		if s, err := fl.GetString(name); err == nil {
			v.Set(name, s)
		}
	}
	for _, name := range listFlags {
		if !fl.Changed(name) {
			continue
		}
		if values, err := fl.GetStringSlice(name); err == nil {
			v[name] = values
		}
	}
	return v
}

func (a *app) dashboardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboards",
		Short: "List the available dashboards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dashboards := report.Dashboards()
			if a.flags.JSON {
				type entry struct {
					ID          string   `json:"id"`
					Title       string   `json:"title"`
					Description string   `json:"description"`
					PerProject  bool     `json:"per_project"`
					Filters     []string `json:"filters,omitempty"`
				}
				out := make([]entry, 0, len(dashboards))
				for _, d := range dashboards {
					out = append(out, entry{d.ID, d.Title, d.Description, d.PerProject, d.Filters})
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			tw := newTabWriter(cmd.OutOrStdout())
			writeRow(tw, "ID", "TITLE", "FILTERS")
			for _, d := range dashboards {
				writeRow(tw, d.ID, d.Title, strings.Join(d.Filters, ","))
			}
			return tw.Flush()
		},
	}
}
