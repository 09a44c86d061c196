// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jllopis/gedboard/pkg/errors"
)

const dateLayout = "2006-01-02"

type projectInfo struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Records int    `json:"records"`
	Skipped int    `json:"skipped"`
	First   string `json:"first,omitempty"`
	Last    string `json:"last,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (a *app) projectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List catalog projects with row counts and date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := a.catalog()
			if err != nil {
				return err
			}

			infos := make([]projectInfo, 0, catalog.Len())
			for _, p := range catalog.Projects() {
				info := projectInfo{Name: p.Name, Path: p.Path}
				ds, err := catalog.Dataset(cmd.Context(), p.Name)
				if err != nil {
					info.Error = string(errors.As(err).Code)
					infos = append(infos, info)
					continue
				}
				info.Records = ds.Len()
				info.Skipped = ds.Skipped
				if first, last, ok := ds.DateRange(); ok {
					info.First = first.Format(dateLayout)
					info.Last = last.Format(dateLayout)
				}
				infos = append(infos, info)
			}

			if a.flags.JSON {
				return printJSON(cmd.OutOrStdout(), infos)
			}

			tw := newTabWriter(cmd.OutOrStdout())
			writeRow(tw, "PROJECT", "RECORDS", "SKIPPED", "FIRST", "LAST", "PATH")
			for _, info := range infos {
				records, skipped := humanize.Comma(int64(info.Records)), humanize.Comma(int64(info.Skipped))
				if info.Error != "" {
					records, skipped = info.Error, ""
				}
				writeRow(tw, info.Name, records, skipped, info.First, info.Last, info.Path)
			}
			return tw.Flush()
		},
	}
}
