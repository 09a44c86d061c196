// SPDX-License-Identifier: Apache-2.0

// Package main implements the gedboard CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jllopis/gedboard/pkg/config"
	"github.com/jllopis/gedboard/pkg/ged"
	"github.com/jllopis/gedboard/pkg/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const appName = "gedboard"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if _, ok := err.(exitError); ok {
		return 1
	}
	printError(stderr, err, a.flags.JSON)
	return 1
}

type globalFlags struct {
	ConfigPath string
	Profile    string
	Sets       []string
	LogLevel   string
	DataDir    string
	JSON       bool
}

// configArgs rebuilds the argument list understood by config.LoadWithCLI.
func (f globalFlags) configArgs() []string {
	var args []string
	if f.ConfigPath != "" {
		args = append(args, "--config", f.ConfigPath)
	}
	if f.Profile != "" {
		args = append(args, "--profile", f.Profile)
	}
	for _, s := range f.Sets {
		args = append(args, "--set", s)
	}
	if f.DataDir != "" {
		args = append(args, "--set", "data.dir="+f.DataDir)
	}
	if f.LogLevel != "" {
		args = append(args, "--set", "log.level="+f.LogLevel)
	}
	return args
}

// app carries the state shared by subcommands once the root has loaded
// the configuration.
type app struct {
	flags  globalFlags
	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Dashboards over GED construction-project exports",
		Long: `gedboard loads the CSV exports of a document-management system (GED)
and turns them into dashboards: index alerts per lot or document type,
revision statistics, flows, calendars and sequence analysis.

Dashboards are served over HTTP (gedboard serve) or rendered in the
terminal (gedboard report).`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.ConfigPath, "config", "", "config file path (YAML)")
	pf.StringVar(&a.flags.Profile, "profile", "", "config profile (loads config.<profile>.yaml)")
	pf.StringArrayVar(&a.flags.Sets, "set", nil, "override a config key (key=value, repeatable)")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&a.flags.DataDir, "data-dir", "", "directory holding the CSV exports")
	pf.BoolVar(&a.flags.JSON, "json", false, "print output and errors as JSON")

	cmd.AddCommand(
		a.serveCmd(),
		a.reportCmd(),
		a.dashboardsCmd(),
		a.projectsCmd(),
		a.validateCmd(),
		versionCmd(),
	)
	return cmd
}

// setup loads and validates the configuration and installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWithCLI(a.flags.configArgs())
	if err != nil {
		return NewConfigError(err, a.flags.ConfigPath)
	}
	if err := cfg.Validate(); err != nil {
		return NewConfigError(err, a.flags.ConfigPath)
	}
	a.cfg = cfg
	a.logger = telemetry.ConfigureSlog(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	return nil
}

func (a *app) catalog(opts ...ged.CatalogOption) (*ged.Catalog, error) {
	opts = append([]ged.CatalogOption{ged.WithLogger(a.logger)}, opts...)
	c, err := ged.CatalogFromConfig(a.cfg, opts...)
	if err != nil {
		return nil, WrapCatalogError(err, a.cfg.Data.Dir)
	}
	return c, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// The version never depends on the configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (%s %s/%s)\n",
				appName, version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

// exitError fails the command without printing anything more: the
// command already reported the problem.
type exitError struct{}

func (exitError) Error() string { return "exit status 1" }

func printJSON(w io.Writer, value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(payload))
	return err
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
}

func writeRow(writer *tabwriter.Writer, cols ...string) {
	for i, col := range cols {
		cols[i] = normalizeCell(col)
	}
	fmt.Fprintln(writer, strings.Join(cols, "\t"))
}

func normalizeCell(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return strings.Join(strings.Fields(value), " ")
}
