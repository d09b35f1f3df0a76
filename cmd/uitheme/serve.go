package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/uitheme/pkg/content"
	mcpserver "github.com/gnana997/uitheme/pkg/mcp"
	"github.com/gnana997/uitheme/pkg/mcplog"
	"github.com/gnana997/uitheme/pkg/theme"
	"github.com/gnana997/uitheme/pkg/watch"
)

func newUsageCmd(a *app) *cobra.Command {
	var (
		root    string
		workers int
		plain   bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Scan content files for color and font utility usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadTheme()
			if err != nil {
				return err
			}
			if root == "" {
				root = filepath.Dir(cfg.Source().Path)
			}

			sc, err := content.NewScanner(content.ScannerConfig{Workers: workers, Logger: a.logger})
			if err != nil {
				return err
			}
			defer sc.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			report, err := sc.Scan(ctx, root, cfg)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), report, !plain)
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "Project root the content globs are relative to (default: the theme's directory)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Scan workers (default: CPU-aware)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable styling")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

// startReloader loads the theme and keeps it current. The returned loader
// must outlive the reloader.
func (a *app) startReloader() (*watch.Reloader, *theme.Loader, error) {
	path, err := a.themePath()
	if err != nil {
		return nil, nil, err
	}
	loader := theme.NewLoader(theme.WithLogger(a.logger))

	r, err := watch.New(path, loader, watch.Options{Logger: a.logger})
	if err != nil {
		loader.Close()
		return nil, nil, err
	}
	return r, loader, nil
}

func newServeCmd(a *app) *cobra.Command {
	var (
		callLogPath string
		root        string
		noScan      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio with live theme reload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reloader, loader, err := a.startReloader()
			if err != nil {
				return err
			}
			defer loader.Close()
			defer reloader.Stop()

			if callLogPath == "" && a.project != nil {
				callLogPath = a.project.CallLog
			}
			callLog, err := mcplog.NewLogger(callLogPath)
			if err != nil {
				return fmt.Errorf("failed to open call log: %w", err)
			}
			defer callLog.Close()

			opts := mcpserver.Options{Root: root, CallLog: callLog, Logger: a.logger}
			if !noScan {
				sc, err := content.NewScanner(content.ScannerConfig{Logger: a.logger})
				if err != nil {
					return err
				}
				defer sc.Close()
				opts.Scanner = sc
			}

			a.logger.Info("serving theme over MCP",
				"theme", reloader.Stats().Path,
				"scan_usage", !noScan,
				"call_log", callLogPath)

			return mcpserver.NewServer(reloader, opts).ServeStdio()
		},
	}
	cmd.Flags().StringVar(&callLogPath, "call-log", "", "Append every tool call to this JSONL file")
	cmd.Flags().StringVar(&root, "root", "", "Default project root for scan_usage (default: the theme's directory)")
	cmd.Flags().BoolVar(&noScan, "no-scan", false, "Disable the scan_usage tool")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-validate the theme every time it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reloader, loader, err := a.startReloader()
			if err != nil {
				return err
			}
			defer loader.Close()
			defer reloader.Stop()

			out := cmd.OutOrStdout()
			report := func(cfg *theme.ThemeConfig) {
				fmt.Fprintf(out, "%s: ok (%d colors, %d font roles)\n",
					cfg.Source().Path, len(cfg.Colors()), len(cfg.FontRoles()))
				for _, w := range cfg.Lint() {
					fmt.Fprintf(out, "  ! %s\n", w)
				}
			}
			report(reloader.Current())
			reloader.Subscribe(report)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			<-ctx.Done()

			stats := reloader.Stats()
			a.logger.Info("watch stopped", "reloads", stats.Reloads, "failures", stats.Failures)
			return nil
		},
	}
}
