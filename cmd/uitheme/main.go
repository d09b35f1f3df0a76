// Command uitheme loads, validates and serves framework theme configs.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnana997/uitheme/pkg/theme"
	"github.com/gnana997/uitheme/pkg/util"
)

var version = "0.1.0-dev"

// app carries state shared by every subcommand.
type app struct {
	themeFlag string
	logLevel  string
	logFormat string

	stdin   io.Reader
	logOut  io.Writer
	workDir string

	project *ProjectConfig
	logger  *slog.Logger
}

func main() {
	root := newRootCmd(&app{stdin: os.Stdin, logOut: os.Stderr})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "uitheme",
		Short:         "uitheme – theme config loader and validator",
		Long:          "uitheme reads a Tailwind-style theme config (JS, TS, JSON, YAML or TOML), validates it and answers token lookups, from the shell or over MCP.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.themeFlag, "theme", "", "Theme config path (default: discovered in the working directory)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: info)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json (default: text)")

	root.AddCommand(
		newValidateCmd(a),
		newColorCmd(a),
		newFontCmd(a),
		newGlobsCmd(a),
		newTokensCmd(a),
		newUsageCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newSetupCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup reads the project config and builds the logger. Flags override the
// project config.
func (a *app) setup(cmd *cobra.Command) error {
	if a.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		a.workDir = wd
	}
	if a.logOut == nil {
		a.logOut = cmd.ErrOrStderr()
	}
	if a.stdin == nil {
		a.stdin = cmd.InOrStdin()
	}

	project, err := loadProjectConfig(a.workDir)
	if err != nil {
		return err
	}
	a.project = project

	cfg := util.DefaultLoggerConfig()
	cfg.Output = a.logOut

	level, format := a.logLevel, a.logFormat
	if project != nil {
		if level == "" {
			level = project.LogLevel
		}
		if format == "" {
			format = project.LogFormat
		}
	}
	if level != "" {
		if cfg.Level, err = util.ParseLogLevel(level); err != nil {
			return err
		}
	}
	if format != "" {
		if cfg.Format, err = util.ParseLogFormat(format); err != nil {
			return err
		}
	}

	a.logger = util.NewLogger(cfg)
	slog.SetDefault(a.logger)
	return nil
}

func (a *app) themePath() (string, error) {
	return resolveThemePath(a.themeFlag, a.project, a.workDir)
}

// loadTheme resolves and loads the theme with a short-lived loader.
func (a *app) loadTheme() (*theme.ThemeConfig, error) {
	path, err := a.themePath()
	if err != nil {
		return nil, err
	}
	loader := theme.NewLoader(theme.WithLogger(a.logger))
	defer loader.Close()

	a.logger.Debug("loading theme", "path", path)
	return loader.Load(path)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "uitheme %s\n", version)
		},
	}
}
