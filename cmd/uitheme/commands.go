package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/uitheme/pkg/theme"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newValidateCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the theme and report schema problems and lint warnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			cfg, err := a.loadTheme()
			if err != nil {
				var schemaErr *theme.SchemaError
				if errors.As(err, &schemaErr) {
					for _, p := range schemaErr.Problems {
						fmt.Fprintf(out, "  x %s\n", p)
					}
					return fmt.Errorf("%s: %d problem(s)", schemaErr.Path, len(schemaErr.Problems))
				}
				return err
			}

			src := cfg.Source()
			fmt.Fprintf(out, "%s: ok (%s, %d colors, %d font roles, %d content globs)\n",
				src.Path, src.Format, len(cfg.Colors()), len(cfg.FontRoles()), len(cfg.ContentGlobs()))

			warnings := cfg.Lint()
			for _, w := range warnings {
				fmt.Fprintf(out, "  ! %s\n", w)
			}
			if strict && len(warnings) > 0 {
				return fmt.Errorf("%d lint warning(s)", len(warnings))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when lint reports warnings")
	return cmd
}

func newColorCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "color <token>",
		Short: "Resolve a dotted color token, e.g. primary.500",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadTheme()
			if err != nil {
				return err
			}
			tok, err := cfg.ColorToken(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tok)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.Value)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the token with its class name as JSON")
	return cmd
}

func newFontCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "font <role>",
		Short: "Print the font stack for a role, preferred family first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadTheme()
			if err != nil {
				return err
			}
			families, err := cfg.ResolveFontStack(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), families)
			}
			for _, f := range families {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the stack as a JSON array")
	return cmd
}

func newGlobsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "globs",
		Short: "Print the content globs in configured order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadTheme()
			if err != nil {
				return err
			}
			for _, g := range cfg.ContentGlobs() {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			return nil
		},
	}
}

func newTokensCmd(a *app) *cobra.Command {
	var (
		palette string
		plain   bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "List color tokens with swatches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadTheme()
			if err != nil {
				return err
			}

			tokens := cfg.Colors()
			if palette != "" {
				if tokens, err = cfg.Palette(palette); err != nil {
					return err
				}
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tokens)
			}
			printTokens(cmd.OutOrStdout(), tokens, cfg.Prefix(), !plain)
			return nil
		},
	}
	cmd.Flags().StringVar(&palette, "palette", "", "Only list one palette")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable color swatches")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print tokens as JSON")
	return cmd
}

// splitToken returns the palette part of a dotted path, or "" for a
// top-level color.
func splitToken(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return ""
}
