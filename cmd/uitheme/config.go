package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const projectConfigPath = ".uitheme/config.yaml"

// ProjectConfig holds the contents of .uitheme/config.yaml.
type ProjectConfig struct {
	Version   string `yaml:"version"`
	ThemePath string `yaml:"theme_path"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	CallLog   string `yaml:"call_log"`
}

// discoveryOrder lists the file names tried when neither the flag nor the
// project config names a theme. Framework modules win over data files.
var discoveryOrder = []string{
	"tailwind.config.ts",
	"tailwind.config.js",
	"tailwind.config.cjs",
	"tailwind.config.mjs",
	"theme.yaml",
	"theme.yml",
	"theme.json",
	"theme.toml",
}

// loadProjectConfig reads .uitheme/config.yaml under dir.
// Returns nil (no error) if the file does not exist.
func loadProjectConfig(dir string) (*ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, projectConfigPath))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", projectConfigPath, err)
	}
	return &cfg, nil
}

// resolveThemePath returns the theme file to load, applying the fallback chain:
//  1. Explicit --theme flag value
//  2. theme_path from .uitheme/config.yaml, relative to dir
//  3. The first discoveryOrder file present in dir
func resolveThemePath(flagValue string, project *ProjectConfig, dir string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if project != nil && project.ThemePath != "" {
		if filepath.IsAbs(project.ThemePath) {
			return project.ThemePath, nil
		}
		return filepath.Join(dir, project.ThemePath), nil
	}
	for _, name := range discoveryOrder {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no theme config found in %s (pass --theme or set theme_path in %s)", dir, projectConfigPath)
}
