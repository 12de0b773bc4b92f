// Package settings persists the dashboard's display preferences in a
// small yaml document.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	Theme             string `yaml:"theme" json:"theme"`
	DefaultView       string `yaml:"default_view" json:"default_view"`
	RowsPerPage       int    `yaml:"rows_per_page" json:"rows_per_page"`
	ShowBestPractices bool   `yaml:"show_best_practices" json:"show_best_practices"`
	ChartCauseKey     string `yaml:"chart_cause_key" json:"chart_cause_key"`
}

func Defaults() Settings {
	return Settings{
		Theme:             "light",
		DefaultView:       "dashboard",
		RowsPerPage:       25,
		ShowBestPractices: true,
		ChartCauseKey:     "cause_label",
	}
}

// Load reads the settings file, returning defaults when it is absent.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	loaded := Defaults()
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return loaded, nil
}

// Save writes the settings file via a temp file and rename so a crash
// mid-write never leaves a truncated document.
func Save(path string, value Settings) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close settings file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}
