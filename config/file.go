package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the optional YAML configuration file. Zero values leave
// the corresponding setting untouched.
type FileConfig struct {
	Origin       string    `yaml:"origin"`
	PathTemplate string    `yaml:"path_template"`
	StartPage    int       `yaml:"start_page"`
	EndPage      int       `yaml:"end_page"`
	Delay        string    `yaml:"delay"`
	UserAgent    string    `yaml:"user_agent"`
	Selectors    Selectors `yaml:"selectors"`
	Output       struct {
		CSV    string `yaml:"csv"`
		JSON   string `yaml:"json"`
		SQLite string `yaml:"sqlite"`
	} `yaml:"output"`
	LogFile            string `yaml:"log_file"`
	Dedupe             *bool  `yaml:"dedupe"`
	DedupeMaxSize      int    `yaml:"dedupe_max_size"`
	SleepAfterLastPage *bool  `yaml:"sleep_after_last_page"`
}

// LoadFile reads a YAML configuration file. Returns nil if the file doesn't
// exist.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &fc, nil
}

// Apply overlays the non-zero file settings onto c.
func (fc *FileConfig) Apply(c *Config) error {
	if fc == nil {
		return nil
	}
	if fc.Origin != "" {
		c.Origin = fc.Origin
	}
	if fc.PathTemplate != "" {
		c.PathTemplate = fc.PathTemplate
	}
	if fc.StartPage != 0 {
		c.StartPage = fc.StartPage
	}
	if fc.EndPage != 0 {
		c.EndPage = fc.EndPage
	}
	if fc.Delay != "" {
		d, err := time.ParseDuration(fc.Delay)
		if err != nil {
			return fmt.Errorf("delay: %w", err)
		}
		c.Delay = d
	}
	if fc.UserAgent != "" {
		c.UserAgent = fc.UserAgent
	}
	mergeSelector(&c.Selectors.Card, fc.Selectors.Card)
	mergeSelector(&c.Selectors.Title, fc.Selectors.Title)
	mergeSelector(&c.Selectors.Price, fc.Selectors.Price)
	mergeSelector(&c.Selectors.Rating, fc.Selectors.Rating)
	mergeSelector(&c.Selectors.Stock, fc.Selectors.Stock)
	mergeSelector(&c.Selectors.Link, fc.Selectors.Link)
	if fc.Output.CSV != "" {
		c.CSVFile = fc.Output.CSV
	}
	if fc.Output.JSON != "" {
		c.JSONFile = fc.Output.JSON
	}
	if fc.Output.SQLite != "" {
		c.SQLiteFile = fc.Output.SQLite
	}
	if fc.LogFile != "" {
		c.LogFile = fc.LogFile
	}
	if fc.Dedupe != nil {
		c.Dedupe = *fc.Dedupe
	}
	if fc.DedupeMaxSize != 0 {
		c.DedupeMaxSize = fc.DedupeMaxSize
	}
	if fc.SleepAfterLastPage != nil {
		c.SleepAfterLastPage = *fc.SleepAfterLastPage
	}
	return nil
}

func mergeSelector(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
