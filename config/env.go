package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvString returns the trimmed value of key and whether it was set.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

// EnvDuration parses key as a time.Duration ("2s", "500ms").
func EnvDuration(key string) (time.Duration, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return d, true, nil
}

// ApplyEnv overlays SCRAPER_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	if v, ok, err := EnvInt("SCRAPER_START_PAGE"); err != nil {
		return err
	} else if ok {
		c.StartPage = v
	}
	if v, ok, err := EnvInt("SCRAPER_END_PAGE"); err != nil {
		return err
	} else if ok {
		c.EndPage = v
	}
	if v, ok, err := EnvDuration("SCRAPER_DELAY"); err != nil {
		return err
	} else if ok {
		c.Delay = v
	}
	if v, ok := EnvString("SCRAPER_ORIGIN"); ok {
		c.Origin = v
	}
	if v, ok := EnvString("SCRAPER_CSV"); ok {
		c.CSVFile = v
	}
	if v, ok := EnvString("SCRAPER_JSON"); ok {
		c.JSONFile = v
	}
	if v, ok := EnvString("SCRAPER_METRICS_ADDR"); ok {
		c.MetricsAddr = v
	}
	return nil
}
