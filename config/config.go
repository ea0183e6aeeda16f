package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Selectors are the CSS selectors that locate a product card and its fields.
type Selectors struct {
	Card   string `yaml:"card"`
	Title  string `yaml:"title"`
	Price  string `yaml:"price"`
	Rating string `yaml:"rating"`
	Stock  string `yaml:"stock"`
	Link   string `yaml:"link"`
}

// Config holds scraper configuration.
type Config struct {
	Origin             string
	PathTemplate       string
	StartPage          int
	EndPage            int
	Delay              time.Duration
	SleepAfterLastPage bool
	UserAgent          string
	Selectors          Selectors
	CSVFile            string
	JSONFile           string
	SQLiteFile         string
	LogFile            string
	Dedupe             bool
	DedupeMaxSize      int
	MetricsAddr        string
	Verbose            bool
}

// DefaultSelectors returns the class markers used by the target storefront.
func DefaultSelectors() Selectors {
	return Selectors{
		Card:   "div.product-card",
		Title:  "h2.product-title",
		Price:  "span.product-price",
		Rating: "span.product-rating",
		Stock:  "span.stock-status",
		Link:   "a.product-link",
	}
}

// DefaultConfig returns the defaults used when the binary runs without arguments.
func DefaultConfig() *Config {
	return &Config{
		Origin:        "https://example-ecommerce.com",
		PathTemplate:  "/products?page=%d",
		StartPage:     1,
		EndPage:       20,
		Delay:         2 * time.Second,
		UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/113.0.0.0 Safari/537.36",
		Selectors:     DefaultSelectors(),
		CSVFile:       "products.csv",
		JSONFile:      "products.json",
		LogFile:       "ecommerce_scraper.log",
		DedupeMaxSize: 100000,
	}
}

// PageURL builds the listing URL for page n.
func (c *Config) PageURL(n int) string {
	return c.Origin + fmt.Sprintf(c.PathTemplate, n)
}

// Pages returns the number of pages in the configured range.
func (c *Config) Pages() int {
	return c.EndPage - c.StartPage + 1
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.Origin == "" {
		return fmt.Errorf("origin cannot be empty")
	}

	parsedURL, err := url.Parse(c.Origin)
	if err != nil {
		return fmt.Errorf("invalid origin: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("origin must include a host")
	}

	if strings.Count(c.PathTemplate, "%d") != 1 {
		return fmt.Errorf("path template must contain exactly one %%d verb")
	}
	if c.StartPage < 0 {
		return fmt.Errorf("start page cannot be negative")
	}
	if c.EndPage < c.StartPage {
		return fmt.Errorf("end page (%d) cannot be before start page (%d)", c.EndPage, c.StartPage)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if err := c.Selectors.validate(); err != nil {
		return err
	}
	if c.CSVFile == "" {
		return fmt.Errorf("csv file cannot be empty")
	}
	if c.JSONFile == "" {
		return fmt.Errorf("json file cannot be empty")
	}
	if c.Dedupe && c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}

	return nil
}

func (s Selectors) validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"card", s.Card},
		{"title", s.Title},
		{"price", s.Price},
		{"rating", s.Rating},
		{"stock", s.Stock},
		{"link", s.Link},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s selector cannot be empty", f.name)
		}
	}
	return nil
}
