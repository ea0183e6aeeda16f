// Package models defines data structures for the scraper.
package models

import "time"

// Sentinels substituted when an optional card field is absent.
const (
	NoRating     = "No rating"
	UnknownStock = "Unknown"
)

// Product represents one product card scraped from a listing page.
type Product struct {
	Name   string `csv:"name" json:"name"`
	Price  string `csv:"price" json:"price"`
	Rating string `csv:"rating" json:"rating"`
	Stock  string `csv:"stock" json:"stock"`
	URL    string `csv:"url" json:"url"`
}

// CardResult is the outcome of extracting a single product card. Exactly one
// of Product or Reason is set.
type CardResult struct {
	Index   int
	Product *Product
	Reason  string
}

// Skipped reports whether the card was dropped.
func (r CardResult) Skipped() bool {
	return r.Product == nil
}

// ScrapeResult holds the overall result of a scraping run
type ScrapeResult struct {
	RunID        string
	Products     []*Product
	StartTime    time.Time
	EndTime      time.Time
	PageCount    int
	FailedPages  []int
	SkippedCards int
	Dropped      map[string]int
	RequestCount int
	ErrorsByType map[string]int
}

// Partial reports whether any page in the range failed to load.
func (r *ScrapeResult) Partial() bool {
	return len(r.FailedPages) > 0
}
