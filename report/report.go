// Package report summarises a finished scrape for the console.
package report

import (
	"fmt"
	"io"

	"github.com/Talhakakayzai/ecomerce-web-scraper/models"
	"github.com/Talhakakayzai/ecomerce-web-scraper/parser"
)

// Summary holds the product count and the mean of the parseable prices.
type Summary struct {
	Total   int
	Priced  int
	Average float64
}

// HasAverage reports whether at least one price could be parsed.
func (s Summary) HasAverage() bool {
	return s.Priced > 0
}

// Summarize counts products and averages the prices that carry the currency
// marker. Unparseable prices are left out of the average only.
func Summarize(products []*models.Product) Summary {
	s := Summary{Total: len(products)}
	var sum float64
	for _, p := range products {
		if p == nil {
			continue
		}
		price, ok := parser.ParsePrice(p.Price)
		if !ok {
			continue
		}
		sum += price
		s.Priced++
	}
	if s.Priced > 0 {
		s.Average = sum / float64(s.Priced)
	}
	return s
}

// Write prints the summary lines. The average line is omitted when no price
// was parseable.
func Write(w io.Writer, s Summary) error {
	if _, err := fmt.Fprintf(w, "Total products scraped: %d\n", s.Total); err != nil {
		return err
	}
	if !s.HasAverage() {
		return nil
	}
	_, err := fmt.Fprintf(w, "Average price: %s%.2f\n", parser.CurrencyMarker, s.Average)
	return err
}
