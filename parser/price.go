package parser

import (
	"strconv"
	"strings"

	"github.com/Talhakakayzai/ecomerce-web-scraper/models"
)

// CurrencyMarker is the symbol a price must carry to count towards averages.
const CurrencyMarker = "$"

// NormalizePrice removes the currency marker, thousands separators and
// surrounding whitespace.
func NormalizePrice(price string) string {
	price = strings.ReplaceAll(price, CurrencyMarker, "")
	price = strings.ReplaceAll(price, ",", "")
	return strings.TrimSpace(price)
}

// ParsePrice converts a currency-formatted price such as "$1,299.00" to a
// number. It reports false when the marker is missing or the remainder is not
// numeric.
func ParsePrice(price string) (float64, bool) {
	if !strings.Contains(price, CurrencyMarker) {
		return 0, false
	}
	value, err := strconv.ParseFloat(NormalizePrice(price), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Partition splits card results into kept products and the skipped results.
func Partition(results []models.CardResult) ([]*models.Product, []models.CardResult) {
	products := make([]*models.Product, 0, len(results))
	var skipped []models.CardResult
	for _, r := range results {
		if r.Skipped() {
			skipped = append(skipped, r)
			continue
		}
		products = append(products, r.Product)
	}
	return products, skipped
}
