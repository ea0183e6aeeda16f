// Package parser turns listing-page markup into product records.
package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Talhakakayzai/ecomerce-web-scraper/config"
	"github.com/Talhakakayzai/ecomerce-web-scraper/models"
)

// FieldError reports a required card field that could not be extracted.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "missing " + e.Field
}

// Extractor locates product cards in a listing page and converts them into
// products.
type Extractor struct {
	origin    string
	selectors config.Selectors
	logger    *slog.Logger
}

// NewExtractor builds an extractor that prefixes relative links with origin.
func NewExtractor(origin string, selectors config.Selectors, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		origin:    origin,
		selectors: selectors,
		logger:    logger,
	}
}

// ParseCards returns one result per product card, in document order.
func (e *Extractor) ParseCards(markup string) []models.CardResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		e.logger.Warn("error parsing page markup", slog.Any("error", err))
		return nil
	}

	cards := doc.Find(e.selectors.Card)
	results := make([]models.CardResult, 0, cards.Length())
	cards.Each(func(i int, card *goquery.Selection) {
		res := e.parseCard(i, card)
		if res.Skipped() {
			e.logger.Warn("error parsing a product card",
				slog.Int("card", i),
				slog.String("reason", res.Reason),
			)
		}
		results = append(results, res)
	})
	return results
}

// Extract parses markup and returns the kept products along with the number
// of cards that were dropped.
func (e *Extractor) Extract(markup string) ([]*models.Product, int) {
	products, skipped := Partition(e.ParseCards(markup))
	return products, len(skipped)
}

func (e *Extractor) parseCard(i int, card *goquery.Selection) (res models.CardResult) {
	defer func() {
		if r := recover(); r != nil {
			res = models.CardResult{Index: i, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	product, err := e.extractProduct(card)
	if err != nil {
		return models.CardResult{Index: i, Reason: err.Error()}
	}
	return models.CardResult{Index: i, Product: product}
}

func (e *Extractor) extractProduct(card *goquery.Selection) (*models.Product, error) {
	name, ok := childText(card, e.selectors.Title)
	if !ok {
		return nil, &FieldError{Field: "title"}
	}
	price, ok := childText(card, e.selectors.Price)
	if !ok {
		return nil, &FieldError{Field: "price"}
	}
	rating, ok := childText(card, e.selectors.Rating)
	if !ok {
		rating = models.NoRating
	}
	stock, ok := childText(card, e.selectors.Stock)
	if !ok {
		stock = models.UnknownStock
	}

	link := card.Find(e.selectors.Link).First()
	if link.Length() == 0 {
		return nil, &FieldError{Field: "link"}
	}
	href, ok := link.Attr("href")
	if !ok {
		return nil, &FieldError{Field: "link href"}
	}

	return &models.Product{
		Name:   name,
		Price:  price,
		Rating: rating,
		Stock:  stock,
		URL:    e.origin + href,
	}, nil
}

// childText returns the stripped text of the first descendant matching
// selector, and false when there is none.
func childText(s *goquery.Selection, selector string) (string, bool) {
	match := s.Find(selector).First()
	if match.Length() == 0 {
		return "", false
	}
	return strippedText(match.Nodes[0]), true
}

// strippedText concatenates every descendant text node with its surrounding
// whitespace removed, so "<span> $10 <b>USD</b></span>" reads "$10USD".
func strippedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
