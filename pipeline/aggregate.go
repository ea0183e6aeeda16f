// Package pipeline accumulates scraped products and exports them.
package pipeline

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Talhakakayzai/ecomerce-web-scraper/models"
)

// Aggregate is the ordered, append-only collection of products gathered
// during a run. It is not safe for concurrent use.
type Aggregate struct {
	products []*models.Product
	seen     *lru.Cache[string, struct{}]
	metrics  metrics
}

// NewAggregate returns an empty aggregate. With dedupe set, products whose
// URL was seen among the last maxSize distinct URLs are dropped.
func NewAggregate(dedupe bool, maxSize int) (*Aggregate, error) {
	a := &Aggregate{metrics: newMetrics()}
	if !dedupe {
		return a, nil
	}
	seen, err := lru.New[string, struct{}](maxSize)
	if err != nil {
		return nil, fmt.Errorf("create dedupe cache: %w", err)
	}
	a.seen = seen
	return a, nil
}

// Add appends products in order and returns how many were kept.
func (a *Aggregate) Add(products ...*models.Product) int {
	added := 0
	for _, p := range products {
		if p == nil {
			continue
		}
		if a.seen != nil {
			if found, _ := a.seen.ContainsOrAdd(p.URL, struct{}{}); found {
				a.metrics.addDropped("duplicate_url")
				continue
			}
		}
		a.products = append(a.products, p)
		a.metrics.processed++
		added++
	}
	return added
}

// Products returns a copy of the accumulated products.
func (a *Aggregate) Products() []*models.Product {
	out := make([]*models.Product, len(a.products))
	copy(out, a.products)
	return out
}

// Len reports the number of accumulated products.
func (a *Aggregate) Len() int {
	return len(a.products)
}

// GetMetrics returns a snapshot of the internal counters.
func (a *Aggregate) GetMetrics() map[string]interface{} {
	return a.metrics.snapshot()
}

type metrics struct {
	processed int64
	dropped   map[string]int
}

func newMetrics() metrics {
	return metrics{
		dropped: make(map[string]int),
	}
}

func (m *metrics) addDropped(kind string) {
	m.dropped[kind]++
}

func (m *metrics) snapshot() map[string]interface{} {
	copyDropped := make(map[string]int, len(m.dropped))
	for k, v := range m.dropped {
		copyDropped[k] = v
	}

	return map[string]interface{}{
		"processed_products": m.processed,
		"dropped_products":   copyDropped,
	}
}
