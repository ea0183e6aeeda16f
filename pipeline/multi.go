package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Talhakakayzai/ecomerce-web-scraper/models"
)

// MultiExporter runs several exporters over the same products, in order.
type MultiExporter struct {
	exporters []Exporter
}

// NewMultiExporter combines exporters; nil entries are ignored.
func NewMultiExporter(exporters ...Exporter) *MultiExporter {
	m := &MultiExporter{}
	for _, e := range exporters {
		if e != nil {
			m.exporters = append(m.exporters, e)
		}
	}
	return m
}

func (m *MultiExporter) Name() string { return "multi" }

// Export stops at the first exporter that fails.
func (m *MultiExporter) Export(ctx context.Context, products []*models.Product) error {
	for _, e := range m.exporters {
		if err := e.Export(ctx, products); err != nil {
			return fmt.Errorf("%s export: %w", e.Name(), err)
		}
	}
	return nil
}

// Close closes every exporter that holds resources.
func (m *MultiExporter) Close() error {
	var errs []error
	for _, e := range m.exporters {
		closer, ok := e.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s close: %w", e.Name(), err))
		}
	}
	return errors.Join(errs...)
}
