package pipeline

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Talhakakayzai/ecomerce-web-scraper/models"
)

// Exporter persists the full product list of a run.
type Exporter interface {
	Name() string
	Export(ctx context.Context, products []*models.Product) error
}

// CSVHeader is the fixed column order of the tabular export.
var CSVHeader = []string{"name", "price", "rating", "stock", "url"}

// CSVExporter writes products to a UTF-8 CSV file, replacing any previous
// content.
type CSVExporter struct {
	path string
}

// NewCSVExporter returns an exporter targeting path.
func NewCSVExporter(path string) *CSVExporter {
	return &CSVExporter{path: path}
}

func (e *CSVExporter) Name() string { return "csv" }

// Export writes the header row followed by one row per product.
func (e *CSVExporter) Export(_ context.Context, products []*models.Product) error {
	if err := ensureDir(e.path); err != nil {
		return err
	}

	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(CSVHeader); err != nil {
		f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range products {
		if err := writer.Write([]string{p.Name, p.Price, p.Rating, p.Stock, p.URL}); err != nil {
			f.Close()
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv records: %w", err)
	}
	return f.Close()
}

// JSONExporter writes products as a pretty-printed JSON array, leaving
// non-ASCII characters unescaped.
type JSONExporter struct {
	path string
}

// NewJSONExporter returns an exporter targeting path.
func NewJSONExporter(path string) *JSONExporter {
	return &JSONExporter{path: path}
}

func (e *JSONExporter) Name() string { return "json" }

// Export replaces the file at path with the encoded products.
func (e *JSONExporter) Export(_ context.Context, products []*models.Product) error {
	if err := ensureDir(e.path); err != nil {
		return err
	}

	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}

	if products == nil {
		products = []*models.Product{}
	}

	buffer := bufio.NewWriter(f)
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(products); err != nil {
		f.Close()
		return fmt.Errorf("encode json: %w", err)
	}
	if err := buffer.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush json writer: %w", err)
	}
	return f.Close()
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
