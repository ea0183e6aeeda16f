package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Talhakakayzai/ecomerce-web-scraper/models"
)

func sampleProducts(n int) []*models.Product {
	products := make([]*models.Product, 0, n)
	for i := 1; i <= n; i++ {
		products = append(products, &models.Product{
			Name:   fmt.Sprintf("Widget %d", i),
			Price:  fmt.Sprintf("$%d.00", i),
			Rating: "4.0",
			Stock:  "In stock",
			URL:    fmt.Sprintf("https://shop.test/p/%d", i),
		})
	}
	return products
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

func TestCSVExporterRowCount(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "products.csv")
			if err := NewCSVExporter(path).Export(context.Background(), sampleProducts(n)); err != nil {
				t.Fatalf("export csv: %v", err)
			}

			records := readCSV(t, path)
			if len(records) != n+1 {
				t.Fatalf("records=%d, want %d", len(records), n+1)
			}
			if strings.Join(records[0], ",") != "name,price,rating,stock,url" {
				t.Fatalf("unexpected header: %v", records[0])
			}
			for i, row := range records[1:] {
				if len(row) != 5 {
					t.Fatalf("row %d has %d columns", i, len(row))
				}
				if row[0] != fmt.Sprintf("Widget %d", i+1) || row[4] != fmt.Sprintf("https://shop.test/p/%d", i+1) {
					t.Fatalf("row %d out of order: %v", i, row)
				}
			}
		})
	}
}

func TestCSVExporterOverwritesAndKeepsUnicode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "products.csv")
	exporter := NewCSVExporter(path)

	if err := exporter.Export(context.Background(), sampleProducts(5)); err != nil {
		t.Fatalf("first export: %v", err)
	}
	unicode := []*models.Product{{Name: "Café, \"Crème\"", Price: "$1,299.00", Rating: "★★★★", Stock: "Épuisé", URL: "https://shop.test/ç"}}
	if err := exporter.Export(context.Background(), unicode); err != nil {
		t.Fatalf("second export: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("records=%d, want 2 after overwrite", len(records))
	}
	want := []string{"Café, \"Crème\"", "$1,299.00", "★★★★", "Épuisé", "https://shop.test/ç"}
	for i := range want {
		if records[1][i] != want[i] {
			t.Fatalf("column %d = %q, want %q", i, records[1][i], want[i])
		}
	}
}

func TestJSONExporterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	products := sampleProducts(3)
	products[1].Name = "Tée <Spécial> & Co"

	if err := NewJSONExporter(path).Export(context.Background(), products); err != nil {
		t.Fatalf("export json: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if !strings.Contains(string(data), "Tée <Spécial> & Co") {
		t.Fatalf("non-ASCII text not preserved literally:\n%s", data)
	}
	if !strings.Contains(string(data), "\n        \"name\"") {
		t.Fatalf("expected four-space indentation:\n%s", data)
	}

	var decoded []map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(decoded) != len(products) {
		t.Fatalf("decoded=%d, want %d", len(decoded), len(products))
	}
	for i, m := range decoded {
		if len(m) != 5 {
			t.Fatalf("object %d has keys %v", i, m)
		}
		p := products[i]
		if m["name"] != p.Name || m["price"] != p.Price || m["rating"] != p.Rating || m["stock"] != p.Stock || m["url"] != p.URL {
			t.Fatalf("object %d = %v, want %+v", i, m, p)
		}
	}
}

func TestJSONExporterEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	if err := NewJSONExporter(path).Export(context.Background(), nil); err != nil {
		t.Fatalf("export json: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("empty export = %q, want []", data)
	}
}

func TestExporterFilesystemError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	path := filepath.Join(blocker, "products.csv")

	if err := NewCSVExporter(path).Export(context.Background(), sampleProducts(1)); err == nil {
		t.Fatalf("expected error writing under a regular file")
	}
	if err := NewJSONExporter(path).Export(context.Background(), sampleProducts(1)); err == nil {
		t.Fatalf("expected error writing under a regular file")
	}
}

type stubExporter struct {
	name   string
	err    error
	calls  *[]string
	closed bool
}

func (s *stubExporter) Name() string { return s.name }

func (s *stubExporter) Export(_ context.Context, _ []*models.Product) error {
	*s.calls = append(*s.calls, s.name)
	return s.err
}

func (s *stubExporter) Close() error {
	s.closed = true
	return nil
}

func TestMultiExporterStopsAtFirstFailure(t *testing.T) {
	var calls []string
	boom := errors.New("disk full")
	first := &stubExporter{name: "first", calls: &calls}
	second := &stubExporter{name: "second", err: boom, calls: &calls}
	third := &stubExporter{name: "third", calls: &calls}

	m := NewMultiExporter(first, nil, second, third)
	err := m.Export(context.Background(), sampleProducts(1))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped disk full", err)
	}
	if !strings.Contains(err.Error(), "second export") {
		t.Fatalf("error should name failing exporter: %v", err)
	}
	if strings.Join(calls, ",") != "first,second" {
		t.Fatalf("calls = %v", calls)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !first.closed || !second.closed || !third.closed {
		t.Fatalf("all closers should be closed")
	}
}
