package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Talhakakayzai/ecomerce-web-scraper/models"
)

// SQLiteExporter keeps every run's products in a SQLite database, keyed by
// run id.
type SQLiteExporter struct {
	db    *sql.DB
	runID string
	now   func() time.Time
}

// NewSQLiteExporter opens (or creates) the database at path.
func NewSQLiteExporter(path, runID string) (*SQLiteExporter, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	e := &SQLiteExporter{db: db, runID: runID, now: time.Now}
	if err := e.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return e, nil
}

func (e *SQLiteExporter) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		price TEXT NOT NULL,
		rating TEXT NOT NULL,
		stock TEXT NOT NULL,
		url TEXT NOT NULL,
		exported_at TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	);
	`
	_, err := e.db.Exec(schema)
	return err
}

func (e *SQLiteExporter) Name() string { return "sqlite" }

// Export replaces the rows of this exporter's run with products.
func (e *SQLiteExporter) Export(ctx context.Context, products []*models.Product) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE run_id = ?`, e.runID); err != nil {
		return fmt.Errorf("clear run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (run_id, position, name, price, rating, stock, url, exported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	exportedAt := e.now().UTC().Format(time.RFC3339)
	for i, p := range products {
		if _, err := stmt.ExecContext(ctx, e.runID, i, p.Name, p.Price, p.Rating, p.Stock, p.URL, exportedAt); err != nil {
			return fmt.Errorf("insert product %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RunProducts returns the products stored for runID in their original order.
func (e *SQLiteExporter) RunProducts(ctx context.Context, runID string) ([]*models.Product, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT name, price, rating, stock, url
		FROM products
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.Name, &p.Price, &p.Rating, &p.Stock, &p.URL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

// Close closes the database.
func (e *SQLiteExporter) Close() error {
	return e.db.Close()
}
