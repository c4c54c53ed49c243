package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"storefront/internal/domain"
)

// ProductLister is the part of the API client the exporter reads from.
type ProductLister interface {
	ListProducts(ctx context.Context) (domain.ProductList, error)
}

var header = []string{"id", "title", "category", "price", "image", "description"}

// CSVExporter writes the backend catalog as CSV, one product per row.
// Priceless products have an empty price column.
type CSVExporter struct {
	writer *csv.Writer
	source ProductLister
}

func NewCSVExporter(w io.Writer, source ProductLister) *CSVExporter {
	return &CSVExporter{
		writer: csv.NewWriter(w),
		source: source,
	}
}

// Run fetches the catalog and writes it, returning the number of rows.
func (e *CSVExporter) Run(ctx context.Context) (int, error) {
	list, err := e.source.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}

	if err := e.writer.Write(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	exported := 0
	for _, p := range list.Items {
		if err := e.writer.Write(record(p)); err != nil {
			return exported, fmt.Errorf("write product %q: %w", p.ID, err)
		}
		exported++
	}

	e.writer.Flush()
	if err := e.writer.Error(); err != nil {
		return exported, fmt.Errorf("flush csv: %w", err)
	}
	return exported, nil
}

func record(p domain.Product) []string {
	price := ""
	if p.Priced() {
		price = p.Price.Decimal.String()
	}
	return []string{p.ID, p.Title, string(p.Category), price, p.Image, p.Description}
}
