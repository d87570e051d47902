// Package skus fetches dynamic SKU table.
package skus

import (
	"context"
	"fmt"
	"io"

	"github.com/MichalMitros/stock-watcher/internal/platform/models"
)

// Fetcher fetches documents.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// Decoder decodes SKU table documents.
type Decoder interface {
	DecodeSKUTable(body io.Reader) (models.SKUTable, error)
}

// Source fetches SKU table from URL.
type Source struct {
	fetcher Fetcher
	decoder Decoder
	url     string
}

// NewSource returns new Source.
func NewSource(fetcher Fetcher, decoder Decoder, url string) *Source {
	return &Source{
		fetcher: fetcher,
		decoder: decoder,
		url:     url,
	}
}

// FetchSKUs fetches and decodes current SKU table.
func (s *Source) FetchSKUs(ctx context.Context) (models.SKUTable, error) {
	body, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("can't fetch sku table: %w", err)
	}
	defer body.Close()

	table, err := s.decoder.DecodeSKUTable(body)
	if err != nil {
		return nil, fmt.Errorf("can't decode sku table: %w", err)
	}

	return table, nil
}
