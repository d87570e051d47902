package decoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/samber/lo"
)

// maxBodySize limits size of decoded documents.
const maxBodySize = 1 << 20

// ErrMalformedResponse is returned when document can't be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// Decoder decodes JSON inventory and SKU documents.
type Decoder struct{}

// DecodeInventory decodes upstream inventory response.
// It only checks JSON syntax, response shape is classified by the caller.
func (d Decoder) DecodeInventory(body io.Reader) (*models.Inventory, error) {
	var inventory Inventory
	if err := json.NewDecoder(io.LimitReader(body, maxBodySize)).Decode(&inventory); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return toAppInventory(&inventory), nil
}

// DecodeSKUTable decodes dynamic SKU table keyed by region and product identifier.
// Entries without SKU are dropped.
func (d Decoder) DecodeSKUTable(body io.Reader) (models.SKUTable, error) {
	var table models.SKUTable
	if err := json.NewDecoder(io.LimitReader(body, maxBodySize)).Decode(&table); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	for region, products := range table {
		table[region] = lo.PickBy(products, func(_ string, detail models.SKUDetail) bool {
			return detail.SKU != ""
		})
	}

	return table, nil
}
