package decoder

import (
	"encoding/json"

	"github.com/MichalMitros/stock-watcher/internal/platform/models"
)

const activeValue = "true"

// Inventory is model of upstream inventory response.
type Inventory struct {
	Success bool             `json:"success"`
	ListMap []InventoryEntry `json:"listMap"`
}

// InventoryEntry is model of single inventory status entry.
// Fields of unexpected JSON types are left empty, so a single odd value
// doesn't reject the whole response.
type InventoryEntry struct {
	HasActiveFlag bool
	IsActive      string
	ProductURL    *string
	Price         string
	FESKU         string
	Locale        string
}

// UnmarshalJSON decodes entry field by field.
func (e *InventoryEntry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw json.RawMessage
	raw, e.HasActiveFlag = fields["is_active"]
	e.IsActive, _ = jsonString(raw)
	if productURL, ok := jsonString(fields["product_url"]); ok {
		e.ProductURL = &productURL
	}
	e.Price, _ = jsonString(fields["price"])
	e.FESKU, _ = jsonString(fields["fe_sku"])
	e.Locale, _ = jsonString(fields["locale"])

	return nil
}

// jsonString returns value of raw JSON string, false for any other JSON type.
func jsonString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}

	return s, true
}

func toAppInventory(inventory *Inventory) *models.Inventory {
	return &models.Inventory{
		Success: inventory.Success,
		Entries: toAppEntries(inventory.ListMap),
	}
}

func toAppEntries(entries []InventoryEntry) []models.InventoryEntry {
	if len(entries) == 0 {
		return nil
	}
	appEntries := make([]models.InventoryEntry, 0, len(entries))
	for ix := range entries {
		appEntries = append(appEntries, models.InventoryEntry{
			HasActiveFlag: entries[ix].HasActiveFlag,
			Active:        entries[ix].IsActive == activeValue,
			ProductURL:    entries[ix].ProductURL,
			Price:         entries[ix].Price,
			FESKU:         entries[ix].FESKU,
			Locale:        entries[ix].Locale,
		})
	}
	return appEntries
}
