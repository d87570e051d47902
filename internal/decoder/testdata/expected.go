package testdata

import (
	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/samber/lo"
)

// Inventory is expected result of decoding inventory.json.
var Inventory = &models.Inventory{
	Success: true,
	Entries: []models.InventoryEntry{
		{
			HasActiveFlag: true,
			ProductURL:    lo.ToPtr("https://marketplace.nvidia.com/de-de/consumer/graphics-cards/rtx-5080/"),
			Price:         "1169.00",
			FESKU:         "NVGFT580",
			Locale:        "DE",
		},
		{
			HasActiveFlag: true,
			Active:        true,
			ProductURL:    lo.ToPtr("https://marketplace.nvidia.com/de-de/consumer/graphics-cards/rtx-5080-oc/"),
			Price:         "1189.00",
			FESKU:         "NVGFT580",
			Locale:        "DE",
		},
	},
}

// SKUTable is expected result of decoding skus.json.
var SKUTable = models.SKUTable{
	"de-de": {
		"5090": {SKU: "PRO590DE", OldSKU: "NVGFT590", LastChange: "2025-01-30T14:00:00Z"},
		"5080": {SKU: "PRO580DE", OldSKU: "NVGFT580", LastChange: "2025-01-30T14:05:00Z"},
	},
	"fr-fr": {},
}
