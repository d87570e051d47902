package models

import "time"

// Item is one tracked product in one region.
type Item struct {
	Identifier        string
	SKU               string
	QueryEndpoint     string
	AlternateEndpoint string
	Included          bool
	Available         bool
	APIReachable      bool
	APIError          bool
	ProductURL        *string
	LastSeenAt        *time.Time
	LastChangedAt     *time.Time
	Region            string
}

// Snapshot is reconciled item list observed in one region.
type Snapshot struct {
	Region     string
	Items      []Item
	ObservedAt time.Time
}

// State is watcher state exposed to collaborators.
type State struct {
	Region  string
	Items   []Item
	Loading bool
	Active  bool
	Err     error
}

// SKUDetail is dynamically fetched SKU metadata of single product.
type SKUDetail struct {
	SKU        string `json:"sku"`
	OldSKU     string `json:"old_sku"`
	LastChange string `json:"last_change"`
}

// SKUTable maps region to product identifier to SKU metadata.
type SKUTable map[string]map[string]SKUDetail

// Lookup returns SKU metadata for identifier in region.
func (t SKUTable) Lookup(region, identifier string) (SKUDetail, bool) {
	if t == nil {
		return SKUDetail{}, false
	}
	detail, ok := t[region][identifier]
	return detail, ok
}

// Inventory is decoded upstream inventory response.
type Inventory struct {
	Success bool
	Entries []InventoryEntry
}

// InventoryEntry is single status entry of inventory response.
// HasActiveFlag reports whether upstream sent the flag at all, Active is set
// only for the literal "true" string value.
type InventoryEntry struct {
	HasActiveFlag bool
	Active        bool
	ProductURL    *string
	Price         string
	FESKU         string
	Locale        string
}

// Settings holds user-configured alert settings.
type Settings struct {
	Volume          float64
	Repetitions     int
	APIAlarmEnabled bool
	RefreshInterval time.Duration
	ChatBotURL      string
	TopicName       string
}

// AlertKind is kind of availability transition.
type AlertKind string

const (
	// AlertStock is raised when item becomes available.
	AlertStock AlertKind = "stock"
	// AlertAPIDown is raised when item's API stops returning well-formed responses.
	AlertAPIDown AlertKind = "api_down"
)

// Alert is single qualifying transition of an item.
type Alert struct {
	Kind    AlertKind
	Item    Item
	Message string
}
