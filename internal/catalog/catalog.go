package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/MichalMitros/stock-watcher/internal/platform"
	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/samber/lo"
	"go.yaml.in/yaml/v3"
)

//go:embed catalog.yaml
var defaultCatalog string

const (
	skuPlaceholder    = "{sku}"
	regionPlaceholder = "{region}"
	localeParam       = "locale"
)

// lastChangeLayouts are accepted formats of dynamic SKU last change timestamps.
var lastChangeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Region is storefront region.
type Region struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// Product is trackable product configuration.
type Product struct {
	Identifier        string            `yaml:"identifier"`
	DefaultSKU        string            `yaml:"defaultSku"`
	Included          bool              `yaml:"included"`
	SKUOverrides      map[string]string `yaml:"skuOverrides"`
	AlternateEndpoint string            `yaml:"alternateEndpoint"`
}

// Config is catalog document.
type Config struct {
	BaseEndpoint     string    `yaml:"baseEndpoint"`
	DefaultRegion    string    `yaml:"defaultRegion"`
	AlternateRegions []string  `yaml:"alternateRegions"`
	Regions          []Region  `yaml:"regions"`
	Products         []Product `yaml:"products"`
}

// Catalog holds trackable products and resolves their per-region endpoints.
// It never does network I/O.
type Catalog struct {
	cfg       Config
	regions   map[string]struct{}
	alternate map[string]struct{}
}

// Default returns catalog embedded into the binary.
func Default() (*Catalog, error) {
	return Load(strings.NewReader(defaultCatalog))
}

// LoadFile returns catalog read from file at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open catalog file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes and validates yaml catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("can't decode catalog: %w", err)
	}

	return New(cfg)
}

// New returns new Catalog for provided config.
func New(cfg Config) (*Catalog, error) {
	if cfg.BaseEndpoint == "" {
		return nil, errors.New("catalog base endpoint is empty")
	}
	if len(cfg.Regions) == 0 {
		return nil, errors.New("catalog has no regions")
	}

	cat := &Catalog{
		cfg: cfg,
		regions: lo.SliceToMap(cfg.Regions, func(r Region) (string, struct{}) {
			return r.Code, struct{}{}
		}),
		alternate: lo.SliceToMap(cfg.AlternateRegions, func(code string) (string, struct{}) {
			return code, struct{}{}
		}),
	}

	if !cat.ValidRegion(cfg.DefaultRegion) {
		return nil, fmt.Errorf("default region %q: %w", cfg.DefaultRegion, platform.ErrUnknownRegion)
	}

	if dup := lo.FindDuplicatesBy(cfg.Products, func(p Product) string { return p.Identifier }); len(dup) > 0 {
		return nil, fmt.Errorf("duplicated product identifier %q", dup[0].Identifier)
	}

	return cat, nil
}

// DefaultRegion returns region used when no other is selected.
func (c *Catalog) DefaultRegion() string {
	return c.cfg.DefaultRegion
}

// ValidRegion reports whether region is in the catalog.
func (c *Catalog) ValidRegion(region string) bool {
	_, ok := c.regions[region]
	return ok
}

// Products returns configured products in display order.
func (c *Catalog) Products() []Product {
	return append([]Product(nil), c.cfg.Products...)
}

// DetectRegion returns region matching language tag (e.g. "de_AT.UTF-8" or "de-at").
// Exact matches win over primary subtag matches. Default region is returned
// when nothing matches.
func (c *Catalog) DetectRegion(tag string) string {
	tag, _, _ = strings.Cut(tag, ".")
	tag = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	if tag == "" {
		return c.cfg.DefaultRegion
	}

	if c.ValidRegion(tag) {
		return tag
	}

	primary, _, _ := strings.Cut(tag, "-")
	if region, ok := lo.Find(c.cfg.Regions, func(r Region) bool {
		return strings.HasPrefix(r.Code, primary+"-")
	}); ok {
		return region.Code
	}

	return c.cfg.DefaultRegion
}

// BuildItems returns item list for region.
//
// If prior is not nil, Included is copied from prior item with the same identifier.
// Observation fields are carried over only from prior items of the same region.
func (c *Catalog) BuildItems(region string, dynamic models.SKUTable, prior []models.Item) []models.Item {
	priorByID := lo.KeyBy(prior, func(item models.Item) string { return item.Identifier })

	items := make([]models.Item, 0, len(c.cfg.Products))
	for _, product := range c.cfg.Products {
		sku := ResolveSKU(product, region, dynamic)
		item := models.Item{
			Identifier:    product.Identifier,
			SKU:           sku,
			QueryEndpoint: expand(c.cfg.BaseEndpoint, sku, region),
			Included:      product.Included,
			Region:        region,
		}
		if product.AlternateEndpoint != "" {
			item.AlternateEndpoint = expand(product.AlternateEndpoint, sku, region)
		}
		if detail, ok := dynamic.Lookup(region, product.Identifier); ok {
			item.LastChangedAt = parseLastChange(detail.LastChange)
		}

		if prev, ok := priorByID[product.Identifier]; ok {
			item.Included = prev.Included
			if prev.Region == region {
				item.Available = prev.Available
				item.APIReachable = prev.APIReachable
				item.APIError = prev.APIError
				item.ProductURL = prev.ProductURL
				item.LastSeenAt = prev.LastSeenAt
			}
		}

		items = append(items, item)
	}

	return items
}

// ResolveEndpoint returns query URL of item for region. Alternate endpoint is used
// for alternate regions when item has one. Region is always set as locale parameter.
func (c *Catalog) ResolveEndpoint(item models.Item, region string) (string, error) {
	endpoint := item.QueryEndpoint
	if _, ok := c.alternate[region]; ok && item.AlternateEndpoint != "" {
		endpoint = item.AlternateEndpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("can't parse endpoint of %q: %w", item.Identifier, err)
	}

	query := u.Query()
	if query.Has(localeParam) {
		query.Del(localeParam)
		u.RawQuery = query.Encode()
	}

	locale := localeParam + "=" + url.QueryEscape(region)
	if u.RawQuery == "" {
		u.RawQuery = locale
	} else {
		u.RawQuery += "&" + locale
	}

	return u.String(), nil
}

// ResolveSKU returns SKU of product in region. Dynamic SKU takes precedence over
// per-region override, which takes precedence over the default SKU.
func ResolveSKU(product Product, region string, dynamic models.SKUTable) string {
	if detail, ok := dynamic.Lookup(region, product.Identifier); ok && detail.SKU != "" {
		return detail.SKU
	}
	if sku, ok := product.SKUOverrides[region]; ok && sku != "" {
		return sku
	}
	return product.DefaultSKU
}

func expand(template, sku, region string) string {
	return strings.NewReplacer(
		skuPlaceholder, url.QueryEscape(sku),
		regionPlaceholder, url.QueryEscape(region),
	).Replace(template)
}

func parseLastChange(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range lastChangeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return lo.ToPtr(t.UTC())
		}
	}
	return nil
}
