package catalog_test

import (
	"strings"
	"testing"
	"time"

	"github.com/MichalMitros/stock-watcher/internal/catalog"
	"github.com/MichalMitros/stock-watcher/internal/platform"
	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
baseEndpoint: https://inventory.test/v1?skus={sku}
defaultRegion: de-de
alternateRegions: [de-de, sv-se]
regions:
  - {name: Germany, code: de-de}
  - {name: Austria, code: de-at}
  - {name: Sweden, code: sv-se}
  - {name: United Kingdom, code: en-gb}
products:
  - identifier: "5090"
    defaultSku: SKU590
    included: true
  - identifier: "5080"
    defaultSku: SKU580
    included: true
    alternateEndpoint: https://inventory-eu.test/v1?skus={sku}&locale={region}
  - identifier: "4090"
    defaultSku: SKU490
    skuOverrides:
      en-gb: SKU490_UK
`

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.Load(strings.NewReader(testCatalog))
	require.NoError(t, err, "should load test catalog")

	return cat
}

func TestUnitDefaultCatalog(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err, "embedded catalog should be valid")

	assert.True(t, cat.ValidRegion(cat.DefaultRegion()), "default region should be supported")
	assert.NotEmpty(t, cat.Products(), "should contain products")
}

func TestUnitLoadInvalidCatalog(t *testing.T) {
	tests := map[string]struct {
		doc       string
		wantErr   error
		wantInMsg string
	}{
		"unknown default region": {
			doc:     "baseEndpoint: x\ndefaultRegion: xx-xx\nregions: [{name: Germany, code: de-de}]\n",
			wantErr: platform.ErrUnknownRegion,
		},
		"duplicated product": {
			doc: "baseEndpoint: x\ndefaultRegion: de-de\nregions: [{name: Germany, code: de-de}]\n" +
				"products: [{identifier: a, defaultSku: A}, {identifier: a, defaultSku: B}]\n",
			wantInMsg: "duplicated product identifier",
		},
		"missing endpoint": {
			doc:       "defaultRegion: de-de\nregions: [{name: Germany, code: de-de}]\n",
			wantInMsg: "base endpoint is empty",
		},
		"unknown field": {
			doc:       "baseEndpoint: x\ndefaultRegion: de-de\nregion: de-de\n",
			wantInMsg: "can't decode catalog",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Load(strings.NewReader(tt.doc))

			require.Error(t, err, "should reject catalog")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr, "should return correct error")
			}
			if tt.wantInMsg != "" {
				require.ErrorContains(t, err, tt.wantInMsg, "should return correct error")
			}
		})
	}
}

func TestUnitResolveSKU(t *testing.T) {
	product := catalog.Product{
		Identifier:   "4090",
		DefaultSKU:   "DEFAULT",
		SKUOverrides: map[string]string{"en-gb": "OVERRIDE"},
	}
	dynamic := models.SKUTable{
		"en-gb": {"4090": {SKU: "DYNAMIC"}},
		"de-de": {"4090": {SKU: "DYNAMIC_DE"}},
		"sv-se": {"4090": {SKU: ""}},
	}

	tests := map[string]struct {
		region  string
		dynamic models.SKUTable
		want    string
	}{
		"dynamic wins over override": {region: "en-gb", dynamic: dynamic, want: "DYNAMIC"},
		"dynamic wins over default":  {region: "de-de", dynamic: dynamic, want: "DYNAMIC_DE"},
		"override wins over default": {region: "en-gb", want: "OVERRIDE"},
		"empty dynamic sku ignored":  {region: "sv-se", dynamic: dynamic, want: "DEFAULT"},
		"default":                    {region: "de-at", dynamic: dynamic, want: "DEFAULT"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.ResolveSKU(product, tt.region, tt.dynamic), "should resolve correct sku")
		})
	}
}

func TestUnitBuildItems(t *testing.T) {
	cat := newCatalog(t)

	items := cat.BuildItems("en-gb", nil, nil)

	require.Len(t, items, 3, "should build item per product")
	assert.Equal(t, []string{"5090", "5080", "4090"},
		lo.Map(items, func(i models.Item, _ int) string { return i.Identifier }),
		"should keep catalog order",
	)
	assert.Equal(t, models.Item{
		Identifier:    "4090",
		SKU:           "SKU490_UK",
		QueryEndpoint: "https://inventory.test/v1?skus=SKU490_UK",
		Region:        "en-gb",
	}, items[2], "should build item from catalog")
	assert.Equal(t, "https://inventory-eu.test/v1?skus=SKU580&locale=en-gb", items[1].AlternateEndpoint,
		"should expand alternate endpoint template",
	)
	assert.True(t, items[0].Included, "should include by default")
	assert.False(t, items[2].Included, "should exclude by default")

	assert.Equal(t, items, cat.BuildItems("en-gb", nil, nil), "should be deterministic")
}

func TestUnitBuildItemsLastChange(t *testing.T) {
	cat := newCatalog(t)
	dynamic := models.SKUTable{"de-de": {
		"5090": {SKU: "NEW590", LastChange: "2025-01-30T14:00:00Z"},
		"5080": {SKU: "NEW580", LastChange: "not a date"},
	}}

	items := cat.BuildItems("de-de", dynamic, nil)

	require.NotNil(t, items[0].LastChangedAt, "should parse last change")
	assert.Equal(t, time.Date(2025, time.January, 30, 14, 0, 0, 0, time.UTC), *items[0].LastChangedAt)
	assert.Equal(t, "NEW590", items[0].SKU, "should use dynamic sku")
	assert.Nil(t, items[1].LastChangedAt, "should ignore invalid last change")
	assert.Nil(t, items[2].LastChangedAt, "should leave last change empty without dynamic data")
}

func TestUnitBuildItemsCarryOver(t *testing.T) {
	cat := newCatalog(t)
	seen := time.Date(2025, time.January, 30, 14, 0, 0, 0, time.UTC)

	prior := cat.BuildItems("de-de", nil, nil)
	prior[0].Included = false
	prior[2].Included = true
	prior[2].Available = true
	prior[2].APIReachable = true
	prior[2].ProductURL = lo.ToPtr("https://shop.test/4090")
	prior[2].LastSeenAt = &seen

	t.Run("same region keeps observations", func(t *testing.T) {
		items := cat.BuildItems("de-de", models.SKUTable{"de-de": {"4090": {SKU: "NEW"}}}, prior)

		assert.False(t, items[0].Included, "should carry inclusion")
		assert.True(t, items[2].Included, "should carry inclusion")
		assert.True(t, items[2].Available, "should carry availability")
		assert.True(t, items[2].APIReachable, "should carry reachability")
		assert.Equal(t, prior[2].ProductURL, items[2].ProductURL, "should carry product url")
		assert.Equal(t, &seen, items[2].LastSeenAt, "should carry last seen")
		assert.Equal(t, "NEW", items[2].SKU, "should use refreshed sku")
	})

	t.Run("region switch produces fresh items", func(t *testing.T) {
		items := cat.BuildItems("sv-se", nil, prior)

		assert.False(t, items[0].Included, "should carry inclusion")
		assert.True(t, items[2].Included, "should carry inclusion")
		for _, item := range items {
			assert.Equal(t, "sv-se", item.Region, "should label new region")
			assert.False(t, item.Available, "shouldn't carry availability")
			assert.False(t, item.APIReachable, "shouldn't carry reachability")
			assert.Nil(t, item.ProductURL, "shouldn't carry product url")
			assert.Nil(t, item.LastSeenAt, "shouldn't carry last seen")
		}
	})
}

func TestUnitResolveEndpoint(t *testing.T) {
	cat := newCatalog(t)
	items := cat.BuildItems("de-de", nil, nil)

	tests := map[string]struct {
		item   models.Item
		region string
		want   string
	}{
		"base endpoint": {
			item:   items[0],
			region: "de-at",
			want:   "https://inventory.test/v1?skus=SKU590&locale=de-at",
		},
		"alternate region without alternate endpoint": {
			item:   items[0],
			region: "de-de",
			want:   "https://inventory.test/v1?skus=SKU590&locale=de-de",
		},
		"alternate endpoint": {
			item:   items[1],
			region: "sv-se",
			want:   "https://inventory-eu.test/v1?skus=SKU580&locale=sv-se",
		},
		"non alternate region ignores alternate endpoint": {
			item:   items[1],
			region: "en-gb",
			want:   "https://inventory.test/v1?skus=SKU580&locale=en-gb",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := cat.ResolveEndpoint(tt.item, tt.region)

			require.NoError(t, err, "shouldn't return error")
			assert.Equal(t, tt.want, got, "should resolve correct endpoint")
		})
	}
}

func TestUnitDetectRegion(t *testing.T) {
	cat := newCatalog(t)

	tests := map[string]string{
		"de_AT.UTF-8": "de-at",
		"sv-SE":       "sv-se",
		"de_CH":       "de-de",
		"en_US.UTF-8": "en-gb",
		"ja_JP":       "de-de",
		"":            "de-de",
	}

	for tag, want := range tests {
		t.Run(tag, func(t *testing.T) {
			assert.Equal(t, want, cat.DetectRegion(tag), "should detect correct region")
		})
	}
}
