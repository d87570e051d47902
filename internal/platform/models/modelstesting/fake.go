package modelstesting

import (
	"math/rand"
	"time"

	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/go-faker/faker/v4"
	"github.com/samber/lo"
)

// FakeItem returns models.Item with fake data. Returned item is included, unavailable
// and has never been polled.
func FakeItem(ops ...func(i *models.Item)) models.Item {
	sku := faker.Word()
	item := models.Item{
		Identifier:    faker.Word(),
		SKU:           sku,
		QueryEndpoint: "https://" + faker.DomainName() + "/inventory?skus=" + sku,
		Included:      true,
		Region:        "de-de",
	}

	for _, op := range ops {
		op(&item)
	}

	return item
}

// FakeItems returns n fake items with unique identifiers.
func FakeItems(n int, ops ...func(i *models.Item)) []models.Item {
	items := make([]models.Item, 0, n)
	seen := make(map[string]struct{}, n)
	for len(items) < n {
		item := FakeItem(ops...)
		if _, ok := seen[item.Identifier]; ok {
			continue
		}
		seen[item.Identifier] = struct{}{}
		items = append(items, item)
	}

	return items
}

// FakeObservedItem returns fake item which has been seen available in the past.
func FakeObservedItem(ops ...func(i *models.Item)) models.Item {
	seen := time.Now().UTC().Add(-time.Duration(rand.Intn(3600)) * time.Second).Truncate(time.Microsecond)
	return FakeItem(append([]func(i *models.Item){func(i *models.Item) {
		i.APIReachable = true
		i.ProductURL = lo.ToPtr("https://" + faker.DomainName() + "/" + faker.Word())
		i.LastSeenAt = &seen
	}}, ops...)...)
}
