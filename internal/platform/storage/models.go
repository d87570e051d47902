package storage

import (
	"time"

	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/samber/lo"

	pgmodels "github.com/MichalMitros/stock-watcher/internal/platform/storage/gen/postgres/public/model"
)

//go:generate jet -dsn=$DATABASE_URL -schema=public -path=./gen

func toDBSnapshot(snapshot models.Snapshot) *pgmodels.Snapshot {
	return &pgmodels.Snapshot{
		ID:         snapshotID,
		Region:     snapshot.Region,
		ObservedAt: snapshot.ObservedAt,
	}
}

func toDBItems(items []models.Item) []pgmodels.ItemSnapshot {
	return lo.Map(items, func(item models.Item, ix int) pgmodels.ItemSnapshot {
		return *ToDBItem(&item, int32(ix))
	})
}

// ToDBItem converts models.Item into postgres item snapshot model.
func ToDBItem(item *models.Item, position int32) *pgmodels.ItemSnapshot {
	return &pgmodels.ItemSnapshot{
		Identifier:        item.Identifier,
		Position:          position,
		Sku:               item.SKU,
		QueryEndpoint:     item.QueryEndpoint,
		AlternateEndpoint: item.AlternateEndpoint,
		Included:          item.Included,
		Available:         item.Available,
		APIReachable:      item.APIReachable,
		APIError:          item.APIError,
		ProductURL:        item.ProductURL,
		LastSeenAt:        item.LastSeenAt,
		LastChangedAt:     item.LastChangedAt,
		Region:            item.Region,
	}
}

func toAppSnapshot(snapshot *pgmodels.Snapshot, items []pgmodels.ItemSnapshot) *models.Snapshot {
	return &models.Snapshot{
		Region:     snapshot.Region,
		ObservedAt: snapshot.ObservedAt.UTC(),
		Items: lo.Map(items, func(item pgmodels.ItemSnapshot, _ int) models.Item {
			return ToAppItem(&item)
		}),
	}
}

// ToAppItem converts postgres item snapshot model into models.Item.
func ToAppItem(item *pgmodels.ItemSnapshot) models.Item {
	return models.Item{
		Identifier:        item.Identifier,
		SKU:               item.Sku,
		QueryEndpoint:     item.QueryEndpoint,
		AlternateEndpoint: item.AlternateEndpoint,
		Included:          item.Included,
		Available:         item.Available,
		APIReachable:      item.APIReachable,
		APIError:          item.APIError,
		ProductURL:        item.ProductURL,
		LastSeenAt:        utc(item.LastSeenAt),
		LastChangedAt:     utc(item.LastChangedAt),
		Region:            item.Region,
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return lo.ToPtr(t.UTC())
}
