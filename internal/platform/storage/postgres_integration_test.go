package storage_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/MichalMitros/stock-watcher/internal/platform/models/modelstesting"
	"github.com/MichalMitros/stock-watcher/internal/platform/storage"
	pgmodels "github.com/MichalMitros/stock-watcher/internal/platform/storage/gen/postgres/public/model"
	"github.com/MichalMitros/stock-watcher/internal/platform/storage/storagetesting"
	_ "github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

func TestPostgresIntegration(t *testing.T) {
	suite.Run(t, new(PostgresTestSuite))
}

type PostgresTestSuite struct {
	suite.Suite
	DB *sql.DB
}

func (s *PostgresTestSuite) SetupSuite() {
	s.DB = storagetesting.Open(s.T())
	storagetesting.CleanupData(s.T(), s.DB)
}

func (s *PostgresTestSuite) TearDownSuite() {
	storagetesting.CleanupData(s.T(), s.DB)
	if err := s.DB.Close(); err != nil {
		s.FailNow("close DB", err)
	}
}

func (s *PostgresTestSuite) TestIntegrationSaveSnapshot() {
	observedAt := time.Date(2025, time.January, 30, 14, 0, 0, 0, time.UTC)
	items := modelstesting.FakeItems(3, func(i *models.Item) {
		i.APIReachable = true
		i.LastSeenAt = lo.ToPtr(observedAt.Add(-time.Minute))
	})
	items[1].Included = false
	items[2].ProductURL = lo.ToPtr("https://store.test/5090")

	tests := map[string]struct {
		storedSnapshot *pgmodels.Snapshot
		storedItems    []pgmodels.ItemSnapshot
		snapshot       models.Snapshot
		wantItems      []models.Item
	}{
		"first snapshot": {
			snapshot: models.Snapshot{
				Region:     "de-de",
				Items:      items,
				ObservedAt: observedAt,
			},
			wantItems: items,
		},
		"replaces previous snapshot": {
			storedSnapshot: &pgmodels.Snapshot{
				ID:         1,
				Region:     "fi-fi",
				ObservedAt: observedAt.Add(-time.Hour),
			},
			storedItems: []pgmodels.ItemSnapshot{
				*storage.ToDBItem(lo.ToPtr(modelstesting.FakeItem(func(i *models.Item) { i.Identifier = "stale-item" })), 0),
				*storage.ToDBItem(&items[0], 5),
			},
			snapshot: models.Snapshot{
				Region:     "de-de",
				Items:      items,
				ObservedAt: observedAt,
			},
			wantItems: items,
		},
		"empty snapshot": {
			storedSnapshot: &pgmodels.Snapshot{
				ID:         1,
				Region:     "de-de",
				ObservedAt: observedAt.Add(-time.Hour),
			},
			storedItems: []pgmodels.ItemSnapshot{
				*storage.ToDBItem(&items[0], 0),
			},
			snapshot: models.Snapshot{
				Region:     "sv-se",
				ObservedAt: observedAt,
			},
			wantItems: []models.Item{},
		},
	}

	for name, tt := range tests {
		s.Run(name, func() {
			defer storagetesting.CleanupData(s.T(), s.DB)

			if tt.storedSnapshot != nil {
				storagetesting.InsertSnapshot(s.T(), s.DB, *tt.storedSnapshot)
			}
			storagetesting.InsertItems(s.T(), s.DB, tt.storedItems...)

			post := storage.NewPostgres(s.DB)

			err := post.SaveSnapshot(context.TODO(), tt.snapshot)
			s.Require().NoError(err, "shouldn't return any error")

			snapshots := storagetesting.GetSnapshots(s.T(), s.DB)
			s.Require().Len(snapshots, 1, "should keep single snapshot")
			s.Equal(tt.snapshot.Region, snapshots[0].Region, "should save region")
			s.True(tt.snapshot.ObservedAt.Equal(snapshots[0].ObservedAt), "should save observation time")

			stored := lo.Map(storagetesting.GetItems(s.T(), s.DB), func(item pgmodels.ItemSnapshot, _ int) models.Item {
				return storage.ToAppItem(&item)
			})
			s.Equal(tt.wantItems, stored, "should save items in order")
		})
	}
}

func (s *PostgresTestSuite) TestIntegrationLoadSnapshot() {
	observedAt := time.Date(2025, time.January, 30, 14, 0, 0, 0, time.UTC)
	items := []models.Item{
		modelstesting.FakeObservedItem(func(i *models.Item) { i.Identifier = "5090" }),
		modelstesting.FakeItem(func(i *models.Item) { i.Identifier = "5080"; i.Included = false }),
	}

	s.Run("no snapshot", func() {
		storagetesting.CleanupData(s.T(), s.DB)

		snapshot, err := storage.NewPostgres(s.DB).LoadSnapshot(context.TODO())

		s.Require().NoError(err, "shouldn't return any error")
		s.Nil(snapshot, "should return nil snapshot")
	})

	s.Run("stored snapshot", func() {
		defer storagetesting.CleanupData(s.T(), s.DB)

		storagetesting.InsertSnapshot(s.T(), s.DB, pgmodels.Snapshot{ID: 1, Region: "de-de", ObservedAt: observedAt})
		storagetesting.InsertItems(s.T(), s.DB,
			*storage.ToDBItem(&items[1], 1),
			*storage.ToDBItem(&items[0], 0),
		)

		snapshot, err := storage.NewPostgres(s.DB).LoadSnapshot(context.TODO())

		s.Require().NoError(err, "shouldn't return any error")
		s.Require().NotNil(snapshot, "should return snapshot")
		s.Equal("de-de", snapshot.Region, "should load region")
		s.Equal(observedAt, snapshot.ObservedAt, "should load observation time")
		s.Equal(items, snapshot.Items, "should load items in position order")
	})
}

func (s *PostgresTestSuite) TestIntegrationRoundTrip() {
	defer storagetesting.CleanupData(s.T(), s.DB)

	post := storage.NewPostgres(s.DB)
	want := models.Snapshot{
		Region:     "sv-se",
		Items:      modelstesting.FakeItems(5, func(i *models.Item) { i.Region = "sv-se" }),
		ObservedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	s.Require().NoError(post.SaveSnapshot(context.TODO(), want), "should save snapshot")
	s.Require().NoError(post.SaveSnapshot(context.TODO(), want), "should save snapshot again")

	got, err := post.LoadSnapshot(context.TODO())

	s.Require().NoError(err, "shouldn't return any error")
	s.Equal(&want, got, "should load saved snapshot")
}
