package storagetesting

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/MichalMitros/stock-watcher/internal/platform/storage"
	pgmodels "github.com/MichalMitros/stock-watcher/internal/platform/storage/gen/postgres/public/model"
	"github.com/MichalMitros/stock-watcher/internal/platform/storage/gen/postgres/public/table"
	"github.com/go-jet/jet/v2/qrm"

	_ "github.com/lib/pq"
)

// Open opens connection to DB and creates missing tables.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("please provide database URL via DATABASE_URL environment variable")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("can't open connection to %q: %s", dbURL, err)
	}

	if err := storage.NewPostgres(db).Migrate(context.Background()); err != nil {
		t.Fatal("can't migrate database", err)
	}

	return db
}

// InsertSnapshot is a helper test function to insert snapshot row.
func InsertSnapshot(t *testing.T, exc qrm.Executable, snapshot pgmodels.Snapshot) {
	t.Helper()

	_, err := table.Snapshot.INSERT(table.Snapshot.AllColumns).MODEL(snapshot).Exec(exc)
	if err != nil {
		t.Fatal("can't insert snapshot", err)
	}
}

// InsertItems is a helper test function to insert item snapshots.
func InsertItems(t *testing.T, exc qrm.Executable, items ...pgmodels.ItemSnapshot) {
	t.Helper()

	if len(items) == 0 {
		return
	}

	toInsert := make([]pgmodels.ItemSnapshot, 0, len(items))
	toInsert = append(toInsert, items...)

	_, err := table.ItemSnapshot.INSERT(table.ItemSnapshot.AllColumns).MODELS(toInsert).Exec(exc)
	if err != nil {
		t.Fatal("can't insert items", err)
	}
}

// GetSnapshots is a helper test function to get all snapshot rows.
func GetSnapshots(t *testing.T, queryable qrm.Queryable) []pgmodels.Snapshot {
	t.Helper()

	snapshots := []pgmodels.Snapshot{}
	err := table.Snapshot.SELECT(table.Snapshot.AllColumns).
		WHERE(table.Snapshot.ID.IS_NOT_NULL()).
		Query(queryable, &snapshots)
	if err != nil {
		t.Fatal("can't get snapshots", err)
	}

	return snapshots
}

// GetItems is a helper test function to get all item snapshots in position order.
func GetItems(t *testing.T, queryable qrm.Queryable) []pgmodels.ItemSnapshot {
	t.Helper()

	items := []pgmodels.ItemSnapshot{}
	err := table.ItemSnapshot.SELECT(table.ItemSnapshot.AllColumns).
		WHERE(table.ItemSnapshot.Identifier.IS_NOT_NULL()).
		ORDER_BY(table.ItemSnapshot.Position.ASC()).
		Query(queryable, &items)
	if err != nil {
		t.Fatal("can't get items", err)
	}

	return items
}

// CleanupData is a helper test function to delete all stored data.
func CleanupData(t *testing.T, exc qrm.Executable) {
	t.Helper()

	_, err := table.ItemSnapshot.DELETE().WHERE(table.ItemSnapshot.Identifier.IS_NOT_NULL()).Exec(exc)
	if err != nil {
		t.Fatal("can't delete items data", err)
	}

	_, err = table.Snapshot.DELETE().WHERE(table.Snapshot.ID.IS_NOT_NULL()).Exec(exc)
	if err != nil {
		t.Fatal("can't delete snapshots data", err)
	}
}
