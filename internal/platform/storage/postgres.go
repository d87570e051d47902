package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/MichalMitros/stock-watcher/internal/platform/models"
	"github.com/MichalMitros/stock-watcher/internal/platform/storage/gen/postgres/public/table"

	pgmodels "github.com/MichalMitros/stock-watcher/internal/platform/storage/gen/postgres/public/model"
	pg "github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
)

//go:embed schema.sql
var schema string

// snapshotID is ID of the only stored snapshot row.
const snapshotID = 1

// Postgres is storage for the most recent snapshot of watched items.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns new Postgres.
func NewPostgres(db *sql.DB) Postgres {
	return Postgres{
		db: db,
	}
}

// Migrate creates missing tables.
func (p Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("can't migrate database: %w", err)
	}
	return nil
}

// SaveSnapshot replaces stored snapshot.
func (p Postgres) SaveSnapshot(ctx context.Context, snapshot models.Snapshot) error {
	err := runInTransaction(ctx, p.db, func(tx *sql.Tx) error {
		if err := upsertSnapshot(ctx, tx, toDBSnapshot(snapshot)); err != nil {
			return fmt.Errorf("can't upsert snapshot: %w", err)
		}

		if err := deleteOtherItems(ctx, tx, snapshot.Items); err != nil {
			return fmt.Errorf("can't delete outdated items: %w", err)
		}

		if err := upsertItems(ctx, tx, toDBItems(snapshot.Items)); err != nil {
			return fmt.Errorf("can't upsert items: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("can't save snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot returns stored snapshot or nil if nothing was stored yet.
func (p Postgres) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	var snapshot pgmodels.Snapshot
	err := table.Snapshot.SELECT(table.Snapshot.AllColumns).
		WHERE(table.Snapshot.ID.EQ(pg.Int32(snapshotID))).
		QueryContext(ctx, p.db, &snapshot)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't get snapshot: %w", err)
	}

	items := []pgmodels.ItemSnapshot{}
	err = table.ItemSnapshot.SELECT(table.ItemSnapshot.AllColumns).
		ORDER_BY(table.ItemSnapshot.Position.ASC()).
		QueryContext(ctx, p.db, &items)
	if err != nil && !errors.Is(err, qrm.ErrNoRows) {
		return nil, fmt.Errorf("can't get snapshot items: %w", err)
	}

	return toAppSnapshot(&snapshot, items), nil
}

func upsertSnapshot(ctx context.Context, db qrm.DB, snapshot *pgmodels.Snapshot) error {
	_, err := table.Snapshot.INSERT(table.Snapshot.AllColumns).
		MODEL(snapshot).
		ON_CONFLICT(table.Snapshot.ID).
		DO_UPDATE(
			pg.SET(
				table.Snapshot.MutableColumns.SET(pg.ROW(excluded(table.Snapshot.EXCLUDED.MutableColumns)...)),
			),
		).
		ExecContext(ctx, db)

	return err
}

func deleteOtherItems(ctx context.Context, db qrm.DB, items []models.Item) error {
	var condition pg.BoolExpression = table.ItemSnapshot.Identifier.IS_NOT_NULL()
	if len(items) > 0 {
		ids := make([]pg.Expression, 0, len(items))
		for ix := range items {
			ids = append(ids, pg.String(items[ix].Identifier))
		}
		condition = table.ItemSnapshot.Identifier.NOT_IN(ids...)
	}

	_, err := table.ItemSnapshot.DELETE().
		WHERE(condition).
		ExecContext(ctx, db)

	return err
}

func upsertItems(ctx context.Context, db qrm.DB, items []pgmodels.ItemSnapshot) error {
	if len(items) == 0 {
		return nil
	}

	_, err := table.ItemSnapshot.INSERT(table.ItemSnapshot.AllColumns).
		MODELS(items).
		ON_CONFLICT(table.ItemSnapshot.Identifier).
		DO_UPDATE(
			pg.SET(
				table.ItemSnapshot.MutableColumns.SET(pg.ROW(excluded(table.ItemSnapshot.EXCLUDED.MutableColumns)...)),
			),
		).
		ExecContext(ctx, db)

	return err
}

// excluded converts columns into expressions.
func excluded(columns pg.ColumnList) []pg.Expression {
	expressions := make([]pg.Expression, 0, len(columns))
	for _, col := range columns {
		expressions = append(expressions, col)
	}
	return expressions
}

func runInTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	var (
		tx  *sql.Tx
		err error
	)

	if tx, err = db.BeginTx(ctx, nil); err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("can't rollback transaction: %w (rollback reason: %w)", rbErr, err)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("can't commit transaction: %w", err)
	}

	return nil
}
