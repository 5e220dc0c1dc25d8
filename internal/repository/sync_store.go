package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/syncer"
)

// SyncStore is the PostgreSQL storage backend of the reconciliation
// engine. Table and column names come from entity sync specs, never from
// user input.
type SyncStore struct {
	db *sqlx.DB
}

// NewSyncStore creates a new SyncStore.
func NewSyncStore(db *sqlx.DB) *SyncStore {
	return &SyncStore{db: db}
}

// ExistsByPK reports whether a row with the given surrogate key exists.
func (s *SyncStore) ExistsByPK(ctx context.Context, table, pkColumn string, pk any) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)", table, pkColumn)
	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, pk); err != nil {
		return false, err
	}
	return exists, nil
}

// LookupID resolves a conjunctive equality predicate over natural-key
// columns to the internal identifier of at most one row. The uniqueness
// constraint makes more than one match impossible; the first row is taken
// without a defensive check.
func (s *SyncStore) LookupID(ctx context.Context, table, pkColumn string, keys []syncer.FieldValue) (int64, bool, error) {
	conditions := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for i, kv := range keys {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", kv.Column, i+1))
		args = append(args, kv.Value)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s LIMIT 1",
		pkColumn, table, strings.Join(conditions, " AND "),
	)

	var id int64
	err := s.db.GetContext(ctx, &id, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// ApplyCommit performs the three set operations of a sync run inside one
// transaction: update matched rows, delete rows whose primary key was not
// seen in the batch, insert new rows with uniqueness conflicts dropped.
// Any failure rolls back the whole run.
func (s *SyncStore) ApplyCommit(ctx context.Context, commit syncer.Commit) (syncer.CommitResult, error) {
	var result syncer.CommitResult
	spec := commit.Spec

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, err
	}
	defer tx.Rollback()

	if spec.Update {
		if result.Updated, err = applyUpdates(ctx, tx, spec, commit.Updated); err != nil {
			return result, err
		}
	}
	if result.Deleted, err = deleteUnseen(ctx, tx, spec, commit.Seen); err != nil {
		return result, err
	}
	if result.Created, err = insertCreated(ctx, tx, spec, commit.Created); err != nil {
		return result, err
	}
	result.Suppressed = len(commit.Created) - result.Created

	if err := tx.Commit(); err != nil {
		return result, err
	}
	return result, nil
}

// applyUpdates rewrites the non-key mapped columns of matched rows.
func applyUpdates(ctx context.Context, tx *sqlx.Tx, spec syncer.Spec, rows []syncer.Row) (int, error) {
	columns := spec.UpdateColumns()
	if len(columns) == 0 || len(rows) == 0 {
		return 0, nil
	}

	sets := make([]string, len(columns))
	for i, column := range columns {
		sets[i] = fmt.Sprintf("%s = $%d", column, i+1)
	}
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d",
		spec.Table, strings.Join(sets, ", "), spec.PKColumn, len(columns)+1,
	)

	updated := 0
	for _, row := range rows {
		args := make([]any, 0, len(columns)+1)
		for _, column := range columns {
			args = append(args, row[column])
		}
		args = append(args, row[spec.PKColumn])

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return updated, fmt.Errorf("updating %s row: %w", spec.Table, err)
		}
		n, _ := res.RowsAffected()
		updated += int(n)
	}
	return updated, nil
}

// deleteUnseen removes every row whose primary key did not appear in the
// batch. An empty seen set empties the table: the batch is authoritative
// for the entity's full current world.
func deleteUnseen(ctx context.Context, tx *sqlx.Tx, spec syncer.Spec, seen []any) (int, error) {
	var (
		query string
		args  []any
		err   error
	)
	if len(seen) == 0 {
		query = fmt.Sprintf("DELETE FROM %s", spec.Table)
	} else {
		query, args, err = sqlx.In(
			fmt.Sprintf("DELETE FROM %s WHERE %s NOT IN (?)", spec.Table, spec.PKColumn), seen,
		)
		if err != nil {
			return 0, err
		}
		query = tx.Rebind(query)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting unseen %s rows: %w", spec.Table, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// insertCreated bulk-creates new rows, silently dropping duplicates within
// the batch or against concurrently created rows.
func insertCreated(ctx context.Context, tx *sqlx.Tx, spec syncer.Spec, rows []syncer.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	columns := spec.InsertColumns()
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
		spec.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)

	created := 0
	for _, row := range rows {
		args := make([]any, 0, len(columns))
		for _, column := range columns {
			args = append(args, row[column])
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return created, fmt.Errorf("inserting %s row: %w", spec.Table, err)
		}
		n, _ := res.RowsAffected()
		created += int(n)
	}
	return created, nil
}
