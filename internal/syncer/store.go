package syncer

import "context"

// FieldValue is one column/value equality in a natural-key predicate.
type FieldValue struct {
	Column string
	Value  any
}

// Commit is the write set produced by a scan: matched rows to update,
// new rows to insert, and the primary keys seen in the batch (the delete
// set is its complement).
type Commit struct {
	Spec    Spec
	Updated []Row
	Created []Row
	Seen    []any
}

// CommitResult reports what one atomic commit actually changed.
// Suppressed counts inserts dropped by uniqueness conflicts.
type CommitResult struct {
	Created    int
	Updated    int
	Deleted    int
	Suppressed int
}

// Store is the storage boundary of the reconciliation engine. Scan-phase
// lookups run outside any transaction; ApplyCommit must be all-or-nothing.
type Store interface {
	// ExistsByPK reports whether a row with the given surrogate key exists.
	ExistsByPK(ctx context.Context, table, pkColumn string, pk any) (bool, error)

	// LookupID resolves a natural-key predicate to the internal identifier
	// of at most one row. The second return is false when no row matches.
	LookupID(ctx context.Context, table, pkColumn string, keys []FieldValue) (int64, bool, error)

	// ApplyCommit performs the update/delete/insert set operations in a
	// single transaction.
	ApplyCommit(ctx context.Context, commit Commit) (CommitResult, error)
}
