package syncer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Reconciler syncs an externally fetched batch of records into a local
// table: create vs. update is decided per record by the entity's key
// strategy, and rows whose primary key never appeared in the batch are
// deleted. Running the same batch twice is a no-op on the second run.
type Reconciler struct {
	store Store
}

// New constructs a Reconciler on top of a Store.
func New(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Result summarizes one sync run.
type Result struct {
	Created    int
	Updated    int
	Deleted    int
	Suppressed int
	Skipped    int
}

// String renders the run summary in the operator-facing form.
func (r Result) String() string {
	return fmt.Sprintf("%d created, %d updated, %d deleted", r.Created, r.Updated, r.Deleted)
}

// Run scans the batch once, classifying every record as create or update,
// then commits the three set operations atomically. Malformed records
// (failed preprocess, missing key fields) are skipped with a warning and
// counted; storage errors abort the run.
func (r *Reconciler) Run(ctx context.Context, spec Spec, batch []Record) (Result, error) {
	var result Result

	commit := Commit{Spec: spec}
	seen := make(map[any]bool)

	scan := func(record Record) error {
		if spec.Preprocess != nil {
			if err := spec.Preprocess(record); err != nil {
				log.Warn().Str("entity", spec.Name).Err(err).Msg("skipping malformed record")
				result.Skipped++
				return nil
			}
		}

		var (
			pk    any
			found bool
		)
		if spec.SourcePK != "" {
			pk = record[spec.SourcePK]
			if pk == nil {
				log.Warn().Str("entity", spec.Name).Str("field", spec.SourcePK).Msg("skipping record without primary key")
				result.Skipped++
				return nil
			}
			exists, err := r.store.ExistsByPK(ctx, spec.Table, spec.PKColumn, pk)
			if err != nil {
				return err
			}
			found = exists
		} else {
			keys, ok := naturalKeyValues(spec, record)
			if !ok {
				log.Warn().Str("entity", spec.Name).Msg("skipping record without natural key fields")
				result.Skipped++
				return nil
			}
			id, ok, err := r.store.LookupID(ctx, spec.Table, spec.PKColumn, keys)
			if err != nil {
				return err
			}
			if ok {
				pk = id
				found = true
			}
		}

		row := make(Row, len(spec.Mapping))
		for _, fm := range spec.Mapping {
			row[fm.Column] = record[fm.Source]
		}

		if found {
			row[spec.PKColumn] = pk
			commit.Updated = append(commit.Updated, row)
			if !seen[pk] {
				seen[pk] = true
				commit.Seen = append(commit.Seen, pk)
			}
		} else {
			commit.Created = append(commit.Created, row)
		}
		return nil
	}

	for _, record := range batch {
		if spec.NestedKey == "" {
			if err := scan(record); err != nil {
				return result, err
			}
			continue
		}

		nested, ok := record[spec.NestedKey].([]any)
		if !ok {
			log.Warn().Str("entity", spec.Name).Str("key", spec.NestedKey).Msg("skipping record without nested record set")
			result.Skipped++
			continue
		}
		for _, item := range nested {
			child, ok := item.(Record)
			if !ok {
				result.Skipped++
				continue
			}
			if err := scan(child); err != nil {
				return result, err
			}
		}
	}

	applied, err := r.store.ApplyCommit(ctx, commit)
	if err != nil {
		return result, fmt.Errorf("committing %s sync: %w", spec.Name, err)
	}

	result.Created = applied.Created
	result.Updated = applied.Updated
	result.Deleted = applied.Deleted
	result.Suppressed = applied.Suppressed

	log.Info().
		Str("entity", spec.Name).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("deleted", result.Deleted).
		Int("suppressed", result.Suppressed).
		Int("skipped", result.Skipped).
		Msg("Sync run completed")
	return result, nil
}

// naturalKeyValues pulls the match-predicate values out of a raw record.
// Every natural-key field must be present for the record to be usable.
func naturalKeyValues(spec Spec, record Record) ([]FieldValue, bool) {
	naturalKeys := spec.NaturalKeys()
	keys := make([]FieldValue, 0, len(naturalKeys))
	for _, fm := range naturalKeys {
		value, ok := record[fm.Source]
		if !ok {
			return nil, false
		}
		keys = append(keys, FieldValue{Column: fm.Column, Value: value})
	}
	return keys, true
}
