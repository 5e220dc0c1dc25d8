package syncer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeStore keeps rows in memory, keyed by primary key, and records the
// commit it received.
type fakeStore struct {
	surrogate  map[any]bool
	naturalIDs map[string]int64
	nextID     int64

	lastCommit *Commit
	commitErr  error
	applied    CommitResult
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		surrogate:  make(map[any]bool),
		naturalIDs: make(map[string]int64),
		nextID:     1,
	}
}

func (s *fakeStore) ExistsByPK(_ context.Context, _, _ string, pk any) (bool, error) {
	return s.surrogate[pk], nil
}

func (s *fakeStore) LookupID(_ context.Context, _, _ string, keys []FieldValue) (int64, bool, error) {
	id, ok := s.naturalIDs[naturalKeyString(keys)]
	return id, ok, nil
}

func (s *fakeStore) ApplyCommit(_ context.Context, commit Commit) (CommitResult, error) {
	s.lastCommit = &commit
	if s.commitErr != nil {
		return CommitResult{}, s.commitErr
	}
	if s.applied != (CommitResult{}) {
		return s.applied, nil
	}
	result := CommitResult{Created: len(commit.Created), Deleted: 0}
	if commit.Spec.Update {
		result.Updated = len(commit.Updated)
	}
	return result, nil
}

func (s *fakeStore) addNatural(keys []FieldValue) int64 {
	id := s.nextID
	s.nextID++
	s.naturalIDs[naturalKeyString(keys)] = id
	return id
}

func naturalKeyString(keys []FieldValue) string {
	out := ""
	for _, kv := range keys {
		out += kv.Column + "=" + toString(kv.Value) + ";"
	}
	return out
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

var productSpec = Spec{
	Name:     "products",
	Table:    "products",
	PKColumn: "ref_key",
	SourcePK: "Ref_Key",
	Mapping: []FieldMap{
		{Column: "ref_key", Source: "Ref_Key"},
		{Column: "name", Source: "Description"},
		{Column: "sku", Source: "Артикул"},
	},
	Update: true,
}

var barcodeSpec = Spec{
	Name:     "barcodes",
	Table:    "barcodes",
	PKColumn: "id",
	Mapping: []FieldMap{
		{Column: "barcode", Source: "Штрихкод"},
		{Column: "product_ref", Source: "Владелец"},
		{Column: "characteristic_ref", Source: "Характеристика_Key"},
	},
	NotNaturalKeys: []string{"barcode"},
	Update:         true,
}

func TestReconcilerRun(t *testing.T) {
	ctx := context.Background()

	t.Run("SurrogateKey_CreatesUnseenRowVerbatim", func(t *testing.T) {
		store := newFakeStore()
		result, err := New(store).Run(ctx, productSpec, []Record{
			{"Ref_Key": "11111111-1111-1111-1111-111111111111", "Description": "Widget", "Артикул": "W1"},
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.Created)
		require.Equal(t, 0, result.Updated)

		require.Len(t, store.lastCommit.Created, 1)
		row := store.lastCommit.Created[0]
		require.Equal(t, "11111111-1111-1111-1111-111111111111", row["ref_key"])
		require.Equal(t, "Widget", row["name"])
		require.Equal(t, "W1", row["sku"])
		require.Empty(t, store.lastCommit.Seen)
	})

	t.Run("SurrogateKey_ExistingRowGoesToUpdatedAndSeen", func(t *testing.T) {
		store := newFakeStore()
		store.surrogate["A"] = true

		result, err := New(store).Run(ctx, productSpec, []Record{
			{"Ref_Key": "A", "Description": "Widget", "Артикул": "W1"},
		})
		require.NoError(t, err)
		require.Equal(t, 0, result.Created)
		require.Equal(t, 1, result.Updated)

		require.Empty(t, store.lastCommit.Created)
		require.Len(t, store.lastCommit.Updated, 1)
		require.Equal(t, []any{"A"}, store.lastCommit.Seen)
	})

	t.Run("EmptyBatch_CommitsEmptySeenSet", func(t *testing.T) {
		// The delete set is the complement of seen, so an empty batch
		// must reach the store with no seen keys at all.
		store := newFakeStore()
		store.applied = CommitResult{Deleted: 1}

		result, err := New(store).Run(ctx, productSpec, nil)
		require.NoError(t, err)
		require.Equal(t, 1, result.Deleted)
		require.Empty(t, store.lastCommit.Seen)
		require.Empty(t, store.lastCommit.Created)
	})

	t.Run("NaturalKey_AttachesInternalIdentifier", func(t *testing.T) {
		store := newFakeStore()
		id := store.addNatural([]FieldValue{
			{Column: "product_ref", Value: "P1"},
			{Column: "characteristic_ref", Value: "C1"},
		})

		result, err := New(store).Run(ctx, barcodeSpec, []Record{
			{"Владелец": "P1", "Характеристика_Key": "C1", "Штрихкод": "456"},
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.Updated)

		require.Len(t, store.lastCommit.Updated, 1)
		row := store.lastCommit.Updated[0]
		require.Equal(t, id, row["id"])
		require.Equal(t, "456", row["barcode"])
		require.Equal(t, []any{id}, store.lastCommit.Seen)
	})

	t.Run("NaturalKey_ExcludedFieldDoesNotMatch", func(t *testing.T) {
		// Same (product, characteristic) but different barcode value must
		// resolve to the same row: barcode is payload, not a match key.
		store := newFakeStore()
		store.addNatural([]FieldValue{
			{Column: "product_ref", Value: "P1"},
			{Column: "characteristic_ref", Value: "C1"},
		})

		result, err := New(store).Run(ctx, barcodeSpec, []Record{
			{"Владелец": "P1", "Характеристика_Key": "C1", "Штрихкод": "999"},
		})
		require.NoError(t, err)
		require.Equal(t, 0, result.Created)
		require.Equal(t, 1, result.Updated)
	})

	t.Run("NestedKey_FlattensRecordSets", func(t *testing.T) {
		spec := barcodeSpec
		spec.NestedKey = "RecordSet"

		store := newFakeStore()
		result, err := New(store).Run(ctx, spec, []Record{
			{"RecordSet": []any{
				Record{"Владелец": "P1", "Характеристика_Key": "C1", "Штрихкод": "1"},
				Record{"Владелец": "P2", "Характеристика_Key": "C2", "Штрихкод": "2"},
			}},
			{"RecordSet": []any{
				Record{"Владелец": "P3", "Характеристика_Key": "C3", "Штрихкод": "3"},
			}},
		})
		require.NoError(t, err)
		require.Equal(t, 3, result.Created)
	})

	t.Run("Preprocess_FailureSkipsRecord", func(t *testing.T) {
		spec := productSpec
		spec.Preprocess = func(record Record) error {
			if record["Description"] == "bad" {
				return errors.New("unparsable")
			}
			return nil
		}

		store := newFakeStore()
		result, err := New(store).Run(ctx, spec, []Record{
			{"Ref_Key": "A", "Description": "bad"},
			{"Ref_Key": "B", "Description": "ok"},
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.Skipped)
		require.Equal(t, 1, result.Created)
	})

	t.Run("MissingPrimaryKey_SkipsRecord", func(t *testing.T) {
		store := newFakeStore()
		result, err := New(store).Run(ctx, productSpec, []Record{
			{"Description": "no key"},
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.Skipped)
		require.Empty(t, store.lastCommit.Created)
	})

	t.Run("CommitFailure_SurfacesError", func(t *testing.T) {
		store := newFakeStore()
		store.commitErr = errors.New("constraint violation")

		_, err := New(store).Run(ctx, productSpec, []Record{
			{"Ref_Key": "A", "Description": "Widget"},
		})
		require.ErrorContains(t, err, "constraint violation")
	})
}

func TestSpecColumns(t *testing.T) {
	t.Run("NaturalKeys_DropsExclusions", func(t *testing.T) {
		keys := barcodeSpec.NaturalKeys()
		require.Equal(t, []FieldMap{
			{Column: "product_ref", Source: "Владелец"},
			{Column: "characteristic_ref", Source: "Характеристика_Key"},
		}, keys)
	})

	t.Run("UpdateColumns_SurrogateDropsPKOnly", func(t *testing.T) {
		require.Equal(t, []string{"name", "sku"}, productSpec.UpdateColumns())
	})

	t.Run("UpdateColumns_NaturalDropsMatchFields", func(t *testing.T) {
		require.Equal(t, []string{"barcode"}, barcodeSpec.UpdateColumns())
	})

	t.Run("Result_RendersCountSummary", func(t *testing.T) {
		r := Result{Created: 1, Updated: 2, Deleted: 3}
		require.Equal(t, "1 created, 2 updated, 3 deleted", r.String())
	})
}
