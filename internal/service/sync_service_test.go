package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/syncer"
	"github.com/e-kondr01/mobile-apps-development-project-backend/pkg/onec"
)

// fakeSource serves canned batches per OData entity and records the
// query options it was called with.
type fakeSource struct {
	batches map[string][]map[string]any
	calls   map[string]onec.GetOptions
	err     error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		batches: make(map[string][]map[string]any),
		calls:   make(map[string]onec.GetOptions),
	}
}

func (f *fakeSource) Get(_ context.Context, entity string, opts *onec.GetOptions) ([]map[string]any, error) {
	if opts != nil {
		f.calls[entity] = *opts
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.batches[entity], nil
}

// captureStore records the commit each run produced, keyed by table.
type captureStore struct {
	commits map[string]syncer.Commit
}

func newCaptureStore() *captureStore {
	return &captureStore{commits: make(map[string]syncer.Commit)}
}

func (s *captureStore) ExistsByPK(context.Context, string, string, any) (bool, error) {
	return false, nil
}

func (s *captureStore) LookupID(context.Context, string, string, []syncer.FieldValue) (int64, bool, error) {
	return 0, false, nil
}

func (s *captureStore) ApplyCommit(_ context.Context, commit syncer.Commit) (syncer.CommitResult, error) {
	s.commits[commit.Spec.Table] = commit
	return syncer.CommitResult{Created: len(commit.Created), Updated: len(commit.Updated)}, nil
}

func newTestService(source ODataSource, store syncer.Store) *SyncService {
	return NewSyncService(source, syncer.New(store), nil, time.UTC)
}

func TestSyncService(t *testing.T) {
	ctx := context.Background()

	t.Run("SyncProducts_FullCycle", func(t *testing.T) {
		source := newFakeSource()
		source.batches["Catalog_Номенклатура"] = []map[string]any{
			{"Ref_Key": "A", "Description": "Widget", "Артикул": "W1"},
		}
		store := newCaptureStore()
		svc := newTestService(source, store)

		summary, err := svc.Sync(ctx, EntityProducts)
		require.NoError(t, err)
		require.Equal(t, "1 created, 0 updated, 0 deleted", summary)

		commit := store.commits["products"]
		require.Len(t, commit.Created, 1)
		require.Equal(t, "A", commit.Created[0]["ref_key"])
		require.Equal(t, "Widget", commit.Created[0]["name"])
		require.Equal(t, "W1", commit.Created[0]["sku"])

		// Products are fetched without folder records.
		require.Equal(t, "IsFolder eq false", source.calls["Catalog_Номенклатура"].Filter)

		// Re-run against an empty upstream: the seen set must be empty so
		// the commit deletes everything local.
		source.batches["Catalog_Номенклатура"] = nil
		_, err = svc.Sync(ctx, EntityProducts)
		require.NoError(t, err)
		require.Empty(t, store.commits["products"].Seen)
		require.Empty(t, store.commits["products"].Created)
	})

	t.Run("SyncMovements_ExpenseFlipsSign", func(t *testing.T) {
		source := newFakeSource()
		source.batches["AccumulationRegister_ТоварыНаСкладах"] = []map[string]any{
			{"RecordSet": []any{
				map[string]any{
					"Номенклатура_Key":   "P1",
					"Характеристика_Key": "C1",
					"Количество":         float64(5),
					"Period":             "2022-10-20T18:54:00",
					"RecordType":         "Expense",
				},
				map[string]any{
					"Номенклатура_Key":   "P1",
					"Характеристика_Key": "C1",
					"Количество":         float64(3),
					"Period":             "2022-10-21T10:00:00",
					"RecordType":         "Receipt",
				},
			}},
		}
		store := newCaptureStore()
		svc := newTestService(source, store)

		_, err := svc.Sync(ctx, EntityMovements)
		require.NoError(t, err)

		commit := store.commits["product_movements"]
		require.Len(t, commit.Created, 2)
		require.Equal(t, float64(-5), commit.Created[0]["amount"])
		require.Equal(t, float64(3), commit.Created[1]["amount"])

		period, ok := commit.Created[0]["period"].(time.Time)
		require.True(t, ok)
		require.Equal(t, time.Date(2022, 10, 20, 18, 54, 0, 0, time.UTC), period)
	})

	t.Run("SyncPriceChanges_PriceTypeIsPayloadOnly", func(t *testing.T) {
		source := newFakeSource()
		source.batches["InformationRegister_ЦеныНоменклатуры"] = []map[string]any{
			{"RecordSet": []any{
				map[string]any{
					"Номенклатура_Key":   "P1",
					"Характеристика_Key": "C1",
					"Цена":               float64(99.9),
					"Period":             "2022-10-20T18:54:00",
					"ВидЦены_Key":        "T1",
				},
			}},
		}
		store := newCaptureStore()
		svc := newTestService(source, store)

		_, err := svc.Sync(ctx, EntityPriceChanges)
		require.NoError(t, err)

		spec := store.commits["price_changes"].Spec
		keys := spec.NaturalKeys()
		columns := make([]string, 0, len(keys))
		for _, fm := range keys {
			columns = append(columns, fm.Column)
		}
		require.Equal(t, []string{"product_ref", "characteristic_ref", "price", "period"}, columns)
	})

	t.Run("SyncBarcodes_BarcodeValueExcludedFromKey", func(t *testing.T) {
		source := newFakeSource()
		store := newCaptureStore()
		svc := newTestService(source, store)

		_, err := svc.Sync(ctx, EntityBarcodes)
		require.NoError(t, err)

		spec := store.commits["barcodes"].Spec
		require.True(t, spec.Update)
		keys := spec.NaturalKeys()
		require.Len(t, keys, 2)
		for _, fm := range keys {
			require.NotEqual(t, "barcode", fm.Column)
		}
	})

	t.Run("Sync_UnknownEntity", func(t *testing.T) {
		svc := newTestService(newFakeSource(), newCaptureStore())
		_, err := svc.Sync(ctx, "nomenclature")
		require.Error(t, err)
	})

	t.Run("SyncAll_StopsOnBadCredentials", func(t *testing.T) {
		source := newFakeSource()
		source.err = onec.ErrBadCredentials
		svc := newTestService(source, newCaptureStore())

		err := svc.SyncAll(ctx)
		require.ErrorIs(t, err, onec.ErrBadCredentials)
	})

	t.Run("SyncAll_CollectsOtherFailures", func(t *testing.T) {
		source := newFakeSource()
		source.err = errors.New("upstream down")
		svc := newTestService(source, newCaptureStore())

		err := svc.SyncAll(ctx)
		require.ErrorContains(t, err, "upstream down")
		// Every entity was still attempted and recorded a failed status.
		require.Len(t, svc.Statuses(), len(svc.Entities()))
	})
}

func TestParsePeriod(t *testing.T) {
	moscow, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	t.Run("BareTimestampUsesLocation", func(t *testing.T) {
		parsed, err := parsePeriod("2022-10-20T18:54:00", moscow)
		require.NoError(t, err)
		require.Equal(t, time.Date(2022, 10, 20, 18, 54, 0, 0, moscow), parsed)
	})

	t.Run("OffsetTimestampIsConverted", func(t *testing.T) {
		parsed, err := parsePeriod("2022-10-20T15:54:00Z", moscow)
		require.NoError(t, err)
		require.Equal(t, "2022-10-20T18:54:00", parsed.Format("2006-01-02T15:04:05"))
	})

	t.Run("GarbageFails", func(t *testing.T) {
		_, err := parsePeriod("yesterday", moscow)
		require.Error(t, err)
	})
}

func TestSyncOrder(t *testing.T) {
	// Registers reference catalog rows, so catalogs must sync first.
	svc := newTestService(newFakeSource(), newCaptureStore())
	entities := svc.Entities()

	index := make(map[string]int, len(entities))
	for i, entity := range entities {
		index[entity] = i
	}
	require.Less(t, index[EntityProducts], index[EntityBarcodes])
	require.Less(t, index[EntityCharacteristics], index[EntityBarcodes])
	require.Less(t, index[EntityPriceTypes], index[EntityPriceChanges])
	require.Less(t, index[EntityProducts], index[EntityMovements])
}
