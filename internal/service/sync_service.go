package service

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/cache"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/syncer"
	"github.com/e-kondr01/mobile-apps-development-project-backend/internal/utils"
	"github.com/e-kondr01/mobile-apps-development-project-backend/pkg/onec"
)

// Entity names accepted by Sync and exposed on the manual trigger endpoint.
const (
	EntityProducts        = "products"
	EntityPriceTypes      = "price-types"
	EntityCharacteristics = "characteristics"
	EntityBarcodes        = "barcodes"
	EntityMovements       = "product-movements"
	EntityPriceChanges    = "price-changes"
)

// syncOrder runs catalogs before the registers that reference them, so
// foreign-key referents exist by the time dependent rows are inserted.
var syncOrder = []string{
	EntityProducts,
	EntityPriceTypes,
	EntityCharacteristics,
	EntityBarcodes,
	EntityMovements,
	EntityPriceChanges,
}

// ODataSource fetches raw record batches from the external system.
type ODataSource interface {
	Get(ctx context.Context, entity string, opts *onec.GetOptions) ([]map[string]any, error)
}

// RunStatus is the outcome of the most recent sync run for one entity.
type RunStatus struct {
	Entity     string    `json:"entity"`
	Summary    string    `json:"summary,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// entitySync couples an upstream OData query with the reconciliation spec
// for one entity type.
type entitySync struct {
	source string
	opts   onec.GetOptions
	spec   syncer.Spec
}

// SyncService is the registry of per-entity sync runs. Each run fetches
// the full external batch for its entity and reconciles the local table
// against it.
type SyncService struct {
	source     ODataSource
	reconciler *syncer.Reconciler
	cache      *cache.ProductCache
	location   *time.Location

	definitions map[string]entitySync

	// One lock per entity: the commit phase assumes single-writer
	// semantics, so overlapping runs of the same entity are rejected.
	locks map[string]*stdsync.Mutex

	statusMu stdsync.Mutex
	statuses map[string]RunStatus
}

// NewSyncService constructs the registry. location is the timezone
// register timestamps are normalized into.
func NewSyncService(source ODataSource, reconciler *syncer.Reconciler, productCache *cache.ProductCache, location *time.Location) *SyncService {
	s := &SyncService{
		source:     source,
		reconciler: reconciler,
		cache:      productCache,
		location:   location,
		locks:      make(map[string]*stdsync.Mutex),
		statuses:   make(map[string]RunStatus),
	}
	s.definitions = map[string]entitySync{
		EntityProducts: {
			source: "Catalog_Номенклатура",
			// Folder records never exist locally, so the delete-of-unseen
			// stays safe under this narrowing filter.
			opts: onec.GetOptions{Filter: "IsFolder eq false"},
			spec: syncer.Spec{
				Name:     EntityProducts,
				Table:    "products",
				PKColumn: "ref_key",
				SourcePK: "Ref_Key",
				Mapping: []syncer.FieldMap{
					{Column: "ref_key", Source: "Ref_Key"},
					{Column: "name", Source: "Description"},
					{Column: "sku", Source: "Артикул"},
				},
				Update: true,
			},
		},
		EntityPriceTypes: {
			source: "Catalog_ВидыЦен",
			spec: syncer.Spec{
				Name:     EntityPriceTypes,
				Table:    "price_types",
				PKColumn: "ref_key",
				SourcePK: "Ref_Key",
				Mapping: []syncer.FieldMap{
					{Column: "ref_key", Source: "Ref_Key"},
					{Column: "name", Source: "Description"},
				},
				Update: true,
			},
		},
		EntityCharacteristics: {
			source: "Catalog_ХарактеристикиНоменклатуры",
			spec: syncer.Spec{
				Name:     EntityCharacteristics,
				Table:    "characteristics",
				PKColumn: "ref_key",
				SourcePK: "Ref_Key",
				Mapping: []syncer.FieldMap{
					{Column: "ref_key", Source: "Ref_Key"},
					{Column: "name", Source: "Description"},
				},
				Update: true,
			},
		},
		EntityBarcodes: {
			source: "InformationRegister_Штрихкоды",
			spec: syncer.Spec{
				Name:     EntityBarcodes,
				Table:    "barcodes",
				PKColumn: "id",
				Mapping: []syncer.FieldMap{
					{Column: "barcode", Source: "Штрихкод"},
					{Column: "product_ref", Source: "Владелец"},
					{Column: "characteristic_ref", Source: "Характеристика_Key"},
				},
				// The barcode value is payload: a changed code must land
				// on the existing (product, characteristic) row.
				NotNaturalKeys: []string{"barcode"},
				Update:         true,
			},
		},
		EntityMovements: {
			source: "AccumulationRegister_ТоварыНаСкладах",
			opts: onec.GetOptions{
				Filter: "Recorder_Type eq 'StandardODATA.Document_ВозвратТоваровОтПокупателя'",
			},
			spec: syncer.Spec{
				Name:     EntityMovements,
				Table:    "product_movements",
				PKColumn: "id",
				Mapping: []syncer.FieldMap{
					{Column: "product_ref", Source: "Номенклатура_Key"},
					{Column: "characteristic_ref", Source: "Характеристика_Key"},
					{Column: "amount", Source: "Количество"},
					{Column: "period", Source: "Period"},
				},
				NestedKey:  "RecordSet",
				Preprocess: s.preprocessMovement,
				// The full value set is the natural key, so an update
				// could never change anything.
				Update: false,
			},
		},
		EntityPriceChanges: {
			source: "InformationRegister_ЦеныНоменклатуры",
			spec: syncer.Spec{
				Name:     EntityPriceChanges,
				Table:    "price_changes",
				PKColumn: "id",
				Mapping: []syncer.FieldMap{
					{Column: "product_ref", Source: "Номенклатура_Key"},
					{Column: "characteristic_ref", Source: "Характеристика_Key"},
					{Column: "price", Source: "Цена"},
					{Column: "period", Source: "Period"},
					{Column: "price_type_ref", Source: "ВидЦены_Key"},
				},
				NotNaturalKeys: []string{"price_type_ref"},
				NestedKey:      "RecordSet",
				Preprocess:     s.preprocessPeriod,
				Update:         false,
			},
		},
	}
	for name := range s.definitions {
		s.locks[name] = &stdsync.Mutex{}
	}
	return s
}

// Entities returns the entity names in sync order.
func (s *SyncService) Entities() []string {
	return syncOrder
}

// Sync runs one entity's reconciliation: fetch the full external batch,
// scan it, commit the create/update/delete set operations. Returns the
// human-readable count summary.
func (s *SyncService) Sync(ctx context.Context, entity string) (string, error) {
	def, ok := s.definitions[entity]
	if !ok {
		return "", fmt.Errorf("%w: %s", utils.ErrUnknownEntity, entity)
	}

	lock := s.locks[entity]
	if !lock.TryLock() {
		return "", fmt.Errorf("%w: %s", utils.ErrSyncAlreadyRunning, entity)
	}
	defer lock.Unlock()

	started := time.Now()
	summary, err := s.run(ctx, def)
	s.recordStatus(entity, summary, err, started)
	return summary, err
}

// SyncAll runs every entity in dependency order. A bad-credentials error
// stops the whole pass immediately; other failures are collected so the
// remaining entities still converge.
func (s *SyncService) SyncAll(ctx context.Context) error {
	var errs []error
	for _, entity := range syncOrder {
		if _, err := s.Sync(ctx, entity); err != nil {
			if errors.Is(err, onec.ErrBadCredentials) {
				return err
			}
			errs = append(errs, fmt.Errorf("%s: %w", entity, err))
		}
	}
	return errors.Join(errs...)
}

// Statuses returns the last run outcome per entity, in sync order.
func (s *SyncService) Statuses() []RunStatus {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	statuses := make([]RunStatus, 0, len(syncOrder))
	for _, entity := range syncOrder {
		if status, ok := s.statuses[entity]; ok {
			statuses = append(statuses, status)
		}
	}
	return statuses
}

func (s *SyncService) run(ctx context.Context, def entitySync) (string, error) {
	opts := def.opts
	batch, err := s.source.Get(ctx, def.source, &opts)
	if err != nil {
		return "", err
	}

	result, err := s.reconciler.Run(ctx, def.spec, batch)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Str("entity", def.spec.Name).Msg("failed to invalidate derived cache")
		}
	}
	return result.String(), nil
}

func (s *SyncService) recordStatus(entity, summary string, err error, started time.Time) {
	status := RunStatus{
		Entity:     entity,
		Summary:    summary,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err != nil {
		status.Error = err.Error()
	}

	s.statusMu.Lock()
	s.statuses[entity] = status
	s.statusMu.Unlock()
}

// preprocessPeriod parses the Period field from the 1C string form into a
// timezone-aware instant in the configured location.
func (s *SyncService) preprocessPeriod(record syncer.Record) error {
	raw, ok := record["Period"].(string)
	if !ok {
		return fmt.Errorf("record has no Period string, got %T", record["Period"])
	}
	period, err := parsePeriod(raw, s.location)
	if err != nil {
		return err
	}
	record["Period"] = period
	return nil
}

// preprocessMovement additionally flips the quantity sign for outbound
// movements.
func (s *SyncService) preprocessMovement(record syncer.Record) error {
	if err := s.preprocessPeriod(record); err != nil {
		return err
	}
	if record["RecordType"] == "Expense" {
		amount, ok := record["Количество"].(float64)
		if !ok {
			return fmt.Errorf("record has no numeric Количество, got %T", record["Количество"])
		}
		record["Количество"] = -amount
	}
	return nil
}

// parsePeriod accepts both offset-carrying timestamps and the bare
// "2006-01-02T15:04:05" form 1C uses, normalizing to location.
func parsePeriod(raw string, location *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(location), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", raw, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparsable Period %q: %w", raw, err)
	}
	return t, nil
}
