package syncer

// Record is one raw external record as decoded from the OData response.
type Record = map[string]any

// Row is a projected row payload keyed by local column name.
type Row = map[string]any

// FieldMap binds a local column to the external field it is filled from.
type FieldMap struct {
	Column string
	Source string
}

// Preprocessor mutates a raw record in place before key resolution and
// projection (timestamp parsing, sign flips). It must not touch fields
// outside the entity's mapping.
type Preprocessor func(Record) error

// Spec declares how one entity type reconciles against its table. Field
// mappings, key strategy and exclusions are data, so the engine stays
// generic across entity types.
type Spec struct {
	// Name identifies the entity in logs and run summaries.
	Name string

	Table    string
	PKColumn string

	// SourcePK is the external field holding the surrogate primary key.
	// Empty means the entity is matched by its natural keys instead.
	SourcePK string

	// Mapping is ordered: local column <- external field.
	Mapping []FieldMap

	// NotNaturalKeys lists local columns excluded from the natural-key
	// predicate even though they appear in the mapping (payload-only
	// fields such as a foreign key or the mutable value itself).
	NotNaturalKeys []string

	// NestedKey, when set, means each top-level record wraps a nested
	// list of child records under this key (1C register record sets).
	NestedKey string

	// Update controls whether matched rows get their mapped fields
	// rewritten during commit.
	Update bool

	Preprocess Preprocessor
}

// NaturalKeys returns the subset of the mapping used to match existing
// rows for natural-key entities.
func (s Spec) NaturalKeys() []FieldMap {
	excluded := make(map[string]bool, len(s.NotNaturalKeys))
	for _, column := range s.NotNaturalKeys {
		excluded[column] = true
	}

	keys := make([]FieldMap, 0, len(s.Mapping))
	for _, fm := range s.Mapping {
		if !excluded[fm.Column] {
			keys = append(keys, fm)
		}
	}
	return keys
}

// UpdateColumns returns the columns rewritten on matched rows: the mapped
// columns minus the primary key and, for natural-key entities, minus the
// columns the match predicate was built from.
func (s Spec) UpdateColumns() []string {
	skip := map[string]bool{s.PKColumn: true}
	if s.SourcePK == "" {
		for _, fm := range s.NaturalKeys() {
			skip[fm.Column] = true
		}
	}

	columns := make([]string, 0, len(s.Mapping))
	for _, fm := range s.Mapping {
		if !skip[fm.Column] {
			columns = append(columns, fm.Column)
		}
	}
	return columns
}

// InsertColumns returns the columns filled on created rows. Natural-key
// tables generate their own identifier, so only mapped columns are set;
// surrogate-key tables take the external identifier verbatim via the
// mapping itself.
func (s Spec) InsertColumns() []string {
	columns := make([]string, 0, len(s.Mapping))
	for _, fm := range s.Mapping {
		columns = append(columns, fm.Column)
	}
	return columns
}
