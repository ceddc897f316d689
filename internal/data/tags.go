package data

// Source is anything that can carry authored bonuses: actor, class, skill,
// weapon, armor, item, state and enemy records.
// The authoring format is not this package's concern; records expose
// typed accessors only.
type Source interface {
	SourceName() string
	FlatBonusesFor(key string) []float64
	UniquePassiveIDs() []StateID
	StackablePassiveIDs() []StateID
	BlocksProficiencyGiving() bool
	BlocksProficiencyGaining() bool
}

// Tags holds the authored bonuses shared by every record type.
// Embedded inline into each record.
type Tags struct {
	Bonuses           map[string][]float64 `yaml:"bonuses"`
	UniquePassives    []StateID            `yaml:"unique_passives"`
	StackablePassives []StateID            `yaml:"stackable_passives"`
	GivingBlock       bool                 `yaml:"proficiency_giving_block"`
	GainingBlock      bool                 `yaml:"proficiency_gaining_block"`
}

// FlatBonusesFor returns every flat contribution declared for the attribute key.
// Values are summed by the caller, never overridden.
func (t *Tags) FlatBonusesFor(key string) []float64 {
	if t == nil || t.Bonuses == nil {
		return nil
	}
	return t.Bonuses[key]
}

// UniquePassiveIDs returns passive state ids applied once regardless of how
// many sources declare them.
func (t *Tags) UniquePassiveIDs() []StateID {
	if t == nil {
		return nil
	}
	return t.UniquePassives
}

// StackablePassiveIDs returns passive state ids applied once per declaring source.
func (t *Tags) StackablePassiveIDs() []StateID {
	if t == nil {
		return nil
	}
	return t.StackablePassives
}

// BlocksProficiencyGiving reports whether skills used against the owner grant no proficiency.
func (t *Tags) BlocksProficiencyGiving() bool { return t != nil && t.GivingBlock }

// BlocksProficiencyGaining reports whether the owner never gains proficiency.
func (t *Tags) BlocksProficiencyGaining() bool { return t != nil && t.GainingBlock }
