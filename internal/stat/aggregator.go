// Package stat resolves numeric battler attributes from base values,
// authored flat bonuses, buffs, growths and external providers.
package stat

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/formula"
	"github.com/udisondev/jabs/internal/model"
)

// Attribute keys understood by the aggregator.
const (
	KeyCritMultiplier  = "crit-multiplier"
	KeyCritReduction   = "crit-reduction"
	KeyMaxTP           = "max-tp"
	KeyProficiencyGain = "proficiency-gain"
	KeyMaxHP           = "max-hp"
	KeyMaxMP           = "max-mp"
)

// ErrUnknownAttribute is returned by Resolve for an unrecognized key.
var ErrUnknownAttribute = errors.New("unknown attribute")

// Config holds attribute base values.
type Config struct {
	CritMultiplierBase  float64 // factor, 0.5 = +50% on crit
	CritReductionBase   float64 // factor
	MaxTPBase           float64
	ProficiencyGainBase float64
}

// DefaultConfig returns the stock base values.
func DefaultConfig() Config {
	return Config{
		CritMultiplierBase:  0.5,
		CritReductionBase:   0,
		MaxTPBase:           model.MaxTP,
		ProficiencyGainBase: 1,
	}
}

// FormulaEvaluator runs authored modifier formulas.
// *formula.Evaluator satisfies it.
type FormulaEvaluator interface {
	Eval(expr string, a formula.Subject, base float64) (float64, error)
}

// ExternalBonus contributes to an attribute from a system outside the
// tag/buff/growth pipeline. Values are in source units (percent points for
// percent attributes).
type ExternalBonus interface {
	Bonus(b *model.Battler, key string) float64
}

type attribute struct {
	percent bool
	base    func(b *model.Battler) float64
}

// Aggregator composes attribute values:
//
//	base + (Σtags + buffDelta + growthDelta + external) / divisor
//
// where divisor is 100 for percent attributes and 1 otherwise, and a
// modifier delta is (basePct + flat) * (rate+100)/100 - basePct.
// A battler with no contributions resolves to exactly base.
type Aggregator struct {
	tables    *data.Tables
	attrs     map[string]attribute
	formulas  FormulaEvaluator
	externals []ExternalBonus
}

// NewAggregator creates an aggregator over the content tables.
func NewAggregator(t *data.Tables, cfg Config) *Aggregator {
	constant := func(v float64) func(*model.Battler) float64 {
		return func(*model.Battler) float64 { return v }
	}
	return &Aggregator{
		tables: t,
		attrs: map[string]attribute{
			KeyCritMultiplier:  {percent: true, base: constant(cfg.CritMultiplierBase)},
			KeyCritReduction:   {percent: true, base: constant(cfg.CritReductionBase)},
			KeyMaxTP:           {base: constant(cfg.MaxTPBase)},
			KeyProficiencyGain: {base: constant(cfg.ProficiencyGainBase)},
			KeyMaxHP:           {base: func(b *model.Battler) float64 { return float64(b.MaxHP()) }},
			KeyMaxMP:           {base: func(b *model.Battler) float64 { return float64(b.MaxMP()) }},
		},
	}
}

// SetFormulaEvaluator enables formula-driven modifiers.
// Without an evaluator formulas contribute zero.
func (a *Aggregator) SetFormulaEvaluator(e FormulaEvaluator) {
	a.formulas = e
}

// AddExternal registers an external bonus provider.
func (a *Aggregator) AddExternal(e ExternalBonus) {
	a.externals = append(a.externals, e)
}

// Known reports whether key is a recognized attribute.
func (a *Aggregator) Known(key string) bool {
	_, ok := a.attrs[key]
	return ok
}

// Resolve returns the composed value of key for b.
func (a *Aggregator) Resolve(b *model.Battler, key string) (float64, error) {
	attr, ok := a.attrs[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAttribute, key)
	}

	base := attr.base(b)
	divisor := 1.0
	if attr.percent {
		divisor = 100
	}
	basePct := base * divisor

	var sum float64
	sum += a.TagSum(b, key)
	if buff, ok := b.Buff(key); ok {
		sum += a.delta(b, key, basePct, buff)
	}
	for _, g := range b.Growths(key) {
		sum += a.delta(b, key, basePct, g)
	}
	for _, ext := range a.externals {
		sum += ext.Bonus(b, key)
	}

	return base + sum/divisor, nil
}

// Factor is Resolve for callers passing a compile-time key.
// An unknown key is a programmer error and panics.
func (a *Aggregator) Factor(b *model.Battler, key string) float64 {
	v, err := a.Resolve(b, key)
	if err != nil {
		panic(err)
	}
	return v
}

// TagSum returns Σ flat authored bonuses for key across b's sources.
func (a *Aggregator) TagSum(b *model.Battler, key string) float64 {
	var sum float64
	for _, src := range Sources(a.tables, b) {
		for _, v := range src.FlatBonusesFor(key) {
			sum += v
		}
	}
	return sum
}

// CritMultiplier returns the bonus fraction a critical hit by b adds.
func (a *Aggregator) CritMultiplier(b *model.Battler) float64 {
	return a.Factor(b, KeyCritMultiplier)
}

// CritReduction returns how much of an incoming critical bonus b cancels.
func (a *Aggregator) CritReduction(b *model.Battler) float64 {
	return a.Factor(b, KeyCritReduction)
}

// MaxTP returns the ceiling of b's TP gauge.
func (a *Aggregator) MaxTP(b *model.Battler) float64 {
	return a.Factor(b, KeyMaxTP)
}

// ProficiencyGain returns the proficiency b gains from one qualifying action.
func (a *Aggregator) ProficiencyGain(b *model.Battler) float64 {
	return a.Factor(b, KeyProficiencyGain)
}

func (a *Aggregator) delta(b *model.Battler, key string, basePct float64, m model.Modifier) float64 {
	flat := a.value(b, key, m.Flat, m.FlatFormula, basePct)
	rate := a.value(b, key, m.Rate, m.RateFormula, basePct)
	return (basePct+flat)*(rate+100)/100 - basePct
}

// value returns literal, or the formula result when a formula is set.
// Formula failures are logged and contribute zero.
func (a *Aggregator) value(b *model.Battler, key string, literal float64, expr string, basePct float64) float64 {
	if expr == "" {
		return literal
	}
	if a.formulas == nil {
		slog.Warn("formula modifier ignored: no evaluator",
			"battler", b.ID(),
			"attribute", key,
			"formula", expr)
		return 0
	}
	v, err := a.formulas.Eval(expr, SubjectOf(b), basePct)
	if err != nil {
		slog.Warn("formula evaluation failed",
			"battler", b.ID(),
			"attribute", key,
			"formula", expr,
			"error", err)
		return 0
	}
	return v
}

// SubjectOf builds the read-only snapshot formulas see as `a`.
func SubjectOf(b *model.Battler) formula.Subject {
	p := b.Params()
	return formula.Subject{
		Level: float64(b.Level()),
		HP:    float64(b.HP()),
		MP:    float64(b.MP()),
		TP:    float64(b.TP()),
		MaxHP: float64(b.MaxHP()),
		MaxMP: float64(b.MaxMP()),
		Atk:   float64(p.Atk),
		Def:   float64(p.Def),
		Mat:   float64(p.Mat),
		Mdf:   float64(p.Mdf),
		Agi:   float64(p.Agi),
		Luk:   float64(p.Luk),
	}
}
