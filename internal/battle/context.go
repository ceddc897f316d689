// Package battle owns one encounter: the battlers on the field, the party,
// the encounter-wide flags and the services that act on them.
//
// A Context is created at battle start and closed at teardown. It is the
// single place that mutates battlers on behalf of gameplay: every mutator
// publishes an event, and the passive and parameter caches are rebuilt by
// the handlers subscribed in New.
package battle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/udisondev/jabs/internal/ai"
	"github.com/udisondev/jabs/internal/combat"
	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/formula"
	"github.com/udisondev/jabs/internal/model"
	"github.com/udisondev/jabs/internal/passive"
	"github.com/udisondev/jabs/internal/proficiency"
	"github.com/udisondev/jabs/internal/stat"
	"github.com/udisondev/jabs/internal/telemetry"
	"github.com/udisondev/jabs/internal/world"
)

var (
	ErrClosed         = errors.New("battle is closed")
	ErrUnknownBattler = errors.New("unknown battler")
	ErrNotActor       = errors.New("battler is not an actor")
	ErrNoParty        = errors.New("battle has no party")
)

var tracer = telemetry.Tracer("battle")

// Rand is the randomness shared by damage rolls, state rolls and the AI.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Config groups the tuning of the services a battle owns.
type Config struct {
	AI     ai.Config
	Stat   stat.Config
	Combat combat.Config
}

// DefaultConfig returns stock tuning for every service.
func DefaultConfig() Config {
	return Config{
		AI:     ai.DefaultConfig(),
		Stat:   stat.DefaultConfig(),
		Combat: combat.DefaultConfig(),
	}
}

// Context is one running encounter.
// Not safe for concurrent use: owned by the tick goroutine.
type Context struct {
	id     uuid.UUID
	tables *data.Tables
	field  *world.Field
	ids    *world.IDGenerator
	rnd    Rand
	events *Dispatcher

	agg      *stat.Aggregator
	passives *passive.Resolver
	tracker  *proficiency.Tracker
	damage   *combat.Resolver
	ai       *ai.Manager

	combatants map[model.BattlerID]model.Combatant
	order      []model.BattlerID // spawn order
	party      *model.Party
	player     *model.Battler
	flags      map[string]bool

	paused       bool
	messageShown bool
	eventRunning bool

	alertTicks int32
	ticks      uint64
	closed     bool
}

// New creates a battle on field. Conditionals with malformed rewards make
// the content unusable and are reported here.
func New(tables *data.Tables, field *world.Field, cfg Config, rnd Rand) (*Context, error) {
	c := &Context{
		id:         uuid.New(),
		tables:     tables,
		field:      field,
		ids:        world.NewIDGenerator(),
		rnd:        rnd,
		events:     NewDispatcher(),
		agg:        stat.NewAggregator(tables, cfg.Stat),
		passives:   passive.NewResolver(tables),
		combatants: make(map[model.BattlerID]model.Combatant),
		flags:      make(map[string]bool),
		alertTicks: cfg.AI.AlertTicks,
	}

	eval, err := formula.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("creating formula evaluator: %w", err)
	}
	c.agg.SetFormulaEvaluator(eval)

	tracker, err := proficiency.NewTracker(tables, c.agg)
	if err != nil {
		return nil, fmt.Errorf("creating proficiency tracker: %w", err)
	}
	tracker.SetRewardTarget(c)
	c.tracker = tracker
	c.damage = combat.NewResolver(cfg.Combat, c.agg, rnd)
	c.ai = ai.NewManager(cfg.AI, ai.Deps{
		Senses:   c,
		Spatial:  field,
		Executor: c,
		Host:     c,
		Rand:     rnd,
	})

	c.events.Subscribe(c.onPossessionChanged,
		EventSpawned,
		EventEquipmentChanged,
		EventClassChanged,
		EventSkillLearned,
		EventSkillForgotten,
		EventStateAdded,
		EventStateRemoved,
	)
	c.events.Subscribe(c.onInventoryChanged, EventInventoryChanged)
	c.events.Subscribe(c.onModifierChanged, EventModifierChanged)

	slog.Info("battle created", "battle", c.id)
	return c, nil
}

// ID returns the battle identifier.
func (c *Context) ID() uuid.UUID { return c.id }

// Ticks returns the number of ticks processed.
func (c *Context) Ticks() uint64 { return c.ticks }

func (c *Context) Field() *world.Field               { return c.field }
func (c *Context) Events() *Dispatcher               { return c.events }
func (c *Context) Aggregator() *stat.Aggregator      { return c.agg }
func (c *Context) Passives() *passive.Resolver       { return c.passives }
func (c *Context) Proficiency() *proficiency.Tracker { return c.tracker }
func (c *Context) AI() *ai.Manager                   { return c.ai }
func (c *Context) Party() *model.Party               { return c.party }

// Combatant returns the combatant wrapper of a battler.
func (c *Context) Combatant(id model.BattlerID) (model.Combatant, bool) {
	cb, ok := c.combatants[id]
	return cb, ok
}

// Battlers returns every battler in spawn order.
func (c *Context) Battlers() []*model.Battler {
	out := make([]*model.Battler, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.combatants[id].Battler())
	}
	return out
}

// Memory returns the battle memory of an AI-controlled ally.
func (c *Context) Memory(id model.BattlerID) (*ai.BattleMemory, bool) {
	br, ok := c.ai.Brain(id)
	if !ok || br.Ally() == nil {
		return nil, false
	}
	return br.Ally().Memory, true
}

// SetAllyMode switches the strategy of an AI-controlled party member.
func (c *Context) SetAllyMode(id model.BattlerID, mode model.AllyMode) error {
	cb, ok := c.combatants[id]
	if !ok {
		return fmt.Errorf("set ally mode of %d: %w", id, ErrUnknownBattler)
	}
	ac, ok := cb.(*model.AIControlled)
	if !ok || !ac.Battler().IsActor() {
		return fmt.Errorf("set ally mode of %d: %w", id, ErrNotActor)
	}
	ac.SetMode(mode)
	return nil
}

// Tick advances the battle by one tick: state durations, then the AI.
// A paused battle does not advance.
func (c *Context) Tick(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "battle.tick")
	defer span.End()

	if c.closed || c.paused {
		span.SetAttributes(attribute.Bool("battle.paused", c.paused))
		return
	}
	c.ticks++

	for _, id := range slices.Clone(c.order) {
		cb, ok := c.combatants[id]
		if !ok {
			continue
		}
		b := cb.Battler()
		if b.IsDead() {
			continue
		}
		for _, st := range b.TickStates() {
			c.events.Dispatch(&Event{Type: EventStateRemoved, Battler: b, StateID: st, Expired: true})
		}
	}

	c.ai.Tick(ctx)

	span.SetAttributes(
		attribute.String("battle.id", c.id.String()),
		attribute.Int64("battle.tick", int64(c.ticks)),
		attribute.Int("battle.battlers", len(c.order)))
}

// Outcome reports whether the encounter is decided and which team won.
// The party loses when every member is down; it wins when no enemy stands.
func (c *Context) Outcome() (winner model.Team, done bool) {
	allies, enemies := 0, 0
	for _, id := range c.order {
		b := c.combatants[id].Battler()
		if b.IsDead() || b.Inanimate() {
			continue
		}
		switch b.Team() {
		case model.TeamAlly:
			allies++
		case model.TeamEnemy:
			enemies++
		}
	}
	switch {
	case allies == 0 && c.player != nil:
		return model.TeamEnemy, true
	case enemies == 0 && c.hasEnemies():
		return model.TeamAlly, true
	}
	return model.TeamNeutral, false
}

func (c *Context) hasEnemies() bool {
	for _, cb := range c.combatants {
		if b := cb.Battler(); b.IsEnemy() && !b.Inanimate() {
			return true
		}
	}
	return false
}

// Close tears the battle down: AI brains are released and battlers leave
// the field. Closing twice is a no-op.
func (c *Context) Close() {
	if c.closed {
		return
	}
	for _, id := range slices.Clone(c.order) {
		c.ai.Unregister(id)
		c.field.Remove(id)
	}
	c.closed = true
	slog.Info("battle closed",
		"battle", c.id,
		"ticks", c.ticks,
		"battlers", len(c.order))
}

// IsClosed reports whether Close has been called.
func (c *Context) IsClosed() bool { return c.closed }

// Host flags.

func (c *Context) IsPaused() bool          { return c.paused }
func (c *Context) IsMessageActive() bool   { return c.messageShown }
func (c *Context) IsEventRunning() bool    { return c.eventRunning }
func (c *Context) SetPaused(v bool)        { c.paused = v }
func (c *Context) SetMessageActive(v bool) { c.messageShown = v }
func (c *Context) SetEventRunning(v bool)  { c.eventRunning = v }

// Senses.

// Tables returns the content tables.
func (c *Context) Tables() *data.Tables { return c.tables }

// Battler returns a battler by id.
func (c *Context) Battler(id model.BattlerID) (*model.Battler, bool) {
	cb, ok := c.combatants[id]
	if !ok {
		return nil, false
	}
	return cb.Battler(), true
}

// Player returns the player battler, or nil before the player spawns.
func (c *Context) Player() *model.Battler { return c.player }

// AlliesOf returns living battlers on b's team, b included, in spawn order.
func (c *Context) AlliesOf(b *model.Battler) []*model.Battler {
	var out []*model.Battler
	for _, id := range c.order {
		o := c.combatants[id].Battler()
		if o.IsAlive() && o.Team() == b.Team() {
			out = append(out, o)
		}
	}
	return out
}

// HostilesOf returns living battlers hostile to b, in spawn order.
func (c *Context) HostilesOf(b *model.Battler) []*model.Battler {
	var out []*model.Battler
	for _, id := range c.order {
		o := c.combatants[id].Battler()
		if o.IsAlive() && b.Team().IsHostileTo(o.Team()) {
			out = append(out, o)
		}
	}
	return out
}

// ProjectedDamage is the deterministic damage estimate used by AI heuristics.
func (c *Context) ProjectedDamage(skill *data.Skill, attacker, defender *model.Battler) float64 {
	return c.damage.ProjectedDamage(skill, attacker, defender)
}

// Cache maintenance.

func (c *Context) onPossessionChanged(e *Event) {
	if e.Battler == nil {
		return
	}
	c.Refresh(e.Battler)
}

func (c *Context) onInventoryChanged(*Event) {
	if c.party == nil {
		return
	}
	c.passives.RefreshParty(c.party)
	for _, m := range c.party.Members() {
		c.recomputeParams(m)
	}
}

func (c *Context) onModifierChanged(e *Event) {
	if e.Battler != nil {
		c.recomputeParams(e.Battler)
	}
}

// Refresh rebuilds b's passive set and recomputes its parameters.
// Called after any change to what b possesses.
func (c *Context) Refresh(b *model.Battler) {
	c.passives.Refresh(b)
	c.recomputeParams(b)
}

// recomputeParams rebuilds b's parameter block from its records, then
// applies the aggregated max-hp and max-mp. Current HP/MP are kept,
// clamped to the new maximums.
func (c *Context) recomputeParams(b *model.Battler) {
	base, ok := c.baseParams(b)
	if !ok {
		return
	}
	hp, mp := b.HP(), b.MP()

	b.SetParams(base)
	base.MaxHP = int32(math.Round(c.agg.Factor(b, stat.KeyMaxHP)))
	base.MaxMP = int32(math.Round(c.agg.Factor(b, stat.KeyMaxMP)))
	b.SetParams(base)

	b.SetHP(hp)
	b.SetMP(mp)
	b.SetTP(min(b.TP(), int32(c.agg.MaxTP(b))))
}

// baseParams returns the record parameters of b before aggregation:
// class at level plus equipment for actors, the enemy record for enemies.
func (c *Context) baseParams(b *model.Battler) (data.Params, bool) {
	if b.IsEnemy() {
		e, ok := c.tables.Enemy(b.EnemyID())
		if !ok {
			return data.Params{}, false
		}
		return e.Params, true
	}

	cls, ok := c.tables.Class(b.ClassID())
	if !ok {
		slog.Debug("params recompute skipped: missing class",
			"battler", b.ID(),
			"class", b.ClassID())
		return data.Params{}, false
	}
	p := cls.ParamsAt(b.Level())
	eq := b.Equipment()
	for _, id := range []data.WeaponID{eq.MainHand, eq.OffHand} {
		if w, ok := c.tables.Weapon(id); ok {
			p = p.Add(w.Params)
		}
	}
	for _, id := range eq.Armors {
		if a, ok := c.tables.Armor(id); ok {
			p = p.Add(a.Params)
		}
	}
	return p, true
}
