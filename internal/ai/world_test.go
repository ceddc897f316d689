package ai

import (
	"math"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// fakeRand replays queued values. Empty queues yield 0 for IntN and 0.99
// for Float64, so chance rolls fail unless a test asks otherwise.
type fakeRand struct {
	ints   []int
	floats []float64
}

func (r *fakeRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *fakeRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

type execution struct {
	user, target model.BattlerID
	skill        data.SkillID
}

// fakeWorld is a minimal battle: Senses, Spatial, ActionExecutor and Host
// in one value. Movement is one tile per call in a straight line.
type fakeWorld struct {
	tables   *data.Tables
	battlers map[model.BattlerID]*model.Battler
	player   *model.Battler

	projected map[data.SkillID]float64
	rates     map[data.SkillID]float64
	blocked   map[data.SkillID]bool
	misses    bool

	executed []execution
	moves    int

	paused, message, event bool
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		tables:    data.NewTables(),
		battlers:  make(map[model.BattlerID]*model.Battler),
		projected: make(map[data.SkillID]float64),
		rates:     make(map[data.SkillID]float64),
		blocked:   make(map[data.SkillID]bool),
	}
}

func (w *fakeWorld) add(b *model.Battler) *model.Battler {
	w.battlers[b.ID()] = b
	return b
}

func (w *fakeWorld) remove(id model.BattlerID) {
	delete(w.battlers, id)
	if w.player != nil && w.player.ID() == id {
		w.player = nil
	}
}

func (w *fakeWorld) deps(rnd Rand) Deps {
	return Deps{Senses: w, Spatial: w, Executor: w, Host: w, Rand: rnd}
}

// Senses

func (w *fakeWorld) Tables() *data.Tables { return w.tables }

func (w *fakeWorld) Battler(id model.BattlerID) (*model.Battler, bool) {
	b, ok := w.battlers[id]
	return b, ok
}

func (w *fakeWorld) Player() *model.Battler { return w.player }

func (w *fakeWorld) AlliesOf(b *model.Battler) []*model.Battler {
	var out []*model.Battler
	for _, o := range w.sorted() {
		if o.IsAlive() && o.Team() == b.Team() {
			out = append(out, o)
		}
	}
	return out
}

func (w *fakeWorld) HostilesOf(b *model.Battler) []*model.Battler {
	var out []*model.Battler
	for _, o := range w.sorted() {
		if o.IsAlive() && b.Team().IsHostileTo(o.Team()) {
			out = append(out, o)
		}
	}
	return out
}

func (w *fakeWorld) sorted() []*model.Battler {
	var out []*model.Battler
	for id := model.BattlerID(1); len(out) < len(w.battlers) && id < 1000; id++ {
		if b, ok := w.battlers[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

func (w *fakeWorld) ProjectedDamage(skill *data.Skill, _, _ *model.Battler) float64 {
	return w.projected[skill.ID]
}

// Spatial

func (w *fakeWorld) DistanceTo(a, b *model.Battler) (float64, bool) {
	if _, ok := w.battlers[a.ID()]; !ok {
		return 0, false
	}
	if _, ok := w.battlers[b.ID()]; !ok {
		return 0, false
	}
	return a.Position().DistanceTo(b.Position()), true
}

func (w *fakeWorld) PathToward(b *model.Battler, p model.Point) {
	w.moves++
	from := b.Position()
	d := from.DistanceTo(p)
	if d <= 1 {
		b.SetPosition(p)
		return
	}
	b.SetPosition(from.Offset((p.X-from.X)/d, (p.Y-from.Y)/d))
}

func (w *fakeWorld) MoveAway(b *model.Battler, p model.Point) {
	w.moves++
	b.SetPosition(b.Position().Away(p))
}

func (w *fakeWorld) IsInRange(b, target *model.Battler, proximity float64) bool {
	return b.Position().DistanceTo(target.Position()) <= proximity
}

func (w *fakeWorld) FaceToward(b *model.Battler, p model.Point) {
	from := b.Position()
	d := math.Hypot(p.X-from.X, p.Y-from.Y)
	if d == 0 {
		return
	}
	b.SetFacing(model.NewPoint((p.X-from.X)/d, (p.Y-from.Y)/d))
}

// Host

func (w *fakeWorld) IsPaused() bool        { return w.paused }
func (w *fakeWorld) IsMessageActive() bool { return w.message }
func (w *fakeWorld) IsEventRunning() bool  { return w.event }

// ActionExecutor

func (w *fakeWorld) CanExecute(_ *model.Battler, skill *data.Skill) bool {
	return !w.blocked[skill.ID]
}

func (w *fakeWorld) Execute(user *model.Battler, skill *data.Skill, target *model.Battler) []TargetOutcome {
	w.executed = append(w.executed, execution{user: user.ID(), target: target.ID(), skill: skill.ID})
	rate, ok := w.rates[skill.ID]
	if !ok {
		rate = 1
	}
	return []TargetOutcome{{Target: target, Hit: !w.misses, ElementRate: rate}}
}

// fixtures

func testParams() data.Params {
	return data.Params{MaxHP: 100, MaxMP: 50, Atk: 10, Def: 10, Mat: 10, Mdf: 10, Agi: 10, Luk: 10}
}

func (w *fakeWorld) actor(id model.BattlerID, pos model.Point) *model.Battler {
	b := model.NewBattler(id, "ally", model.KindActor, model.TeamAlly, int32(id), 1, testParams())
	b.SetPosition(pos)
	b.SetHome(pos)
	return w.add(b)
}

func (w *fakeWorld) enemy(id model.BattlerID, enemyID data.EnemyID, pos model.Point) *model.Battler {
	b := model.NewBattler(id, "foe", model.KindEnemy, model.TeamEnemy, int32(enemyID), 1, testParams())
	b.SetPosition(pos)
	b.SetHome(pos)
	return w.add(b)
}

func (w *fakeWorld) attack(id data.SkillID, projected float64) *data.Skill {
	sk := &data.Skill{
		ID:      id,
		Name:    "attack",
		Scope:   data.ScopeEnemy,
		Damage:  data.Damage{Type: data.DamageHP, Kind: data.DamagePhysical, Power: int32(projected)},
		HitRate: 100,
	}
	w.tables.PutSkill(sk)
	w.projected[id] = projected
	return sk
}

func (w *fakeWorld) heal(id data.SkillID, scope data.Scope, amount float64) *data.Skill {
	sk := &data.Skill{
		ID:      id,
		Name:    "heal",
		Scope:   scope,
		Damage:  data.Damage{Type: data.DamageHPRecover, Kind: data.DamageCertain, Power: int32(amount)},
		HitRate: 100,
	}
	w.tables.PutSkill(sk)
	w.projected[id] = amount
	return sk
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DefaultPrepareTicks = 1
	cfg.PostActionWait = 1
	cfg.DefaultCooldown = 1
	return cfg
}
