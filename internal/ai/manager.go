package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
	"github.com/udisondev/jabs/internal/telemetry"
)

var (
	ErrPlayerControlled  = errors.New("player-controlled battler cannot be driven by AI")
	ErrAlreadyRegistered = errors.New("battler already registered")
)

var tracer = telemetry.Tracer("ai")

// Manager steps the AI of every registered battler once per tick.
// Not safe for concurrent use: it is owned by the tick goroutine.
type Manager struct {
	cfg  Config
	deps Deps
	p    *planner

	brains map[model.BattlerID]*Brain
	order  []model.BattlerID // registration order, stepping order
}

// NewManager creates an AI manager.
func NewManager(cfg Config, deps Deps) *Manager {
	return &Manager{
		cfg:    cfg,
		deps:   deps,
		p:      &planner{cfg: cfg, deps: deps},
		brains: make(map[model.BattlerID]*Brain),
	}
}

// Register starts driving c. Actors get an ally strategy with empty memory.
func (m *Manager) Register(c model.Combatant) error {
	if c.PlayerControlled() {
		return ErrPlayerControlled
	}
	ac, ok := c.(*model.AIControlled)
	if !ok {
		return fmt.Errorf("register %T: unsupported combatant", c)
	}
	b := ac.Battler()
	if _, exists := m.brains[b.ID()]; exists {
		slog.Warn("AI brain already registered", "battler", b.ID())
		return fmt.Errorf("register battler %d: %w", b.ID(), ErrAlreadyRegistered)
	}

	var ally *AllyAI
	if b.IsActor() {
		ally = NewAllyAI(ac.Mode(), nil, m.cfg, m.deps)
	}
	br := newBrain(b, ally)
	br.ctl = ac
	m.brains[b.ID()] = br
	m.order = append(m.order, b.ID())

	slog.Debug("AI brain registered",
		"battler", b.ID(),
		"kind", b.Kind(),
		"traits", b.Traits())
	return nil
}

// Unregister stops driving the battler and releases its bindings.
func (m *Manager) Unregister(id model.BattlerID) {
	br, ok := m.brains[id]
	if !ok {
		return
	}
	m.release(br)
	delete(m.brains, id)
	m.order = slices.DeleteFunc(m.order, func(x model.BattlerID) bool { return x == id })

	slog.Debug("AI brain unregistered", "battler", id)
}

// Count returns number of registered brains.
func (m *Manager) Count() int {
	return len(m.brains)
}

// Brain returns the brain of a battler.
func (m *Manager) Brain(id model.BattlerID) (*Brain, bool) {
	br, ok := m.brains[id]
	return br, ok
}

// Phase returns the phase of a battler; unregistered battlers are idle.
func (m *Manager) Phase(id model.BattlerID) Phase {
	if br, ok := m.brains[id]; ok {
		return br.Phase()
	}
	return PhaseIdle
}

// DecidedAction returns the action a battler has decided on, if any.
func (m *Manager) DecidedAction(id model.BattlerID) (Decision, bool) {
	if br, ok := m.brains[id]; ok {
		return br.DecidedAction()
	}
	return Decision{}, false
}

// Alert makes an idle battler walk toward p for up to ticks ticks.
func (m *Manager) Alert(id model.BattlerID, p model.Point, ticks int32) {
	br, ok := m.brains[id]
	if !ok || br.Phase() != PhaseIdle || ticks <= 0 {
		return
	}
	br.alert = &alert{point: p, ticks: ticks}
}

// Tick steps every eligible brain once.
func (m *Manager) Tick(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "ai.tick")
	defer span.End()

	if m.suspended() {
		span.SetAttributes(attribute.Bool("ai.suspended", true))
		return
	}

	player := m.deps.Senses.Player()
	stepped := 0
	for _, id := range slices.Clone(m.order) {
		br, ok := m.brains[id]
		if !ok {
			continue
		}
		b := br.battler
		if b.IsDead() {
			if br.Phase() != PhaseIdle {
				m.disengage(ctx, br)
			}
			continue
		}
		if b.Inanimate() || (player != nil && player.ID() == b.ID()) {
			continue
		}
		if player != nil {
			d, ok := m.deps.Spatial.DistanceTo(b, player)
			if !ok || d > m.cfg.ActiveRange {
				continue
			}
		}
		m.step(ctx, br)
		stepped++
	}

	span.SetAttributes(
		attribute.Int("ai.brains", len(m.order)),
		attribute.Int("ai.stepped", stepped))
	if stepped > 0 && IsDebugEnabled() {
		slog.Debug("AI tick completed", "stepped", stepped)
	}
}

func (m *Manager) suspended() bool {
	h := m.deps.Host
	return h != nil && (h.IsPaused() || h.IsMessageActive() || h.IsEventRunning())
}

func (m *Manager) step(ctx context.Context, br *Brain) {
	switch br.Phase() {
	case PhaseIdle:
		m.idle(ctx, br)
	case PhasePrepare:
		m.prepare(ctx, br)
	case PhaseExecute:
		m.execute(ctx, br)
	case PhaseCooldown:
		m.cooldown(ctx, br)
	}
}

func (m *Manager) idle(ctx context.Context, br *Brain) {
	b := br.battler
	if t := m.nearestHostile(b); t != nil {
		br.target = t.ID()
		br.prepareTimer = m.prepareTicks(b)
		br.alert = nil
		br.fire(ctx, eventEngage)
		return
	}
	if b.CannotIdle() || !m.canMove(b) {
		return
	}

	if a := br.alert; a != nil {
		if a.ticks <= 0 || b.Position().DistanceTo(a.point) < 0.5 {
			br.alert = nil
		} else {
			a.ticks--
			m.deps.Spatial.PathToward(b, a.point)
			return
		}
	}

	anchor := b.Home()
	if player := m.deps.Senses.Player(); b.IsActor() && player != nil {
		anchor = player.Position()
	}
	if b.Position().DistanceTo(anchor) > m.cfg.HomeRadius {
		m.deps.Spatial.PathToward(b, anchor)
		return
	}
	if m.deps.Rand.Float64() < m.cfg.WanderChance {
		r := m.cfg.WanderRadius
		dest := anchor.Offset((m.deps.Rand.Float64()*2-1)*r, (m.deps.Rand.Float64()*2-1)*r)
		m.deps.Spatial.PathToward(b, dest)
	}
}

func (m *Manager) prepare(ctx context.Context, br *Brain) {
	target, ok := m.validTarget(br)
	if !ok {
		m.disengage(ctx, br)
		return
	}

	if br.leader != 0 && !m.leaderActive(br) {
		m.unbind(br)
	}
	if br.leader != 0 {
		// follower: the leader decides
		if br.preDecided != nil {
			br.fire(ctx, eventDecide)
			return
		}
		m.keepDistance(br, target)
		return
	}

	m.keepDistance(br, target)
	if br.prepareTimer > 0 {
		br.prepareTimer--
	}
	if br.prepareTimer <= 0 {
		br.fire(ctx, eventDecide)
	}
}

func (m *Manager) execute(ctx context.Context, br *Brain) {
	target, ok := m.validTarget(br)
	if !ok {
		m.disengage(ctx, br)
		return
	}
	if br.waitTimer > 0 {
		br.waitTimer--
		return
	}

	b := br.battler
	if br.decided == nil {
		d := m.decide(ctx, br, target)
		if d.Wait > 0 {
			br.waitTimer = d.Wait
			return
		}
		if d.IsNone() {
			return
		}
		br.decided = &d
		if sk, ok := m.p.skill(d.SkillID); ok {
			br.castTimer = sk.CastTicks
		}
	}

	d := *br.decided
	sk, ok := m.p.skill(d.SkillID)
	if !ok {
		br.decided = nil
		return
	}
	aim, ok := m.deps.Senses.Battler(d.TargetID)
	if !ok || (aim.IsDead() && sk.Scope != data.ScopeDeadAlly) {
		br.decided = nil
		br.casting = false
		return
	}

	if sk.Proximity > 0 && aim.ID() != b.ID() && !m.deps.Spatial.IsInRange(b, aim, sk.Proximity) {
		if m.canMove(b) {
			m.deps.Spatial.PathToward(b, aim.Position())
		}
		return
	}
	if br.castTimer > 0 {
		br.casting = true
		br.castTimer--
		if br.castTimer > 0 {
			return
		}
	}
	br.casting = false

	if !m.deps.Executor.CanExecute(b, sk) {
		// resources or states changed since the decision
		br.decided = nil
		return
	}
	outcomes := m.deps.Executor.Execute(b, sk, aim)
	if aim.ID() != b.ID() {
		m.deps.Spatial.FaceToward(b, aim.Position())
	}
	b.SetLastSkill(sk.ID)
	if br.ally != nil {
		for _, o := range outcomes {
			br.ally.Remember(sk.ID, o)
		}
	}

	cd := sk.CooldownTicks
	if cd <= 0 {
		cd = m.cfg.DefaultCooldown
	}
	br.cooldownTimer = m.cfg.PostActionWait + cd

	if IsDebugEnabled() {
		slog.Debug("AI action executed",
			"battler", b.ID(),
			"skill", sk.ID,
			"target", aim.ID(),
			"outcomes", len(outcomes))
	}
	br.fire(ctx, eventRecover)
}

func (m *Manager) cooldown(ctx context.Context, br *Brain) {
	target, ok := m.validTarget(br)
	if !ok {
		m.disengage(ctx, br)
		return
	}
	m.keepDistance(br, target)
	if br.cooldownTimer > 0 {
		br.cooldownTimer--
	}
	if br.cooldownTimer <= 0 {
		br.decided = nil
		br.prepareTimer = m.prepareTicks(br.battler)
		br.fire(ctx, eventReady)
	}
}

// decide asks the ally strategy or the enemy routine for an action.
// A skill the battler cannot execute now yields no action.
func (m *Manager) decide(ctx context.Context, br *Brain, target *model.Battler) Decision {
	b := br.battler
	var d Decision
	if br.ally != nil {
		if br.ctl != nil {
			br.ally.Mode = br.ctl.Mode()
		}
		d = br.ally.DecideAction(b, target, m.p.available(b))
	} else {
		d = m.decideEnemy(ctx, br, target)
	}
	if d.Wait > 0 || d.IsNone() {
		return d
	}
	sk, ok := m.p.skill(d.SkillID)
	if !ok || !m.deps.Executor.CanExecute(b, sk) {
		return Decision{}
	}
	return d
}

// keepDistance holds target inside the comfort band.
func (m *Manager) keepDistance(br *Brain, target *model.Battler) {
	b := br.battler
	if !m.canMove(b) {
		return
	}
	d, ok := m.deps.Spatial.DistanceTo(b, target)
	if !ok {
		return
	}
	switch {
	case d < m.cfg.ComfortNear:
		m.deps.Spatial.MoveAway(b, target.Position())
	case d > m.cfg.ComfortFar:
		m.deps.Spatial.PathToward(b, target.Position())
	}
}

// validTarget returns the engaged target while it is alive and within the
// disengage range.
func (m *Manager) validTarget(br *Brain) (*model.Battler, bool) {
	if br.target == 0 {
		return nil, false
	}
	t, ok := m.deps.Senses.Battler(br.target)
	if !ok || t.IsDead() {
		return nil, false
	}
	d, ok := m.deps.Spatial.DistanceTo(br.battler, t)
	if !ok || d > m.cfg.DisengageRange {
		return nil, false
	}
	return t, true
}

func (m *Manager) nearestHostile(b *model.Battler) *model.Battler {
	sight := b.SightRange()
	if sight <= 0 {
		sight = m.cfg.DefaultSightRange
	}
	var best *model.Battler
	bestDist := sight
	for _, h := range m.deps.Senses.HostilesOf(b) {
		if h.IsDead() || h.Inanimate() {
			continue
		}
		d, ok := m.deps.Spatial.DistanceTo(b, h)
		if ok && d <= bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

func (m *Manager) prepareTicks(b *model.Battler) int32 {
	if n := b.PrepareTicks(); n > 0 {
		return n
	}
	return m.cfg.DefaultPrepareTicks
}

func (m *Manager) canMove(b *model.Battler) bool {
	tables := m.deps.Senses.Tables()
	for _, id := range b.AllStateIDs() {
		if st, ok := tables.State(id); ok && st.CannotMove {
			return false
		}
	}
	return true
}

func (m *Manager) disengage(ctx context.Context, br *Brain) {
	m.release(br)
	if !br.fire(ctx, eventDisengage) {
		br.resetCombatState()
	}
}

// release drops br's leader and follower bindings.
func (m *Manager) release(br *Brain) {
	m.unbind(br)
	for _, fid := range br.followers {
		if f, ok := m.brains[fid]; ok && f.leader == br.battler.ID() {
			f.leader = 0
			f.preDecided = nil
		}
	}
	br.followers = nil
}

// unbind detaches a follower from its leader.
func (m *Manager) unbind(br *Brain) {
	if br.leader == 0 {
		return
	}
	if l, ok := m.brains[br.leader]; ok {
		id := br.battler.ID()
		l.followers = slices.DeleteFunc(l.followers, func(x model.BattlerID) bool { return x == id })
	}
	br.leader = 0
	br.preDecided = nil
}

func (m *Manager) leaderActive(br *Brain) bool {
	l, ok := m.brains[br.leader]
	return ok && l.battler.IsAlive() && l.Phase() != PhaseIdle
}
