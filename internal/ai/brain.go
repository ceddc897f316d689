package ai

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/looplab/fsm"

	"github.com/udisondev/jabs/internal/model"
)

// Phase is the combat AI phase of a battler.
type Phase int8

const (
	PhaseIdle Phase = iota
	PhasePrepare
	PhaseExecute
	PhaseCooldown
)

var phaseNames = [...]string{"idle", "prepare", "execute", "cooldown"}

// String returns human-readable phase name.
func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", p)
}

func parsePhase(s string) Phase {
	for i, n := range phaseNames {
		if n == s {
			return Phase(i)
		}
	}
	return PhaseIdle
}

// Phase transition events.
const (
	eventEngage    = "engage"    // idle → prepare
	eventDecide    = "decide"    // prepare → execute
	eventRecover   = "recover"   // execute → cooldown
	eventReady     = "ready"     // cooldown → prepare
	eventDisengage = "disengage" // any combat phase → idle
)

func newPhaseFSM(b *Brain) *fsm.FSM {
	return fsm.NewFSM(
		PhaseIdle.String(),
		fsm.Events{
			{Name: eventEngage, Src: []string{PhaseIdle.String()}, Dst: PhasePrepare.String()},
			{Name: eventDecide, Src: []string{PhasePrepare.String()}, Dst: PhaseExecute.String()},
			{Name: eventRecover, Src: []string{PhaseExecute.String()}, Dst: PhaseCooldown.String()},
			{Name: eventReady, Src: []string{PhaseCooldown.String()}, Dst: PhasePrepare.String()},
			{Name: eventDisengage, Src: []string{PhasePrepare.String(), PhaseExecute.String(), PhaseCooldown.String()}, Dst: PhaseIdle.String()},
		},
		fsm.Callbacks{
			"enter_" + PhaseIdle.String(): func(_ context.Context, _ *fsm.Event) {
				b.resetCombatState()
			},
			"enter_state": func(_ context.Context, e *fsm.Event) {
				if IsDebugEnabled() {
					slog.Debug("AI phase changed",
						"battler", b.battler.ID(),
						"event", e.Event,
						"from", e.Src,
						"to", e.Dst)
				}
			},
		},
	)
}

// alert is a disturbance an idle battler walks toward.
type alert struct {
	point model.Point
	ticks int32
}

// Brain is the per-battler AI phase state: phase, target, decided action,
// timers and leader/follower binding.
type Brain struct {
	battler *model.Battler
	ctl     *model.AIControlled
	ally    *AllyAI // nil for enemies
	fsm     *fsm.FSM

	target  model.BattlerID
	decided *Decision

	prepareTimer  int32
	castTimer     int32
	casting       bool
	waitTimer     int32
	cooldownTimer int32

	leader     model.BattlerID
	followers  []model.BattlerID
	preDecided *Decision

	alert *alert
}

func newBrain(b *model.Battler, ally *AllyAI) *Brain {
	br := &Brain{battler: b, ally: ally}
	br.fsm = newPhaseFSM(br)
	return br
}

// Battler returns the controlled battler.
func (br *Brain) Battler() *model.Battler { return br.battler }

// Ally returns the ally strategy, nil for enemies.
func (br *Brain) Ally() *AllyAI { return br.ally }

// Phase returns the current phase.
func (br *Brain) Phase() Phase { return parsePhase(br.fsm.Current()) }

// Target returns the engaged target id (0 when idle).
func (br *Brain) Target() model.BattlerID { return br.target }

// DecidedAction returns the decided action, if any.
func (br *Brain) DecidedAction() (Decision, bool) {
	if br.decided == nil {
		return Decision{}, false
	}
	return *br.decided, true
}

// Leader returns the leader this battler follows (0 when unbound).
func (br *Brain) Leader() model.BattlerID { return br.leader }

// Followers returns the followers bound to this battler.
func (br *Brain) Followers() []model.BattlerID { return slices.Clone(br.followers) }

func (br *Brain) fire(ctx context.Context, event string) bool {
	if !br.fsm.Can(event) {
		return false
	}
	if err := br.fsm.Event(ctx, event); err != nil {
		slog.Warn("AI phase transition failed",
			"battler", br.battler.ID(),
			"event", event,
			"phase", br.fsm.Current(),
			"error", err)
		return false
	}
	return true
}

// resetCombatState drops everything tied to the current engagement.
// Leader/follower links are released by the manager.
func (br *Brain) resetCombatState() {
	br.target = 0
	br.decided = nil
	br.preDecided = nil
	br.prepareTimer = 0
	br.castTimer = 0
	br.casting = false
	br.waitTimer = 0
	br.cooldownTimer = 0
}
