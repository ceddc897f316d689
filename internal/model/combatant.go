package model

import (
	"fmt"
	"strings"
)

// AllyMode selects the skill-choice strategy of an AI-controlled ally.
type AllyMode int8

const (
	ModeDoNothing AllyMode = iota
	ModeBasicAttack
	ModeVariety
	ModeFullForce
	ModeSupport
)

var allyModeNames = [...]string{"do-nothing", "basic-attack", "variety", "full-force", "support"}

// String returns the authored name of the mode.
func (m AllyMode) String() string {
	if int(m) < len(allyModeNames) {
		return allyModeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

// ParseAllyMode converts an authored name. Empty string selects variety.
func ParseAllyMode(s string) (AllyMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeVariety, nil
	}
	for i, n := range allyModeNames {
		if n == s {
			return AllyMode(i), nil
		}
	}
	return ModeDoNothing, fmt.Errorf("unknown ally mode %q", s)
}

// Combatant is the capability shared by player- and AI-controlled battlers.
type Combatant interface {
	Battler() *Battler
	PlayerControlled() bool
}

// PlayerControlled is the battler steered by input.
type PlayerControlled struct {
	b *Battler
}

// NewPlayerControlled wraps b as the player combatant.
func NewPlayerControlled(b *Battler) *PlayerControlled {
	return &PlayerControlled{b: b}
}

func (p *PlayerControlled) Battler() *Battler      { return p.b }
func (p *PlayerControlled) PlayerControlled() bool { return true }

// AIControlled is any battler driven by the AI manager:
// enemies and party members following the player.
type AIControlled struct {
	b    *Battler
	mode AllyMode
}

// NewAIControlled wraps b. Mode matters for allies only.
func NewAIControlled(b *Battler, mode AllyMode) *AIControlled {
	return &AIControlled{b: b, mode: mode}
}

func (a *AIControlled) Battler() *Battler      { return a.b }
func (a *AIControlled) PlayerControlled() bool { return false }

// Mode returns the ally strategy selector.
func (a *AIControlled) Mode() AllyMode { return a.mode }

// SetMode switches the ally strategy.
func (a *AIControlled) SetMode(m AllyMode) { a.mode = m }
