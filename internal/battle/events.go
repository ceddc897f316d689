package battle

import (
	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// EventType identifies the kind of battle event.
type EventType int

const (
	EventSpawned          EventType = iota // battler entered the battle
	EventDespawned                         // battler left the battle
	EventEquipmentChanged                  // loadout replaced
	EventClassChanged                      // actor class switched
	EventSkillLearned                      // skill added to the known list
	EventSkillForgotten                    // skill removed from the known list
	EventStateAdded                        // ordinary state added or refreshed
	EventStateRemoved                      // ordinary state removed or expired
	EventInventoryChanged                  // party inventory quantity changed
	EventModifierChanged                   // buff or growth written
	EventActionExecuted                    // skill executed by any battler
	EventDefeated                          // battler HP dropped to zero
	EventFlagChanged                       // game flag written
)

var eventNames = [...]string{
	"spawned", "despawned", "equipment-changed", "class-changed",
	"skill-learned", "skill-forgotten", "state-added", "state-removed",
	"inventory-changed", "modifier-changed", "action-executed", "defeated",
	"flag-changed",
}

// String returns the event name used in logs.
func (t EventType) String() string {
	if t >= 0 && int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event carries battle event data to handlers.
type Event struct {
	Type    EventType
	Battler *model.Battler // nil for party-wide events
	SkillID data.SkillID   // EventSkill*, EventActionExecuted
	StateID data.StateID   // EventState*
	Expired bool           // EventStateRemoved by duration
	Item    model.InventoryKey
	Flag    string
}

// Handler is the callback signature for battle event handlers.
type Handler func(event *Event)

// Dispatcher fans battle events out to handlers in subscription order.
// Handlers run synchronously on the tick goroutine and may publish
// further events.
type Dispatcher struct {
	handlers map[EventType][]Handler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventType][]Handler, 8)}
}

// Subscribe registers h for every listed event type.
func (d *Dispatcher) Subscribe(h Handler, types ...EventType) {
	for _, t := range types {
		d.handlers[t] = append(d.handlers[t], h)
	}
}

// Dispatch fires the handlers registered for event.Type.
// Returns the number of handlers called.
func (d *Dispatcher) Dispatch(event *Event) int {
	hs := d.handlers[event.Type]
	for _, h := range hs {
		h(event)
	}
	return len(hs)
}
