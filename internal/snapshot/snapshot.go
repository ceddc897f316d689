// Package snapshot converts battlers to and from a persisted form.
//
// A Document is encoded as JSON inside an envelope carrying the BLAKE2b-256
// digest of the document bytes; Decode refuses a document whose digest
// does not match.
package snapshot

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/udisondev/jabs/internal/ai"
	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// Version of the document layout written by Encode.
const Version = 1

var (
	ErrDigestMismatch = errors.New("snapshot digest mismatch")
	ErrVersion        = errors.New("unsupported snapshot version")
	ErrRecordMismatch = errors.New("snapshot belongs to another record")
)

// State is an ordinary state with its remaining ticks.
type State struct {
	ID        data.StateID `json:"id"`
	Remaining int32        `json:"remaining"`
}

// Equipment mirrors data.Equipment.
type Equipment struct {
	MainHand data.WeaponID  `json:"main_hand,omitempty"`
	OffHand  data.WeaponID  `json:"off_hand,omitempty"`
	Armors   []data.ArmorID `json:"armors,omitempty"`
}

// Point mirrors model.Point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Battler is the persisted form of one battler. Passive sets and
// parameters are derived data and are rebuilt after Restore.
type Battler struct {
	ID            model.BattlerID             `json:"id"`
	Kind          model.Kind                  `json:"kind"`
	RecordID      int32                       `json:"record_id"`
	Player        bool                        `json:"player,omitempty"`
	ClassID       data.ClassID                `json:"class_id,omitempty"`
	Level         int32                       `json:"level"`
	HP            int32                       `json:"hp"`
	MP            int32                       `json:"mp"`
	TP            int32                       `json:"tp"`
	Skills        []data.SkillID              `json:"skills"`
	States        []State                     `json:"states,omitempty"`
	Equipment     Equipment                   `json:"equipment"`
	Buffs         map[string]model.Modifier   `json:"buffs,omitempty"`
	Growths       map[string][]model.Modifier `json:"growths,omitempty"`
	Proficiencies map[data.SkillID]int32      `json:"proficiencies,omitempty"`
	Unlocked      []string                    `json:"unlocked,omitempty"`
	Position      Point                       `json:"position"`
	Home          Point                       `json:"home"`
	LastSkill     data.SkillID                `json:"last_skill,omitempty"`
	Memory        []ai.MemoryRecord           `json:"memory,omitempty"`
}

// Item is one owned inventory stack.
type Item struct {
	Kind     data.ItemKind `json:"kind"`
	ID       int32         `json:"id"`
	Quantity int32         `json:"quantity"`
}

// Document is a saved battle: party inventory, flags and battlers.
type Document struct {
	Version   int             `json:"version"`
	BattleID  string          `json:"battle_id"`
	Tick      uint64          `json:"tick"`
	SavedAt   time.Time       `json:"saved_at"`
	Flags     map[string]bool `json:"flags,omitempty"`
	Inventory []Item          `json:"inventory,omitempty"`
	Battlers  []Battler       `json:"battlers"`
}

// Capture copies b's persistent state. memory may be nil.
func Capture(b *model.Battler, memory *ai.BattleMemory) Battler {
	eq := b.Equipment()
	s := Battler{
		ID:            b.ID(),
		Kind:          b.Kind(),
		RecordID:      b.RecordID(),
		ClassID:       b.ClassID(),
		Level:         b.Level(),
		HP:            b.HP(),
		MP:            b.MP(),
		TP:            b.TP(),
		Skills:        b.Skills(),
		Equipment:     Equipment{MainHand: eq.MainHand, OffHand: eq.OffHand, Armors: eq.Armors},
		Buffs:         b.Buffs(),
		Growths:       b.AllGrowths(),
		Proficiencies: b.Proficiencies(),
		Unlocked:      b.UnlockedKeys(),
		Position:      Point(b.Position()),
		Home:          Point(b.Home()),
		LastSkill:     b.LastSkill(),
	}
	for _, st := range b.StateEntries() {
		s.States = append(s.States, State{ID: st.StateID, Remaining: st.Remaining})
	}
	if memory != nil {
		s.Memory = memory.Records()
	}
	return s
}

// Restore writes s into b. b must be built from the same record.
// HP and MP are written last; callers rebuild passives and parameters
// afterwards and the values are clamped then.
func Restore(b *model.Battler, s Battler) error {
	if b.Kind() != s.Kind || b.RecordID() != s.RecordID {
		return fmt.Errorf("restore battler %d (%s %d) from %s %d: %w",
			b.ID(), b.Kind(), b.RecordID(), s.Kind, s.RecordID, ErrRecordMismatch)
	}

	b.SetClassID(s.ClassID)
	b.SetLevel(s.Level)
	for _, id := range b.Skills() {
		b.ForgetSkill(id)
	}
	for _, id := range s.Skills {
		b.LearnSkill(id)
	}
	for _, st := range b.StateEntries() {
		b.RemoveState(st.StateID)
	}
	for _, st := range s.States {
		b.AddState(st.ID, st.Remaining)
	}
	b.SetEquipment(data.Equipment{MainHand: s.Equipment.MainHand, OffHand: s.Equipment.OffHand, Armors: s.Equipment.Armors})
	b.RestoreModifiers(s.Buffs, s.Growths)
	for id, v := range s.Proficiencies {
		b.SetProficiency(id, v)
	}
	for _, key := range s.Unlocked {
		b.MarkUnlocked(key)
	}
	b.SetPosition(model.Point(s.Position))
	b.SetHome(model.Point(s.Home))
	b.SetLastSkill(s.LastSkill)
	b.SetTP(s.TP)
	b.SetHP(s.HP)
	b.SetMP(s.MP)
	return nil
}

type envelope struct {
	Digest   string          `json:"digest"`
	Document json.RawMessage `json:"document"`
}

// Encode serializes doc with its digest. Version is stamped by Encode.
func Encode(doc *Document) ([]byte, error) {
	doc.Version = Version
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	out, err := json.Marshal(envelope{Digest: sum256Hex(payload), Document: payload})
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot envelope: %w", err)
	}
	return out, nil
}

// Decode verifies the digest and parses the document.
func Decode(raw []byte) (*Document, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding snapshot envelope: %w", err)
	}
	if sum256Hex(env.Document) != env.Digest {
		return nil, ErrDigestMismatch
	}

	var doc Document
	if err := json.Unmarshal(env.Document, &doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("snapshot version %d: %w", doc.Version, ErrVersion)
	}
	return &doc, nil
}

func sum256Hex(p []byte) string {
	sum := blake2b.Sum256(p)
	return hex.EncodeToString(sum[:])
}

// Digest returns the hex BLAKE2b-256 digest stored in an encoded snapshot.
func Digest(raw []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("decoding snapshot envelope: %w", err)
	}
	return env.Digest, nil
}
