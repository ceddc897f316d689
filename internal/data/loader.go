package data

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed content/*.yaml
var contentFS embed.FS

// DefaultContentFile is the embedded content used by the simulator and tests.
const DefaultContentFile = "content/default.yaml"

// file mirrors the YAML document layout.
type file struct {
	Actors       []*Actor       `yaml:"actors"`
	Classes      []*Class       `yaml:"classes"`
	Skills       []*Skill       `yaml:"skills"`
	Weapons      []*Weapon      `yaml:"weapons"`
	Armors       []*Armor       `yaml:"armors"`
	Items        []*Item        `yaml:"items"`
	States       []*State       `yaml:"states"`
	Enemies      []*Enemy       `yaml:"enemies"`
	Conditionals []*Conditional `yaml:"conditionals"`
}

// Load parses a YAML content document.
// Duplicate ids within one table are rejected.
func Load(r io.Reader) (*Tables, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding content: %w", err)
	}

	t := NewTables()
	seen := make(map[string]struct{})
	dup := func(table string, id int32) error {
		key := fmt.Sprintf("%s:%d", table, id)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("duplicate %s id %d", table, id)
		}
		seen[key] = struct{}{}
		return nil
	}

	for _, r := range f.Actors {
		if err := dup("actor", int32(r.ID)); err != nil {
			return nil, err
		}
		t.PutActor(r)
	}
	for _, r := range f.Classes {
		if err := dup("class", int32(r.ID)); err != nil {
			return nil, err
		}
		t.PutClass(r)
	}
	for _, r := range f.Skills {
		if err := dup("skill", int32(r.ID)); err != nil {
			return nil, err
		}
		normalizeSkill(r)
		t.PutSkill(r)
	}
	for _, r := range f.Weapons {
		if err := dup("weapon", int32(r.ID)); err != nil {
			return nil, err
		}
		t.PutWeapon(r)
	}
	for _, r := range f.Armors {
		if err := dup("armor", int32(r.ID)); err != nil {
			return nil, err
		}
		t.PutArmor(r)
	}
	for _, r := range f.Items {
		if err := dup("item", int32(r.ID)); err != nil {
			return nil, err
		}
		t.PutItem(r)
	}
	for _, r := range f.States {
		if err := dup("state", int32(r.ID)); err != nil {
			return nil, err
		}
		t.PutState(r)
	}
	for _, r := range f.Enemies {
		if err := dup("enemy", int32(r.ID)); err != nil {
			return nil, err
		}
		t.PutEnemy(r)
	}

	keys := make(map[string]struct{}, len(f.Conditionals))
	for _, c := range f.Conditionals {
		if c.Key == "" {
			return nil, fmt.Errorf("conditional without key")
		}
		if _, ok := keys[c.Key]; ok {
			return nil, fmt.Errorf("duplicate conditional key %q", c.Key)
		}
		keys[c.Key] = struct{}{}
		t.AddConditional(c)
	}

	slog.Info("loaded content",
		"actors", len(t.actors),
		"classes", len(t.classes),
		"skills", len(t.skills),
		"states", len(t.states),
		"enemies", len(t.enemies),
		"conditionals", len(t.conditionals))

	return t, nil
}

// LoadFile loads content from a YAML file on disk.
func LoadFile(path string) (*Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content %s: %w", path, err)
	}
	t, err := Load(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing content %s: %w", path, err)
	}
	return t, nil
}

// LoadDefault loads the embedded default content.
func LoadDefault() (*Tables, error) {
	raw, err := contentFS.ReadFile(DefaultContentFile)
	if err != nil {
		return nil, fmt.Errorf("reading embedded content: %w", err)
	}
	return Load(bytes.NewReader(raw))
}

// normalizeSkill fills defaults the authoring format leaves implicit.
func normalizeSkill(s *Skill) {
	if s.Scope == "" {
		s.Scope = ScopeEnemy
	}
	if s.Damage.Type == "" {
		s.Damage.Type = DamageNone
	}
	if s.Damage.Kind == "" {
		s.Damage.Kind = DamagePhysical
	}
	if s.HitRate == 0 {
		s.HitRate = 100
	}
	if s.Proximity <= 0 {
		s.Proximity = 1.5
	}
}
