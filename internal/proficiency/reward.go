package proficiency

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// ErrUnknownReward is returned by CreateReward for an unregistered kind.
var ErrUnknownReward = errors.New("unknown reward kind")

// RewardTarget is the world a reward acts on. Implemented by the battle context.
type RewardTarget interface {
	LearnSkill(b *model.Battler, id data.SkillID)
	GainItem(kind data.ItemKind, id int32, quantity int32)
	SetFlag(name string, value bool)
	AddGrowth(b *model.Battler, key string, m model.Modifier)
}

// Reward is one typed side-effect of an unlocked conditional.
type Reward interface {
	Kind() string
	Apply(t RewardTarget, b *model.Battler)
}

// rewardRegistry maps reward kind → factory.
var rewardRegistry = map[string]func(params map[string]string) (Reward, error){}

// RegisterReward registers a reward factory by kind.
func RegisterReward(kind string, factory func(params map[string]string) (Reward, error)) {
	rewardRegistry[kind] = factory
}

// CreateReward builds a reward from its authored kind and params.
func CreateReward(kind string, params map[string]string) (Reward, error) {
	factory, ok := rewardRegistry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReward, kind)
	}
	r, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("reward %s: %w", kind, err)
	}
	return r, nil
}

func init() {
	RegisterReward("learn-skill", NewLearnSkill)
	RegisterReward("grant-item", NewGrantItem)
	RegisterReward("set-flag", NewSetFlag)
	RegisterReward("add-growth", NewAddGrowth)
}

// LearnSkill teaches skills to the unlocking battler.
type LearnSkill struct {
	Skills []data.SkillID
}

// NewLearnSkill parses params["skills"], a comma separated id list.
func NewLearnSkill(params map[string]string) (Reward, error) {
	raw := strings.TrimSpace(params["skills"])
	if raw == "" {
		return nil, errors.New("skills param is required")
	}
	var r LearnSkill
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("skill id %q: %w", part, err)
		}
		r.Skills = append(r.Skills, data.SkillID(id))
	}
	return &r, nil
}

func (r *LearnSkill) Kind() string { return "learn-skill" }

func (r *LearnSkill) Apply(t RewardTarget, b *model.Battler) {
	for _, id := range r.Skills {
		t.LearnSkill(b, id)
	}
}

// GrantItem adds items to the party inventory.
type GrantItem struct {
	ItemKind data.ItemKind
	ID       int32
	Quantity int32
}

var itemKinds = map[string]data.ItemKind{
	"item":   data.KindItem,
	"weapon": data.KindWeapon,
	"armor":  data.KindArmor,
}

// NewGrantItem parses params kind (item|weapon|armor, default item), id, quantity (default 1).
func NewGrantItem(params map[string]string) (Reward, error) {
	r := GrantItem{ItemKind: data.KindItem, Quantity: 1}
	if k := params["kind"]; k != "" {
		kind, ok := itemKinds[k]
		if !ok {
			return nil, fmt.Errorf("item kind %q", k)
		}
		r.ItemKind = kind
	}
	id, err := strconv.ParseInt(params["id"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	r.ID = int32(id)
	if q := params["quantity"]; q != "" {
		n, err := strconv.ParseInt(q, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("quantity: %w", err)
		}
		r.Quantity = int32(n)
	}
	return &r, nil
}

func (r *GrantItem) Kind() string { return "grant-item" }

func (r *GrantItem) Apply(t RewardTarget, _ *model.Battler) {
	t.GainItem(r.ItemKind, r.ID, r.Quantity)
}

// SetFlag sets a named game flag.
type SetFlag struct {
	Name  string
	Value bool
}

// NewSetFlag parses params name and value (default true).
func NewSetFlag(params map[string]string) (Reward, error) {
	r := SetFlag{Name: strings.TrimSpace(params["name"]), Value: true}
	if r.Name == "" {
		return nil, errors.New("name param is required")
	}
	if v := params["value"]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		r.Value = b
	}
	return &r, nil
}

func (r *SetFlag) Kind() string { return "set-flag" }

func (r *SetFlag) Apply(t RewardTarget, _ *model.Battler) {
	t.SetFlag(r.Name, r.Value)
}

// AddGrowth grants a permanent attribute modifier.
type AddGrowth struct {
	Attribute string
	Modifier  model.Modifier
}

// NewAddGrowth parses params attribute, flat, rate, flat_formula, rate_formula.
func NewAddGrowth(params map[string]string) (Reward, error) {
	r := AddGrowth{Attribute: strings.TrimSpace(params["attribute"])}
	if r.Attribute == "" {
		return nil, errors.New("attribute param is required")
	}
	var err error
	if r.Modifier.Flat, err = parseFloat(params["flat"]); err != nil {
		return nil, fmt.Errorf("flat: %w", err)
	}
	if r.Modifier.Rate, err = parseFloat(params["rate"]); err != nil {
		return nil, fmt.Errorf("rate: %w", err)
	}
	r.Modifier.FlatFormula = params["flat_formula"]
	r.Modifier.RateFormula = params["rate_formula"]
	if r.Modifier.IsZero() {
		return nil, errors.New("growth contributes nothing")
	}
	return &r, nil
}

func (r *AddGrowth) Kind() string { return "add-growth" }

func (r *AddGrowth) Apply(t RewardTarget, b *model.Battler) {
	t.AddGrowth(b, r.Attribute, r.Modifier)
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
