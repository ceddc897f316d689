package model

import "strings"

// AITraits is a bitmask of enemy AI traits.
type AITraits uint16

const (
	TraitBasic AITraits = 1 << iota
	TraitSmart
	TraitExecutor
	TraitDefensive
	TraitReckless
	TraitHealer
	TraitFollower
	TraitLeader
)

var traitNames = map[string]AITraits{
	"basic":     TraitBasic,
	"smart":     TraitSmart,
	"executor":  TraitExecutor,
	"defensive": TraitDefensive,
	"reckless":  TraitReckless,
	"healer":    TraitHealer,
	"follower":  TraitFollower,
	"leader":    TraitLeader,
}

// ParseAITraits converts authored trait names to a bitmask.
// Unknown names are returned separately so the caller can log them.
func ParseAITraits(names []string) (AITraits, []string) {
	var traits AITraits
	var unknown []string
	for _, n := range names {
		t, ok := traitNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		traits |= t
	}
	return traits, unknown
}

// Has reports whether every bit of t is set.
func (a AITraits) Has(t AITraits) bool {
	return a&t == t
}

// String returns the trait names joined by '+'.
func (a AITraits) String() string {
	if a == 0 {
		return "none"
	}
	order := []string{"basic", "smart", "executor", "defensive", "reckless", "healer", "follower", "leader"}
	var parts []string
	for _, n := range order {
		if a.Has(traitNames[n]) {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "+")
}
