package data

// Record identifiers. Each table has its own id space.
type (
	ActorID   int32
	ClassID   int32
	SkillID   int32
	WeaponID  int32
	ArmorID   int32
	ItemID    int32
	StateID   int32
	EnemyID   int32
	ElementID int32
)

// ItemKind distinguishes the three inventory tables.
type ItemKind int8

const (
	KindItem ItemKind = iota
	KindWeapon
	KindArmor
)

// String returns human-readable item kind.
func (k ItemKind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindWeapon:
		return "weapon"
	case KindArmor:
		return "armor"
	default:
		return "unknown"
	}
}
