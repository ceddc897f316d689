package ai

// Config tunes the AI loop. Distances are in tiles, durations in ticks.
type Config struct {
	ActiveRange         float64 // battlers farther than this from the player are not stepped
	DisengageRange      float64 // hard cutoff to the target
	DefaultSightRange   float64
	DefaultPrepareTicks int32
	PostActionWait      int32
	DefaultCooldown     int32 // used when a skill declares no cooldown
	ComfortNear         float64
	ComfortFar          float64
	WanderChance        float64 // per idle tick
	WanderRadius        float64
	HomeRadius          float64
	EnemyComboChance    float64
	DoNothingWait       int32
	FollowerScanRange   float64
	SupportRange        float64
	BuffRefreshTicks    int32 // buffs with fewer ticks left count as about to expire
	AlertTicks          int32 // how long a disturbed idle battler searches
}

// DefaultConfig returns stock tuning.
func DefaultConfig() Config {
	return Config{
		ActiveRange:         20,
		DisengageRange:      15,
		DefaultSightRange:   6,
		DefaultPrepareTicks: 90,
		PostActionWait:      15,
		DefaultCooldown:     60,
		ComfortNear:         1,
		ComfortFar:          3,
		WanderChance:        0.02,
		WanderRadius:        2,
		HomeRadius:          4,
		EnemyComboChance:    0.1,
		DoNothingWait:       30,
		FollowerScanRange:   8,
		SupportRange:        10,
		BuffRefreshTicks:    120,
		AlertTicks:          180,
	}
}
