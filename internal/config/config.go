package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration of the simulation.
type Config struct {
	LogLevel    string `yaml:"log_level"`    // debug, info, warn, error
	ContentPath string `yaml:"content_path"` // empty = embedded default content

	// Tick loop
	TickRate         time.Duration `yaml:"tick_rate"`
	MaxTicks         int           `yaml:"max_ticks"` // 0 = until the encounter resolves
	AutosaveInterval time.Duration `yaml:"autosave_interval"`

	Database    DatabaseConfig    `yaml:"database"`
	AI          AIConfig          `yaml:"ai"`
	Combat      CombatConfig      `yaml:"combat"`
	Proficiency ProficiencyConfig `yaml:"proficiency"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// AIConfig tunes the combat AI. Distances in tiles, durations in ticks.
type AIConfig struct {
	Range             float64 `yaml:"range"`           // battlers farther from the player are not stepped
	DisengageRange    float64 `yaml:"disengage_range"` // hard cutoff to the target
	SightRange        float64 `yaml:"sight_range"`
	PrepareTicks      int32   `yaml:"prepare_ticks"`
	PostActionWait    int32   `yaml:"post_action_wait"`
	DefaultCooldown   int32   `yaml:"default_cooldown"`
	ComfortNear       float64 `yaml:"comfort_near"`
	ComfortFar        float64 `yaml:"comfort_far"`
	WanderChance      float64 `yaml:"wander_chance"`
	WanderRadius      float64 `yaml:"wander_radius"`
	HomeRadius        float64 `yaml:"home_radius"`
	EnemyComboChance  float64 `yaml:"enemy_combo_chance"`
	DoNothingWait     int32   `yaml:"do_nothing_wait"`
	FollowerScanRange float64 `yaml:"follower_scan_range"`
	SupportRange      float64 `yaml:"support_range"`
	BuffRefreshTicks  int32   `yaml:"buff_refresh_ticks"`
	AlertTicks        int32   `yaml:"alert_ticks"`
	Debug             bool    `yaml:"debug"` // per-tick decision logs
}

// CombatConfig holds damage resolution bases.
type CombatConfig struct {
	CritMultiplier float64 `yaml:"crit_multiplier"` // bonus fraction of a critical hit
	CritReduction  float64 `yaml:"crit_reduction"`
	CritChance     float64 `yaml:"crit_chance"`
	Variance       float64 `yaml:"variance"` // ± fraction applied to rolled damage
	MaxTP          float64 `yaml:"max_tp"`
}

// ProficiencyConfig holds proficiency gain settings.
type ProficiencyConfig struct {
	BaseGain float64 `yaml:"base_gain"`
}

// TelemetryConfig controls OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		LogLevel:         "info",
		TickRate:         time.Second / 60,
		MaxTicks:         0,
		AutosaveInterval: 30 * time.Second,
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "jabs",
			Password: "jabs",
			DBName:   "jabs",
			SSLMode:  "disable",
		},
		AI: AIConfig{
			Range:             20,
			DisengageRange:    15,
			SightRange:        6,
			PrepareTicks:      90,
			PostActionWait:    15,
			DefaultCooldown:   60,
			ComfortNear:       1,
			ComfortFar:        3,
			WanderChance:      0.02,
			WanderRadius:      2,
			HomeRadius:        4,
			EnemyComboChance:  0.1,
			DoNothingWait:     30,
			FollowerScanRange: 8,
			SupportRange:      10,
			BuffRefreshTicks:  120,
			AlertTicks:        180,
		},
		Combat: CombatConfig{
			CritMultiplier: 0.5,
			CritReduction:  0,
			CritChance:     0.05,
			Variance:       0.2,
			MaxTP:          100,
		},
		Proficiency: ProficiencyConfig{
			BaseGain: 1,
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: "jabssim",
		},
	}
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %s", c.TickRate)
	}
	if c.AI.DisengageRange <= 0 || c.AI.Range <= 0 {
		return fmt.Errorf("ai ranges must be positive (range %v, disengage_range %v)", c.AI.Range, c.AI.DisengageRange)
	}
	if c.AI.ComfortNear > c.AI.ComfortFar {
		return fmt.Errorf("ai comfort band inverted: near %v > far %v", c.AI.ComfortNear, c.AI.ComfortFar)
	}
	if c.Combat.Variance < 0 || c.Combat.Variance >= 1 {
		return fmt.Errorf("combat variance must be in [0, 1), got %v", c.Combat.Variance)
	}
	return nil
}
