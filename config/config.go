package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Perception PerceptionConfig `mapstructure:"perception"`
	Awareness  AwarenessConfig  `mapstructure:"awareness"`
	Genes      GenesConfig      `mapstructure:"genes"`
	Sim        SimConfig        `mapstructure:"sim"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Debug      DebugConfig      `mapstructure:"debug"`
}

type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	Level string `mapstructure:"level"` // debug | info | warn | error
}

type AgentConfig struct {
	Count              int           `mapstructure:"count"`
	Template           string        `mapstructure:"template"` // stored gene template to start from
	MaxHealth          float64       `mapstructure:"max_health"`
	AttackRange        float64       `mapstructure:"attack_range"`
	AttackDamage       float64       `mapstructure:"attack_damage"`
	LowHealth          float64       `mapstructure:"low_health"`
	RetreatThreshold   float64       `mapstructure:"retreat_threshold"`
	RetreatDistance    float64       `mapstructure:"retreat_distance"`
	SearchRadius       float64       `mapstructure:"search_radius"`
	HealRate           float64       `mapstructure:"heal_rate"`
	PatrolSpeed        float64       `mapstructure:"patrol_speed"`
	ChaseSpeedFactor   float64       `mapstructure:"chase_speed_factor"`
	RetreatSpeed       float64       `mapstructure:"retreat_speed"`
	StoppingDistance   float64       `mapstructure:"stopping_distance"`
	ArrivalEpsilon     float64       `mapstructure:"arrival_epsilon"`
	HitCooldown        time.Duration `mapstructure:"hit_cooldown"`
	SearchDuration     time.Duration `mapstructure:"search_duration"`
	AttackCooldownSlow time.Duration `mapstructure:"attack_cooldown_slow"`
	AttackCooldownFast time.Duration `mapstructure:"attack_cooldown_fast"`
	DodgeEnabled       bool          `mapstructure:"dodge_enabled"`
}

type PerceptionConfig struct {
	ViewRadius       float64       `mapstructure:"view_radius"`
	ViewAngleDeg     float64       `mapstructure:"view_angle_deg"`
	HearingRadius    float64       `mapstructure:"hearing_radius"`
	EyeHeight        float64       `mapstructure:"eye_height"`
	Vision           bool          `mapstructure:"vision"`
	Hearing          bool          `mapstructure:"hearing"`
	OcclusionTimeout time.Duration `mapstructure:"occlusion_timeout"`
}

type AwarenessConfig struct {
	SuspiciousAfter time.Duration `mapstructure:"suspicious_after"`
	AlertedAfter    time.Duration `mapstructure:"alerted_after"`
	LoseSightDelay  time.Duration `mapstructure:"lose_sight_delay"`
}

type GenesConfig struct {
	Aggression  float64 `mapstructure:"aggression"`
	DodgeChance float64 `mapstructure:"dodge_chance"`
	ChaseRange  float64 `mapstructure:"chase_range"`
}

// Point is a ground-plane coordinate.
type Point struct {
	X float64 `mapstructure:"x"`
	Z float64 `mapstructure:"z"`
}

// Rect is an axis-aligned obstacle footprint.
type Rect struct {
	MinX float64 `mapstructure:"min_x"`
	MinZ float64 `mapstructure:"min_z"`
	MaxX float64 `mapstructure:"max_x"`
	MaxZ float64 `mapstructure:"max_z"`
}

type SimConfig struct {
	Tick          time.Duration  `mapstructure:"tick"`
	Width         float64        `mapstructure:"width"`
	Depth         float64        `mapstructure:"depth"`
	CellSize      float64        `mapstructure:"cell_size"`
	Seed          int64          `mapstructure:"seed"` // 0 seeds from the clock
	Obstacles     []Rect         `mapstructure:"obstacles"`
	Spawns        []Point        `mapstructure:"spawns"`
	Patrol        []Point        `mapstructure:"patrol"`
	Opponent      OpponentConfig `mapstructure:"opponent"`
	SnapshotEvery time.Duration  `mapstructure:"snapshot_every"`
	// OpponentResetEvery clears every agent's opponent profile on this
	// interval. Zero never resets.
	OpponentResetEvery time.Duration `mapstructure:"opponent_reset_every"`
}

type OpponentConfig struct {
	MaxHealth      float64       `mapstructure:"max_health"`
	Speed          float64       `mapstructure:"speed"`
	Reach          float64       `mapstructure:"reach"`
	Damage         float64       `mapstructure:"damage"`
	AttackCooldown time.Duration `mapstructure:"attack_cooldown"`
	SprintEvery    time.Duration `mapstructure:"sprint_every"`
	SprintFor      time.Duration `mapstructure:"sprint_for"`
	BlockEvery     time.Duration `mapstructure:"block_every"`
	BlockFor       time.Duration `mapstructure:"block_for"`
	Route          []Point       `mapstructure:"route"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // none | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
	TemplateTTL     time.Duration `mapstructure:"template_ttl"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
}

type DebugConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Addr           string  `mapstructure:"addr"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.debug", false)
	v.SetDefault("log.level", "info")

	v.SetDefault("agent.count", 3)
	v.SetDefault("agent.template", "")
	v.SetDefault("agent.max_health", 100)
	v.SetDefault("agent.attack_range", 2)
	v.SetDefault("agent.attack_damage", 10)
	v.SetDefault("agent.low_health", 30)
	v.SetDefault("agent.retreat_threshold", 15)
	v.SetDefault("agent.retreat_distance", 5)
	v.SetDefault("agent.search_radius", 3)
	v.SetDefault("agent.heal_rate", 10)
	v.SetDefault("agent.patrol_speed", 2)
	v.SetDefault("agent.chase_speed_factor", 1.5)
	v.SetDefault("agent.retreat_speed", 3)
	v.SetDefault("agent.stopping_distance", 0)
	v.SetDefault("agent.arrival_epsilon", 0.05)
	v.SetDefault("agent.hit_cooldown", "2s")
	v.SetDefault("agent.search_duration", "5s")
	v.SetDefault("agent.attack_cooldown_slow", "2s")
	v.SetDefault("agent.attack_cooldown_fast", "500ms")
	v.SetDefault("agent.dodge_enabled", false)

	v.SetDefault("perception.view_radius", 12)
	v.SetDefault("perception.view_angle_deg", 120)
	v.SetDefault("perception.hearing_radius", 6)
	v.SetDefault("perception.eye_height", 1.6)
	v.SetDefault("perception.vision", true)
	v.SetDefault("perception.hearing", true)
	v.SetDefault("perception.occlusion_timeout", "5ms")

	v.SetDefault("awareness.suspicious_after", "1500ms")
	v.SetDefault("awareness.alerted_after", "3s")
	v.SetDefault("awareness.lose_sight_delay", "2s")

	v.SetDefault("genes.aggression", 0.5)
	v.SetDefault("genes.dodge_chance", 0.5)
	v.SetDefault("genes.chase_range", 5)

	v.SetDefault("sim.tick", "50ms")
	v.SetDefault("sim.width", 40)
	v.SetDefault("sim.depth", 40)
	v.SetDefault("sim.cell_size", 1)
	v.SetDefault("sim.seed", 0)
	v.SetDefault("sim.snapshot_every", "30s")
	v.SetDefault("sim.opponent_reset_every", "0s")
	v.SetDefault("sim.opponent.max_health", 100)
	v.SetDefault("sim.opponent.speed", 2.5)
	v.SetDefault("sim.opponent.reach", 1.5)
	v.SetDefault("sim.opponent.damage", 15)
	v.SetDefault("sim.opponent.attack_cooldown", "1s")
	v.SetDefault("sim.opponent.sprint_every", "6s")
	v.SetDefault("sim.opponent.sprint_for", "2s")
	v.SetDefault("sim.opponent.block_every", "5s")
	v.SetDefault("sim.opponent.block_for", "1s")

	v.SetDefault("database.mode", "none")
	v.SetDefault("database.sqlite_path", "./data/enemyai.db")
	v.SetDefault("database.mysql_max_open", 20)
	v.SetDefault("database.mysql_max_idle", 5)
	v.SetDefault("database.mysql_max_life", "1h")

	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("cache.template_ttl", "10m")
	v.SetDefault("cache.key_prefix", "enemyai:")

	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.addr", "127.0.0.1:8090")
	v.SetDefault("debug.rate_limit_rps", 20)
	v.SetDefault("debug.rate_limit_burst", 40)
}

// Load reads config from the given YAML file path. An empty path yields the
// defaults. ENEMYAI_* environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("enemyai")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	a := c.Awareness
	if a.SuspiciousAfter <= 0 || a.AlertedAfter <= a.SuspiciousAfter {
		return fmt.Errorf("%w: awareness thresholds must be strictly increasing", ErrInvalidConfig)
	}
	if a.LoseSightDelay <= 0 {
		return fmt.Errorf("%w: awareness.lose_sight_delay must be positive", ErrInvalidConfig)
	}
	if c.Perception.ViewRadius < 0 || c.Perception.HearingRadius < 0 {
		return fmt.Errorf("%w: perception radii must not be negative", ErrInvalidConfig)
	}
	if c.Perception.ViewAngleDeg <= 0 || c.Perception.ViewAngleDeg > 360 {
		return fmt.Errorf("%w: perception.view_angle_deg must be in (0, 360]", ErrInvalidConfig)
	}
	if c.Agent.AttackRange <= 0 || c.Agent.MaxHealth <= 0 {
		return fmt.Errorf("%w: agent.attack_range and agent.max_health must be positive", ErrInvalidConfig)
	}
	if c.Agent.AttackCooldownFast > c.Agent.AttackCooldownSlow {
		return fmt.Errorf("%w: agent.attack_cooldown_fast exceeds attack_cooldown_slow", ErrInvalidConfig)
	}
	if c.Sim.Tick <= 0 {
		return fmt.Errorf("%w: sim.tick must be positive", ErrInvalidConfig)
	}
	if c.Sim.Width <= 0 || c.Sim.Depth <= 0 || c.Sim.CellSize <= 0 {
		return fmt.Errorf("%w: sim dimensions must be positive", ErrInvalidConfig)
	}
	switch c.Database.Mode {
	case "none", "sqlite", "mysql":
	default:
		return fmt.Errorf("%w: unknown database.mode %q", ErrInvalidConfig, c.Database.Mode)
	}
	return nil
}
