package model

import (
	"time"

	"gorm.io/datatypes"
)

// ProfileTemplate is a named gene set agents can start from.
type ProfileTemplate struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Aggression  float64   `gorm:"not null" json:"aggression"`
	DodgeChance float64   `gorm:"not null" json:"dodge_chance"`
	ChaseRange  float64   `gorm:"not null" json:"chase_range"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AdaptationLog records one adaptation: the opponent profile that drove it
// and the genes before and after.
type AdaptationLog struct {
	ID           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	AgentID      string         `gorm:"index:idx_adapt_agent;size:36;not null" json:"agent_id"`
	Style        string         `gorm:"size:16;not null" json:"style"`
	MoveDistance float64        `json:"move_distance"`
	AttackCount  int            `json:"attack_count"`
	Before       datatypes.JSON `json:"before"`
	After        datatypes.JSON `json:"after"`
	SimTimeMs    int64          `json:"sim_time_ms"`
	CreatedAt    time.Time      `gorm:"index:idx_adapt_created;autoCreateTime:milli" json:"created_at"`
}
