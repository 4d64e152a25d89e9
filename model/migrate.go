package model

import (
	"github.com/kasuganosora/enemyai/game/dna"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultTemplate is the template seeded with the built-in genes.
const DefaultTemplate = "default"

var allModels = []interface{}{
	&ProfileTemplate{},
	&AdaptationLog{},
}

// AutoMigrate creates or updates the template and adaptation tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}

// SeedTemplates inserts the built-in gene template unless a row with that
// name already exists. Operator edits to it are kept.
func SeedTemplates(db *gorm.DB) error {
	p := dna.Default()
	row := ProfileTemplate{
		Name:        DefaultTemplate,
		Aggression:  p.Aggression,
		DodgeChance: p.DodgeChance,
		ChaseRange:  p.ChaseRange,
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}
