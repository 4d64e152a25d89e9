// Package store persists gene templates and adaptation history.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kasuganosora/enemyai/cache"
	"github.com/kasuganosora/enemyai/game/dna"
	"github.com/kasuganosora/enemyai/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTemplateNotFound = errors.New("store: profile template not found")

func templateKey(name string) string { return "profile:" + name }

// Profiles loads and saves named gene templates. Reads go through the cache;
// writes update the database and then invalidate the cached copy.
type Profiles struct {
	db     *gorm.DB
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewProfiles returns a template store. A nil cache disables caching.
func NewProfiles(db *gorm.DB, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Profiles {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiles{db: db, cache: c, ttl: ttl, logger: logger}
}

// Save creates or replaces the template called name. The profile is clamped first.
func (s *Profiles) Save(ctx context.Context, name string, p dna.Profile) error {
	if name == "" {
		return fmt.Errorf("store: empty template name")
	}
	p.Clamp()
	row := model.ProfileTemplate{
		Name:        name,
		Aggression:  p.Aggression,
		DodgeChance: p.DodgeChance,
		ChaseRange:  p.ChaseRange,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"aggression", "dodge_chance", "chase_range", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("store: save template %q: %w", name, err)
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, templateKey(name)); err != nil {
			s.logger.Warn("invalidate template cache", zap.String("name", name), zap.Error(err))
		}
	}
	return nil
}

// Load returns the template called name, or ErrTemplateNotFound.
func (s *Profiles) Load(ctx context.Context, name string) (dna.Profile, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, templateKey(name))
		switch {
		case err == nil:
			var p dna.Profile
			if jerr := json.Unmarshal([]byte(raw), &p); jerr == nil {
				return p, nil
			}
			s.logger.Warn("discarding corrupt cached template", zap.String("name", name))
		case !cache.IsMiss(err):
			s.logger.Warn("template cache read failed", zap.String("name", name), zap.Error(err))
		}
	}

	var row model.ProfileTemplate
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dna.Profile{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	if err != nil {
		return dna.Profile{}, fmt.Errorf("store: load template %q: %w", name, err)
	}
	p := dna.Profile{Aggression: row.Aggression, DodgeChance: row.DodgeChance, ChaseRange: row.ChaseRange}
	p.Clamp()

	if s.cache != nil {
		if b, err := json.Marshal(p); err == nil {
			if err := s.cache.Set(ctx, templateKey(name), string(b), s.ttl); err != nil {
				s.logger.Warn("template cache write failed", zap.String("name", name), zap.Error(err))
			}
		}
	}
	return p, nil
}

// Names lists stored template names in order.
func (s *Profiles) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&model.ProfileTemplate{}).Order("name").Pluck("name", &names).Error
	return names, err
}
