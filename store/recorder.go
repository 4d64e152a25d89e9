package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kasuganosora/enemyai/game/agent"
	"github.com/kasuganosora/enemyai/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder is an agent.Presenter that appends every adaptation to the
// adaptation log. Other events are ignored. Write failures are logged only.
type Recorder struct {
	db      *gorm.DB
	timeout time.Duration
	logger  *zap.Logger
}

func NewRecorder(db *gorm.DB, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{db: db, timeout: 2 * time.Second, logger: logger}
}

func (r *Recorder) Notify(ev agent.Event) {
	a, ok := ev.(agent.EventAdapted)
	if !ok || r.db == nil {
		return
	}
	before, _ := json.Marshal(a.Before)
	after, _ := json.Marshal(a.After)
	row := model.AdaptationLog{
		AgentID:      a.AgentID,
		Style:        a.Opponent.Style.String(),
		MoveDistance: a.Opponent.MoveDistance,
		AttackCount:  a.Opponent.AttackCount,
		Before:       datatypes.JSON(before),
		After:        datatypes.JSON(after),
		SimTimeMs:    a.At.Milliseconds(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.logger.Warn("record adaptation", zap.String("agent", a.AgentID), zap.Error(err))
	}
}

// History returns the latest limit adaptations of one agent, newest first.
func (r *Recorder) History(ctx context.Context, agentID string, limit int) ([]model.AdaptationLog, error) {
	var rows []model.AdaptationLog
	q := r.db.WithContext(ctx).Where("agent_id = ?", agentID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}
