// Package debug serves a read-mostly HTTP inspector for a running simulation.
package debug

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/enemyai/cache"
	"github.com/kasuganosora/enemyai/game/agent"
	"github.com/kasuganosora/enemyai/game/sim"
	"github.com/kasuganosora/enemyai/middleware"
	"github.com/kasuganosora/enemyai/model"
	"github.com/kasuganosora/enemyai/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Room is the slice of sim.Room the inspector reads.
type Room interface {
	Now() time.Duration
	Snapshots() []agent.Snapshot
	Snapshot(id string) (agent.Snapshot, bool)
	Opponent() (sim.OpponentView, bool)
	ResetOpponentProfiles()
}

// History lists stored adaptations; *store.Recorder satisfies it.
type History interface {
	History(ctx context.Context, agentID string, limit int) ([]model.AdaptationLog, error)
}

// Templates lists stored gene templates; *store.Profiles satisfies it.
type Templates interface {
	Names(ctx context.Context) ([]string, error)
}

// Tasks lists the host's periodic tasks; *scheduler.Scheduler satisfies it.
type Tasks interface {
	Tasks() []scheduler.TaskInfo
}

// Handler serves the inspector endpoints. History, Templates, Tasks and the
// event stream are optional.
type Handler struct {
	room      Room
	history   History
	templates Templates
	tasks     Tasks
	logger    *zap.Logger

	events       cache.PubSub
	eventChannel string
}

func NewHandler(room Room, history History, templates Templates, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{room: room, history: history, templates: templates, logger: logger}
}

// WithTasks exposes the scheduler under GET /tasks.
func (h *Handler) WithTasks(t Tasks) *Handler {
	h.tasks = t
	return h
}

const maxHistory = 100

// Health reports liveness and the simulation clock.
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"sim_time_ms": h.room.Now().Milliseconds(),
		"agents":      len(h.room.Snapshots()),
	})
}

// ListAgents returns every agent snapshot in id order.
// GET /agents
func (h *Handler) ListAgents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": h.room.Snapshots()})
}

// GetAgent returns one agent snapshot.
// GET /agents/:id
func (h *Handler) GetAgent(c *gin.Context) {
	s, ok := h.room.Snapshot(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// AgentHistory returns the latest adaptations of one agent.
// GET /agents/:id/history?limit=20
func (h *Handler) AgentHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence disabled"})
		return
	}
	id := c.Param("id")
	if _, ok := h.room.Snapshot(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
		return
	}
	limit := 20
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= maxHistory {
		limit = l
	}
	rows, err := h.history.History(c.Request.Context(), id, limit)
	if err != nil {
		h.logger.Error("load adaptation history", zap.String("agent", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": rows})
}

// GetOpponent returns the scripted opponent's state.
// GET /opponent
func (h *Handler) GetOpponent(c *gin.Context) {
	o, ok := h.room.Opponent()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no opponent"})
		return
	}
	c.JSON(http.StatusOK, o)
}

// ResetOpponent clears every agent's opponent profile.
// POST /opponent/reset
func (h *Handler) ResetOpponent(c *gin.Context) {
	h.room.ResetOpponentProfiles()
	h.logger.Info("opponent profiles reset via inspector", zap.String("trace_id", middleware.GetTraceID(c)))
	c.Status(http.StatusNoContent)
}

// ListTemplates returns the stored gene template names.
// GET /templates
func (h *Handler) ListTemplates(c *gin.Context) {
	if h.templates == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence disabled"})
		return
	}
	names, err := h.templates.Names(c.Request.Context())
	if err != nil {
		h.logger.Error("list templates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "templates unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": names})
}

// ListTasks returns the registered scheduler tasks.
// GET /tasks
func (h *Handler) ListTasks(c *gin.Context) {
	if h.tasks == nil {
		c.JSON(http.StatusOK, gin.H{"tasks": []scheduler.TaskInfo{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": h.tasks.Tasks()})
}

// NewRouter wires the handler behind trace, logging, recovery and rate limiting.
func NewRouter(h *Handler, rps float64, burst int, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(middleware.TraceID(), middleware.Logger(logger), middleware.Recovery(logger))
	if rps > 0 {
		r.Use(middleware.RateLimit(rate.Limit(rps), max(burst, 1)))
	}
	r.GET("/health", h.Health)
	r.GET("/agents", h.ListAgents)
	r.GET("/agents/:id", h.GetAgent)
	r.GET("/agents/:id/history", h.AgentHistory)
	r.GET("/opponent", h.GetOpponent)
	r.POST("/opponent/reset", h.ResetOpponent)
	r.GET("/templates", h.ListTemplates)
	r.GET("/tasks", h.ListTasks)
	r.GET("/events", h.Events)
	return r
}
