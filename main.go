package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/enemyai/api/debug"
	"github.com/kasuganosora/enemyai/cache"
	"github.com/kasuganosora/enemyai/config"
	dbadapter "github.com/kasuganosora/enemyai/db"
	"github.com/kasuganosora/enemyai/game/agent"
	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/kasuganosora/enemyai/game/notify"
	"github.com/kasuganosora/enemyai/game/sim"
	"github.com/kasuganosora/enemyai/model"
	"github.com/kasuganosora/enemyai/scheduler"
	"github.com/kasuganosora/enemyai/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Debug {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zc.Build()
}

func main() {
	cfgPath := ""
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	// ---- Database ----
	var db *gorm.DB
	db, err = dbadapter.Open(cfg.Database)
	switch {
	case errors.Is(err, dbadapter.ErrDisabled):
		logger.Info("persistence disabled")
	case err != nil:
		log.Fatalf("db: %v", err)
	default:
		if err := model.AutoMigrate(db); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
		if err := model.SeedTemplates(db); err != nil {
			logger.Warn("seed profile templates", zap.Error(err))
		}
		logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))
	}

	// ---- Cache / PubSub ----
	cacheConfig := cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
		KeyPrefix:       cfg.Cache.KeyPrefix,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Agent template ----
	agentCfg := sim.AgentConfig(cfg)
	var (
		profiles *store.Profiles
		recorder *store.Recorder
	)
	if db != nil {
		profiles = store.NewProfiles(db, c, cfg.Cache.TemplateTTL, logger)
		recorder = store.NewRecorder(db, logger)
		if name := cfg.Agent.Template; name != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			p, err := profiles.Load(ctx, name)
			cancel()
			if err != nil {
				logger.Warn("profile template unavailable, using configured genes",
					zap.String("template", name), zap.Error(err))
			} else {
				agentCfg.Profile = p
				logger.Info("profile template loaded", zap.String("template", name))
			}
		}
	}

	// ---- Presenters ----
	publisher := notify.NewPublisher(pubsub, logger)
	presenter := agent.Fanout{publisher}
	if recorder != nil {
		presenter = append(presenter, recorder)
	}

	// ---- World ----
	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	world := sim.WorldFromConfig(cfg.Sim)
	oppCfg := sim.OpponentFromConfig(cfg.Sim.Opponent)
	oppSpawn := ai.Vec3{X: cfg.Sim.Width / 2, Z: cfg.Sim.Depth / 2}
	if len(oppCfg.Route) > 0 {
		oppSpawn = oppCfg.Route[0]
	}
	if p, ok := world.Nearest(oppSpawn); ok && !world.Inside(oppSpawn) {
		oppSpawn = p
	}
	opp := sim.NewScriptedOpponent(world, oppSpawn, oppCfg)
	room := sim.NewRoom(world, opp, cfg.Sim.Tick, logger,
		sim.WithOcclusionTimeout(cfg.Perception.OcclusionTimeout))

	for i, spawn := range sim.Spawns(world, cfg.Sim, cfg.Agent.Count) {
		if i >= cfg.Agent.Count {
			break
		}
		deps := agent.Deps{
			Presenter: presenter,
			Rand:      rand.New(rand.NewSource(seed + int64(i))),
		}
		b, err := room.Spawn(fmt.Sprintf("enemy-%d", i+1), agentCfg, deps, spawn)
		if err != nil {
			logger.Warn("spawn skipped", zap.Int("index", i), zap.Error(err))
			continue
		}
		logger.Info("agent spawned", zap.String("id", b.Machine.ID()),
			zap.Float64("x", spawn.X), zap.Float64("z", spawn.Z))
	}

	// ---- Periodic Scheduler Tasks ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	sched.AddTicker("profile_snapshot", cfg.Sim.SnapshotEvery, func() {
		for id, p := range room.Profiles() {
			if profiles == nil {
				logger.Info("profile snapshot", zap.String("agent", id),
					zap.Float64("aggression", p.Aggression),
					zap.Float64("dodge_chance", p.DodgeChance),
					zap.Float64("chase_range", p.ChaseRange))
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := profiles.Save(ctx, "snapshot-"+id, p); err != nil {
				logger.Warn("profile snapshot failed", zap.String("agent", id), zap.Error(err))
			}
			cancel()
		}
	})
	sched.AddTicker("opponent_reset", cfg.Sim.OpponentResetEvery, room.ResetOpponentProfiles)

	go room.Run()
	defer room.Stop()
	logger.Info("simulation running", zap.Int("agents", room.Len()), zap.Duration("tick", cfg.Sim.Tick), zap.Int64("seed", seed))

	// ---- Debug inspector ----
	var srv *http.Server
	if cfg.Debug.Enabled {
		if !cfg.Log.Debug {
			gin.SetMode(gin.ReleaseMode)
		}
		h := debug.NewHandler(room, historyOrNil(recorder), templatesOrNil(profiles), logger).
			WithTasks(sched).
			WithEvents(pubsub, notify.Channel)
		srv = &http.Server{
			Addr:    cfg.Debug.Addr,
			Handler: debug.NewRouter(h, cfg.Debug.RateLimitRPS, cfg.Debug.RateLimitBurst, logger),
		}
		go func() {
			logger.Info("debug inspector listening", zap.String("addr", cfg.Debug.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("debug inspector stopped", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("debug inspector shutdown", zap.Error(err))
		}
	}
}

// The inspector treats a nil interface as "persistence disabled"; a typed
// nil pointer would not compare equal.
func historyOrNil(r *store.Recorder) debug.History {
	if r == nil {
		return nil
	}
	return r
}

func templatesOrNil(p *store.Profiles) debug.Templates {
	if p == nil {
		return nil
	}
	return p
}
