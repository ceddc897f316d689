package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/jabs/internal/ai"
	"github.com/udisondev/jabs/internal/battle"
	"github.com/udisondev/jabs/internal/combat"
	"github.com/udisondev/jabs/internal/config"
	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/db"
	"github.com/udisondev/jabs/internal/model"
	"github.com/udisondev/jabs/internal/snapshot"
	"github.com/udisondev/jabs/internal/stat"
	"github.com/udisondev/jabs/internal/world"
)

var errResolved = errors.New("encounter resolved")

type simulation struct {
	cfg    config.Config
	battle *battle.Context
	pilot  *autopilot
	store  *db.SnapshotRepository // nil without a database
}

func newSimulation(ctx context.Context, cfg config.Config, tables *data.Tables, store *db.SnapshotRepository) (*simulation, error) {
	field := newDemoField()
	rnd := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6a616273))

	c, err := battle.New(tables, field, battleConfig(cfg), rnd)
	if err != nil {
		return nil, fmt.Errorf("creating battle: %w", err)
	}

	resumed, err := resume(ctx, c, store)
	if err != nil {
		c.Close()
		return nil, err
	}
	if !resumed {
		if err := spawnDemoEncounter(c); err != nil {
			c.Close()
			return nil, fmt.Errorf("spawning encounter: %w", err)
		}
	}

	return &simulation{
		cfg:    cfg,
		battle: c,
		pilot:  newAutopilot(c),
		store:  store,
	}, nil
}

// resume restores the autosave slot when there is one.
func resume(ctx context.Context, c *battle.Context, store *db.SnapshotRepository) (bool, error) {
	if store == nil {
		return false, nil
	}
	doc, err := store.Load(ctx, AutosaveSlot)
	if errors.Is(err, db.ErrSnapshotNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading autosave: %w", err)
	}
	if err := c.Restore(doc); err != nil {
		return false, fmt.Errorf("restoring autosave: %w", err)
	}
	return true, nil
}

// Run ticks the battle until it resolves, hits the tick limit or ctx is
// cancelled. Autosaves are encoded and written off the tick goroutine.
func (s *simulation) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	saves := make(chan *snapshot.Document, 1)

	g.Go(func() error {
		defer close(saves)
		return s.tickLoop(ctx, saves)
	})
	if s.store != nil {
		g.Go(func() error {
			return s.saveLoop(ctx, saves)
		})
	}

	err := g.Wait()
	winner, done := s.battle.Outcome()
	slog.Info("simulation finished",
		"battle", s.battle.ID(),
		"ticks", s.battle.Ticks(),
		"resolved", done,
		"winner", winner)

	if errors.Is(err, errResolved) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *simulation) tickLoop(ctx context.Context, saves chan *snapshot.Document) error {
	ticker := time.NewTicker(s.cfg.TickRate)
	defer ticker.Stop()

	var autosave <-chan time.Time
	if s.store != nil && s.cfg.AutosaveInterval > 0 {
		t := time.NewTicker(s.cfg.AutosaveInterval)
		defer t.Stop()
		autosave = t.C
	}

	for {
		select {
		case <-ctx.Done():
			s.offer(saves, true)
			return ctx.Err()

		case <-autosave:
			s.offer(saves, false)

		case <-ticker.C:
			s.battle.Tick(ctx)
			s.pilot.Step()

			if _, done := s.battle.Outcome(); done {
				s.offer(saves, true)
				return errResolved
			}
			if s.cfg.MaxTicks > 0 && s.battle.Ticks() >= uint64(s.cfg.MaxTicks) {
				slog.Info("tick limit reached", "max_ticks", s.cfg.MaxTicks)
				s.offer(saves, true)
				return errResolved
			}
		}
	}
}

// offer hands a snapshot to the saver. An autosave is dropped while another
// one is pending; the final snapshot replaces the pending one instead.
func (s *simulation) offer(saves chan *snapshot.Document, final bool) {
	if s.store == nil {
		return
	}
	doc := s.battle.Snapshot()
	for {
		select {
		case saves <- doc:
			return
		default:
		}
		if !final {
			slog.Debug("autosave skipped: previous save pending")
			return
		}
		select {
		case <-saves:
			slog.Debug("pending autosave replaced by final snapshot")
		default:
		}
	}
}

func (s *simulation) saveLoop(ctx context.Context, saves <-chan *snapshot.Document) error {
	for doc := range saves {
		// финальный снапшот пишется и после отмены ctx
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		err := s.store.Save(saveCtx, AutosaveSlot, doc)
		cancel()
		if err != nil {
			return fmt.Errorf("autosave: %w", err)
		}
		slog.Info("autosaved", "slot", AutosaveSlot, "tick", doc.Tick, "battlers", len(doc.Battlers))
	}
	return nil
}

// battleConfig maps the file configuration onto the battle services.
func battleConfig(cfg config.Config) battle.Config {
	return battle.Config{
		AI: ai.Config{
			ActiveRange:         cfg.AI.Range,
			DisengageRange:      cfg.AI.DisengageRange,
			DefaultSightRange:   cfg.AI.SightRange,
			DefaultPrepareTicks: cfg.AI.PrepareTicks,
			PostActionWait:      cfg.AI.PostActionWait,
			DefaultCooldown:     cfg.AI.DefaultCooldown,
			ComfortNear:         cfg.AI.ComfortNear,
			ComfortFar:          cfg.AI.ComfortFar,
			WanderChance:        cfg.AI.WanderChance,
			WanderRadius:        cfg.AI.WanderRadius,
			HomeRadius:          cfg.AI.HomeRadius,
			EnemyComboChance:    cfg.AI.EnemyComboChance,
			DoNothingWait:       cfg.AI.DoNothingWait,
			FollowerScanRange:   cfg.AI.FollowerScanRange,
			SupportRange:        cfg.AI.SupportRange,
			BuffRefreshTicks:    cfg.AI.BuffRefreshTicks,
			AlertTicks:          cfg.AI.AlertTicks,
		},
		Stat: stat.Config{
			CritMultiplierBase:  cfg.Combat.CritMultiplier,
			CritReductionBase:   cfg.Combat.CritReduction,
			MaxTPBase:           cfg.Combat.MaxTP,
			ProficiencyGainBase: cfg.Proficiency.BaseGain,
		},
		Combat: combat.Config{
			CritChance: cfg.Combat.CritChance,
			Variance:   cfg.Combat.Variance,
		},
	}
}

// newDemoField builds a 24x16 arena with a low wall in the middle.
func newDemoField() *world.Field {
	f := world.NewField(24, 16)
	for y := int32(5); y <= 10; y++ {
		f.Block(world.Tile{X: 12, Y: y})
	}
	return f
}

func spawnDemoEncounter(c *battle.Context) error {
	actors := []struct {
		id     data.ActorID
		pos    model.Point
		player bool
	}{
		{1, model.NewPoint(3.5, 8.5), true},
		{2, model.NewPoint(2.5, 7.5), false},
		{3, model.NewPoint(2.5, 9.5), false},
	}
	for _, a := range actors {
		if _, err := c.SpawnActor(a.id, a.pos, a.player); err != nil {
			return err
		}
	}

	enemies := []struct {
		id  data.EnemyID
		pos model.Point
	}{
		{2, model.NewPoint(17.5, 8.5)}, // Dire Wolf leads the pups
		{3, model.NewPoint(18.5, 7.5)},
		{3, model.NewPoint(18.5, 9.5)},
		{4, model.NewPoint(20.5, 8.5)},
		{1, model.NewPoint(15.5, 3.5)},
		{5, model.NewPoint(9.5, 12.5)},
	}
	for _, e := range enemies {
		if _, err := c.SpawnEnemy(e.id, e.pos); err != nil {
			return err
		}
	}
	c.GainItem(data.KindItem, 1, 3)
	return nil
}
