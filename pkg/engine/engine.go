package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/farolab/videowall/internal/telemetry"
	"github.com/farolab/videowall/pkg/link"
	"github.com/farolab/videowall/pkg/playlist"
	"github.com/farolab/videowall/pkg/schedule"
)

// Config wires one node's engine. Zero durations select the protocol
// defaults; a nil Rand gets a time-seeded source.
type Config struct {
	Role      Role
	Seq       *schedule.Sequence
	Pools     playlist.Provider
	Transport link.Transport
	Player    Player
	Log       *zap.Logger

	Heartbeat time.Duration // leader broadcast cadence
	Absence   time.Duration // follower presence timeout
	Poll      time.Duration // follower receive poll window
	Rand      *rand.Rand
}

// Engine runs one node: it walks the category sequence, builds blocks, hands
// them to the player and keeps the fleet in step over the sync channel. It
// owns the sequence cursor exclusively; the receive goroutine's only effect
// on shared state is posting advance and presence events.
type Engine struct {
	cfg      Config
	log      *zap.Logger
	rng      *rand.Rand
	presence *link.Monitor

	hb   time.Duration
	poll time.Duration

	mu     sync.Mutex
	status Status
}

// Status is a point-in-time snapshot for the HTTP surface and the heartbeat
// emitter.
type Status struct {
	Role          Role   `json:"role"`
	Step          int    `json:"step"`
	Category      string `json:"category"`
	LeaderPresent bool   `json:"leader_present"`
}

// New builds an engine from cfg. Seq, Pools, Transport and Player are
// required.
func New(cfg Config) *Engine {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	hb := cfg.Heartbeat
	if hb <= 0 {
		hb = link.DefaultHeartbeatInterval
	}
	poll := cfg.Poll
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	e := &Engine{
		cfg:      cfg,
		log:      log.With(zap.Int("role", int(cfg.Role))),
		rng:      rng,
		presence: link.NewMonitor(cfg.Absence),
		hb:       hb,
		poll:     poll,
	}
	e.status = Status{
		Role:          cfg.Role,
		Step:          cfg.Seq.Step(),
		Category:      cfg.Seq.Current(),
		LeaderPresent: cfg.Role.IsLeader(),
	}
	return e
}

// Run drives the node until ctx is canceled. Recoverable conditions
// (unusable categories, transport hiccups, player launch failures) never
// stop the loop: the exhibit has to keep moving overnight.
func (e *Engine) Run(ctx context.Context) {
	if e.cfg.Role.IsLeader() {
		e.runLeader(ctx)
	} else {
		e.runFollower(ctx)
	}
}

// Status returns the current snapshot. Safe from any goroutine.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// syncStatus refreshes the snapshot after the main loop moved the cursor.
func (e *Engine) syncStatus() {
	e.mu.Lock()
	e.status.Step = e.cfg.Seq.Step()
	e.status.Category = e.cfg.Seq.Current()
	e.mu.Unlock()
	telemetry.CurrentStep.Set(float64(e.cfg.Seq.Step()))
}

func (e *Engine) setLeaderPresent(p bool) {
	e.mu.Lock()
	e.status.LeaderPresent = p
	e.mu.Unlock()
	if p {
		telemetry.LeaderPresent.Set(1)
	} else {
		telemetry.LeaderPresent.Set(0)
	}
}

// buildBlock assembles the next block for the current category.
func (e *Engine) buildBlock() (playlist.Block, error) {
	cat := e.cfg.Seq.Current()
	pool, ok := e.cfg.Pools.PoolFor(cat)
	if !ok {
		return playlist.Block{}, playlist.ErrInsufficientMedia
	}
	return playlist.Build(cat, e.cfg.Role.BlockSize(), pool, e.rng)
}

// play hands a block to the player and waits it out. A launch failure counts
// as a natural completion of an empty block, with a short backoff so a dead
// player binary cannot spin the loop.
func (e *Engine) play(ctx context.Context, block playlist.Block) {
	telemetry.BlocksPlayed.WithLabelValues(block.Category).Inc()
	e.log.Info("playing block",
		zap.String("category", block.Category),
		zap.Int("step", e.cfg.Seq.Step()),
		zap.Int("clips", len(block.Clips)))

	err := e.cfg.Player.Play(ctx, block)
	if err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		e.log.Warn("player failed, treating as completed", zap.Error(err))
		e.sleep(ctx, launchBackoff)
	}
}

const launchBackoff = 500 * time.Millisecond

func (e *Engine) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
