package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/farolab/videowall/internal/telemetry"
	"github.com/farolab/videowall/pkg/playlist"
)

// runLeader plays blocks back to back and announces every category
// transition. The heartbeat emitter runs alongside playback for the whole
// lifetime of the engine.
func (e *Engine) runLeader(ctx context.Context) {
	go e.heartbeatLoop(ctx)

	for ctx.Err() == nil {
		block, err := e.buildBlock()
		if err != nil {
			if errors.Is(err, playlist.ErrInsufficientMedia) {
				e.log.Warn("skipping category without usable media",
					zap.String("category", e.cfg.Seq.Current()))
				telemetry.CategoriesSkipped.Inc()
				e.advanceAndAnnounce()
				continue
			}
			e.log.Error("block build failed", zap.Error(err))
			e.advanceAndAnnounce()
			continue
		}

		e.play(ctx, block)
		if ctx.Err() != nil {
			return
		}
		e.advanceAndAnnounce()
	}
}

// advanceAndAnnounce moves the cursor and broadcasts the new step. A failed
// send is dropped; the next heartbeat carries the step anyway.
func (e *Engine) advanceAndAnnounce() {
	e.cfg.Seq.Advance()
	e.syncStatus()
	step := e.cfg.Seq.Step()
	if err := e.cfg.Transport.SendAdvance(int(e.cfg.Role), step); err != nil {
		e.log.Warn("advance broadcast failed", zap.Error(err))
	}
	e.log.Info("advanced", zap.Int("step", step), zap.String("category", e.cfg.Seq.Current()))
}

func (e *Engine) heartbeatLoop(ctx context.Context) {
	t := time.NewTicker(e.hb)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			step := e.Status().Step
			if err := e.cfg.Transport.SendHeartbeat(int(e.cfg.Role), step); err != nil {
				e.log.Warn("heartbeat failed", zap.Error(err))
				continue
			}
			telemetry.HeartbeatsSent.Inc()
		}
	}
}
