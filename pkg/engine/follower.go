package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/farolab/videowall/internal/telemetry"
	"github.com/farolab/videowall/pkg/link"
	"github.com/farolab/videowall/pkg/playlist"
)

// runFollower mirrors the leader while its frames keep arriving and plays
// autonomously otherwise. An advance announcement overrides playback in
// flight: the player is terminated, the cursor resynchronized, and a fresh
// block built for the leader's category.
func (e *Engine) runFollower(ctx context.Context) {
	advCh := make(chan link.Message, 1)
	go e.receiveLoop(ctx, advCh)

	for ctx.Err() == nil {
		block, err := e.buildBlock()
		if err != nil {
			if errors.Is(err, playlist.ErrInsufficientMedia) {
				e.log.Warn("skipping category without usable media",
					zap.String("category", e.cfg.Seq.Current()))
				telemetry.CategoriesSkipped.Inc()
			} else {
				e.log.Error("block build failed", zap.Error(err))
			}
			e.cfg.Seq.Advance()
			e.syncStatus()
			continue
		}

		playCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			e.play(playCtx, block)
		}()

	waiting:
		for {
			select {
			case adv := <-advCh:
				if adv.Step == e.cfg.Seq.Step() {
					// Duplicate that slipped past the receive-side filter;
					// playback keeps running.
					telemetry.AdvancesIgnored.Inc()
					continue
				}
				// Leader moved on: terminate playback immediately and resync.
				cancel()
				<-done
				e.applyAdvance(adv)
				break waiting

			case <-done:
				cancel()
				// Natural completion can race a just-received advance; the
				// advance wins either way.
				select {
				case adv := <-advCh:
					if adv.Step != e.cfg.Seq.Step() {
						e.applyAdvance(adv)
						break waiting
					}
					telemetry.AdvancesIgnored.Inc()
				default:
				}
				e.completeNaturally()
				break waiting

			case <-ctx.Done():
				cancel()
				<-done
				return
			}
		}
	}
}

// applyAdvance trusts the announced step unconditionally.
func (e *Engine) applyAdvance(m link.Message) {
	e.cfg.Seq.SetStep(m.Step)
	e.syncStatus()
	telemetry.AdvancesApplied.Inc()
	e.log.Info("resynchronized to leader",
		zap.Int("step", m.Step), zap.String("category", e.cfg.Seq.Current()))
}

// completeNaturally decides what a finished block means: with a leader
// around, stay on the category and play it again until the cue arrives;
// without one, advance autonomously.
func (e *Engine) completeNaturally() {
	present := e.presence.Present(time.Now())
	e.setLeaderPresent(present)
	if present {
		e.log.Info("block done, waiting for leader cue",
			zap.String("category", e.cfg.Seq.Current()))
		return
	}
	e.cfg.Seq.Advance()
	e.syncStatus()
	e.log.Info("leader absent, advancing autonomously",
		zap.Int("step", e.cfg.Seq.Step()), zap.String("category", e.cfg.Seq.Current()))
}

// receiveLoop drains the transport. Its only side effects are feeding the
// presence monitor and posting advances; a pending advance is replaced by a
// newer one (last command wins). Advances for the step the node is already
// at are duplicates and dropped here, which keeps the advance idempotent.
func (e *Engine) receiveLoop(ctx context.Context, advCh chan link.Message) {
	for ctx.Err() == nil {
		m, ok := e.cfg.Transport.Receive(e.poll)
		now := time.Now()
		if !ok {
			e.setLeaderPresent(e.presence.Present(now))
			continue
		}
		if m.Role != int(RoleLeader) {
			continue
		}

		e.presence.Observe(now)
		e.setLeaderPresent(true)
		telemetry.MessagesReceived.WithLabelValues(m.Kind.String()).Inc()

		if m.Kind != link.KindAdvance {
			continue
		}
		if m.Step == e.Status().Step {
			telemetry.AdvancesIgnored.Inc()
			continue
		}

		select {
		case advCh <- m:
		default:
			select {
			case <-advCh:
			default:
			}
			advCh <- m
		}
	}
}
