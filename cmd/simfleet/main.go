// simfleet runs a whole exhibit fleet in one process over a lossy loopback
// channel: one leader plus N followers with simulated players. Useful for
// checking protocol behavior (step agreement, resync latency, fallback)
// without four machines and a projector wall.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/farolab/videowall/pkg/engine"
	"github.com/farolab/videowall/pkg/link"
	"github.com/farolab/videowall/pkg/playlist"
	"github.com/farolab/videowall/pkg/schedule"
)

// hub fans broadcast frames out to every attached transport, dropping a
// configurable fraction to mimic a flaky exhibition-floor network.
type hub struct {
	mu   sync.Mutex
	subs []*loopTransport
	loss float64
	rng  *rand.Rand
}

func (h *hub) attach() *loopTransport {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := &loopTransport{hub: h, in: make(chan link.Message, 64)}
	h.subs = append(h.subs, t)
	return t
}

func (h *hub) broadcast(m link.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		if h.loss > 0 && h.rng.Float64() < h.loss {
			continue
		}
		select {
		case s.in <- m:
		default:
			// Receiver lagging; UDP would drop too.
		}
	}
}

type loopTransport struct {
	hub *hub
	in  chan link.Message
}

func (t *loopTransport) SendHeartbeat(role, step int) error {
	t.hub.broadcast(link.Message{Kind: link.KindHeartbeat, Role: role, Step: step, TS: time.Now().Unix()})
	return nil
}

func (t *loopTransport) SendAdvance(role, step int) error {
	t.hub.broadcast(link.Message{Kind: link.KindAdvance, Role: role, Step: step, TS: time.Now().Unix()})
	return nil
}

func (t *loopTransport) Receive(timeout time.Duration) (link.Message, bool) {
	tm := time.NewTimer(timeout)
	defer tm.Stop()
	select {
	case m := <-t.in:
		return m, true
	case <-tm.C:
		return link.Message{}, false
	}
}

func (t *loopTransport) Close() error { return nil }

// simPlayer "plays" each clip for a fixed duration.
type simPlayer struct {
	clip time.Duration
}

func (p *simPlayer) Play(ctx context.Context, block playlist.Block) error {
	t := time.NewTimer(p.clip * time.Duration(len(block.Clips)))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type simPools struct{ pools map[string]playlist.Pool }

func (s *simPools) PoolFor(cat string) (playlist.Pool, bool) {
	p, ok := s.pools[cat]
	return p, ok
}

func main() {
	followers := flag.Int("followers", 3, "follower count")
	categories := flag.Int("categories", 8, "category count")
	rounds := flag.Int("rounds", 5, "schedule rounds")
	clip := flag.Duration("clip", 150*time.Millisecond, "simulated clip duration")
	hb := flag.Duration("hb", time.Second, "heartbeat interval")
	timeout := flag.Duration("timeout", 2500*time.Millisecond, "leader absence timeout")
	loss := flag.Float64("loss", 0.1, "frame loss probability")
	dur := flag.Duration("duration", 20*time.Second, "simulation duration")
	seed := flag.Int64("seed", 42, "schedule seed")
	flag.Parse()

	cats := make([]string, *categories)
	pools := &simPools{pools: map[string]playlist.Pool{}}
	for i := range cats {
		cat := fmt.Sprintf("cat-%02d", i)
		cats[i] = cat
		pool := playlist.Pool{}
		for j := 0; j < 5; j++ {
			pool.Normal = append(pool.Normal, playlist.Clip(fmt.Sprintf("%s/n%d", cat, j)))
		}
		pool.Text = append(pool.Text, playlist.Clip(cat+"/t0"), playlist.Clip(cat+"/t1"))
		pools.pools[cat] = pool
	}

	h := &hub{loss: *loss, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	master := schedule.Expand(cats, *rounds, *seed)

	ctx, cancel := context.WithTimeout(context.Background(), *dur)
	defer cancel()

	engines := make([]*engine.Engine, 0, *followers+1)
	for role := 0; role <= *followers; role++ {
		seq, err := schedule.New(master)
		if err != nil {
			panic(err)
		}
		e := engine.New(engine.Config{
			Role: engine.Role(role), Seq: seq, Pools: pools,
			Transport: h.attach(),
			Player:    &simPlayer{clip: *clip},
			Log:       zap.NewNop(),
			Heartbeat: *hb, Absence: *timeout,
			Poll: 50 * time.Millisecond,
		})
		engines = append(engines, e)
		go e.Run(ctx)
	}

	// Sample step agreement while the fleet runs.
	samples, agreed := 0, 0
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\nafter %s (loss=%.0f%%):\n", *dur, *loss*100)
			leaderStep := engines[0].Status().Step
			for i, e := range engines {
				st := e.Status()
				fmt.Printf("  role=%d step=%d category=%s leader_present=%v\n",
					i, st.Step, st.Category, st.LeaderPresent)
			}
			fmt.Printf("leader step %d; fleet agreed in %d/%d samples\n", leaderStep, agreed, samples)
			return
		case <-tick.C:
			samples++
			lead := engines[0].Status().Step
			ok := true
			for _, e := range engines[1:] {
				if s := e.Status().Step; s != lead && s != lead-1 {
					ok = false
				}
			}
			if ok {
				agreed++
			}
		}
	}
}
