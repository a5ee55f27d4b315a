package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/farolab/videowall/discovery"
	"github.com/farolab/videowall/internal/telemetry"
	"github.com/farolab/videowall/pkg/engine"
	"github.com/farolab/videowall/pkg/link"
	"github.com/farolab/videowall/pkg/media"
	"github.com/farolab/videowall/pkg/node"
	"github.com/farolab/videowall/pkg/player"
	"github.com/farolab/videowall/pkg/schedule"
)

// Set via ldflags.
var (
	version = "dev"
	gitSHA  = "unknown"
)

func main() {
	log := newLogger()
	defer log.Sync()

	role := engine.Role(envInt("ROLE", 0))
	orientation := envStr("ORIENTATION", "hor")
	mediaDir := envStr("MEDIA_DIR", os.Getenv("HOME")+"/Videos/videos_hd_final")
	rounds := envInt("ROUNDS", 100)
	seed := int64(envInt("SCHEDULE_SEED", 20240501))
	httpAddr := envStr("HTTP_ADDR", ":8080")
	bcastPort := envInt("BCAST_PORT", link.DefaultPort)
	audioFile := os.Getenv("AUDIO_FILE")
	mpvBin := envStr("MPV_BIN", "mpv")

	telemetry.SetBuildInfo(version, gitSHA)
	log.Info("booting",
		zap.Int("role", int(role)),
		zap.String("orientation", orientation),
		zap.String("media_dir", mediaDir),
		zap.Int("rounds", rounds))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Media library and the shared circular schedule.
	lib, err := media.Scan(mediaDir, orientation, log)
	if err != nil {
		log.Fatal("media scan failed", zap.Error(err))
	}
	cats := lib.Categories()
	if len(cats) == 0 {
		log.Fatal("no usable categories", zap.String("dir", mediaDir))
	}
	seq, err := schedule.New(schedule.Expand(cats, rounds, seed))
	if err != nil {
		log.Fatal("schedule build failed", zap.Error(err))
	}
	log.Info("schedule ready", zap.Int("steps", seq.Len()), zap.Int("categories", len(cats)))

	// 2. Broadcast transport.
	tr, err := link.NewUDP(bcastPort, log)
	if err != nil {
		log.Fatal("broadcast socket failed", zap.Error(err))
	}
	defer tr.Close()

	// 3. Players.
	rotation, err := media.Rotation(orientation)
	if err != nil {
		log.Fatal("bad orientation", zap.Error(err))
	}
	mpv := &player.MPV{Binary: mpvBin, Rotation: rotation, Log: log}
	if audioFile != "" {
		go player.AudioLoop(ctx, mpvBin, audioFile, log)
	}

	// 4. Engine.
	eng := engine.New(engine.Config{
		Role:      role,
		Seq:       seq,
		Pools:     lib,
		Transport: tr,
		Player:    mpv,
		Log:       log,
	})

	// 5. Status HTTP surface.
	n := node.New(eng)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", n.Healthz)
	mux.Handle("/info", telemetry.Instrument("info", http.HandlerFunc(n.Info)))
	mux.Handle("/metrics", telemetry.MetricsHandler())
	go func() {
		log.Info("status endpoint listening", zap.String("addr", httpAddr))
		if err := http.ListenAndServe(httpAddr, mux); err != nil {
			log.Warn("status endpoint stopped", zap.Error(err))
		}
	}()

	// 6. Optional fleet registry.
	if eps := os.Getenv("ETCD_ENDPOINTS"); eps != "" {
		cli, err := discovery.NewClient(strings.Split(eps, ","))
		if err != nil {
			log.Warn("etcd unavailable, running unregistered", zap.Error(err))
		} else {
			defer cli.Close()
			host, _ := os.Hostname()
			id := fmt.Sprintf("role-%d@%s", int(role), host)
			leaseID, cancel, err := discovery.RegisterNode(cli, id, host+httpAddr, 10)
			if err != nil {
				log.Warn("etcd registration failed", zap.Error(err))
			} else {
				defer func() {
					cancel()
					_, _ = cli.Revoke(context.TODO(), leaseID)
				}()
				if peers, err := discovery.Peers(ctx, cli); err == nil {
					for id, addr := range peers {
						log.Info("registered peer", zap.String("id", id), zap.String("addr", addr))
					}
				}
			}
		}
	}

	// 7. Run until signaled.
	eng.Run(ctx)
	log.Info("shutting down")
}

func newLogger() *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if os.Getenv("DEV") != "" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	return log
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
