// Package player runs the external mpv processes: one fullscreen video
// instance per block, and an optional looping audio drone per node. The
// engine only sees the Play contract; everything process-shaped lives here.
package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"go.uber.org/zap"

	"github.com/farolab/videowall/pkg/playlist"
)

// ErrLaunch wraps a failure to start the player binary. The engine treats it
// as a completed empty block and keeps the sequence moving.
var ErrLaunch = errors.New("player: launch failed")

// MPV plays one block per invocation as an m3u playlist, fullscreen, until
// mpv exits. Canceling the context kills the process immediately.
type MPV struct {
	Binary   string // defaults to "mpv"
	Rotation int    // degrees, from the screen orientation
	Log      *zap.Logger
}

func (p *MPV) binary() string {
	if p.Binary == "" {
		return "mpv"
	}
	return p.Binary
}

func (p *MPV) log() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

// Play writes the block to a temporary playlist and runs mpv over it.
func (p *MPV) Play(ctx context.Context, block playlist.Block) error {
	path, err := writePlaylist(block)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	defer os.Remove(path)

	args := []string{
		"--fs", "--vo=gpu", "--hwdec=no",
		"--no-terminal", "--quiet",
		"--gapless-audio",
		"--stop-screensaver=yes",
		"--keep-open=no", "--loop-playlist=no",
		"--video-rotate=" + strconv.Itoa(p.Rotation),
		"--playlist=" + path,
	}
	cmd := exec.CommandContext(ctx, p.binary(), args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	err = cmd.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		// mpv exiting nonzero mid-exhibit is not worth stopping for; the
		// block counts as played.
		p.log().Warn("mpv exited with error", zap.Error(err))
	}
	return nil
}

func writePlaylist(block playlist.Block) (string, error) {
	f, err := os.CreateTemp("", "videowall-*.m3u")
	if err != nil {
		return "", err
	}
	for _, c := range block.Clips {
		if _, err := fmt.Fprintln(f, string(c)); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", err
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
