package player

import (
	"context"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// AudioLoop keeps one audio file looping for the lifetime of the node, the
// per-role drone under the video wall. The process is restarted if it ever
// exits; the loop ends only with the context.
func AudioLoop(ctx context.Context, binary, file string, log *zap.Logger) {
	if binary == "" {
		binary = "mpv"
	}
	if log == nil {
		log = zap.NewNop()
	}

	for ctx.Err() == nil {
		cmd := exec.CommandContext(ctx, binary,
			"--no-terminal", "--quiet",
			"--vid=no", "--audio-display=no",
			"--loop-file=inf",
			file,
		)
		if err := cmd.Start(); err != nil {
			log.Warn("audio loop start failed", zap.Error(err))
		} else if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			log.Warn("audio loop exited", zap.Error(err))
		}

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
	}
}
