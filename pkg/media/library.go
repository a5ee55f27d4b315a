// Package media maps the on-disk exhibit layout to per-category clip pools.
// Each category directory holds one subdirectory of plain videos and one of
// text overlays, chosen by screen orientation:
//
//	<dir>/<category>/hor          <dir>/<category>/hor_text
//	<dir>/<category>/ver_rotated  <dir>/<category>/ver_rotated_text
//
// Inverted orientations reuse the same files and rotate the output 180°.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/farolab/videowall/pkg/playlist"
)

var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".mkv": true,
}

// MinNormalClips is the smallest usable plain pool; below it a block cannot
// vary enough between visits.
const MinNormalClips = 3

type orientationCfg struct {
	rotation int
	videoDir string
	textDir  string
}

var orientations = map[string]orientationCfg{
	"hor":          {rotation: 0, videoDir: "hor", textDir: "hor_text"},
	"ver":          {rotation: 0, videoDir: "ver_rotated", textDir: "ver_rotated_text"},
	"inverted_hor": {rotation: 180, videoDir: "hor", textDir: "hor_text"},
	"inverted_ver": {rotation: 180, videoDir: "ver_rotated", textDir: "ver_rotated_text"},
}

// Rotation returns the mpv rotation angle for orientation, or an error for
// an unknown one.
func Rotation(orientation string) (int, error) {
	cfg, ok := orientations[orientation]
	if !ok {
		return 0, fmt.Errorf("media: unknown orientation %q", orientation)
	}
	return cfg.rotation, nil
}

// Library holds the scanned pools. Read-only after Scan.
type Library struct {
	pools map[string]playlist.Pool
	cats  []string
}

// Scan walks dir once at startup and keeps every category that meets the
// 3-normal/1-text minimum. Categories below the minimum are logged and left
// out so the schedule never routes playback to them.
func Scan(dir, orientation string, log *zap.Logger) (*Library, error) {
	cfg, ok := orientations[orientation]
	if !ok {
		return nil, fmt.Errorf("media: unknown orientation %q", orientation)
	}
	if log == nil {
		log = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("media: read %s: %w", dir, err)
	}

	lib := &Library{pools: make(map[string]playlist.Pool)}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		cat := e.Name()
		normal := listClips(filepath.Join(dir, cat, cfg.videoDir))
		text := listClips(filepath.Join(dir, cat, cfg.textDir))

		if len(normal) < MinNormalClips || len(text) < 1 {
			log.Warn("category unusable",
				zap.String("category", cat),
				zap.Int("normal", len(normal)),
				zap.Int("text", len(text)))
			continue
		}
		lib.pools[cat] = playlist.Pool{Normal: normal, Text: text}
		lib.cats = append(lib.cats, cat)
	}
	sort.Strings(lib.cats)

	log.Info("media library scanned",
		zap.String("dir", dir),
		zap.String("orientation", orientation),
		zap.Int("categories", len(lib.cats)))
	return lib, nil
}

func listClips(dir string) []playlist.Clip {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []playlist.Clip
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !videoExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		out = append(out, playlist.Clip(filepath.Join(dir, e.Name())))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PoolFor implements playlist.Provider.
func (l *Library) PoolFor(category string) (playlist.Pool, bool) {
	p, ok := l.pools[category]
	return p, ok
}

// Categories returns the usable category names, sorted.
func (l *Library) Categories() []string {
	return l.cats
}
