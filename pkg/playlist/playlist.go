package playlist

import (
	"errors"
	"math/rand"
)

// Clip is a reference to one playable media file, usually an absolute path.
type Clip string

// Pool holds the two disjoint clip pools of one category: the plain videos
// and the text overlays. Both keep the order chosen upstream.
type Pool struct {
	Normal []Clip
	Text   []Clip
}

// Provider resolves a category to its media pool. The media library
// implements this; tests inject fixed pools.
type Provider interface {
	PoolFor(category string) (Pool, bool)
}

// Block is one playback unit: the clips a node plays back to back for a
// single visit to a category. Immutable once built.
type Block struct {
	Category string
	Clips    []Clip
}

// ErrInsufficientMedia means a category cannot form a valid block and should
// be skipped by the caller.
var ErrInsufficientMedia = errors.New("playlist: insufficient media for category")

// Build assembles a block of size clips for category: size-1 clips taken from
// pool.Normal walking circularly from a random offset, plus exactly one text
// clip spliced in at a random position. The normal pool is never reshuffled;
// only the rotation point is random, so upstream ordering survives.
func Build(category string, size int, pool Pool, rng *rand.Rand) (Block, error) {
	if len(pool.Normal) == 0 || len(pool.Text) == 0 {
		return Block{}, ErrInsufficientMedia
	}

	off := rng.Intn(len(pool.Normal))
	run := make([]Clip, 0, size)
	for i := 0; i < size-1; i++ {
		run = append(run, pool.Normal[(off+i)%len(pool.Normal)])
	}

	text := pool.Text[rng.Intn(len(pool.Text))]
	pos := rng.Intn(size)

	clips := make([]Clip, 0, size)
	clips = append(clips, run[:pos]...)
	clips = append(clips, text)
	clips = append(clips, run[pos:]...)

	return Block{Category: category, Clips: clips}, nil
}
