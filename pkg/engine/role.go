package engine

import (
	"context"

	"github.com/farolab/videowall/pkg/playlist"
)

// Role identifies a node in the fleet. Role 0 drives the category sequence
// for everyone; roles 1-3 mirror it while it is reachable.
type Role int

const RoleLeader Role = 0

func (r Role) IsLeader() bool { return r == RoleLeader }

// Block sizes per role. Followers play longer blocks so they always cover at
// least the leader's playback time and wait for its cue instead of finishing
// early.
const (
	LeaderBlockSize   = 4
	FollowerBlockSize = 6
)

// BlockSize returns the number of clips per block for this role.
func (r Role) BlockSize() int {
	if r.IsLeader() {
		return LeaderBlockSize
	}
	return FollowerBlockSize
}

// Player is the external playback process. Play blocks until the block
// finished naturally (nil), the player failed to start (error), or ctx was
// canceled — cancellation is the forceful terminate and Play must return
// promptly after it.
type Player interface {
	Play(ctx context.Context, block playlist.Block) error
}
