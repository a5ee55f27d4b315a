// Package link carries the exhibit's synchronization traffic: the leader's
// periodic heartbeats and its category-advance announcements, broadcast as
// short text frames over UDP on the local network. Delivery is best effort.
// Every frame is self-contained (it carries the authoritative step), so the
// protocol stays correct when frames are lost, duplicated or reordered.
//
// The package also provides the presence monitor followers use to decide
// whether a leader is reachable at all, based purely on how recently any
// leader frame was seen.
package link
