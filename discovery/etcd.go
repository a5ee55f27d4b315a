// Package discovery registers exhibit nodes in etcd so an operator (or the
// install's monitoring box) can see which screens are up without walking the
// room. Registration is leased: a node that loses power drops off the list
// when its TTL lapses. The sync protocol itself never depends on etcd.
package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const nodePrefix = "/videowall/nodes/"

// NewClient dials the etcd endpoints.
func NewClient(endpoints []string) (*clientv3.Client, error) {
	return clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
}

// RegisterNode puts id -> addr under the node prefix with a ttl-second lease
// and keeps the lease alive until the returned cancel is called.
func RegisterNode(cli *clientv3.Client, id, addr string, ttl int64) (clientv3.LeaseID, context.CancelFunc, error) {
	lease, err := cli.Grant(context.TODO(), ttl)
	if err != nil {
		return 0, nil, fmt.Errorf("discovery: grant lease: %w", err)
	}

	key := nodePrefix + id
	if _, err := cli.Put(context.TODO(), key, addr, clientv3.WithLease(lease.ID)); err != nil {
		return 0, nil, fmt.Errorf("discovery: register %s: %w", id, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := cli.KeepAlive(ctx, lease.ID)
	if err != nil {
		cancel()
		return 0, nil, fmt.Errorf("discovery: keepalive: %w", err)
	}
	go func() {
		for range ch {
			// Drain keepalive acks until cancel.
		}
	}()

	return lease.ID, cancel, nil
}

// Peers lists the currently registered nodes as id -> addr.
func Peers(ctx context.Context, cli *clientv3.Client) (map[string]string, error) {
	resp, err := cli.Get(ctx, nodePrefix, clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("discovery: list peers: %w", err)
	}
	out := make(map[string]string, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		out[strings.TrimPrefix(string(kv.Key), nodePrefix)] = string(kv.Value)
	}
	return out, nil
}
