// Package replication implements the best-effort, fire-and-forget fan-out
// of locally accepted mutations to a static peer list.
//
// There is no quorum, no retry, and no read-repair: a mutation is
// acknowledged to its originating caller as soon as the local Facade
// accepts it, and replication happens after that, in the background. A
// slow or unreachable peer never stalls the local request path or its
// siblings — each peer request runs on its own goroutine with its own
// timeout.
package replication

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// perPeerTimeout bounds each individual peer POST.
const perPeerTimeout = 5 * time.Second

// Replicator fans a request body out to every configured peer.
type Replicator struct {
	peers      []string
	httpClient *http.Client
}

// New builds a Replicator from a raw REPLICAS env-style value: split on
// comma, trim whitespace from each entry, drop empties. An empty or
// whitespace-only input yields a Replicator with no peers — fan-out then
// becomes a no-op.
func New(rawPeers string) *Replicator {
	var peers []string
	for _, p := range strings.Split(rawPeers, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			peers = append(peers, p)
		}
	}
	return &Replicator{
		peers:      peers,
		httpClient: &http.Client{Timeout: perPeerTimeout},
	}
}

// Peers returns the configured peer list (for tests/introspection).
func (r *Replicator) Peers() []string {
	return r.peers
}

// Fanout issues a POST to <peer>/<endpoint>?replication=true for every
// peer, in parallel, with the given JSON body. It returns immediately —
// the sends happen on their own goroutines and any outcome (transport
// error, non-2xx, timeout) is only logged, never surfaced to the caller.
// Callers that are themselves servicing a replica delivery (i.e. that
// received replication=true) must not call Fanout — that's the
// loop-break.
func (r *Replicator) Fanout(endpoint string, body []byte) {
	for _, peer := range r.peers {
		go r.send(peer, endpoint, body)
	}
}

func (r *Replicator) send(peer, endpoint string, body []byte) {
	url := fmt.Sprintf("http://%s/%s?replication=true", peer, endpoint)

	ctx, cancel := context.WithTimeout(context.Background(), perPeerTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("replication: build request to %s: %v", peer, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		log.Printf("replication: send to %s failed: %v", peer, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("replication: %s returned HTTP %d", peer, resp.StatusCode)
		return
	}
	log.Printf("replication: delivered to %s", peer)
}
