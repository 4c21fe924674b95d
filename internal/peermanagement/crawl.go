package peermanagement

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
)

// DefaultCrawlLimit bounds the number of peers returned by /crawl when the
// caller doesn't specify one.
const DefaultCrawlLimit = 256

// CrawlPeer is one peer entry in the /crawl response. Fields mirror
// rippled's overlay/Overlay.h crawl shape: public key and IP are omitted
// for a peer unless CrawlPublic is set, since they identify the peer to
// an unauthenticated caller.
type CrawlPeer struct {
	PublicKey string `json:"public_key,omitempty"`
	Type      string `json:"type"`
	IP        string `json:"ip,omitempty"`
	Version   string `json:"version,omitempty"`
	Score     int    `json:"score"`
	Selected  bool   `json:"reduce_relay_selected,omitempty"`
}

// CrawlResponse is the full body served by the /crawl endpoint.
type CrawlResponse struct {
	Peers            []CrawlPeer `json:"overlay"`
	ReduceRelaySlots int         `json:"reduce_relay_slots"`
}

// selectPeers orders info by descending score and returns at most limit
// entries. limit <= 0 means unbounded.
func selectPeers(info []PeerInfo, score func(PeerID) int, limit int) []PeerInfo {
	out := make([]PeerInfo, len(info))
	copy(out, info)
	sort.Slice(out, func(i, j int) bool {
		return score(out[i].ID) > score(out[j].ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// crawl builds the /crawl response for the overlay's current peer set,
// ranked by peer score, limited to limit entries.
func (o *Overlay) crawl(limit int) CrawlResponse {
	o.peersMu.RLock()
	info := make([]PeerInfo, 0, len(o.peers))
	scores := make(map[PeerID]int, len(o.peers))
	for id, peer := range o.peers {
		info = append(info, peer.Info())
		scores[id] = peer.Score()
	}
	o.peersMu.RUnlock()

	ranked := selectPeers(info, func(id PeerID) int { return scores[id] }, limit)

	resp := CrawlResponse{
		Peers:            make([]CrawlPeer, 0, len(ranked)),
		ReduceRelaySlots: o.relay.SlotCount(),
	}
	for _, pi := range ranked {
		cp := CrawlPeer{
			Type:     crawlDirection(pi.Inbound),
			Version:  o.cfg.UserAgent,
			Score:    scores[pi.ID],
			Selected: o.relay.IsSelected(pi.ID),
		}
		if o.cfg.CrawlPublic {
			cp.PublicKey = pi.PublicKey
			cp.IP = pi.Endpoint.Host
		}
		resp.Peers = append(resp.Peers, cp)
	}
	return resp
}

func crawlDirection(inbound bool) string {
	if inbound {
		return "in"
	}
	return "out"
}

// crawlLimit parses the "limit" query parameter, falling back to
// DefaultCrawlLimit for a missing or invalid value.
func crawlLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultCrawlLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return DefaultCrawlLimit
	}
	return n
}

// crawlJSON writes resp to w as the /crawl endpoint's JSON body.
func crawlJSON(w http.ResponseWriter, resp CrawlResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// CrawlHandler returns an http.Handler serving rippled's /crawl admin
// endpoint: a snapshot of this node's connected peers, ranked by score and
// capped by the request's "limit" query parameter (DefaultCrawlLimit if
// absent). Peer identity (public key, IP) is included only when
// Config.CrawlPublic is set; otherwise the response carries only
// direction, version, and score.
func (o *Overlay) CrawlHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		crawlJSON(w, o.crawl(crawlLimit(r)))
	})
}
