package peermanagement

import "time"

// RedirectList is the set of alternate endpoints a busy peer returns in its
// 503 response body, used to steer a connect attempt toward a
// node with a free slot instead of retrying the same one blindly.
type RedirectList struct {
	From      Endpoint
	Endpoints []Endpoint
}

// Autoconnect reports whether the overlay should attempt new outbound
// connections right now: it needs more peers and has no fixed-peer-only
// restriction in effect.
func (d *Discovery) Autoconnect() bool {
	return d.NeedsMorePeers()
}

// Redirect records the endpoints a peer suggested in a 503 response so
// future SelectPeersToConnect calls can prefer them; hop count is not
// tracked for redirects since they come directly from the remote, not
// gossip, so they are recorded at hop 0.
func (d *Discovery) Redirect(list RedirectList) {
	for _, ep := range list.Endpoints {
		d.AddPeer(ep.String(), 0, 0)
	}
}

// OnRedirects is the callback form of Redirect, wired into a ConnectAttempt
// so it can report a redirect list as soon as it is parsed from a 503 body,
// before the attempt's connection is torn down.
func (d *Discovery) OnRedirects(from Endpoint, endpoints []Endpoint) {
	d.Redirect(RedirectList{From: from, Endpoints: endpoints})
}

// fixedRetryBackoff is the delay before retrying a fixed peer after a
// failed connect attempt; fixed peers are always worth retrying since the
// operator explicitly configured them.
const fixedRetryBackoff = 15 * time.Second
