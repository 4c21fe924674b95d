package peermanagement

import (
	"fmt"

	"github.com/LeJamon/goXRPLd/internal/config"
)

// OptionsFromOverlayConfig translates the node process's [overlay] TOML
// section into Overlay functional options, so cmd/ wiring only has to
// parse config once and hand the typed section to New.
func OptionsFromOverlayConfig(oc *config.OverlayConfig) []Option {
	if oc == nil {
		return nil
	}

	opts := []Option{
		WithExpire(oc.Expire),
		WithPrivateMode(oc.PeerPrivate),
		WithDefaultBootstrapHost(oc.GetDefaultBootstrapHost()),
	}

	if oc.HasPublicIP() {
		opts = append(opts, WithPublicIP(oc.PublicIP))
	}
	if oc.MaxPeers > 0 {
		opts = append(opts, WithMaxPeers(oc.GetMaxPeers()))
	}
	if ipLimit := oc.GetIPLimit(); ipLimit > 0 {
		opts = append(opts, WithIPLimit(ipLimit))
	}
	if len(oc.BootstrapPeers) > 0 {
		opts = append(opts, WithBootstrapPeers(oc.BootstrapPeers...))
	}
	if len(oc.FixedPeers) > 0 {
		opts = append(opts, WithFixedPeers(oc.FixedPeers...))
	}
	if len(oc.ValidatorKeys) > 0 {
		opts = append(opts, WithValidatorKeys(oc.ValidatorKeys...))
	}
	if len(oc.ClusterKeys) > 0 {
		opts = append(opts, WithClusterKeys(oc.ClusterKeys...))
	}

	return opts
}

// OptionsFromConfig translates the node process's top-level rippled.cfg
// fields ([ips], [ips_fixed], [cluster_nodes], peer_private, peers_max,
// compression, network_id, [overlay]) into Overlay options, so cmd/ only
// has to load one Config and hand it to New.
func OptionsFromConfig(cfg *config.Config) []Option {
	if cfg == nil {
		return nil
	}

	opts := OptionsFromOverlayConfig(&cfg.Overlay)
	opts = append(opts, WithCompression(cfg.Compression))

	if len(cfg.IPs) > 0 {
		opts = append(opts, WithBootstrapPeers(cfg.IPs...))
	}
	if len(cfg.IPsFixed) > 0 {
		opts = append(opts, WithFixedPeers(cfg.IPsFixed...))
	}
	if len(cfg.ClusterNodes) > 0 {
		opts = append(opts, WithClusterKeys(cfg.ClusterNodes...))
	}
	if cfg.PeerPrivate == 1 {
		opts = append(opts, WithPrivateMode(true))
	}
	if cfg.PeersMax > 0 {
		opts = append(opts, WithMaxPeers(cfg.PeersMax))
	}
	if netID, err := cfg.GetNetworkID(); err == nil {
		opts = append(opts, WithNetworkID(uint32(netID)))
	}
	if _, port, ok := cfg.GetPeerPort(); ok {
		opts = append(opts, WithListenAddr(fmt.Sprintf("%s:%d", port.IP, port.Port)))
	}
	if cfg.DatabasePath != "" {
		opts = append(opts, WithDataDir(cfg.DatabasePath))
	}

	return opts
}
