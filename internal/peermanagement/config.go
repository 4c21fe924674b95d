package peermanagement

import (
	"errors"
	"time"
)

// Default configuration values.
const (
	DefaultListenAddr   = ":51235"
	DefaultMaxPeers     = 50
	DefaultMaxInbound   = 25
	DefaultMaxOutbound  = 25

	DefaultConnectTimeout   = 10 * time.Second
	DefaultHandshakeTimeout = 5 * time.Second
	DefaultPingInterval     = 30 * time.Second
	DefaultIdleTimeout      = 2 * time.Minute

	DefaultEventBufferSize   = 256
	DefaultMessageBufferSize = 256
	DefaultSendBufferSize    = 64

	DefaultUserAgent = "goXRPL/0.1.0"

	// DefaultBootstrapHost is the fallback bootstrap host used when no
	// BootstrapPeers/FixedPeers are configured, mirroring rippled's
	// hardcoded r.ripple.com default (see DESIGN.md Open Questions).
	DefaultBootstrapHost = "r.ripple.com:51235"
)

// Config holds the configuration for the overlay network.
type Config struct {
	// Network settings
	ListenAddr string
	NetworkID  uint32
	UserAgent  string

	// Peer limits
	MaxPeers     int
	MaxInbound   int
	MaxOutbound  int

	// Bootstrap peers
	BootstrapPeers []string
	FixedPeers     []string

	// Privacy
	PrivateMode bool // Don't share our address with peers

	// Storage
	DataDir string // For boot cache persistence

	// Timeouts
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	IdleTimeout      time.Duration

	// Buffer sizes
	EventBufferSize   int
	MessageBufferSize int
	SendBufferSize    int

	// Features
	EnableReduceRelay bool
	EnableCompression bool

	// Clock function for testing
	Clock func() time.Time

	// PublicIP is advertised to peers in gossip so they can reach us back;
	// empty means don't advertise an address (NAT'd / unknown).
	PublicIP string

	// IPLimit caps the number of simultaneous connections accepted from
	// a single source IP, independent of the overall inbound budget.
	IPLimit int

	// Expire, when true, zeroes a relayed message's hop count before
	// resending it, matching rippled's "don't propagate TTL" default.
	Expire bool

	// MaxTTL bounds how many times a hop-carrying message (proposals,
	// validations) may be relayed before this node stops forwarding it
	// further. 0 disables the check (unbounded relay).
	MaxTTL uint32

	// DefaultBootstrapHost is dialed when BootstrapPeers and FixedPeers
	// are both empty, so a freshly configured node can still find the
	// network. Set to "" to disable and rely on discovery alone.
	DefaultBootstrapHost string

	// ValidatorKeys lists the master public keys (Base58Check-encoded,
	// "n..." form) whose manifests this node trusts.
	ValidatorKeys []string

	// ValidationManifest is this node's own manifest, announced to peers
	// on connect so they learn our current ephemeral signing key.
	ValidationManifest *Manifest

	// ClusterKeys lists the master public keys of nodes in the same
	// administrative cluster; cluster peers bypass the resource manager.
	ClusterKeys []string

	// ManifestDBPath, if set, persists the manifest cache to a SQLite
	// database at this path instead of keeping it in memory only.
	ManifestDBPath string

	// HashRouterEntries bounds the hash router's LRU size; 0 uses
	// DefaultHashRouterEntries.
	HashRouterEntries int

	// Logger receives structured log output from the overlay. A nil
	// Logger discards everything.
	Logger Logger

	// CrawlPublic controls both the Crawl header advertised during the
	// handshake and whether the /crawl admin endpoint serves peer-list
	// detail to requests without admin credentials.
	CrawlPublic bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ListenAddr:   DefaultListenAddr,
		UserAgent:    DefaultUserAgent,
		MaxPeers:     DefaultMaxPeers,
		MaxInbound:   DefaultMaxInbound,
		MaxOutbound:  DefaultMaxOutbound,

		ConnectTimeout:   DefaultConnectTimeout,
		HandshakeTimeout: DefaultHandshakeTimeout,
		PingInterval:     DefaultPingInterval,
		IdleTimeout:      DefaultIdleTimeout,

		EventBufferSize:   DefaultEventBufferSize,
		MessageBufferSize: DefaultMessageBufferSize,
		SendBufferSize:    DefaultSendBufferSize,

		EnableReduceRelay: true,
		EnableCompression: true,

		DefaultBootstrapHost: DefaultBootstrapHost,
		HashRouterEntries:    DefaultHashRouterEntries,

		Clock: time.Now,
	}
}

// Option is a functional option for configuring the overlay.
type Option func(*Config)

// WithListenAddr sets the listen address for incoming connections.
func WithListenAddr(addr string) Option {
	return func(c *Config) {
		c.ListenAddr = addr
	}
}

// WithNetworkID sets the network ID for peer validation.
func WithNetworkID(id uint32) Option {
	return func(c *Config) {
		c.NetworkID = id
	}
}

// WithMaxPeers sets the maximum total number of peers.
func WithMaxPeers(n int) Option {
	return func(c *Config) {
		c.MaxPeers = n
	}
}

// WithMaxInbound sets the maximum number of inbound connections.
func WithMaxInbound(n int) Option {
	return func(c *Config) {
		c.MaxInbound = n
	}
}

// WithMaxOutbound sets the maximum number of outbound connections.
func WithMaxOutbound(n int) Option {
	return func(c *Config) {
		c.MaxOutbound = n
	}
}

// WithBootstrapPeers sets the initial peers to connect to.
func WithBootstrapPeers(peers ...string) Option {
	return func(c *Config) {
		c.BootstrapPeers = peers
	}
}

// WithFixedPeers sets peers that should always be connected.
func WithFixedPeers(peers ...string) Option {
	return func(c *Config) {
		c.FixedPeers = peers
	}
}

// WithPrivateMode enables private mode (don't share our address).
func WithPrivateMode(enabled bool) Option {
	return func(c *Config) {
		c.PrivateMode = enabled
	}
}

// WithDataDir sets the data directory for persistent storage.
func WithDataDir(path string) Option {
	return func(c *Config) {
		c.DataDir = path
	}
}

// WithConnectTimeout sets the connection timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ConnectTimeout = d
	}
}

// WithHandshakeTimeout sets the handshake timeout.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.HandshakeTimeout = d
	}
}

// WithPingInterval sets the ping interval for keepalive.
func WithPingInterval(d time.Duration) Option {
	return func(c *Config) {
		c.PingInterval = d
	}
}

// WithIdleTimeout sets the idle timeout before disconnecting a peer.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.IdleTimeout = d
	}
}

// WithReduceRelay enables or disables reduce-relay optimization.
func WithReduceRelay(enabled bool) Option {
	return func(c *Config) {
		c.EnableReduceRelay = enabled
	}
}

// WithCompression enables or disables message compression.
func WithCompression(enabled bool) Option {
	return func(c *Config) {
		c.EnableCompression = enabled
	}
}

// WithClock sets the clock function (for testing).
func WithClock(clock func() time.Time) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

// WithEventBufferSize sets the internal event channel buffer size.
func WithEventBufferSize(size int) Option {
	return func(c *Config) {
		c.EventBufferSize = size
	}
}

// WithMessageBufferSize sets the inbound message channel buffer size.
func WithMessageBufferSize(size int) Option {
	return func(c *Config) {
		c.MessageBufferSize = size
	}
}

// WithPublicIP sets the address advertised to peers.
func WithPublicIP(ip string) Option {
	return func(c *Config) {
		c.PublicIP = ip
	}
}

// WithIPLimit caps simultaneous connections accepted from one source IP.
func WithIPLimit(limit int) Option {
	return func(c *Config) {
		c.IPLimit = limit
	}
}

// WithExpire enables zeroing a relayed message's hop count before resend.
func WithExpire(enabled bool) Option {
	return func(c *Config) {
		c.Expire = enabled
	}
}

// WithMaxTTL bounds the number of hops a proposal/validation may be relayed
// before this node stops forwarding it.
func WithMaxTTL(n uint32) Option {
	return func(c *Config) {
		c.MaxTTL = n
	}
}

// WithDefaultBootstrapHost overrides the fallback bootstrap host used when
// no bootstrap/fixed peers are configured.
func WithDefaultBootstrapHost(host string) Option {
	return func(c *Config) {
		c.DefaultBootstrapHost = host
	}
}

// WithValidatorKeys sets the trusted validator master public keys.
func WithValidatorKeys(keys ...string) Option {
	return func(c *Config) {
		c.ValidatorKeys = keys
	}
}

// WithValidationManifest sets this node's own manifest to announce on connect.
func WithValidationManifest(m *Manifest) Option {
	return func(c *Config) {
		c.ValidationManifest = m
	}
}

// WithClusterKeys sets the master public keys of same-cluster peers.
func WithClusterKeys(keys ...string) Option {
	return func(c *Config) {
		c.ClusterKeys = keys
	}
}

// WithManifestDBPath persists the manifest cache to a SQLite database.
func WithManifestDBPath(path string) Option {
	return func(c *Config) {
		c.ManifestDBPath = path
	}
}

// WithHashRouterEntries bounds the hash router's LRU size.
func WithHashRouterEntries(n int) Option {
	return func(c *Config) {
		c.HashRouterEntries = n
	}
}

// WithCrawlPublic controls whether handshake Crawl advertising and the
// /crawl admin endpoint expose peer-list detail without admin credentials.
func WithCrawlPublic(public bool) Option {
	return func(c *Config) {
		c.CrawlPublic = public
	}
}

// WithLogger sets the logging sink; nil discards all output.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.MaxPeers <= 0 {
		return errors.New("MaxPeers must be positive")
	}
	if c.MaxInbound < 0 {
		return errors.New("MaxInbound cannot be negative")
	}
	if c.MaxOutbound < 0 {
		return errors.New("MaxOutbound cannot be negative")
	}
	if c.MaxInbound+c.MaxOutbound > c.MaxPeers {
		return errors.New("MaxInbound + MaxOutbound cannot exceed MaxPeers")
	}
	if c.ConnectTimeout <= 0 {
		return errors.New("ConnectTimeout must be positive")
	}
	if c.HandshakeTimeout <= 0 {
		return errors.New("HandshakeTimeout must be positive")
	}
	if c.Clock == nil {
		return errors.New("Clock function cannot be nil")
	}
	return nil
}
