package peermanagement

import (
	"sync"
	"time"
)

// Resource consumer tuning: keys by source IP, the overlay's admission
// unit, rather than by peer address, so a source is charged even before a
// slot exists for it.
const (
	ResourceChargeLimit     = 10000
	ResourceDecayPerSecond  = 100
	ResourceWarningFraction = 0.75
	ResourceDisconnectAt    = 1.0

	// ResourceChargeInboundConnect is what a bare inbound connection attempt
	// costs its source, charged before any slot or handshake work happens so
	// a connect flood trips the disconnect threshold on its own.
	ResourceChargeInboundConnect = 1
)

// ChargeFor returns the charge amount a message category costs a source.
// Invalid or oversized traffic is charged heavily so a misbehaving or
// attacking source trips the disconnect threshold quickly; routine traffic
// is cheap enough that normal gossip never approaches the limit.
func ChargeFor(category TrafficCategory, valid bool) int {
	if !valid {
		return 500
	}
	switch category {
	case CategoryBase, CategoryOverlay:
		return 1
	case CategoryCluster, CategoryManifests:
		return 10
	case CategoryValidatorList, CategorySquelch:
		return 20
	case CategoryTransaction, CategoryProposal, CategoryValidation:
		return 10
	case CategoryLedgerData:
		return 50
	default:
		return 10
	}
}

// Consumer tracks decaying resource charge for one source. A connection
// attempt or message is "charged" against it; charge decays linearly over
// time so a burst is forgiven once the source goes quiet.
type Consumer struct {
	mu sync.Mutex

	charge    int
	lastDecay time.Time
}

func newConsumer() *Consumer {
	return &Consumer{lastDecay: time.Now()}
}

func (c *Consumer) applyDecay() {
	now := time.Now()
	elapsed := now.Sub(c.lastDecay)
	c.lastDecay = now
	decay := int(elapsed.Seconds()) * ResourceDecayPerSecond
	if decay > 0 {
		c.charge -= decay
		if c.charge < 0 {
			c.charge = 0
		}
	}
}

// Charge adds amount to the consumer's running charge and returns the new
// usage fraction of the limit.
func (c *Consumer) Charge(amount int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyDecay()
	c.charge += amount
	return float64(c.charge) / float64(ResourceChargeLimit)
}

// Usage returns the current usage fraction without adding a charge.
func (c *Consumer) Usage() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyDecay()
	return float64(c.charge) / float64(ResourceChargeLimit)
}

// IsWarning reports whether usage has crossed the warning threshold.
func (c *Consumer) IsWarning() bool {
	return c.Usage() >= ResourceWarningFraction
}

// Disconnect reports whether usage has crossed the disconnect threshold;
// the overlay calls this after every charge to decide whether to tear the
// session down.
func (c *Consumer) Disconnect() bool {
	return c.Usage() >= ResourceDisconnectAt
}

// Reset clears accumulated charge, used when a source reconnects cleanly.
func (c *Consumer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.charge = 0
	c.lastDecay = time.Now()
}

// ResourceManager is the admission budget: every inbound connection
// attempt and every received message is charged against the source IP's
// Consumer, and sources that cross the disconnect threshold are refused or
// dropped before they can consume a slot.
type ResourceManager struct {
	mu        sync.RWMutex
	consumers map[string]*Consumer
}

// NewResourceManager creates an empty resource manager.
func NewResourceManager() *ResourceManager {
	return &ResourceManager{consumers: make(map[string]*Consumer)}
}

// NewInboundEndpoint returns the Consumer for a source IP, creating it on
// first contact from an inbound connection attempt.
func (rm *ResourceManager) NewInboundEndpoint(sourceIP string) *Consumer {
	return rm.consumer(sourceIP)
}

// NewOutboundEndpoint returns the Consumer for a source IP we are dialing;
// outbound attempts are still charged so a redirect loop cannot be used to
// exhaust local resources.
func (rm *ResourceManager) NewOutboundEndpoint(sourceIP string) *Consumer {
	return rm.consumer(sourceIP)
}

func (rm *ResourceManager) consumer(sourceIP string) *Consumer {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	c, ok := rm.consumers[sourceIP]
	if !ok {
		c = newConsumer()
		rm.consumers[sourceIP] = c
	}
	return c
}

// ReportTraffic charges the source's consumer for a received or sent
// message and returns true if the source should be disconnected.
func (rm *ResourceManager) ReportTraffic(sourceIP string, category TrafficCategory, valid bool) bool {
	c := rm.consumer(sourceIP)
	c.Charge(ChargeFor(category, valid))
	return c.Disconnect()
}

// Remove drops the tracked consumer for a source, e.g. once its last
// connection from that IP has closed.
func (rm *ResourceManager) Remove(sourceIP string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	delete(rm.consumers, sourceIP)
}

// WarningSources returns sources whose usage has crossed the warning
// threshold but not yet the disconnect threshold.
func (rm *ResourceManager) WarningSources() []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	var result []string
	for ip, c := range rm.consumers {
		if c.IsWarning() && !c.Disconnect() {
			result = append(result, ip)
		}
	}
	return result
}

// OverloadedSources returns sources that should be disconnected.
func (rm *ResourceManager) OverloadedSources() []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	var result []string
	for ip, c := range rm.consumers {
		if c.Disconnect() {
			result = append(result, ip)
		}
	}
	return result
}

// SourceCount returns the number of tracked sources.
func (rm *ResourceManager) SourceCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.consumers)
}
