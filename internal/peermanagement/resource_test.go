package peermanagement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceManager_NewConsumerStartsAtZero(t *testing.T) {
	rm := NewResourceManager()
	c := rm.NewInboundEndpoint("10.0.0.1")
	assert.Equal(t, 0.0, c.Usage())
	assert.False(t, c.Disconnect())
}

func TestResourceManager_InvalidTrafficChargesHeavily(t *testing.T) {
	rm := NewResourceManager()
	for i := 0; i < 20; i++ {
		rm.ReportTraffic("10.0.0.1", CategoryTransaction, false)
	}
	assert.Contains(t, rm.OverloadedSources(), "10.0.0.1")
}

func TestResourceManager_ValidTrafficStaysLow(t *testing.T) {
	rm := NewResourceManager()
	disconnect := rm.ReportTraffic("10.0.0.2", CategoryBase, true)
	assert.False(t, disconnect)
	assert.NotContains(t, rm.OverloadedSources(), "10.0.0.2")
}

func TestResourceManager_RemoveDropsSource(t *testing.T) {
	rm := NewResourceManager()
	rm.NewInboundEndpoint("10.0.0.3")
	assert.Equal(t, 1, rm.SourceCount())
	rm.Remove("10.0.0.3")
	assert.Equal(t, 0, rm.SourceCount())
}

func TestConsumer_ResetClearsCharge(t *testing.T) {
	rm := NewResourceManager()
	c := rm.NewInboundEndpoint("10.0.0.4")
	c.Charge(9000)
	assert.True(t, c.Usage() > 0)
	c.Reset()
	assert.Equal(t, 0.0, c.Usage())
}

func TestChargeFor_InvalidAlwaysExpensive(t *testing.T) {
	assert.Equal(t, 500, ChargeFor(CategoryBase, false))
	assert.Less(t, ChargeFor(CategoryBase, true), ChargeFor(CategoryBase, false))
}
