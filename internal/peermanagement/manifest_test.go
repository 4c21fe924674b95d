package peermanagement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManifest(t *testing.T, sequence uint32) (*Manifest, *Identity) {
	t.Helper()
	master, err := NewIdentity()
	require.NoError(t, err)
	signing, err := NewIdentity()
	require.NoError(t, err)

	m, err := SignManifest(master, signing, sequence, "")
	require.NoError(t, err)
	return m, master
}

func TestManifest_VerifyValid(t *testing.T) {
	m, _ := newTestManifest(t, 1)
	assert.NoError(t, m.Verify())
}

func TestManifest_VerifyRejectsTamperedSequence(t *testing.T) {
	m, _ := newTestManifest(t, 1)
	m.Sequence = 2
	assert.Error(t, m.Verify())
}

func TestManifestCache_AcceptsTrustedFirstManifest(t *testing.T) {
	m, master := newTestManifest(t, 1)
	cache := NewManifestCache([]string{master.EncodedPublicKey()}, nil)

	disposition := cache.Apply(m)
	assert.Equal(t, ManifestAccepted, disposition)
	assert.Equal(t, 1, cache.Len())
}

func TestManifestCache_RejectsUntrustedMaster(t *testing.T) {
	m, _ := newTestManifest(t, 1)
	other, err := NewIdentity()
	require.NoError(t, err)
	cache := NewManifestCache([]string{other.EncodedPublicKey()}, nil)

	assert.Equal(t, ManifestUntrusted, cache.Apply(m))
}

func TestManifestCache_StaleSequenceRejected(t *testing.T) {
	master, err := NewIdentity()
	require.NoError(t, err)
	signing1, err := NewIdentity()
	require.NoError(t, err)
	signing2, err := NewIdentity()
	require.NoError(t, err)

	m1, err := SignManifest(master, signing1, 5, "")
	require.NoError(t, err)
	m2, err := SignManifest(master, signing2, 3, "")
	require.NoError(t, err)

	cache := NewManifestCache([]string{master.EncodedPublicKey()}, nil)
	require.Equal(t, ManifestAccepted, cache.Apply(m1))
	assert.Equal(t, ManifestStale, cache.Apply(m2))
}

func TestManifestCache_NewerSequenceReplaces(t *testing.T) {
	master, err := NewIdentity()
	require.NoError(t, err)
	signing1, err := NewIdentity()
	require.NoError(t, err)
	signing2, err := NewIdentity()
	require.NoError(t, err)

	m1, err := SignManifest(master, signing1, 1, "")
	require.NoError(t, err)
	m2, err := SignManifest(master, signing2, 2, "")
	require.NoError(t, err)

	cache := NewManifestCache([]string{master.EncodedPublicKey()}, nil)
	require.Equal(t, ManifestAccepted, cache.Apply(m1))
	require.Equal(t, ManifestAccepted, cache.Apply(m2))

	key, ok := cache.SigningKeyFor(master.EncodedPublicKey())
	require.True(t, ok)
	assert.True(t, key.Equal(NewPublicKeyTokenFromBtcec(signing2.BtcecPublicKey())))
}

func TestManifestCache_EmptyTrustListTrustsAll(t *testing.T) {
	m, _ := newTestManifest(t, 1)
	cache := NewManifestCache(nil, nil)
	assert.Equal(t, ManifestAccepted, cache.Apply(m))
}

func TestManifestDisposition_String(t *testing.T) {
	assert.Equal(t, "accepted", ManifestAccepted.String())
	assert.Equal(t, "untrusted", ManifestUntrusted.String())
	assert.Equal(t, "stale", ManifestStale.String())
	assert.Equal(t, "invalid", ManifestInvalid.String())
}
