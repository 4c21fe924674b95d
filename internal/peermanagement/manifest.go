package peermanagement

import (
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
)

// sha512Half hashes data with SHA-512 and takes the first 32 bytes, the
// digest XRPL peer signatures are computed over.
func sha512Half(data []byte) []byte {
	h := sha512.New()
	h.Write(data)
	return h.Sum(nil)[:32]
}

// Manifest errors.
var (
	ErrManifestBadSignature = errors.New("manifest signature verification failed")
	ErrManifestMalformed    = errors.New("manifest malformed")
)

// ManifestDisposition is the outcome of applying a manifest against the
// cache.
type ManifestDisposition int

const (
	ManifestAccepted ManifestDisposition = iota
	ManifestUntrusted
	ManifestStale
	ManifestInvalid
)

// String returns the taxonomy name for the disposition.
func (d ManifestDisposition) String() string {
	switch d {
	case ManifestAccepted:
		return "accepted"
	case ManifestUntrusted:
		return "untrusted"
	case ManifestStale:
		return "stale"
	case ManifestInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Manifest asserts that Master has delegated signing authority to Signing
// as of Sequence, with the assertion covered by MasterSignature (over
// Master+Signing+Sequence) and SigningSignature (signing key proving it
// holds the corresponding private key).
type Manifest struct {
	Master          *PublicKeyToken
	Signing         *PublicKeyToken
	Sequence        uint32
	Domain          string
	MasterSignature []byte
	SigningSignature []byte
}

func (m *Manifest) signedPayload() []byte {
	buf := make([]byte, 0, len(m.Master.Bytes())+len(m.Signing.Bytes())+4+len(m.Domain))
	buf = append(buf, m.Master.Bytes()...)
	buf = append(buf, m.Signing.Bytes()...)
	var seq [4]byte
	binary.BigEndian.PutUint32(seq[:], m.Sequence)
	buf = append(buf, seq[:]...)
	buf = append(buf, []byte(m.Domain)...)
	return buf
}

// Verify checks both signatures over the manifest payload.
func (m *Manifest) Verify() error {
	if m.Master == nil || m.Signing == nil {
		return ErrManifestMalformed
	}
	payload := m.signedPayload()
	if !m.Master.Verify(payload, m.MasterSignature) {
		return ErrManifestBadSignature
	}
	if !m.Signing.Verify(payload, m.SigningSignature) {
		return ErrManifestBadSignature
	}
	return nil
}

// Sign produces the master and signing signatures for a manifest being
// constructed locally (e.g. a validator rotating its ephemeral key).
func SignManifest(master, signing *Identity, sequence uint32, domain string) (*Manifest, error) {
	m := &Manifest{
		Master:   NewPublicKeyTokenFromBtcec(master.BtcecPublicKey()),
		Signing:  NewPublicKeyTokenFromBtcec(signing.BtcecPublicKey()),
		Sequence: sequence,
		Domain:   domain,
	}
	payload := m.signedPayload()

	masterSig, err := master.Sign(payload)
	if err != nil {
		return nil, err
	}
	signingSig, err := signing.Sign(payload)
	if err != nil {
		return nil, err
	}
	m.MasterSignature = masterSig
	m.SigningSignature = signingSig
	return m, nil
}

// Manifest STObject tags. These are locally defined field tags for the
// TLV encoding below, not a claim of byte compatibility with rippled's
// SField-numbered STObject wire format: this package has no access to the
// ledger-object codec that format depends on (see manifeststore.go and
// DESIGN.md), so manifests exchanged over the wire by this implementation
// use this package's own self-consistent encoding instead.
const (
	manifestTagSequence       = 0x01
	manifestTagMasterPubKey   = 0x02
	manifestTagSigningPubKey  = 0x03
	manifestTagMasterSignature = 0x04
	manifestTagSigningSignature = 0x05
	manifestTagDomain         = 0x06
)

// putVL appends a blob length using rippled's variable-length integer
// encoding (Serializer::addVL): lengths up to 192 fit in one byte, up to
// 12480 in two, and anything larger uses three.
func putVL(buf []byte, n int) []byte {
	switch {
	case n <= 192:
		return append(buf, byte(n))
	case n <= 12480:
		n -= 193
		return append(buf, byte(193+(n>>8)), byte(n&0xFF))
	default:
		n -= 12481
		return append(buf, byte(241+(n>>16)), byte((n>>8)&0xFF), byte(n&0xFF))
	}
}

// readVL decodes a length encoded by putVL, returning the length and the
// number of bytes consumed.
func readVL(data []byte) (int, int, error) {
	if len(data) < 1 {
		return 0, 0, ErrManifestMalformed
	}
	b0 := int(data[0])
	switch {
	case b0 <= 192:
		return b0, 1, nil
	case b0 <= 240:
		if len(data) < 2 {
			return 0, 0, ErrManifestMalformed
		}
		return 193 + (b0-193)*256 + int(data[1]), 2, nil
	case b0 <= 254:
		if len(data) < 3 {
			return 0, 0, ErrManifestMalformed
		}
		return 12481 + (b0-241)*65536 + int(data[1])*256 + int(data[2]), 3, nil
	default:
		return 0, 0, ErrManifestMalformed
	}
}

func putField(buf []byte, tag byte, value []byte) []byte {
	buf = append(buf, tag)
	buf = putVL(buf, len(value))
	return append(buf, value...)
}

// SerializeManifestSTObject encodes a Manifest into the wire blob carried
// by message.Manifest.STObject.
func SerializeManifestSTObject(m *Manifest) ([]byte, error) {
	if m == nil || m.Master == nil || m.Signing == nil {
		return nil, ErrManifestMalformed
	}
	var seq [4]byte
	binary.BigEndian.PutUint32(seq[:], m.Sequence)

	buf := make([]byte, 0, 256)
	buf = putField(buf, manifestTagSequence, seq[:])
	buf = putField(buf, manifestTagMasterPubKey, m.Master.Bytes())
	buf = putField(buf, manifestTagSigningPubKey, m.Signing.Bytes())
	buf = putField(buf, manifestTagMasterSignature, m.MasterSignature)
	buf = putField(buf, manifestTagSigningSignature, m.SigningSignature)
	if m.Domain != "" {
		buf = putField(buf, manifestTagDomain, []byte(m.Domain))
	}
	return buf, nil
}

// ParseManifestSTObject decodes a wire blob produced by
// SerializeManifestSTObject back into a Manifest. Unrecognized tags are
// skipped rather than rejected, so a future field addition doesn't break
// interop with this version.
func ParseManifestSTObject(data []byte) (*Manifest, error) {
	m := &Manifest{}
	var masterKey, signingKey []byte

	for len(data) > 0 {
		tag := data[0]
		data = data[1:]
		n, consumed, err := readVL(data)
		if err != nil {
			return nil, err
		}
		data = data[consumed:]
		if len(data) < n {
			return nil, ErrManifestMalformed
		}
		value := data[:n]
		data = data[n:]

		switch tag {
		case manifestTagSequence:
			if len(value) != 4 {
				return nil, ErrManifestMalformed
			}
			m.Sequence = binary.BigEndian.Uint32(value)
		case manifestTagMasterPubKey:
			masterKey = value
		case manifestTagSigningPubKey:
			signingKey = value
		case manifestTagMasterSignature:
			m.MasterSignature = value
		case manifestTagSigningSignature:
			m.SigningSignature = value
		case manifestTagDomain:
			m.Domain = string(value)
		}
	}

	if masterKey == nil || signingKey == nil {
		return nil, ErrManifestMalformed
	}
	master, err := NewPublicKeyToken(masterKey)
	if err != nil {
		return nil, fmt.Errorf("manifest master key: %w", err)
	}
	signing, err := NewPublicKeyToken(signingKey)
	if err != nil {
		return nil, fmt.Errorf("manifest signing key: %w", err)
	}
	m.Master = master
	m.Signing = signing
	return m, nil
}

// ManifestCache holds the newest manifest seen per master key and applies
// incoming manifests under a single lock: application is serialized
// per master key so concurrent gossip of the same rotation can't race.
type ManifestCache struct {
	mu        sync.RWMutex
	byMaster  map[string]*Manifest
	trusted   map[string]struct{}
	store     ManifestStore
}

// ManifestStore persists manifests across restarts.
type ManifestStore interface {
	Load() ([]*Manifest, error)
	Save(m *Manifest) error
}

// NewManifestCache creates a cache seeded with trustedMasters (hex-encoded
// compressed public keys accepted as valid roots of trust, e.g. from
// config.ValidatorKeys) and an optional persistent store.
func NewManifestCache(trustedMasters []string, store ManifestStore) *ManifestCache {
	trusted := make(map[string]struct{}, len(trustedMasters))
	for _, k := range trustedMasters {
		trusted[k] = struct{}{}
	}
	return &ManifestCache{
		byMaster: make(map[string]*Manifest),
		trusted:  trusted,
		store:    store,
	}
}

// LoadFromStore repopulates the cache from the backing store, if any.
func (c *ManifestCache) LoadFromStore() error {
	if c.store == nil {
		return nil
	}
	manifests, err := c.store.Load()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range manifests {
		key := m.Master.Encode()
		existing, ok := c.byMaster[key]
		if !ok || m.Sequence > existing.Sequence {
			c.byMaster[key] = m
		}
	}
	return nil
}

// Apply validates and, if newer than what's tracked, stores a manifest,
// returning its disposition. The master key must be on the trusted list
// (or the trusted list must be empty, meaning "trust all" for test/dev
// configurations) or the manifest is Untrusted without further checks.
func (c *ManifestCache) Apply(m *Manifest) ManifestDisposition {
	if m == nil || m.Master == nil {
		return ManifestInvalid
	}
	masterKey := m.Master.Encode()

	if len(c.trusted) > 0 {
		if _, ok := c.trusted[masterKey]; !ok {
			return ManifestUntrusted
		}
	}

	if err := m.Verify(); err != nil {
		return ManifestInvalid
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.byMaster[masterKey]; ok && m.Sequence <= existing.Sequence {
		return ManifestStale
	}

	c.byMaster[masterKey] = m
	if c.store != nil {
		_ = c.store.Save(m)
	}
	return ManifestAccepted
}

// Get returns the newest known manifest for a master key, if any.
func (c *ManifestCache) Get(masterKey string) (*Manifest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.byMaster[masterKey]
	return m, ok
}

// SigningKeyFor resolves the current signing key delegated by a master, if
// a manifest for it has been accepted.
func (c *ManifestCache) SigningKeyFor(masterKey string) (*PublicKeyToken, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.byMaster[masterKey]
	if !ok {
		return nil, false
	}
	return m.Signing, true
}

// Len returns the number of distinct master keys tracked.
func (c *ManifestCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byMaster)
}

// All returns every tracked manifest, e.g. to gossip on a new peer joining.
func (c *ManifestCache) All() []*Manifest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Manifest, 0, len(c.byMaster))
	for _, m := range c.byMaster {
		out = append(out, m)
	}
	return out
}
