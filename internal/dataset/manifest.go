package dataset

import (
	"encoding/binary"
	"fmt"
)

// manifestMagic identifies an Ironclad manifest file.
var manifestMagic = [4]byte{'I', 'R', 'M', 'F'}

// manifestVersion is the current manifest format version.
const manifestVersion = 1

// ManifestSize is the fixed size of the serialized manifest, per the layout
// in spec.md section 6.
const ManifestSize = 4 + 1 + 2 + 2 + 4 + 8 + 8

// Manifest is the one-per-dataset record of shape and size.
type Manifest struct {
	DataShards   uint16
	ParityShards uint16
	StripeSize   uint32
	PlaintextLen uint64
	NumStripes   uint64
}

// NewManifest computes NumStripes from plaintextLen and stripeSize and
// validates the invariants from spec.md section 3: 1<=N, 1<=M, N+M<=255,
// stripeSize > 0.
func NewManifest(dataShards, parityShards uint16, stripeSize uint32, plaintextLen uint64) (Manifest, error) {
	if dataShards < 1 {
		return Manifest{}, fmt.Errorf("dataset: data shard count must be >= 1")
	}
	if parityShards < 1 {
		return Manifest{}, fmt.Errorf("dataset: parity shard count must be >= 1")
	}
	if int(dataShards)+int(parityShards) > 255 {
		return Manifest{}, fmt.Errorf("dataset: data+parity shard count must be <= 255")
	}
	if stripeSize == 0 {
		return Manifest{}, fmt.Errorf("dataset: stripe size must be > 0")
	}

	return Manifest{
		DataShards:   dataShards,
		ParityShards: parityShards,
		StripeSize:   stripeSize,
		PlaintextLen: plaintextLen,
		NumStripes:   numStripes(plaintextLen, stripeSize),
	}, nil
}

func numStripes(plaintextLen uint64, stripeSize uint32) uint64 {
	if plaintextLen == 0 {
		return 1
	}
	s := uint64(stripeSize)
	return (plaintextLen + s - 1) / s
}

// withPlaintextLen returns a copy of m with a new plaintext length and a
// recomputed stripe count, used after insert/delete resize the dataset.
func (m Manifest) withPlaintextLen(plaintextLen uint64) Manifest {
	m.PlaintextLen = plaintextLen
	m.NumStripes = numStripes(plaintextLen, m.StripeSize)
	return m
}

// finalStripeLen returns the true plaintext length of the last stripe (the
// only one that may be short of StripeSize).
func (m Manifest) finalStripeLen() int {
	if m.PlaintextLen == 0 {
		return 0
	}
	rem := m.PlaintextLen % uint64(m.StripeSize)
	if rem == 0 {
		return int(m.StripeSize)
	}
	return int(rem)
}

// stripeLen returns the true plaintext length of stripe i (StripeSize for
// every stripe but possibly the last).
func (m Manifest) stripeLen(i uint64) int {
	if i == m.NumStripes-1 {
		return m.finalStripeLen()
	}
	return int(m.StripeSize)
}

// Encode marshals the manifest into a ManifestSize-byte buffer.
func (m Manifest) Encode() []byte {
	buf := make([]byte, ManifestSize)
	copy(buf[0:4], manifestMagic[:])
	buf[4] = manifestVersion
	binary.LittleEndian.PutUint16(buf[5:7], m.DataShards)
	binary.LittleEndian.PutUint16(buf[7:9], m.ParityShards)
	binary.LittleEndian.PutUint32(buf[9:13], m.StripeSize)
	binary.LittleEndian.PutUint64(buf[13:21], m.PlaintextLen)
	binary.LittleEndian.PutUint64(buf[21:29], m.NumStripes)
	return buf
}

// DecodeManifest parses a ManifestSize-byte buffer into a Manifest.
func DecodeManifest(buf []byte) (Manifest, error) {
	var m Manifest
	if len(buf) < ManifestSize {
		return m, fmt.Errorf("dataset: manifest truncated, got %d bytes, want %d", len(buf), ManifestSize)
	}
	if string(buf[0:4]) != string(manifestMagic[:]) {
		return m, fmt.Errorf("dataset: bad manifest magic %q", buf[0:4])
	}
	if buf[4] != manifestVersion {
		return m, fmt.Errorf("dataset: unsupported manifest version %d", buf[4])
	}
	m.DataShards = binary.LittleEndian.Uint16(buf[5:7])
	m.ParityShards = binary.LittleEndian.Uint16(buf[7:9])
	m.StripeSize = binary.LittleEndian.Uint32(buf[9:13])
	m.PlaintextLen = binary.LittleEndian.Uint64(buf[13:21])
	m.NumStripes = binary.LittleEndian.Uint64(buf[21:29])
	return m, nil
}
