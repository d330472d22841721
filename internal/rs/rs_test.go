package rs_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironclad-io/ironclad/internal/rs"
)

func randomShards(t *testing.T, n, shardLen int) [][]byte {
	t.Helper()
	shards := make([][]byte, n)
	for i := range shards {
		shards[i] = make([]byte, shardLen)
		_, err := rand.Read(shards[i])
		require.NoError(t, err)
	}
	return shards
}

func encodeFull(t *testing.T, codec *rs.Codec, data [][]byte) [][]byte {
	t.Helper()
	shardLen := len(data[0])
	shards := make([][]byte, codec.TotalShards())
	for i, d := range data {
		shards[i] = d
	}
	for i := codec.DataShards; i < codec.TotalShards(); i++ {
		shards[i] = make([]byte, shardLen)
	}
	require.NoError(t, codec.Encode(shards))
	return shards
}

func TestEncodeIsSystematic(t *testing.T) {
	codec, err := rs.New(4, 4)
	require.NoError(t, err)

	data := randomShards(t, 4, 64)
	shards := encodeFull(t, codec, data)

	for i := 0; i < 4; i++ {
		assert.Equal(t, data[i], shards[i])
	}
}

func TestReconstructFromAnyNShards(t *testing.T) {
	codec, err := rs.New(4, 4)
	require.NoError(t, err)

	data := randomShards(t, 4, 256)
	shards := encodeFull(t, codec, data)

	// Drop every combination of exactly M=4 shards across all 8.
	for mask := 0; mask < 1<<8; mask++ {
		if popcount(mask) != 4 {
			continue
		}
		trial := make([][]byte, len(shards))
		copy(trial, shards)
		for i := 0; i < 8; i++ {
			if mask&(1<<i) != 0 {
				trial[i] = nil
			}
		}

		require.NoError(t, codec.Reconstruct(trial))
		for i := 0; i < 4; i++ {
			assert.True(t, bytes.Equal(data[i], trial[i]), "mask=%08b shard=%d", mask, i)
		}
	}
}

func TestReconstructNoopWhenDataIntact(t *testing.T) {
	codec, err := rs.New(3, 2)
	require.NoError(t, err)

	data := randomShards(t, 3, 32)
	shards := encodeFull(t, codec, data)
	shards[3] = nil
	shards[4] = nil

	require.NoError(t, codec.Reconstruct(shards))
	for i := 0; i < 3; i++ {
		assert.Equal(t, data[i], shards[i])
	}
}

func TestInsufficientShards(t *testing.T) {
	codec, err := rs.New(4, 4)
	require.NoError(t, err)

	data := randomShards(t, 4, 32)
	shards := encodeFull(t, codec, data)

	// Drop 5 shards, leaving only 3 < N=4.
	for i := 0; i < 5; i++ {
		shards[i] = nil
	}

	err = codec.Reconstruct(shards)
	require.Error(t, err)
	var insufficient *rs.InsufficientShardsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Present)
	assert.Equal(t, 4, insufficient.Needed)
}

func TestRegenerateParityMatchesEncode(t *testing.T) {
	codec, err := rs.New(4, 3)
	require.NoError(t, err)

	data := randomShards(t, 4, 128)
	shards := encodeFull(t, codec, data)

	parity, err := codec.RegenerateParity(data)
	require.NoError(t, err)
	for i, p := range parity {
		assert.Equal(t, shards[codec.DataShards+i], p)
	}
}

func TestNewRejectsInvalidShapes(t *testing.T) {
	_, err := rs.New(0, 4)
	assert.ErrorIs(t, err, rs.ErrInvalidShardCount)

	_, err = rs.New(4, 0)
	assert.ErrorIs(t, err, rs.ErrInvalidShardCount)

	_, err = rs.New(200, 100)
	assert.ErrorIs(t, err, rs.ErrInvalidShardCount)
}

func popcount(x int) int {
	n := 0
	for x != 0 {
		n += x & 1
		x >>= 1
	}
	return n
}
