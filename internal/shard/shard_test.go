package shard_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/orcaman/writerseeker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironclad-io/ironclad/internal/debug"
	"github.com/ironclad-io/ironclad/internal/shard"
	"github.com/ironclad-io/ironclad/internal/util"
)

func TestWriteReadRoundTrip(t *testing.T) {
	assert := assert.New(t)

	payload := []byte("some shard payload bytes, not block-aligned")
	buf := &bytes.Buffer{}
	require.NoError(t, shard.Write(buf, 7, 3, true, payload))

	t.Log("encoded shard header:")
	debug.Hexdump(buf.Bytes()[:shard.HeaderSize])

	h, got, err := shard.Read(buf)
	require.NoError(t, err)
	assert.Equal(uint64(7), h.StripeIndex)
	assert.Equal(uint16(3), h.ShardIndex)
	assert.True(h.IsParity)
	assert.Equal(payload, got)
	assert.True(h.Verify(got))
}

func TestVerifyDetectsCorruption(t *testing.T) {
	assert := assert.New(t)

	payload := []byte("payload that will be corrupted after the header is written")
	buf := &bytes.Buffer{}
	require.NoError(t, shard.Write(buf, 0, 0, false, payload))

	h, got, err := shard.Read(buf)
	require.NoError(t, err)

	got[0] ^= 0xFF
	assert.False(h.Verify(got))
}

func TestDecodeHeaderRejectsBadMagic(t *testing.T) {
	h := shard.Header{StripeIndex: 1, ShardIndex: 2}
	buf := h.Encode()
	buf[0] = 'X'

	_, err := shard.DecodeHeader(buf)
	require.Error(t, err)
}

func TestDecodeHeaderRejectsTruncated(t *testing.T) {
	_, err := shard.DecodeHeader(make([]byte, shard.HeaderSize-1))
	require.Error(t, err)
}

// TestWriteReadRoundTripViaMembuf exercises the same round trip against an
// in-memory io.ReadWriteSeeker standing in for a shard file, rewinding
// between the write and the read the way a reopened file would.
func TestWriteReadRoundTripViaMembuf(t *testing.T) {
	assert := assert.New(t)

	payload := []byte("payload written to a seekable in-memory shard stand-in")
	buf := util.NewMembuf()
	require.NoError(t, shard.Write(buf, 12, 5, false, payload))

	_, err := buf.Seek(0, io.SeekStart)
	require.NoError(t, err)

	h, got, err := shard.Read(buf)
	require.NoError(t, err)
	assert.Equal(uint64(12), h.StripeIndex)
	assert.Equal(uint16(5), h.ShardIndex)
	assert.False(h.IsParity)
	assert.Equal(payload, got)
}

// TestWriteReadRoundTripViaWriterSeeker exercises the same round trip against
// writerseeker.WriterSeeker, the in-memory io.WriteSeeker the teacher's own
// reedsolomon tests buffer shards in.
func TestWriteReadRoundTripViaWriterSeeker(t *testing.T) {
	assert := assert.New(t)

	payload := []byte("payload buffered through a writerseeker.WriterSeeker")
	var ws writerseeker.WriterSeeker
	require.NoError(t, shard.Write(&ws, 9, 1, true, payload))

	_, err := ws.Seek(0, io.SeekStart)
	require.NoError(t, err)

	h, got, err := shard.Read(ws.BytesReader())
	require.NoError(t, err)
	assert.Equal(uint64(9), h.StripeIndex)
	assert.Equal(uint16(1), h.ShardIndex)
	assert.True(h.IsParity)
	assert.Equal(payload, got)
}
