// Package pipeline composes the AONT and RS layers for one stripe: on write,
// pad -> AONT-encode -> pad-to-multiple-of-N -> RS-encode; on read, the
// reverse with an erasure-driven reconstruction step in between. This is the
// Stripe Pipeline component (spec.md section 4.5), grounded on the same
// layer-composition style as the teacher's NewReadSeeker in decoder.go, which
// stacks RS -> AES -> zstd readers; here the stack is AONT -> RS with no
// compression stage (see DESIGN.md for why compression was dropped).
package pipeline

import (
	"errors"

	"github.com/ironclad-io/ironclad/internal/aont"
	"github.com/ironclad-io/ironclad/internal/ironerr"
	"github.com/ironclad-io/ironclad/internal/rs"
)

// Shape bundles the stripe-invariant parameters needed to encode or decode
// any stripe of one dataset.
type Shape struct {
	DataShards   int
	ParityShards int
	StripeSize   int
}

// blobLen is the AONT blob length for this shape's stripe size.
func (s Shape) blobLen() int {
	return aont.BlobLen(s.StripeSize)
}

// rsPayloadLen is the length of the RS-padded buffer that gets split across
// the N data shards: blobLen rounded up to the next multiple of N. Because
// StripeSize (and therefore blobLen) is constant across a dataset, this pad
// amount is always derivable from the manifest rather than stored per-stripe
// — the spec's open question (b) is resolved in favor of deriving it.
func (s Shape) rsPayloadLen() int {
	return roundUp(s.blobLen(), s.DataShards)
}

// ShardPayloadLen returns the length of each of the N+M persisted shard
// payloads for this shape.
func (s Shape) ShardPayloadLen() int {
	return s.rsPayloadLen() / s.DataShards
}

func roundUp(n, multiple int) int {
	if multiple == 0 || n%multiple == 0 {
		return n
	}
	return n + multiple - (n % multiple)
}

// padStripe returns plaintext padded with zero bytes up to s.StripeSize. The
// caller is responsible for recording the true length (only needed for the
// final stripe; the manifest's plaintext_len implies it).
func padStripe(s Shape, plaintext []byte) []byte {
	if len(plaintext) == s.StripeSize {
		return plaintext
	}
	padded := make([]byte, s.StripeSize)
	copy(padded, plaintext)
	return padded
}

// EncodeStripe runs one stripe of plaintext through AONT then RS, returning
// N+M shard payloads in canonical order (data shards first).
func EncodeStripe(s Shape, plaintext []byte) ([][]byte, error) {
	codec, err := rs.New(s.DataShards, s.ParityShards)
	if err != nil {
		return nil, err
	}

	padded := padStripe(s, plaintext)
	blob, err := aont.Encode(padded)
	if err != nil {
		return nil, err
	}

	rsPayload := make([]byte, s.rsPayloadLen())
	copy(rsPayload, blob)

	shardLen := s.ShardPayloadLen()
	shards := make([][]byte, codec.TotalShards())
	for i := 0; i < codec.DataShards; i++ {
		shards[i] = rsPayload[i*shardLen : (i+1)*shardLen]
	}
	for i := codec.DataShards; i < codec.TotalShards(); i++ {
		shards[i] = make([]byte, shardLen)
	}

	if err := codec.Encode(shards); err != nil {
		return nil, err
	}
	return shards, nil
}

// DecodeStripe reconstructs one stripe of plaintext from present shards.
// shards[i] must be nil for any erased or missing index. stripeIndex is used
// only to annotate errors. trueLen is the true plaintext length of this
// stripe (s.StripeSize for every stripe but the last).
func DecodeStripe(s Shape, stripeIndex uint64, shards [][]byte, trueLen int) ([]byte, error) {
	codec, err := rs.New(s.DataShards, s.ParityShards)
	if err != nil {
		return nil, err
	}

	if err := codec.Reconstruct(shards); err != nil {
		var insufficient *rs.InsufficientShardsError
		if errors.As(err, &insufficient) {
			return nil, &ironerr.InsufficientShards{
				Stripe:  stripeIndex,
				Present: insufficient.Present,
				Needed:  insufficient.Needed,
			}
		}
		return nil, err
	}

	rsPayload := make([]byte, 0, s.rsPayloadLen())
	for i := 0; i < s.DataShards; i++ {
		rsPayload = append(rsPayload, shards[i]...)
	}

	blob := rsPayload[:s.blobLen()]
	padded, err := aont.Decode(blob, s.StripeSize)
	if err != nil {
		if integrityErr, ok := err.(*ironerr.AontIntegrity); ok {
			integrityErr.Stripe = stripeIndex
			return nil, integrityErr
		}
		return nil, err
	}

	if trueLen > len(padded) {
		trueLen = len(padded)
	}
	return padded[:trueLen], nil
}
