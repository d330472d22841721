// Package rs implements the systematic Cauchy Reed-Solomon erasure code used
// to split one stripe's all-or-nothing blob into N data shards and M parity
// shards, and to reconstruct the data shards from any N surviving shards.
//
// The generator matrix is built the way klauspost/reedsolomon's
// buildMatrixCauchy does (the top N rows are the identity, the bottom M rows
// are 1/(x_i XOR y_j) over GF(2^8)), but inversion of the caller-selected
// N present rows is done with our own gf256 matrix solver so the "prefer
// data shards, then lowest index" tie-break from the shard selection is
// fully under this package's control rather than a library's internal cache.
package rs

import (
	"fmt"

	"github.com/ironclad-io/ironclad/internal/gf256"
)

// ErrInvalidShardCount is returned by New when N or M is out of range.
var ErrInvalidShardCount = fmt.Errorf("rs: data and parity shard counts must satisfy 1<=N, 1<=M, N+M<=255")

// ErrShardSizeMismatch is returned by Encode/Reconstruct when shards are not
// all the same length.
var ErrShardSizeMismatch = fmt.Errorf("rs: all shards must be the same length")

// InsufficientShardsError reports that fewer than N shards were present.
type InsufficientShardsError struct {
	Present int
	Needed  int
}

func (e *InsufficientShardsError) Error() string {
	return fmt.Sprintf("rs: %d shards present, need at least %d", e.Present, e.Needed)
}

// Codec encodes and reconstructs shards for a fixed (N, M) shape.
type Codec struct {
	DataShards   int
	ParityShards int

	// generator is the (N+M) x N systematic matrix: rows 0..N-1 are the
	// identity, rows N..N+M-1 are the Cauchy parity rows.
	generator gf256.Matrix
}

// New builds a Codec for N data shards and M parity shards.
func New(dataShards, parityShards int) (*Codec, error) {
	if dataShards < 1 || parityShards < 1 || dataShards+parityShards > 255 {
		return nil, ErrInvalidShardCount
	}

	total := dataShards + parityShards
	gen := gf256.NewMatrix(total, dataShards)
	for r := 0; r < total; r++ {
		if r < dataShards {
			gen[r][r] = 1
			continue
		}
		// Parity row r uses point x_i = r (range N..N+M-1), data column c
		// uses point y_j = c (range 0..N-1). The ranges are disjoint so
		// x_i XOR y_j is never zero and the inverse always exists.
		for c := 0; c < dataShards; c++ {
			gen[r][c] = gf256.Inv(gf256.Add(byte(r), byte(c)))
		}
	}

	return &Codec{
		DataShards:   dataShards,
		ParityShards: parityShards,
		generator:    gen,
	}, nil
}

// TotalShards returns N+M.
func (c *Codec) TotalShards() int {
	return c.DataShards + c.ParityShards
}

// Encode fills the parity shards (indices N..N+M-1) of shards from the data
// shards (indices 0..N-1). All N+M slices must already be allocated to the
// same length; the data shard contents are left untouched (systematic code).
func (c *Codec) Encode(shards [][]byte) error {
	if len(shards) != c.TotalShards() {
		return fmt.Errorf("rs: expected %d shards, got %d", c.TotalShards(), len(shards))
	}
	shardLen := len(shards[0])
	for _, s := range shards {
		if len(s) != shardLen {
			return ErrShardSizeMismatch
		}
	}

	for p := 0; p < c.ParityShards; p++ {
		row := c.generator[c.DataShards+p]
		out := shards[c.DataShards+p]
		for b := 0; b < shardLen; b++ {
			var sum byte
			for d := 0; d < c.DataShards; d++ {
				sum = gf256.Add(sum, gf256.Mul(row[d], shards[d][b]))
			}
			out[b] = sum
		}
	}
	return nil
}

// Reconstruct fills in any missing data shards (shards[i] == nil for
// i < DataShards) given that at least DataShards entries across the whole
// slice are non-nil. Parity shards are not regenerated; callers that only
// need the plaintext back (the common read path) can ignore them. Use
// RegenerateParity separately if parity shards must be repaired too.
func (c *Codec) Reconstruct(shards [][]byte) error {
	if len(shards) != c.TotalShards() {
		return fmt.Errorf("rs: expected %d shards, got %d", c.TotalShards(), len(shards))
	}

	present := c.presentIndices(shards)
	if len(present) < c.DataShards {
		return &InsufficientShardsError{Present: len(present), Needed: c.DataShards}
	}

	// Nothing to do if every data shard already survived.
	missingData := false
	for i := 0; i < c.DataShards; i++ {
		if shards[i] == nil {
			missingData = true
			break
		}
	}
	if !missingData {
		return nil
	}

	chosen := present[:c.DataShards]
	sub := gf256.NewMatrix(c.DataShards, c.DataShards)
	for row, idx := range chosen {
		copy(sub[row], c.generator[idx])
	}

	inv, err := sub.Invert()
	if err != nil {
		// Unreachable for a Cauchy-derived generator matrix: every square
		// submatrix is nonsingular by construction.
		return fmt.Errorf("rs: internal error building inverse: %w", err)
	}

	shardLen := len(shards[chosen[0]])
	recovered := make([][]byte, c.DataShards)
	for i := range recovered {
		recovered[i] = make([]byte, shardLen)
	}

	for b := 0; b < shardLen; b++ {
		for out := 0; out < c.DataShards; out++ {
			var sum byte
			for in, idx := range chosen {
				sum = gf256.Add(sum, gf256.Mul(inv[out][in], shards[idx][b]))
			}
			recovered[out][b] = sum
		}
	}

	for i := 0; i < c.DataShards; i++ {
		if shards[i] == nil {
			shards[i] = recovered[i]
		}
	}
	return nil
}

// RegenerateParity recomputes every parity shard from a complete set of data
// shards. Used by repair tooling that wants every shard file rewritten after
// a reconstruction, not just the data shards needed to recover plaintext.
func (c *Codec) RegenerateParity(dataShards [][]byte) ([][]byte, error) {
	if len(dataShards) != c.DataShards {
		return nil, fmt.Errorf("rs: expected %d data shards, got %d", c.DataShards, len(dataShards))
	}
	shardLen := len(dataShards[0])
	for _, s := range dataShards {
		if len(s) != shardLen {
			return nil, ErrShardSizeMismatch
		}
	}

	parity := make([][]byte, c.ParityShards)
	for p := 0; p < c.ParityShards; p++ {
		row := c.generator[c.DataShards+p]
		out := make([]byte, shardLen)
		for b := 0; b < shardLen; b++ {
			var sum byte
			for d := 0; d < c.DataShards; d++ {
				sum = gf256.Add(sum, gf256.Mul(row[d], dataShards[d][b]))
			}
			out[b] = sum
		}
		parity[p] = out
	}
	return parity, nil
}

// presentIndices returns the indices of non-nil shards, preferring data
// shards over parity shards and lower indices within each group: selecting
// those rows first makes the submatrix closer to identity, which is cheaper
// to invert. This ordering is a performance preference only, per spec; any
// valid selection of N present rows recovers the same data.
func (c *Codec) presentIndices(shards [][]byte) []int {
	var data, parity []int
	for i, s := range shards {
		if s == nil {
			continue
		}
		if i < c.DataShards {
			data = append(data, i)
		} else {
			parity = append(parity, i)
		}
	}
	return append(data, parity...)
}
