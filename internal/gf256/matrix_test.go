package gf256_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ironclad-io/ironclad/internal/gf256"
)

func TestInvertIdentity(t *testing.T) {
	assert := assert.New(t)

	id := gf256.Identity(4)
	inv, err := id.Invert()
	assert.NoError(err)
	assert.Equal(id, inv)
}

func TestInvertRoundTrip(t *testing.T) {
	assert := assert.New(t)

	// A Cauchy matrix built from two disjoint point sets is always
	// invertible; build one instead of hand-picking arbitrary field
	// elements that might happen to be singular.
	xs := []byte{0, 1, 2}
	ys := []byte{3, 4, 5}
	m := gf256.NewMatrix(3, 3)
	for i, x := range xs {
		for j, y := range ys {
			m[i][j] = gf256.Inv(gf256.Add(x, y))
		}
	}

	inv, err := m.Invert()
	assert.NoError(err)

	product := m.Multiply(inv)
	assert.Equal(gf256.Identity(3), product)
}

func TestInvertSingularFails(t *testing.T) {
	assert := assert.New(t)

	m := gf256.Matrix{
		{1, 1},
		{1, 1},
	}
	_, err := m.Invert()
	assert.ErrorIs(err, gf256.ErrSingular)
}
