package gf256_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ironclad-io/ironclad/internal/gf256"
)

func TestMulInvRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for a := 1; a < 256; a++ {
		inv := gf256.Inv(byte(a))
		assert.Equal(byte(1), gf256.Mul(byte(a), inv), "a=%d", a)
	}
}

func TestMulByZero(t *testing.T) {
	assert := assert.New(t)

	for a := 0; a < 256; a++ {
		assert.Equal(byte(0), gf256.Mul(byte(a), 0))
	}
}

func TestDivRecoversMultiplicand(t *testing.T) {
	assert := assert.New(t)

	for a := 1; a < 256; a++ {
		for b := 1; b < 256; b++ {
			product := gf256.Mul(byte(a), byte(b))
			assert.Equal(byte(a), gf256.Div(product, byte(b)), "a=%d b=%d", a, b)
		}
	}
}

func TestAddIsXorAndSelfInverse(t *testing.T) {
	assert := assert.New(t)

	a, b := byte(0x53), byte(0xCA)
	sum := gf256.Add(a, b)
	assert.Equal(a, gf256.Add(sum, b))
}

func TestInvOfZeroPanics(t *testing.T) {
	assert.Panics(t, func() { gf256.Inv(0) })
}
