// Package aont implements the all-or-nothing transform that wraps an AEAD:
// a fresh random key encrypts one stripe, and the key is then entangled with
// a hash of the ciphertext so that any incomplete view of the blob leaves
// the key computationally unrecoverable.
//
// The structure mirrors the teacher's aes.AESWriter/AESReader pair in
// aes/aes.go (buffer, encrypt, emit), generalized from a streaming chunk
// cipher to a single-shot per-stripe blob, and from a user-supplied key to
// an ephemeral one destroyed by entanglement.
package aont

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/ironclad-io/ironclad/internal/ironerr"
)

const (
	// KeySize is the length of the ephemeral per-stripe AES-256 key, and
	// also the length K of the entangled-key field in the blob.
	KeySize = 32
	// TagSize is the GCM authentication tag length, the T in the blob
	// layout C||T||K_e||nonce.
	TagSize = 16
	// NonceSize is the GCM nonce length.
	NonceSize = 12
)

// BlobLen returns the length of an AONT blob encoding a stripe of
// plaintextLen bytes: S+T+K+nonce.
func BlobLen(plaintextLen int) int {
	return plaintextLen + TagSize + KeySize + NonceSize
}

// Encode runs the all-or-nothing transform on one stripe of plaintext.
// It draws a fresh random key and nonce, AEAD-encrypts the plaintext,
// entangles the key with a hash of the ciphertext+tag, and emits
// C || T || (K_r XOR H(C||T)) || nonce.
func Encode(plaintext []byte) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("aont: generate key: %w", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("aont: generate nonce: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	// Seal appends the tag after the ciphertext, which is exactly the
	// C||T layout the blob requires.
	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	hash := blake3.Sum256(sealed)
	entangled := make([]byte, KeySize)
	for i := range entangled {
		entangled[i] = key[i] ^ hash[i]
	}

	blob := make([]byte, 0, len(sealed)+KeySize+NonceSize)
	blob = append(blob, sealed...)
	blob = append(blob, entangled...)
	blob = append(blob, nonce...)
	return blob, nil
}

// Decode reverses Encode. plaintextLen must be the original stripe length S
// (recorded out-of-band, by the stripe pipeline's padding convention).
func Decode(blob []byte, plaintextLen int) ([]byte, error) {
	want := BlobLen(plaintextLen)
	if len(blob) != want {
		return nil, fmt.Errorf("aont: blob is %d bytes, expected %d", len(blob), want)
	}

	sealedLen := plaintextLen + TagSize
	sealed := blob[:sealedLen]
	entangled := blob[sealedLen : sealedLen+KeySize]
	nonce := blob[sealedLen+KeySize : sealedLen+KeySize+NonceSize]

	hash := blake3.Sum256(sealed)
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = entangled[i] ^ hash[i]
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, &ironerr.AontIntegrity{Cause: err}
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aont: create cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("aont: create gcm: %w", err)
	}
	if gcm.Overhead() != TagSize {
		return nil, fmt.Errorf("aont: unexpected AEAD overhead %d, want %d", gcm.Overhead(), TagSize)
	}
	return gcm, nil
}
