// Package sha256 names media objects by content digest.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrEmpty is returned for zero-length input; an empty download is never a valid image.
var ErrEmpty = errors.New("sha256: empty input")

// Hasher implements pipeline.Hasher with an optionally shortened hex digest.
type Hasher struct {
	length int
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithLength truncates digests to n hex characters. Values outside 1..64 keep the full digest.
func WithLength(n int) Option {
	return func(h *Hasher) {
		if n > 0 && n < sha256.Size*2 {
			h.length = n
		}
	}
}

// New returns a SHA-256 hasher.
func New(opts ...Option) *Hasher {
	h := &Hasher{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash returns the hex digest of data.
func (h *Hasher) Hash(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	if h.length > 0 {
		digest = digest[:h.length]
	}
	return digest, nil
}
