package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 sum of generated text.
type Digest [32]byte

// Sum hashes data.
func Sum(data []byte) Digest {
	return sha256.Sum256(data)
}

// Combine folds several unit digests into one run digest: H(first || rest...).
// Callers pass the parts in a fixed order.
func Combine(first Digest, rest ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(first[:])
	for _, d := range rest {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short is the first 12 hex digits, enough for logs.
func (d Digest) Short() string { return d.String()[:12] }

func (d Digest) IsZero() bool { return d == Digest{} }
