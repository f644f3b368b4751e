package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"
)

// Hasher signs request bodies with HMAC-SHA256. Hash instances are pooled
// per Hasher so concurrent pushes do not allocate a new HMAC on every call.
type Hasher struct {
	pool sync.Pool
}

// NewHasher returns a Hasher keyed with hashKey.
//
// Example usage:
//
//	h := utils.NewHasher("my-secret-key")
//	req.SetHeader("HashSHA256", h.SumHex(body))
func NewHasher(hashKey string) *Hasher {
	key := []byte(hashKey)
	return &Hasher{
		pool: sync.Pool{
			New: func() any {
				return hmac.New(sha256.New, key)
			},
		},
	}
}

// Sum computes the HMAC-SHA256 digest of data.
//
// Behavior:
//   - Retrieves a hash.Hash instance from the pool
//   - Resets it, writes the data, computes the sum
//   - Resets again and returns it to the pool
func (h *Hasher) Sum(data []byte) []byte {
	mac := h.pool.Get().(hash.Hash)
	mac.Reset()

	mac.Write(data)
	sum := mac.Sum(nil)

	mac.Reset()
	h.pool.Put(mac)

	return sum
}

// SumHex is Sum encoded as a lowercase hex string, the form carried by the
// HashSHA256 header.
func (h *Hasher) SumHex(data []byte) string {
	return hex.EncodeToString(h.Sum(data))
}
