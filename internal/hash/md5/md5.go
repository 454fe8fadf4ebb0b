// Package md5 derives cache and blacklist keys from page URLs.
package md5

import (
	"crypto/md5" //nolint:gosec // keys must stay compatible with the VARCHAR(32) schema
	"encoding/hex"
)

// Hasher implements resolver.Hasher using MD5.
type Hasher struct{}

// New returns an MD5 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash hashes the input and returns a lowercase hex digest.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := md5.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:]), nil
}
