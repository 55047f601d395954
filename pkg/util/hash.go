package util

import (
	"crypto/rand"
	"math/big"
)

const (
	hashAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	HashLength   = 6
)

// NewTaskHash returns a short uppercase base36 code used as a task's display handle.
func NewTaskHash() (string, error) {
	max := big.NewInt(int64(len(hashAlphabet)))
	buf := make([]byte, HashLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = hashAlphabet[n.Int64()]
	}
	return string(buf), nil
}
