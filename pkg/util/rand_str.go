// Package util holds small helpers shared across the app
package util

import (
	"crypto/rand"
	"encoding/hex"
)

// RandStr returns a random hex string of n bytes of entropy
func RandStr(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}
