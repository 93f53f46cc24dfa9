// Package id generates the short identifiers rig stamps on launches.
package id

import (
	"crypto/rand"
	"encoding/hex"
)

// Generate returns a random 8-character hex ID. Launch IDs only need to
// tell launches within one rig session apart, so collisions across
// sessions are acceptable.
func Generate() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
