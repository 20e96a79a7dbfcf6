package mq

import (
	"crypto/rand"
	"encoding/hex"
)

// NewEventID generates a random ID used by consumers for deduplication.
func NewEventID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
