package session

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/paarijaat/stickyapp/internal/domain"
)

// NewID returns a fresh session id: the kind prefix followed by 128 random
// bits in lowercase hex. Every bit is random, unlike a v4 UUID.
func NewID(kind domain.Kind) domain.SessionID {
	var b [16]byte
	// crypto/rand.Read never returns an error and always fills b.
	_, _ = rand.Read(b[:])
	return domain.SessionID(kind.Prefix() + hex.EncodeToString(b[:]))
}
