package ident

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var fallbackSeq uint64

// New returns a short opaque id: the prefix followed by ten hex
// characters from a secure random source. When the secure source is
// unavailable it falls back to a time-based value; id generation must
// never abort the mutation that asked for it.
func New(prefix string) string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		seq := atomic.AddUint64(&fallbackSeq, 1)
		return prefix + strconv.FormatInt(time.Now().UnixNano(), 36) + strconv.FormatUint(seq, 36)
	}
	return prefix + hex.EncodeToString(buf)
}

// NewUUID returns a random UUID string for records that need a globally
// unique identity, such as activity log entries.
func NewUUID() string {
	return uuid.NewString()
}
