package ids

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a lexicographically sortable identifier for request ids and
// other non-secret correlation values.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewSecure returns an identifier minted from crypto/rand entropy. Use it
// for values that act as credentials, such as password-reset tokens, where
// math/rand would be guessable.
func NewSecure() string {
	return ulid.Make().String()
}
