// Package id issues ULIDs for journaled runs and trades. ULIDs sort by
// creation time, which keeps SQLite indexes and listings in run order.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out monotonic ULIDs. It is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewGenerator builds a generator reading randomness from entropy and
// timestamps from now. Fixed inputs give a reproducible sequence.
func NewGenerator(entropy io.Reader, now func() time.Time) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(entropy, 0),
		now:     now,
	}
}

// New returns the next ULID string.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now().UTC()), g.entropy)
	if err != nil {
		// Only possible if the clock runs backwards past the monotonic window
		// or the entropy source fails.
		panic(err)
	}
	return id.String()
}

var std = func() *Generator {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewGenerator(rand.New(rand.NewSource(seed)), time.Now)
}()

// New returns a ULID from the process-wide generator.
func New() string {
	return std.New()
}

// Time extracts the timestamp encoded in a ULID string.
func Time(s string) (time.Time, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()).UTC(), nil
}
