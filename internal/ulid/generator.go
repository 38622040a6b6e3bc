package ulid

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator returns a new unique id for outputs and executions.
type Generator func() string

var (
	entropy     io.Reader
	entropyOnce sync.Once

	mu        sync.RWMutex
	generator Generator = DefaultGenerator
)

func defaultEntropy() io.Reader {
	entropyOnce.Do(func() {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		entropy = &ulid.LockedMonotonicReader{
			MonotonicReader: ulid.Monotonic(rng, 0),
		}
	})
	return entropy
}

// ValidID reports whether id is a canonical ULID string.
func ValidID(id string) bool {
	parsed, err := ulid.ParseStrict(id)
	return err == nil && parsed.String() == id
}

func GenerateID() string {
	mu.RLock()
	g := generator
	mu.RUnlock()
	return g()
}

func DefaultGenerator() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), defaultEntropy()).String()
}

func ResetGenerator() {
	setGenerator(DefaultGenerator)
}

// MockGenerator makes GenerateID always return value.
func MockGenerator(value string) {
	setGenerator(func() string { return value })
}

// MockSequence makes GenerateID return prefix followed by an increasing counter.
func MockSequence(prefix string) {
	var n atomic.Int64
	setGenerator(func() string {
		return fmt.Sprintf("%s%d", prefix, n.Add(1))
	})
}

func setGenerator(g Generator) {
	mu.Lock()
	defer mu.Unlock()
	generator = g
}
