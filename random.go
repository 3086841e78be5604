package gofactory

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"
)

// Random is the single source of randomness of a factory. It is safe for concurrent
// use; all generators, optional/union choices and collection sizes draw from it, so a
// seeded Random makes builds reproducible.
type Random struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandom returns a Random seeded with seed.
func NewRandom(seed int64) *Random {
	return &Random{r: rand.New(rand.NewSource(seed))}
}

// NewEntropyRandom returns a Random seeded from the operating system.
func NewEntropyRandom() *Random {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return NewRandom(time.Now().UnixNano())
	}
	return NewRandom(int64(binary.LittleEndian.Uint64(b[:])))
}

// Seed resets the stream.
func (r *Random) Seed(seed int64) {
	r.mu.Lock()
	r.r.Seed(seed)
	r.mu.Unlock()
}

func (r *Random) Int63() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Int63()
}

func (r *Random) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Uint64()
}

// Intn returns a value in [0, n). It panics if n <= 0.
func (r *Random) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Intn(n)
}

// Float64 returns a value in [0.0, 1.0).
func (r *Random) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Float64()
}

func (r *Random) Bool() bool { return r.Int63()&1 == 1 }

// IntBetween returns a value in [min, max]; the bounds are swapped if reversed.
func (r *Random) IntBetween(min, max int) int {
	return int(r.Int64Between(int64(min), int64(max)))
}

// Int64Between returns a value in [min, max]. The full int64 range is supported.
func (r *Random) Int64Between(min, max int64) int64 {
	if max < min {
		min, max = max, min
	}
	span := uint64(max-min) + 1
	u := r.Uint64()
	if span == 0 {
		return int64(u)
	}
	return int64(uint64(min) + u%span)
}

// FloatBetween returns a value in [min, max).
func (r *Random) FloatBetween(min, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	return min + r.Float64()*(max-min)
}

// Read fills p with random bytes. It always returns len(p), nil, which makes Random
// usable as the entropy reader of uuid.NewRandomFromReader.
func (r *Random) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Read(p)
}
