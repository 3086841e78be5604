package gofactory

import (
	"fmt"
	"math"
	"net"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower   = "abcdefghijklmnopqrstuvwxyz"

	// Time values fall in [2000-01-01, 2030-01-01) UTC unless constrained.
	minUnix = 946684800
	maxUnix = 1893456000
)

var emailDomains = []string{"example.com", "example.org", "example.net"}

// lenBounds resolves string/bytes length bounds. A lone lower bound keeps the
// default spread above it; a lone upper bound pulls the lower one down if needed.
func lenBounds(c Constraints, defMin, defMax int) (int, int) {
	min, max := defMin, defMax
	if c.MinLen != nil {
		min = *c.MinLen
		if c.MaxLen == nil && max < min {
			max = min + (defMax - defMin)
		}
	}
	if c.MaxLen != nil {
		max = *c.MaxLen
		if c.MinLen == nil && min > max {
			min = max
		}
	}
	return min, max
}

func numBounds(c Constraints, defMin, defMax float64) (float64, float64) {
	min, max := defMin, defMax
	if c.Min != nil {
		min = *c.Min
		if c.Max == nil && max < min {
			max = min + (defMax - defMin)
		}
	}
	if c.Max != nil {
		max = *c.Max
		if c.Min == nil && min > max {
			min = max - (defMax - defMin)
		}
	}
	return min, max
}

func toInt64(f float64) int64 {
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func intBounds(c Constraints, defMin, defMax float64) (int64, int64, error) {
	lo, hi := numBounds(c, defMin, defMax)
	min, max := toInt64(math.Ceil(lo)), toInt64(math.Floor(hi))
	if min > max {
		return 0, 0, fmt.Errorf("no integer in [%v, %v]", lo, hi)
	}
	return min, max, nil
}

func randomText(r *Random, alphabet string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(b)
}

func genString(r *Random, c Constraints) (any, error) {
	min, max := lenBounds(c, 8, 16)
	return randomText(r, letters, r.IntBetween(min, max)), nil
}

func genInt(r *Random, c Constraints) (any, error) {
	min, max, err := intBounds(c, 0, 10000)
	if err != nil {
		return nil, err
	}
	return int(r.Int64Between(min, max)), nil
}

func genInt64(r *Random, c Constraints) (any, error) {
	min, max, err := intBounds(c, 0, 1<<40)
	if err != nil {
		return nil, err
	}
	return r.Int64Between(min, max), nil
}

func genUint(r *Random, c Constraints) (any, error) {
	min, max, err := intBounds(c, 0, 10000)
	if err != nil {
		return nil, err
	}
	if max < 0 {
		return nil, fmt.Errorf("no unsigned integer below %d", max)
	}
	if min < 0 {
		min = 0
	}
	return uint(r.Int64Between(min, max)), nil
}

func genFloat(r *Random, c Constraints) (any, error) {
	min, max := numBounds(c, 0, 1000)
	return r.FloatBetween(min, max), nil
}

func genDecimal(r *Random, c Constraints) (any, error) {
	min, max := numBounds(c, 0, 1000)
	f := r.FloatBetween(min, max)
	return json.Number(strconv.FormatFloat(f, 'f', 2, 64)), nil
}

func genBool(r *Random, _ Constraints) (any, error) { return r.Bool(), nil }

func genBytes(r *Random, c Constraints) (any, error) {
	min, max := lenBounds(c, 8, 16)
	b := make([]byte, r.IntBetween(min, max))
	_, _ = r.Read(b)
	return b, nil
}

func genTime(r *Random, c Constraints) (any, error) {
	min, max, err := intBounds(c, minUnix, maxUnix-1)
	if err != nil {
		return nil, err
	}
	return time.Unix(r.Int64Between(min, max), 0).UTC(), nil
}

func genDate(r *Random, c Constraints) (any, error) {
	v, err := genTime(r, c)
	if err != nil {
		return nil, err
	}
	return v.(time.Time).Truncate(24 * time.Hour), nil
}

func genDuration(r *Random, c Constraints) (any, error) {
	min, max, err := intBounds(c, 0, 72*3600)
	if err != nil {
		return nil, err
	}
	return time.Duration(r.Int64Between(min, max)) * time.Second, nil
}

func genUUID(r *Random, _ Constraints) (any, error) {
	return uuid.NewRandomFromReader(r)
}

func genEmail(r *Random, _ Constraints) (any, error) {
	user := randomText(r, lower, r.IntBetween(6, 10))
	return user + "@" + emailDomains[r.Intn(len(emailDomains))], nil
}

func genURL(r *Random, _ Constraints) (any, error) {
	host := randomText(r, lower, r.IntBetween(4, 8))
	path := randomText(r, lower, r.IntBetween(4, 8))
	return "https://" + host + ".example.com/" + path, nil
}

func genIP(r *Random, _ Constraints) (any, error) {
	var b [3]byte
	_, _ = r.Read(b[:])
	return net.IPv4(10, b[0], b[1], b[2]), nil
}
