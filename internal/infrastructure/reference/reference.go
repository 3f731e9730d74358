package reference

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const (
	// DefaultPrefix identifies references generated by this service.
	DefaultPrefix = "PAY"

	randomLength = 8
	base36Chars  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Generator produces globally unique, human-traceable transaction references.
type Generator interface {
	// Generate returns a new reference. The only failure mode is the source
	// of randomness, which callers must treat as fatal: a predictable
	// reference is a double-spend risk.
	Generate() (string, error)
}

type generator struct {
	prefix  string
	counter atomic.Uint64
}

// NewGenerator creates a reference generator with the given prefix. An empty
// prefix falls back to DefaultPrefix.
func NewGenerator(prefix string) Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &generator{prefix: strings.ToUpper(prefix)}
}

// Generate builds PREFIX-<base36 nanosecond timestamp><counter>-<8 random
// base36 chars>, uppercase. The in-process counter guarantees two calls in
// the same process never collide even within one clock tick; the random
// component makes cross-process collisions negligible.
func (g *generator) Generate() (string, error) {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixNano(), 36))
	seq := g.counter.Add(1) % 36

	random := make([]byte, randomLength)
	max := big.NewInt(int64(len(base36Chars)))
	for i := range random {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("reference randomness unavailable: %w", err)
		}
		random[i] = base36Chars[n.Int64()]
	}

	return fmt.Sprintf("%s-%s%c-%s", g.prefix, ts, base36Chars[seq], random), nil
}
