// Package accnum generates account numbers: 7 to 9 digits, no leading zero,
// unique among the accounts currently in the index.
package accnum

import (
	"context"
	"math/rand/v2"
	"os"
	"strings"
	"time"
)

// Taken reports whether a candidate is already in use.
type Taken func(ctx context.Context, accNum string) (bool, error)

// Generator draws candidates from its own random source. Build one per
// process and pass it to whoever needs account numbers.
type Generator struct {
	rnd *rand.Rand
}

// NewSource seeds a source from the wall clock and the process id.
func NewSource() rand.Source {
	return rand.NewPCG(uint64(time.Now().UnixNano()), uint64(os.Getpid()))
}

// New returns a Generator drawing from src.
func New(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Candidate returns one random number of 7, 8 or 9 digits whose first digit is 1-9.
func (g *Generator) Candidate() string {
	n := 7 + g.rnd.IntN(3)
	var b strings.Builder
	b.Grow(n)
	b.WriteByte(byte('1' + g.rnd.IntN(9)))
	for i := 1; i < n; i++ {
		b.WriteByte(byte('0' + g.rnd.IntN(10)))
	}
	return b.String()
}

// Next draws candidates until taken reports one as free. There is no retry
// bound; the number space is far larger than any realistic account count.
func (g *Generator) Next(ctx context.Context, taken Taken) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		c := g.Candidate()
		used, err := taken(ctx, c)
		if err != nil {
			return "", err
		}
		if !used {
			return c, nil
		}
	}
}
