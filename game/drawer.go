package game

import (
	"math/rand"
	"time"
)

// letters label the draw sub-ranges for broadcast ("B-7", "O-75").
var letters = [GridSize]string{"B", "I", "N", "G", "O"}

// Drawer produces the drawn-number sequence for a round. It owns its own
// rand source so tests can seed it and lobbies do not contend on the global
// one.
type Drawer struct {
	rng *rand.Rand
}

// NewDrawer returns a Drawer seeded from seed.
func NewDrawer(seed int64) *Drawer {
	return &Drawer{rng: rand.New(rand.NewSource(seed))}
}

// NewDrawerNow returns a Drawer seeded from the wall clock.
func NewDrawerNow() *Drawer {
	return NewDrawer(time.Now().UnixNano())
}

// Draw picks one number uniformly from [1, bound] \ already, by rejection
// sampling. When already covers the whole range it fails with
// ErrDrawExhausted, which is the forced end of a round, not a fault.
func (d *Drawer) Draw(already map[int]bool, bound int) (int, error) {
	if len(already) >= bound {
		return 0, ErrDrawExhausted
	}
	for {
		n := d.rng.Intn(bound) + 1
		if !already[n] {
			return n, nil
		}
	}
}

// Letter maps a drawn number to its column letter for the given bound.
func Letter(n, bound int) string {
	if n < 1 || n > bound {
		return ""
	}
	return letters[(n-1)*GridSize/bound]
}
