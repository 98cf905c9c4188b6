package savings

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
)

// Tier is the difficulty of a withdrawal challenge.
type Tier string

const (
	Easy   Tier = "easy"
	Medium Tier = "medium"
	Hard   Tier = "hard"
)

var (
	easyLimit   = decimal.NewFromInt(50)
	mediumLimit = decimal.NewFromInt(200)
)

// TierFor maps a withdrawal size to its challenge difficulty:
// up to 50 is easy, up to 200 medium, anything larger hard.
func TierFor(amount decimal.Decimal) Tier {
	abs := amount.Abs()
	switch {
	case abs.LessThanOrEqual(easyLimit):
		return Easy
	case abs.LessThanOrEqual(mediumLimit):
		return Medium
	default:
		return Hard
	}
}

// Catalog holds the challenge texts per tier.
type Catalog map[Tier][]string

// DefaultCatalog returns the built-in challenges.
func DefaultCatalog() Catalog {
	return Catalog{
		Easy: {
			"Mache einen 15-minütigen Spaziergang.",
			"Trinke heute 2 Liter Wasser.",
			"Lies 10 Seiten in einem Buch.",
			"Rufe einen Freund oder Verwandten an.",
			"Räume ein Zimmer in deiner Wohnung auf.",
		},
		Medium: {
			"Koche heute Abend ein gesundes Abendessen.",
			"Mache ein 30-minütiges Workout.",
			"Lerne 5 neue Vokabeln in einer Fremdsprache.",
			"Verzichte heute auf Social Media.",
			"Spende 5€ an eine gemeinnützige Organisation.",
		},
		Hard: {
			"Mache 100 Liegestütze über den Tag verteilt.",
			"Stehe eine Stunde früher auf als sonst.",
			"Verzichte eine Woche lang auf Zucker.",
			"Fange ein neues Hobby an und übe es für eine Stunde.",
			"Melde dich für einen Freiwilligendienst an.",
		},
	}
}

// Rand is the random source challenges are drawn from.
type Rand interface {
	Intn(n int) int
}

// Pick draws one challenge of the given tier uniformly at random.
func (c Catalog) Pick(t Tier, r Rand) (string, error) {
	pool := c[t]
	if len(pool) == 0 {
		return "", fmt.Errorf("%w: no challenges for tier %q", ErrInternal, t)
	}
	return pool[r.Intn(len(pool))], nil
}

// Contains reports whether text is one of the challenges of tier t.
func (c Catalog) Contains(t Tier, text string) bool {
	for _, s := range c[t] {
		if s == text {
			return true
		}
	}
	return false
}

// lockedRand makes a *rand.Rand safe for use by concurrent requests.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a goroutine-safe random source seeded with seed.
func NewRand(seed int64) Rand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
