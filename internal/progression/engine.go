package progression

import (
	"fmt"
	"strings"

	"github.com/mlin/bilingo/internal/catalog"
)

// targetDifficulty is the anchor for the balanced (intermediate)
// selection policy on the 1-5 scale.
const targetDifficulty = 3

// maxAlternatives caps the alternative candidates surfaced for
// transparency.
const maxAlternatives = 3

// Recommendation is the engine's output: one scenario plus the
// supporting material the host needs to drive the next round.
type Recommendation struct {
	Item         catalog.ContentItem
	Bracket      catalog.AgeBracket
	Paths        []Path
	Reasoning    string
	ComfortHint  Level
	Alternatives []catalog.ContentItem

	// Fallback is true when the age filter matched nothing and the
	// default category was used instead. Callers should treat this as
	// a catalog misconfiguration signal, not a normal outcome.
	Fallback bool

	// RepeatsAllowed is true when the learner had completed every
	// candidate and the exclusion was relaxed.
	RepeatsAllowed bool
}

// Engine recommends the next scenario for a learner against a static
// catalog. Selection is deterministic for a given (profile, catalog)
// pair.
type Engine struct {
	catalog *catalog.Catalog
}

// NewEngine creates an engine over the given catalog.
func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// RecommendNext picks exactly one scenario for the learner. It never
// fails: an exhausted history relaxes the repeat exclusion, and an
// empty candidate set falls back to the default category.
func (e *Engine) RecommendNext(p Profile) Recommendation {
	bracket := catalog.BracketForAge(p.Age)
	comfort := ParseLevel(string(p.Comfort))
	diffRange := catalog.RangeForBracket(bracket)

	// Age-appropriate candidates within the bracket's difficulty range,
	// catalog order preserved.
	var candidates []catalog.ContentItem
	for _, item := range e.catalog.Items() {
		if item.AppropriateFor(bracket) && diffRange.Contains(item.Difficulty) {
			candidates = append(candidates, item)
		}
	}

	fallback := false
	if len(candidates) == 0 {
		candidates = e.catalog.ByCategory(catalog.DefaultCategory)
		fallback = true
	}
	if len(candidates) == 0 {
		// Catalog is empty or the default category is missing; nothing
		// sensible to recommend.
		return Recommendation{
			Bracket:     bracket,
			ComfortHint: p.comfortHint(comfort),
			Reasoning:   "catalog has no scenarios for the default category; check catalog configuration",
			Fallback:    true,
		}
	}

	// Exclude already-completed scenarios unless that empties the set.
	completed := p.completedSet()
	var fresh []catalog.ContentItem
	for _, item := range candidates {
		if !completed[item.ID] {
			fresh = append(fresh, item)
		}
	}
	repeats := false
	if len(fresh) == 0 {
		fresh = candidates
		repeats = true
	}

	selected := selectByComfort(fresh, comfort)

	var alternatives []catalog.ContentItem
	for _, item := range fresh {
		if item.ID == selected.ID {
			continue
		}
		alternatives = append(alternatives, item)
		if len(alternatives) == maxAlternatives {
			break
		}
	}

	return Recommendation{
		Item:           selected,
		Bracket:        bracket,
		Paths:          BuildPaths(selected, bracket),
		Reasoning:      buildReasoning(selected, bracket, comfort, fallback, repeats, len(fresh)),
		ComfortHint:    p.comfortHint(comfort),
		Alternatives:   alternatives,
		Fallback:       fallback,
		RepeatsAllowed: repeats,
	}
}

// selectByComfort applies the comfort-level policy. Ties break toward
// catalog order, and toward the lower difficulty for the balanced
// policy.
func selectByComfort(items []catalog.ContentItem, comfort Level) catalog.ContentItem {
	best := items[0]
	switch comfort {
	case LevelBeginner:
		for _, item := range items[1:] {
			if item.Difficulty < best.Difficulty {
				best = item
			}
		}
	case LevelAdvanced:
		for _, item := range items[1:] {
			if item.Difficulty > best.Difficulty {
				best = item
			}
		}
	default:
		for _, item := range items[1:] {
			if closerToTarget(item.Difficulty, best.Difficulty) {
				best = item
			}
		}
	}
	return best
}

// closerToTarget reports whether difficulty a beats the incumbent b
// for the balanced policy: smaller distance to the target wins, and
// equal distance prefers the lower difficulty.
func closerToTarget(a, b int) bool {
	da, db := abs(a-targetDifficulty), abs(b-targetDifficulty)
	if da != db {
		return da < db
	}
	return a < b
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func buildReasoning(item catalog.ContentItem, bracket catalog.AgeBracket, comfort Level, fallback, repeats bool, poolSize int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Selected %q (difficulty %d, %s) for a %s learner in %s",
		item.Name, item.Difficulty, item.Category, comfort, bracket)
	if fallback {
		b.WriteString("; age filter matched no scenarios, fell back to the default category")
	}
	if repeats {
		b.WriteString("; all candidates already completed, repeats allowed")
	}
	fmt.Fprintf(&b, "; %d candidate(s) considered", poolSize)
	return b.String()
}
