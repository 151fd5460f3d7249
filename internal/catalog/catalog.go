package catalog

// Category represents a scenario content strand.
type Category string

const (
	CategoryGreetings Category = "greetings"
	CategoryFamily    Category = "family"
	CategoryFood      Category = "food"
	CategorySchool    Category = "school"
	CategoryPlay      Category = "play"
	CategoryFeelings  Category = "feelings"
	CategoryCulture   Category = "culture"
)

// DefaultCategory is the fallback strand used when age filtering yields
// no candidates. Greetings works for every bracket.
const DefaultCategory = CategoryGreetings

// AllCategories returns all categories in display order.
func AllCategories() []Category {
	return []Category{
		CategoryGreetings,
		CategoryFamily,
		CategoryFood,
		CategorySchool,
		CategoryPlay,
		CategoryFeelings,
		CategoryCulture,
	}
}

// DisplayName returns a human-readable label for a category.
func (c Category) DisplayName() string {
	switch c {
	case CategoryGreetings:
		return "Greetings"
	case CategoryFamily:
		return "Family"
	case CategoryFood:
		return "Food & Drink"
	case CategorySchool:
		return "School"
	case CategoryPlay:
		return "Play & Games"
	case CategoryFeelings:
		return "Feelings"
	case CategoryCulture:
		return "Culture"
	default:
		return string(c)
	}
}

// AgeBracket is a named school-class partition of the 4-10+ age range.
type AgeBracket string

const (
	BracketJuniorInfants AgeBracket = "junior-infants"
	BracketSeniorInfants AgeBracket = "senior-infants"
	BracketFirstClass    AgeBracket = "first-class"
	BracketSecondClass   AgeBracket = "second-class"
	BracketThirdClass    AgeBracket = "third-class"
	BracketFourthClass   AgeBracket = "fourth-class"
)

// AllBrackets returns all brackets ordered youngest to oldest.
func AllBrackets() []AgeBracket {
	return []AgeBracket{
		BracketJuniorInfants,
		BracketSeniorInfants,
		BracketFirstClass,
		BracketSecondClass,
		BracketThirdClass,
		BracketFourthClass,
	}
}

// BracketForAge resolves an age to its bracket. Out-of-range ages clamp
// to the nearest bracket rather than failing.
func BracketForAge(age int) AgeBracket {
	switch {
	case age <= 5:
		return BracketJuniorInfants
	case age == 6:
		return BracketSeniorInfants
	case age == 7:
		return BracketFirstClass
	case age == 8:
		return BracketSecondClass
	case age == 9:
		return BracketThirdClass
	default:
		return BracketFourthClass
	}
}

// BracketIndex returns the position of a bracket in youngest-to-oldest
// order, or -1 if unknown.
func BracketIndex(b AgeBracket) int {
	for i, candidate := range AllBrackets() {
		if candidate == b {
			return i
		}
	}
	return -1
}

// DifficultyRange bounds the scenario difficulty allowed for a bracket.
type DifficultyRange struct {
	Min int
	Max int
}

// Contains reports whether difficulty d falls within the range.
func (r DifficultyRange) Contains(d int) bool {
	return d >= r.Min && d <= r.Max
}

// bracketRanges is the fixed per-bracket difficulty table.
var bracketRanges = map[AgeBracket]DifficultyRange{
	BracketJuniorInfants: {Min: 1, Max: 2},
	BracketSeniorInfants: {Min: 1, Max: 2},
	BracketFirstClass:    {Min: 2, Max: 3},
	BracketSecondClass:   {Min: 2, Max: 3},
	BracketThirdClass:    {Min: 3, Max: 4},
	BracketFourthClass:   {Min: 3, Max: 5},
}

// RangeForBracket returns the allowed difficulty range for a bracket.
// Unknown brackets get the full 1-5 range.
func RangeForBracket(b AgeBracket) DifficultyRange {
	if r, ok := bracketRanges[b]; ok {
		return r
	}
	return DifficultyRange{Min: 1, Max: 5}
}

// ContentItem is one scenario entry in the catalog: a learning situation
// tagged with difficulty and age-appropriateness.
type ContentItem struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	NameZh      string       `json:"name_zh"`
	Description string       `json:"description"`
	Category    Category     `json:"category"`
	Difficulty  int          `json:"difficulty"` // 1 (easiest) to 5 (hardest)
	Brackets    []AgeBracket `json:"brackets"`
	Keywords    []string     `json:"keywords,omitempty"`
}

// AppropriateFor reports whether the item's age-appropriateness set
// contains the given bracket.
func (c ContentItem) AppropriateFor(b AgeBracket) bool {
	for _, candidate := range c.Brackets {
		if candidate == b {
			return true
		}
	}
	return false
}

// Catalog is a read-only, ordered collection of scenarios.
type Catalog struct {
	items []ContentItem
	byID  map[string]ContentItem
}

// New creates a catalog from the given items, preserving order.
func New(items []ContentItem) *Catalog {
	byID := make(map[string]ContentItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return &Catalog{items: items, byID: byID}
}

// Items returns all scenarios in catalog order.
func (c *Catalog) Items() []ContentItem {
	out := make([]ContentItem, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the scenario with the given id.
func (c *Catalog) Get(id string) (ContentItem, bool) {
	item, ok := c.byID[id]
	return item, ok
}

// ByCategory returns all scenarios in the given category, in catalog order.
func (c *Catalog) ByCategory(cat Category) []ContentItem {
	var out []ContentItem
	for _, item := range c.items {
		if item.Category == cat {
			out = append(out, item)
		}
	}
	return out
}

// Len returns the number of scenarios in the catalog.
func (c *Catalog) Len() int {
	return len(c.items)
}
