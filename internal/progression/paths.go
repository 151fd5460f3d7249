package progression

import (
	"fmt"

	"github.com/mlin/bilingo/internal/catalog"
)

// Path is one scripted way through a scenario: a complexity tier, the
// ordered turn templates to follow, and the objectives it serves.
type Path struct {
	Complexity string   `json:"complexity"`
	Turns      []string `json:"turns"`
	Objectives []string `json:"objectives"`
}

// Path complexity tiers.
const (
	ComplexitySimple   = "simple"
	ComplexityStandard = "standard"
	ComplexityAdvanced = "advanced"
	ComplexityCultural = "cultural-comparison"
)

// BuildPaths generates the companion conversation paths for a scenario.
// Every bracket gets a simple and a standard path; third class and up
// additionally get an advanced and a cultural-comparison variant. Path
// count and composition are deterministic functions of (item, bracket).
func BuildPaths(item catalog.ContentItem, bracket catalog.AgeBracket) []Path {
	paths := []Path{
		{
			Complexity: ComplexitySimple,
			Turns: []string{
				fmt.Sprintf("Comfort: talk about %q in English, one friendly sentence", item.Name),
				fmt.Sprintf("Demonstrate: say the key phrase for %s slowly in Mandarin", item.NameZh),
				"Practice: invite the learner to echo the phrase",
				"Feedback: celebrate any attempt, however small",
			},
			Objectives: []string{"listen-and-echo", "single-phrase"},
		},
		{
			Complexity: ComplexityStandard,
			Turns: []string{
				fmt.Sprintf("Comfort: set the scene for %q with a question in English", item.Name),
				fmt.Sprintf("Demonstrate: model a two-line exchange for %s in Mandarin", item.NameZh),
				"Practice: let the learner take one side of the exchange",
				"Feedback: encourage and gently recast any slips",
			},
			Objectives: []string{"short-exchange", "turn-taking"},
		},
	}

	if catalog.BracketIndex(bracket) >= catalog.BracketIndex(catalog.BracketThirdClass) {
		paths = append(paths,
			Path{
				Complexity: ComplexityAdvanced,
				Turns: []string{
					fmt.Sprintf("Comfort: recall what the learner already knows about %q", item.Name),
					"Demonstrate: extend the exchange with a follow-up question in Mandarin",
					"Practice: ask the learner to improvise their own reply",
					"Feedback: highlight the strongest phrase they produced",
				},
				Objectives: []string{"improvised-reply", "follow-up-questions"},
			},
			Path{
				Complexity: ComplexityCultural,
				Turns: []string{
					fmt.Sprintf("Comfort: ask how %q works at home in English", item.Name),
					fmt.Sprintf("Demonstrate: describe how %s looks in China, in simple Mandarin", item.NameZh),
					"Practice: compare the two together, mixing languages freely",
					"Feedback: praise curiosity about both cultures",
				},
				Objectives: []string{"cultural-comparison", "code-switching"},
			},
		)
	}

	return paths
}
