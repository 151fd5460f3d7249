package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mlin/bilingo/internal/milestones"
	"github.com/mlin/bilingo/internal/store"
)

var (
	statsTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8B5CF6"))

	statsLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94A3B8"))

	statsValue = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8FAFC"))
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session and milestone statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		ctx := cmd.Context()
		repo := st.EventRepo()

		events, err := repo.QuerySessionEvents(ctx, store.QueryOpts{Limit: 10})
		if err != nil {
			return fmt.Errorf("query session events: %w", err)
		}
		msCounts, msTotal, err := repo.MilestoneCounts(ctx)
		if err != nil {
			return fmt.Errorf("query milestone counts: %w", err)
		}
		recCounts, err := repo.RecommendationCounts(ctx)
		if err != nil {
			return fmt.Errorf("query recommendation counts: %w", err)
		}

		var b strings.Builder

		b.WriteString(statsTitle.Render("Recent sessions"))
		b.WriteString("\n")
		if len(events) == 0 {
			b.WriteString(statsLabel.Render("  (none yet)"))
			b.WriteString("\n")
		}
		for _, ev := range events {
			fmt.Fprintf(&b, "  %s  %s %s  %s\n",
				ev.Timestamp.Format("2006-01-02 15:04"),
				statsValue.Render(ev.LearnerID),
				statsLabel.Render(ev.Action),
				statsLabel.Render(fmt.Sprintf("%d turns, %d milestones", ev.TurnCount, ev.MilestoneCount)))
		}

		b.WriteString("\n")
		b.WriteString(statsTitle.Render(fmt.Sprintf("Milestones (%d total)", msTotal)))
		b.WriteString("\n")
		for _, id := range sortedKeys(msCounts) {
			fmt.Fprintf(&b, "  %s %s\n",
				statsValue.Render(fmt.Sprintf("%3d", msCounts[id])),
				statsLabel.Render(milestones.DisplayName(id)))
		}

		b.WriteString("\n")
		b.WriteString(statsTitle.Render("Recommendations by scenario"))
		b.WriteString("\n")
		for _, id := range sortedKeys(recCounts) {
			fmt.Fprintf(&b, "  %s %s\n",
				statsValue.Render(fmt.Sprintf("%3d", recCounts[id])),
				statsLabel.Render(id))
		}

		fmt.Println(b.String())
		return nil
	},
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
