package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jobletter/jobletter/internal/model"
)

var (
	plainHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	plainScoreStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("114"))

	plainMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// RenderShortlist formats a shortlist as static styled text for
// non-interactive output.
func RenderShortlist(subscriberID string, level model.MatchLevel, jobs []model.ScoredJob) string {
	var b strings.Builder

	b.WriteString(plainHeaderStyle.Render(fmt.Sprintf("Shortlist for %s — %d jobs (%s match)", subscriberID, len(jobs), level)))
	b.WriteString("\n\n")

	if len(jobs) == 0 {
		b.WriteString("  (empty shortlist)\n")
		return b.String()
	}

	for i, j := range jobs {
		posted := "n/a"
		if j.PostedAt != nil {
			posted = j.PostedAt.Format("2006-01-02")
		}
		b.WriteString(fmt.Sprintf("%3d. %s %s\n",
			i+1,
			plainScoreStyle.Render(fmt.Sprintf("[%d]", j.Score)),
			j.Title,
		))
		b.WriteString(plainMetaStyle.Render(fmt.Sprintf("     %s · %s · %s · %s", j.Company, j.Location, j.Source, posted)))
		b.WriteString("\n")
		if j.URL != "" {
			b.WriteString(plainMetaStyle.Render("     " + j.URL))
			b.WriteString("\n")
		}
	}
	return b.String()
}
