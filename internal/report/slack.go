package report

import (
	"fmt"
	"strings"

	"github.com/loamlabs/branchwatch/internal/model"
)

// Overview builds the short summary message: the total plus the per-author
// tally. This is the first of the two notification messages.
func Overview(report *model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total stale branches: %d\n", report.Total)

	if len(report.Authors) > 0 {
		b.WriteString("\nCount by author:\n")
		for _, ac := range report.Authors {
			fmt.Fprintf(&b, "%s: %d\n", ac.Author, ac.Count)
		}
	}

	return b.String()
}

// Details builds the full listing, one block per stale branch grouped by
// repository. Repositories without stale branches are left out.
func Details(report *model.Report) string {
	var b strings.Builder
	b.WriteString("Summary:\n")

	for _, rr := range report.Repos {
		if !rr.HasStale() {
			continue
		}
		fmt.Fprintf(&b, "\nRepo: %s, develop branch name: %s\n", rr.Repo.Name, rr.MainBranch)
		for _, sb := range rr.Stale {
			fmt.Fprintf(&b, "\nBranch: %s\nComparison status: %s\nAuthor: %s\n", sb.Name, sb.Status, sb.Author)
			if sb.TicketStatus != "" {
				fmt.Fprintf(&b, "Ticket status: %s\n", sb.TicketStatus)
			}
		}
	}

	return b.String()
}
