package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/loamlabs/branchwatch/internal/format"
	"github.com/loamlabs/branchwatch/internal/model"
)

// TextRenderer formats the report for terminal reading, with colors and
// clickable branch links when stdout is a TTY.
type TextRenderer struct{}

// textRow holds the precomputed cells of one stale branch line.
type textRow struct {
	branch string
	url    string
	status string
	behind string
	author string
	age    string
	ticket string
}

// Render outputs the overview followed by a section per repository.
func (f *TextRenderer) Render(report *model.Report, w io.Writer) error {
	if report.Total == 0 {
		fmt.Fprintln(w, "No stale branches found.")
		return nil
	}

	fmt.Fprintf(w, "Stale branches: %s\n", color.RedString("%d", report.Total))

	if len(report.Authors) > 0 {
		authorWidth := 0
		for _, ac := range report.Authors {
			authorWidth = max(authorWidth, format.DisplayWidth(ac.Author))
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "By author:")
		for _, ac := range report.Authors {
			fmt.Fprintf(w, "  %s  %d\n", format.PadRight(ac.Author, authorWidth), ac.Count)
		}
	}

	for i := range report.Repos {
		rr := &report.Repos[i]
		if !rr.HasStale() {
			continue
		}
		fmt.Fprintln(w)
		renderRepo(rr, w)
	}

	return nil
}

func renderRepo(rr *model.RepoReport, w io.Writer) {
	heading := fmt.Sprintf("%s (%s)", rr.Repo.Name, rr.MainBranch)
	fmt.Fprintln(w, format.Hyperlink(color.CyanString("%s", heading), rr.Repo.HTMLURL))

	rows := make([]textRow, 0, len(rr.Stale))
	for _, sb := range rr.Stale {
		row := textRow{
			branch: sb.Name,
			status: string(sb.Status),
			behind: fmt.Sprintf("behind %d", sb.BehindBy),
			author: sb.Author,
			age:    format.AgeSince(sb.LastCommit),
		}
		if rr.Repo.HTMLURL != "" {
			row.url = rr.Repo.HTMLURL + "/tree/" + sb.Name
		}
		if sb.Ticket != "" {
			row.ticket = sb.Ticket
			if sb.TicketStatus != "" {
				row.ticket = fmt.Sprintf("%s: %s", sb.Ticket, sb.TicketStatus)
			}
		}
		rows = append(rows, row)
	}

	var branchWidth, statusWidth, behindWidth, authorWidth, ageWidth int
	for _, row := range rows {
		branchWidth = max(branchWidth, format.DisplayWidth(row.branch))
		statusWidth = max(statusWidth, format.DisplayWidth(row.status))
		behindWidth = max(behindWidth, format.DisplayWidth(row.behind))
		authorWidth = max(authorWidth, format.DisplayWidth(row.author))
		ageWidth = max(ageWidth, format.DisplayWidth(row.age))
	}

	for _, row := range rows {
		cols := []string{
			format.PadRight(format.Hyperlink(row.branch, row.url), branchWidth),
			format.PadRight(row.status, statusWidth),
			format.PadRight(color.YellowString("%s", row.behind), behindWidth),
			format.PadRight(color.CyanString("%s", row.author), authorWidth),
			format.PadRight(row.age, ageWidth),
		}
		if row.ticket != "" {
			cols = append(cols, color.GreenString("%s", row.ticket))
		}
		line := strings.TrimRight(strings.Join(cols, "  "), " ")
		fmt.Fprintf(w, "  %s\n", line)
	}
}
