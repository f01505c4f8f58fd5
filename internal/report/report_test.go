package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/loamlabs/branchwatch/internal/model"
)

func testReport() *model.Report {
	return &model.Report{
		GeneratedAt: time.Date(2026, 8, 25, 6, 0, 0, 0, time.UTC),
		Total:       3,
		Authors: []model.AuthorCount{
			{Author: "alice", Count: 2},
			{Author: "unknown", Count: 1},
		},
		Repos: []model.RepoReport{
			{
				Repo:       model.Repo{Name: "svc-a", FullName: "loamlabs/svc-a", HTMLURL: "https://github.com/loamlabs/svc-a"},
				MainBranch: "develop",
				Stale: []model.StaleBranch{
					{
						Name:         "feature/ABC-1-x",
						Status:       model.CompareDiverged,
						BehindBy:     3,
						Author:       "alice",
						LastCommit:   time.Now().Add(-45 * 24 * time.Hour),
						Ticket:       "ABC-1",
						TicketStatus: "Resolved",
					},
					{
						Name:     "hotfix/no-ticket",
						Status:   model.CompareBehind,
						BehindBy: 1,
						Author:   "unknown",
					},
				},
			},
			{
				Repo:       model.Repo{Name: "svc-b"},
				MainBranch: "master",
				Stale: []model.StaleBranch{
					{
						Name:         "feature/DEF-2-y",
						Status:       model.CompareBehind,
						BehindBy:     9,
						Author:       "alice",
						Ticket:       "DEF-2",
						TicketStatus: "Closed",
					},
				},
			},
			{
				Repo: model.Repo{Name: "svc-quiet"},
			},
		},
	}
}

func TestOverview(t *testing.T) {
	got := Overview(testReport())
	want := "Total stale branches: 3\n" +
		"\n" +
		"Count by author:\n" +
		"alice: 2\n" +
		"unknown: 1\n"
	if got != want {
		t.Errorf("Overview() = %q, want %q", got, want)
	}
}

func TestOverviewEmpty(t *testing.T) {
	got := Overview(&model.Report{})
	want := "Total stale branches: 0\n"
	if got != want {
		t.Errorf("Overview() = %q, want %q", got, want)
	}
}

func TestDetails(t *testing.T) {
	got := Details(testReport())
	want := "Summary:\n" +
		"\n" +
		"Repo: svc-a, develop branch name: develop\n" +
		"\n" +
		"Branch: feature/ABC-1-x\n" +
		"Comparison status: diverged\n" +
		"Author: alice\n" +
		"Ticket status: Resolved\n" +
		"\n" +
		"Branch: hotfix/no-ticket\n" +
		"Comparison status: behind\n" +
		"Author: unknown\n" +
		"\n" +
		"Repo: svc-b, develop branch name: master\n" +
		"\n" +
		"Branch: feature/DEF-2-y\n" +
		"Comparison status: behind\n" +
		"Author: alice\n" +
		"Ticket status: Closed\n"
	if got != want {
		t.Errorf("Details() = %q, want %q", got, want)
	}
	if strings.Contains(got, "svc-quiet") {
		t.Error("Details() includes a repository with no stale branches")
	}
}

func TestDetailsUnresolvedTicket(t *testing.T) {
	// Ticket extracted from the branch name but unknown to the tracker:
	// there is no status to report.
	rep := &model.Report{
		Total: 1,
		Repos: []model.RepoReport{
			{
				Repo:       model.Repo{Name: "svc-a"},
				MainBranch: "develop",
				Stale: []model.StaleBranch{
					{Name: "feature/GONE-1-x", Status: model.CompareBehind, BehindBy: 2, Author: "alice", Ticket: "GONE-1"},
				},
			},
		},
	}

	if got := Details(rep); strings.Contains(got, "Ticket status:") {
		t.Errorf("Details() reports a status for an unresolved ticket:\n%s", got)
	}

	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	var buf bytes.Buffer
	if err := (&TextRenderer{}).Render(rep, &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "GONE-1") || strings.Contains(out, "GONE-1:") {
		t.Errorf("Render() should show the bare ticket key:\n%s", out)
	}
}

func TestTextRenderer(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	var buf bytes.Buffer
	if err := (&TextRenderer{}).Render(testReport(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Stale branches: 3",
		"By author:",
		"  alice    2",
		"  unknown  1",
		"svc-a (develop)",
		"feature/ABC-1-x",
		"behind 3",
		"ABC-1: Resolved",
		"svc-b (master)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "svc-quiet") {
		t.Error("Render() includes a repository with no stale branches")
	}
}

func TestTextRendererEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextRenderer{}).Render(&model.Report{}, &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := buf.String(); got != "No stale branches found.\n" {
		t.Errorf("Render() = %q, want no-results line", got)
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONRenderer{}).Render(testReport(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var got model.Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Total != 3 || len(got.Repos) != 3 {
		t.Errorf("decoded report = total %d, %d repos, want 3 and 3", got.Total, len(got.Repos))
	}
	if got.Authors[0].Author != "alice" || got.Authors[0].Count != 2 {
		t.Errorf("decoded Authors[0] = %+v, want alice/2", got.Authors[0])
	}
}

func TestNewRenderer(t *testing.T) {
	if _, ok := NewRenderer(FormatJSON).(*JSONRenderer); !ok {
		t.Errorf("NewRenderer(json) = %T, want *JSONRenderer", NewRenderer(FormatJSON))
	}
	if _, ok := NewRenderer(FormatText).(*TextRenderer); !ok {
		t.Errorf("NewRenderer(text) = %T, want *TextRenderer", NewRenderer(FormatText))
	}
	if _, ok := NewRenderer("").(*TextRenderer); !ok {
		t.Errorf("NewRenderer(\"\") = %T, want *TextRenderer", NewRenderer(""))
	}
}
