package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ArturoRiosMock/CRMAIRE/internal/backup"
	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

var (
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorDim     = lipgloss.Color("#565f89")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorWarning = lipgloss.Color("#e0af68")

	columnStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	countStyle    = lipgloss.NewStyle().Foreground(colorDim)
	usernameStyle = lipgloss.NewStyle().Bold(true)
	idStyle       = lipgloss.NewStyle().Foreground(colorDim)
	amountStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	followUpStyle = lipgloss.NewStyle().Foreground(colorWarning)
	noteStyle     = lipgloss.NewStyle().PaddingLeft(6).Foreground(colorDim)
)

// renderBoard prints the columns in display order with the followers the
// filter lets through.
func renderBoard(w io.Writer, b *domain.Board, f board.Filter, withNotes bool) error {
	var sb strings.Builder
	for _, c := range f.Visible(b) {
		total := len(c.FollowerIDs)
		if i := b.ColumnIndex(c.ID); i >= 0 {
			total = len(b.Columns[i].FollowerIDs)
		}
		count := fmt.Sprintf("%d", total)
		if f.Active() {
			count = fmt.Sprintf("%d/%d", len(c.FollowerIDs), total)
		}
		sb.WriteString(columnStyle.Render(c.Title) + " " + countStyle.Render(count) + "\n")

		for _, fid := range c.FollowerIDs {
			fl := b.Followers[fid]
			sb.WriteString("  " + followerLine(b, fl) + "\n")
			if withNotes {
				for _, n := range board.NotesNewestFirst(fl) {
					sb.WriteString(noteStyle.Render(noteLine(n)) + "\n")
				}
			}
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func followerLine(b *domain.Board, f domain.Follower) string {
	parts := []string{usernameStyle.Render("@" + f.Username)}
	if f.Name != "" && f.Name != f.Username {
		parts = append(parts, f.Name)
	}
	for _, tid := range f.Tags {
		// Followers may still carry ids of deleted tags.
		if t, ok := board.FindTag(b, tid); ok {
			parts = append(parts, tagChip(t))
		}
	}
	if f.ProposalAmountUSD != nil {
		parts = append(parts, amountStyle.Render("$"+humanize.CommafWithDigits(*f.ProposalAmountUSD, 2)))
	}
	if f.FollowUpAt != nil && *f.FollowUpAt != "" {
		parts = append(parts, followUpStyle.Render("follow up "+*f.FollowUpAt))
	}
	parts = append(parts, idStyle.Render(f.ID))
	return strings.Join(parts, "  ")
}

func tagChip(t domain.Tag) string {
	style := lipgloss.NewStyle()
	if t.Color != "" {
		style = style.Foreground(lipgloss.Color(t.Color))
	}
	return style.Render("[" + t.Name + "]")
}

func noteLine(n domain.Note) string {
	when := n.CreatedAt
	if t, err := domain.ParseTimestamp(n.CreatedAt); err == nil {
		when = humanize.Time(t)
	}
	return "- " + n.Content + " (" + when + ")"
}

func renderTags(w io.Writer, b *domain.Board) error {
	var sb strings.Builder
	for _, t := range b.Tags {
		sb.WriteString(tagChip(t) + "  " + idStyle.Render(t.ID+" "+t.Color) + "\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func renderBackups(w io.Writer, list []backup.BackupInfo) error {
	if len(list) == 0 {
		_, err := io.WriteString(w, "no snapshots\n")
		return err
	}
	var sb strings.Builder
	for _, info := range list {
		fmt.Fprintf(&sb, "%s  %s  %s\n",
			usernameStyle.Render(info.ID),
			humanize.Bytes(uint64(info.Size)),
			countStyle.Render(humanize.Time(info.CreatedAt)))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
