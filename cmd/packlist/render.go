package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/packlist"
	model "github.com/aretw0/packlist/pkg/packlist"
)

type styles struct {
	title   lipgloss.Style
	checked lipgloss.Style
	section lipgloss.Style
	id      lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true),
		checked: r.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8")),
		section: r.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		id:      r.NewStyle().Faint(true),
		muted:   r.NewStyle().Faint(true).Italic(true),
	}
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

// renderSummaries prints one line per list: id, name, sections and progress.
func renderSummaries(w io.Writer, lists []packlist.List) {
	s := newStyles(w)
	if len(lists) == 0 {
		fmt.Fprintln(w, s.muted.Render("no lists yet"))
		return
	}
	for _, l := range lists {
		checked, total := model.CountChecked(l.Items)
		fmt.Fprintf(w, "%s  %s  %s\n",
			s.id.Render(l.ID),
			s.title.Render(l.Name),
			s.muted.Render(fmt.Sprintf("%d sections, %d/%d packed", len(l.Items), checked, total)),
		)
	}
}

// renderList prints a list tree. Collapsed categories hide their items.
func renderList(w io.Writer, l packlist.List) {
	s := newStyles(w)
	checked, total := model.CountChecked(l.Items)
	fmt.Fprintf(w, "%s %s\n", s.title.Render(l.Name), s.muted.Render(fmt.Sprintf("(%d/%d packed)", checked, total)))

	if len(l.Items) == 0 {
		fmt.Fprintln(w, "  "+s.muted.Render("empty"))
		return
	}

	for _, n := range l.Items {
		switch n := n.(type) {
		case packlist.Item:
			fmt.Fprintf(w, "  %s\n", renderItem(s, n))
		case packlist.Category:
			marker := "▾"
			if n.IsCollapsed {
				marker = "▸"
			}
			done := 0
			for _, it := range n.Items {
				if it.Checked {
					done++
				}
			}
			name := s.section.Render(n.Name)
			if n.Checked {
				name = s.checked.Render(n.Name)
			}
			fmt.Fprintf(w, "  %s %s %s %s  %s\n", marker, checkbox(n.Checked), name,
				s.muted.Render(fmt.Sprintf("(%d/%d)", done, len(n.Items))), s.id.Render(n.ID))
			if n.IsCollapsed {
				continue
			}
			for _, it := range n.Items {
				fmt.Fprintf(w, "      %s\n", renderItem(s, it))
			}
		}
	}
}

func renderItem(s styles, it packlist.Item) string {
	name := it.Name
	if it.Checked {
		name = s.checked.Render(name)
	}
	return strings.Join([]string{checkbox(it.Checked), name, " " + s.id.Render(it.ID)}, " ")
}
