// Package console is the terminal frontend: it draws what the engine reports,
// reads validated menu choices and drives a playthrough from start to finish.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/cory-johannsen/cloudranger/internal/config"
	"github.com/cory-johannsen/cloudranger/internal/game/engine"
	"github.com/cory-johannsen/cloudranger/internal/storage/leaderboard"
)

type styles struct {
	title   lipgloss.Style
	text    lipgloss.Style
	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	error   lipgloss.Style
	accent  lipgloss.Style
	muted   lipgloss.Style
	box     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, p config.PaletteConfig) styles {
	color := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }
	return styles{
		title:   color(p.Title).Bold(true),
		text:    color(p.Text),
		info:    color(p.Info),
		success: color(p.Success),
		warning: color(p.Warning),
		error:   color(p.Error).Bold(true),
		accent:  color(p.Accent),
		muted:   color(p.Muted),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Accent)).
			Padding(0, 1),
	}
}

// Presenter writes styled game output to a terminal. It implements
// engine.Presenter.
type Presenter struct {
	w     io.Writer
	st    styles
	width int
}

// NewPresenter builds a Presenter for w using the palette colors. Color is
// dropped automatically when w is not a terminal.
//
// Precondition: w must be non-nil; pal.Width should be >= 20.
func NewPresenter(w io.Writer, pal config.PaletteConfig) *Presenter {
	width := pal.Width
	if width < 20 {
		width = 78
	}
	return &Presenter{w: w, st: newStyles(lipgloss.NewRenderer(w), pal), width: width}
}

func (p *Presenter) println(s string) {
	fmt.Fprintln(p.w, s)
}

func (p *Presenter) wrap(s string) string {
	return wordwrap.String(s, p.width-4)
}

// Notify prints msg in the color for sev.
func (p *Presenter) Notify(msg string, sev engine.Severity) {
	style := p.st.info
	switch sev {
	case engine.SeveritySuccess:
		style = p.st.success
	case engine.SeverityWarning:
		style = p.st.warning
	case engine.SeverityError:
		style = p.st.error
	}
	p.println(style.Render(p.wrap(msg)))
}

// RenderLocation draws a location card.
func (p *Presenter) RenderLocation(v engine.LocationView) {
	var b strings.Builder
	b.WriteString(p.st.title.Render(v.Name))
	b.WriteString("  ")
	b.WriteString(p.st.muted.Render(fmt.Sprintf("%s | difficulty %d", Label(v.Region), v.Difficulty)))
	if v.FirstVisit {
		b.WriteString("  ")
		b.WriteString(p.st.accent.Render("(new)"))
	}
	b.WriteString("\n\n")
	b.WriteString(p.st.text.Render(p.wrap(v.Description)))
	if v.Weather != nil {
		b.WriteString("\n\n")
		b.WriteString(p.st.info.Render(fmt.Sprintf("Weather: %s (%s)", v.Weather.Name, v.Weather.Severity)))
		if v.Weather.Effect != "" {
			b.WriteString("\n")
			b.WriteString(p.st.muted.Render(p.wrap(v.Weather.Effect)))
		}
	}
	if len(v.Neighbors) > 0 {
		b.WriteString("\n\n")
		b.WriteString(p.st.accent.Render("Routes:"))
		for _, n := range v.Neighbors {
			fmt.Fprintf(&b, "\n  %s %s", n.Name, p.st.muted.Render(fmt.Sprintf("(difficulty %d)", n.Difficulty)))
		}
	}
	if len(v.Vendors) > 0 {
		b.WriteString("\n\n")
		b.WriteString(p.st.accent.Render("Vendors:"))
		for _, vd := range v.Vendors {
			b.WriteString("\n  " + vd.Name)
		}
	}
	p.println(p.st.box.Render(b.String()))
}

// RenderStatus draws the ranger's dashboard.
func (p *Presenter) RenderStatus(v engine.StatusView) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", p.st.title.Render(v.Name), p.st.muted.Render(v.Specialization))
	fmt.Fprintf(&b, "Location: %s   Day %d (%d days left)\n", v.Location, v.Day, v.TimeLeft)
	fmt.Fprintf(&b, "Health %s %d/%d\n", bar(v.Health, v.MaxHealth, 20), v.Health, v.MaxHealth)
	fmt.Fprintf(&b, "Energy %s %d/%d\n", bar(v.Energy, v.MaxEnergy, 20), v.Energy, v.MaxEnergy)
	fmt.Fprintf(&b, "Credits: %s   Bandwidth: %d\n", Credits(v.Credits), v.Bandwidth)

	b.WriteString(p.st.accent.Render("Skills:"))
	for _, s := range v.Skills {
		fmt.Fprintf(&b, "\n  %-22s %2d", Label(s.Name), s.Value)
	}
	b.WriteString("\n")
	b.WriteString(p.st.accent.Render("Reputation:"))
	for _, r := range v.Reputation {
		fmt.Fprintf(&b, "\n  %-22s %3d", Label(r.Name), r.Value)
	}
	if len(v.Statuses) > 0 {
		fmt.Fprintf(&b, "\n%s %s", p.st.warning.Render("Affected by:"), strings.Join(v.Statuses, ", "))
	}
	fmt.Fprintf(&b, "\nArtifacts %d | Blueprints %d | Services %d | Clues %d",
		v.Artifacts, v.Blueprints, v.Services, v.Clues)
	if len(v.ActiveQuests) > 0 {
		fmt.Fprintf(&b, "\nActive quests: %d", len(v.ActiveQuests))
	}
	if len(v.Achievements) > 0 {
		labels := make([]string, len(v.Achievements))
		for i, a := range v.Achievements {
			labels[i] = Label(a)
		}
		fmt.Fprintf(&b, "\nAchievements: %s", strings.Join(labels, ", "))
	}
	p.println(p.st.box.Render(b.String()))
}

// Heading prints a section title.
func (p *Presenter) Heading(title string) {
	p.println("")
	p.println(p.st.title.Render("== " + title + " =="))
}

// Text prints wrapped body text.
func (p *Presenter) Text(s string) {
	p.println(p.st.text.Render(p.wrap(s)))
}

// Muted prints secondary text.
func (p *Presenter) Muted(s string) {
	p.println(p.st.muted.Render(p.wrap(s)))
}

// Menu prints numbered options starting at 1. A non-empty back label is
// listed as option 0.
func (p *Presenter) Menu(items []string, back string) {
	for i, it := range items {
		p.println(fmt.Sprintf("%s %s", p.st.accent.Render(fmt.Sprintf("%d.", i+1)), it))
	}
	if back != "" {
		p.println(fmt.Sprintf("%s %s", p.st.muted.Render("0."), back))
	}
}

// Prompt prints s without a trailing newline.
func (p *Presenter) Prompt(s string) {
	fmt.Fprint(p.w, p.st.accent.Render(s)+" ")
}

// Leaderboard prints the ranked entries.
func (p *Presenter) Leaderboard(entries []leaderboard.Entry) {
	p.Heading("TOP SCORES")
	if len(entries) == 0 {
		p.Muted("No scores yet!")
		return
	}
	for i, e := range entries {
		p.println(fmt.Sprintf("%d. %s: %s %s", i+1,
			e.Name, p.st.success.Render(Count(e.Score)),
			p.st.muted.Render(fmt.Sprintf("(%s, %s)", e.Topic, e.Date.Format(leaderboard.DateLayout)))))
	}
}

// GameOver prints the final outcome and score.
func (p *Presenter) GameOver(o engine.Outcome, score int) {
	p.Heading("GAME OVER")
	if o.Won {
		p.println(p.st.success.Render(p.wrap(o.Reason)))
	} else {
		p.println(p.st.error.Render(p.wrap(o.Reason)))
	}
	p.println(fmt.Sprintf("Final score: %s", p.st.title.Render(Count(score))))
}
