package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/couchsplit/couchsplit/internal/players"
	"github.com/couchsplit/couchsplit/internal/util"
)

const nameWidth = 40

var pages = []Page{PageGames, PageProfiles, PageSettings}

// View renders the current page.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.assign.Launching() {
		return titleStyle.Render("couchsplit") + "\n\n" + warningStyle.Render("Session running...") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.page {
	case PageGames:
		b.WriteString(m.renderGames())
	case PagePlayers:
		b.WriteString(m.renderPlayers())
	case PageProfiles:
		b.WriteString(m.renderProfiles())
	case PageSettings:
		b.WriteString(m.renderSettings())
	}

	b.WriteString("\n")
	if m.errorMsg != "" {
		b.WriteString(errorMsgStyle.Render("Error: "+m.errorMsg) + "\n")
	} else if m.infoMsg != "" {
		b.WriteString(successMsgStyle.Render(m.infoMsg) + "\n")
	}
	b.WriteString(m.renderPads())
	b.WriteString("\n" + helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := []string{titleStyle.Render("couchsplit ")}
	for _, p := range pages {
		style := tabInactiveStyle
		if p == m.page || (p == PageGames && m.page == PagePlayers) {
			style = tabActiveStyle
		}
		tabs = append(tabs, style.Render(p.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderGames() string {
	if m.Scanning() && len(m.games) == 0 {
		return mutedStyle.Render("Scanning library...")
	}
	if len(m.games) == 0 {
		return mutedStyle.Render("No games. Add one with: couchsplit games add <path>")
	}
	var lines []string
	for i, g := range m.games {
		d := g.Descriptor()
		line := util.Fit(d.Name, nameWidth)
		if d.Windows {
			line += " " + mutedStyle.Render("proton")
		}
		if i == m.gameCursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderPlayers() string {
	var b strings.Builder
	if g := m.SelectedGame(); g != nil {
		b.WriteString(titleStyle.Render(g.Descriptor().Name) + "\n")
	}
	b.WriteString(mutedStyle.Render(m.assign.State().String()) + "\n\n")

	slots := m.assign.Slots()
	if len(slots) == 0 {
		b.WriteString("Press A on a controller to join.\n")
		return b.String()
	}
	boxes := make([]string, 0, players.MaxSlots)
	for i, s := range slots {
		pad := "?"
		if s.Pad >= 0 && s.Pad < len(m.pads) {
			pad = m.pads[s.Pad].DisplayName()
		}
		body := fmt.Sprintf("%s\n%s\n%s",
			primaryStyle.Render(fmt.Sprintf("Player %d", i+1)),
			"< "+util.Truncate(m.assign.ProfileLabel(i), 18)+" >",
			mutedStyle.Render(util.Truncate(pad, 22)))
		boxes = append(boxes, slotStyle.Render(body))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n")
	if m.assign.CanStart() {
		b.WriteString(secondaryStyle.Render("Press Start to play") + "\n")
	}
	return b.String()
}

func (m Model) renderProfiles() string {
	var b strings.Builder
	if m.creating {
		b.WriteString("New profile: " + m.nameInput.View() + "\n\n")
	}
	if len(m.profiles) == 0 {
		b.WriteString(mutedStyle.Render("No profiles. Players join as guests."))
		return b.String()
	}
	var lines []string
	for i, name := range m.profiles {
		line := util.Fit(name, nameWidth)
		if i == m.profileCursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	return b.String()
}

func (m Model) renderSettings() string {
	var lines []string
	for i, item := range m.settings {
		value := item.display(m.deps.Config)
		if m.editing && i == m.settingsCursor {
			value = m.valueInput.View()
		}
		line := fmt.Sprintf("%s %s", util.Fit(item.Label, 26), value)
		if i == m.settingsCursor {
			line = selectedStyle.Render("> "+line) + "\n    " + mutedStyle.Render(item.Description)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderPads() string {
	if len(m.pads) == 0 {
		return warningStyle.Render("No controllers detected") + "\n"
	}
	parts := make([]string, len(m.pads))
	for i, p := range m.pads {
		s := util.Truncate(p.DisplayName(), 24)
		if i < len(m.batteries) && m.batteries[i] != "" {
			s += " " + m.batteries[i]
		}
		if m.page == PagePlayers && m.assign.Bound(i) {
			s = secondaryStyle.Render(s)
		} else {
			s = mutedStyle.Render(s)
		}
		parts[i] = s
	}
	return strings.Join(parts, mutedStyle.Render(" | ")) + "\n"
}

func (m Model) help() string {
	switch {
	case m.creating:
		return "enter create  esc cancel"
	case m.editing:
		return "enter save  esc cancel"
	}
	switch m.page {
	case PagePlayers:
		return "A join  B leave  left/right profile  Start play  esc back"
	case PageProfiles:
		return "n new  d delete  tab next page  q quit"
	case PageSettings:
		return "enter toggle/edit  left/right adjust  tab next page  q quit"
	default:
		return "enter/A select  r/X rescan  tab/Select next page  q quit"
	}
}
