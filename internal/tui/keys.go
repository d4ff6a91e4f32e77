package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/couchsplit/couchsplit/internal/profile"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.creating {
		return m.handleCreateKeypress(msg)
	}
	if m.editing {
		return m.handleEditingKeypress(msg)
	}
	if m.assign.Launching() {
		return m, nil
	}
	m.infoMsg = ""

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		if m.page != PagePlayers {
			m.nextPage()
		}

	case "up", "k":
		m.moveCursor(-1)

	case "down", "j":
		m.moveCursor(1)

	case "left", "h":
		m.adjustSetting(-5)

	case "right", "l":
		m.adjustSetting(5)

	case "esc":
		if m.page == PagePlayers {
			m.assign.Reset()
		}
		m.page = PageGames

	case "enter", " ":
		switch m.page {
		case PagePlayers:
			return m, m.launch()
		case PageSettings:
			return m.beginEdit()
		default:
			m.activate()
		}

	case "r":
		if m.page == PageGames {
			m.startScan()
		}
		if m.page == PageProfiles {
			m.refreshProfiles()
		}

	case "n":
		if m.page == PageProfiles {
			m.creating = true
			m.nameInput.SetValue("")
			m.nameInput.Focus()
		}

	case "d", "delete":
		if m.page == PageProfiles {
			m.removeSelectedProfile()
		}
	}
	return m, nil
}

// beginEdit toggles bool settings and opens the editor for the rest.
func (m Model) beginEdit() (tea.Model, tea.Cmd) {
	if len(m.settings) == 0 {
		return m, nil
	}
	item := m.settings[m.settingsCursor]
	if item.Type == "bool" {
		m.adjustSetting(0)
		return m, nil
	}
	m.editing = true
	m.valueInput.SetValue(item.raw(m.deps.Config))
	m.valueInput.Focus()
	return m, nil
}

func (m Model) handleEditingKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.valueInput.Blur()
		return m, nil
	case "enter":
		item := m.settings[m.settingsCursor]
		if err := item.set(m.deps.Config, m.valueInput.Value()); err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.editing = false
		m.valueInput.Blur()
		m.saveSettings()
		return m, nil
	}
	var cmd tea.Cmd
	m.valueInput, cmd = m.valueInput.Update(msg)
	return m, cmd
}

func (m Model) handleCreateKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.creating = false
		m.nameInput.Blur()
		return m, nil
	case "enter":
		name := m.nameInput.Value()
		if m.deps.Profiles == nil {
			m.creating = false
			return m, nil
		}
		if err := profile.ValidatePersistentName(name); err != nil {
			m.errorMsg = errors.UserMessage(err)
			return m, nil
		}
		if err := m.deps.Profiles.Create(name); err != nil {
			m.errorMsg = errors.UserMessage(err)
			return m, nil
		}
		m.creating = false
		m.nameInput.Blur()
		m.refreshProfiles()
		m.infoMsg = "Created profile " + name
		return m, nil
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) removeSelectedProfile() {
	if m.deps.Profiles == nil || len(m.profiles) == 0 {
		return
	}
	name := m.profiles[m.profileCursor]
	if err := m.deps.Profiles.Remove(name); err != nil {
		m.errorMsg = errors.UserMessage(err)
		return
	}
	m.infoMsg = "Removed profile " + name
	m.refreshProfiles()
}
