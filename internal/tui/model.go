// Package tui is the interactive couchsplit front end. It renders at the
// input poll rate and never blocks: library scans run on the task pool and
// a launched session suspends the program until the game exits.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/couchsplit/couchsplit/internal/config"
	"github.com/couchsplit/couchsplit/internal/errors"
	"github.com/couchsplit/couchsplit/internal/game"
	"github.com/couchsplit/couchsplit/internal/gamepad"
	"github.com/couchsplit/couchsplit/internal/logging"
	"github.com/couchsplit/couchsplit/internal/players"
	"github.com/couchsplit/couchsplit/internal/profile"
	"github.com/couchsplit/couchsplit/internal/session"
	"github.com/couchsplit/couchsplit/internal/task"
)

// logsHint follows errors that were not written for players.
const logsHint = " (details: couchsplit logs)"

// tickInterval is the input poll cadence, about 30 Hz.
const tickInterval = 33 * time.Millisecond

// batteryRefreshTicks is how often battery levels are re-read, about 5s.
const batteryRefreshTicks = 150

// Page is a top-level screen.
type Page int

const (
	PageGames Page = iota
	PagePlayers
	PageProfiles
	PageSettings
)

func (p Page) String() string {
	switch p {
	case PageGames:
		return "Games"
	case PagePlayers:
		return "Players"
	case PageProfiles:
		return "Profiles"
	case PageSettings:
		return "Settings"
	default:
		return "?"
	}
}

// Pad is a controller as the UI sees it.
type Pad interface {
	players.Pad
	DisplayName() string
	Battery() (int, bool)
	Close() error
}

// Launcher runs a session. *session.Orchestrator implements it.
type Launcher interface {
	Launch(req session.Request) (*session.Result, error)
}

// Deps are the collaborators the model drives.
type Deps struct {
	Config     *config.Config
	ConfigPath string
	Library    *game.Library
	Profiles   *profile.Manager
	Launcher   Launcher
	// Streams receives the terminal while a session runs. Optional.
	Streams  StreamSetter
	Executor task.Executor
	// ScanPads opens the current controllers.
	ScanPads func() []Pad
	// Rescan signals device hotplug. Optional.
	Rescan <-chan struct{}
	Logger *logging.Logger
}

// Messages

type tickMsg time.Time

type launchDoneMsg struct {
	err error
}

type scanResult struct {
	games []game.Game
	err   error
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the bubbletea model.
type Model struct {
	deps   Deps
	logger *logging.Logger

	page   Page
	width  int
	height int

	pads      []Pad
	batteries []string
	ticks     int

	assign *players.Assignment

	games      []game.Game
	gameCursor int
	scan       *task.Task[scanResult]

	profiles      []string
	profileCursor int
	creating      bool
	nameInput     textinput.Model

	settings       []settingItem
	settingsCursor int
	editing        bool
	valueInput     textinput.Model

	errorMsg string
	infoMsg  string
	quitting bool
}

// NewModel builds the model and starts the first library scan.
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = logging.NopLogger()
	}
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	if deps.Executor == nil {
		deps.Executor = task.Inline{}
	}

	name := textinput.New()
	name.Placeholder = "profile name"
	name.CharLimit = 32
	name.Width = 32

	value := textinput.New()
	value.CharLimit = 100
	value.Width = 40

	m := Model{
		deps:       deps,
		logger:     deps.Logger.WithComponent("tui"),
		assign:     players.New(deps.Logger),
		nameInput:  name,
		valueInput: value,
		settings:   settingItems(),
	}
	m.rescanPads()
	m.refreshProfiles()
	m.startScan()
	return m
}

// Init starts the poll loop.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.errorMsg = ""
		return m.handleKey(msg)

	case tickMsg:
		m.ticks++
		m.pollScan()
		m.pollHotplug()
		if m.ticks%batteryRefreshTicks == 0 {
			m.refreshBatteries()
		}
		cmd := m.pollPads()
		return m, tea.Batch(cmd, tick())

	case launchDoneMsg:
		m.assign.SetLaunching(false)
		m.assign.Reset()
		m.page = PageGames
		m.drainPads()
		if msg.err != nil {
			m.errorMsg = errors.UserMessage(msg.err)
			if !errors.IsUserFacing(msg.err) {
				m.errorMsg += logsHint
			}
			m.logger.Error("session failed", "error", msg.err)
		} else {
			m.infoMsg = "Session finished"
		}
		return m, nil
	}
	return m, nil
}

// pollScan collects a finished library scan without blocking.
func (m *Model) pollScan() {
	if m.scan == nil {
		return
	}
	res, ok := m.scan.TryJoin()
	if !ok {
		return
	}
	m.scan = nil
	if res.err != nil {
		m.errorMsg = "Library scan failed: " + errors.UserMessage(res.err)
		return
	}
	m.games = res.games
	if m.gameCursor >= len(m.games) {
		m.gameCursor = max(0, len(m.games)-1)
	}
}

func (m *Model) startScan() {
	if m.deps.Library == nil || m.scan != nil {
		return
	}
	lib := m.deps.Library
	m.scan = task.Spawn(m.deps.Executor, func() scanResult {
		games, err := lib.Scan()
		return scanResult{games: games, err: err}
	})
}

// Scanning reports whether a library scan is pending.
func (m Model) Scanning() bool {
	return m.scan != nil
}

func (m *Model) pollHotplug() {
	if m.deps.Rescan == nil {
		return
	}
	select {
	case <-m.deps.Rescan:
		m.rescanPads()
	default:
	}
}

// rescanPads replaces the pad list and keeps slots bound by device path.
func (m *Model) rescanPads() {
	if m.deps.ScanPads == nil {
		return
	}
	old := m.padPaths()
	for _, p := range m.pads {
		_ = p.Close()
	}
	m.pads = m.deps.ScanPads()
	m.assign.Rebind(old, m.padPaths())
	m.refreshBatteries()
}

func (m *Model) padPaths() []string {
	out := make([]string, len(m.pads))
	for i, p := range m.pads {
		out[i] = p.Path()
	}
	return out
}

func (m *Model) refreshBatteries() {
	m.batteries = make([]string, len(m.pads))
	for i, p := range m.pads {
		if pct, ok := p.Battery(); ok {
			m.batteries[i] = fmt.Sprintf("%d%%", pct)
		}
	}
}

// drainPads discards input buffered while a game had focus.
func (m *Model) drainPads() {
	for _, p := range m.pads {
		p.Poll()
	}
}

func (m *Model) refreshProfiles() {
	if m.deps.Profiles == nil {
		return
	}
	names, err := m.deps.Profiles.List(false)
	if err != nil {
		m.errorMsg = errors.UserMessage(err)
		return
	}
	m.profiles = names
	if m.profileCursor >= len(m.profiles) {
		m.profileCursor = max(0, len(m.profiles)-1)
	}
}

// pollPads reads one edge per pad and applies it to the current page.
func (m *Model) pollPads() tea.Cmd {
	if len(m.pads) == 0 || m.assign.Launching() {
		return nil
	}
	if m.page == PagePlayers {
		ps := make([]players.Pad, len(m.pads))
		for i, p := range m.pads {
			ps[i] = p
		}
		switch m.assign.Tick(ps) {
		case players.ActionBack:
			m.page = PageGames
		case players.ActionLaunch:
			return m.launch()
		}
		return nil
	}

	for _, p := range m.pads {
		m.handleButton(p.Poll())
	}
	return nil
}

// handleButton maps menu navigation from a pad outside the players page.
func (m *Model) handleButton(b gamepad.Button) {
	if m.creating || m.editing {
		return
	}
	switch b {
	case gamepad.ButtonUp:
		m.moveCursor(-1)
	case gamepad.ButtonDown:
		m.moveCursor(1)
	case gamepad.ButtonLeft:
		m.adjustSetting(-5)
	case gamepad.ButtonRight:
		m.adjustSetting(5)
	case gamepad.ButtonA:
		m.activate()
	case gamepad.ButtonB:
		m.page = PageGames
	case gamepad.ButtonX:
		m.startScan()
	case gamepad.ButtonSelect:
		m.nextPage()
	}
}

func (m *Model) nextPage() {
	switch m.page {
	case PageGames:
		m.page = PageProfiles
		m.refreshProfiles()
	case PageProfiles:
		m.page = PageSettings
	default:
		m.page = PageGames
	}
}

func (m *Model) moveCursor(delta int) {
	clamp := func(v, n int) int {
		if n == 0 {
			return 0
		}
		return min(max(v, 0), n-1)
	}
	switch m.page {
	case PageGames:
		m.gameCursor = clamp(m.gameCursor+delta, len(m.games))
	case PageProfiles:
		m.profileCursor = clamp(m.profileCursor+delta, len(m.profiles))
	case PageSettings:
		m.settingsCursor = clamp(m.settingsCursor+delta, len(m.settings))
	}
}

// activate is the primary action on the current page.
func (m *Model) activate() {
	switch m.page {
	case PageGames:
		if len(m.games) == 0 {
			return
		}
		m.refreshProfiles()
		m.assign.Reset()
		m.assign.Enter(m.profiles)
		m.page = PagePlayers
	case PageSettings:
		m.adjustSetting(0)
	}
}

func (m *Model) adjustSetting(delta int) {
	if m.page != PageSettings || len(m.settings) == 0 {
		return
	}
	item := m.settings[m.settingsCursor]
	if item.Type == "int" && delta == 0 {
		return
	}
	if item.Type == "bool" && delta < 0 {
		delta = 0
	}
	if err := item.toggle(m.deps.Config, delta); err != nil {
		m.errorMsg = err.Error()
		return
	}
	m.saveSettings()
}

func (m *Model) saveSettings() {
	if m.deps.ConfigPath == "" {
		return
	}
	if err := config.Save(m.deps.Config, m.deps.ConfigPath); err != nil {
		m.errorMsg = "Failed to save settings: " + err.Error()
		m.logger.Error("failed to save settings", "error", err)
	}
}

// SelectedGame returns the highlighted game, if any.
func (m Model) SelectedGame() game.Game {
	if m.gameCursor < 0 || m.gameCursor >= len(m.games) {
		return nil
	}
	return m.games[m.gameCursor]
}

// launch suspends the program and runs the session.
func (m *Model) launch() tea.Cmd {
	g := m.SelectedGame()
	if g == nil || m.deps.Launcher == nil || !m.assign.CanStart() {
		return nil
	}
	m.assign.SetLaunching(true)
	req := session.Request{
		Game:     g,
		Pads:     m.padPaths(),
		Slots:    m.assign.Slots(),
		Profiles: m.assign.Profiles(),
	}
	m.logger.Info("launching", "game_id", g.Descriptor().ID, "players", len(req.Slots))
	return tea.Exec(&launchCommand{launcher: m.deps.Launcher, streams: m.deps.Streams, req: req}, func(err error) tea.Msg {
		return launchDoneMsg{err: err}
	})
}

// Page returns the current page.
func (m Model) Page() Page {
	return m.page
}

// Assignment exposes the player assignment for rendering and tests.
func (m Model) Assignment() *players.Assignment {
	return m.assign
}
