package tui

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

// App wraps the bubbletea program.
type App struct {
	program *tea.Program
	model   Model
}

// New creates the application.
func New(deps Deps) *App {
	return &App{model: NewModel(deps)}
}

// Run blocks until the user quits.
func (a *App) Run() error {
	a.program = tea.NewProgram(a.model, tea.WithAltScreen())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)
	go func() {
		if _, ok := <-sigChan; ok {
			a.program.Send(tea.Quit())
		}
	}()

	final, err := a.program.Run()
	if m, ok := final.(Model); ok {
		m.closePads()
	}
	return err
}

func (m Model) closePads() {
	for _, p := range m.pads {
		_ = p.Close()
	}
}
