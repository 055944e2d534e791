// Package tui is the terminal front-end for the timer.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pomodoro/internal/core/model"
	"pomodoro/internal/core/timer"
	"pomodoro/internal/notify"
	"pomodoro/internal/ui/preferences"
)

const maxProgressWidth = 60

// Controller is the subset of session.Controller the model drives.
type Controller interface {
	Start(config model.TimerConfig) error
	Pause()
	Stop()
	Dismiss()
}

// snapshotMsg carries the engine state after a tick.
type snapshotMsg timer.Snapshot

// eventMsg carries a state change or interval end.
type eventMsg timer.Event

// alertMsg asks the model to show an alert until it is dismissed.
type alertMsg struct {
	serial  uint64
	alert   notify.Alert
	dismiss func()
}

// alertClosedMsg withdraws the alert with the given serial.
type alertClosedMsg struct {
	serial uint64
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	workStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	breakStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("40"))
	clockStyle    = lipgloss.NewStyle().Bold(true).Padding(1, 0)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	alertBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("220")).
			Padding(0, 2)
)

// Model is the Bubble Tea model for the timer screen.
type Model struct {
	controller Controller
	settings   preferences.Settings
	snapshot   timer.Snapshot
	alert      *alertMsg
	err        string

	keys     keyMap
	help     help.Model
	progress progress.Model
}

// NewModel creates an idle timer screen for settings.
func NewModel(controller Controller, settings preferences.Settings) *Model {
	return &Model{
		controller: controller,
		settings:   settings,
		snapshot:   idleSnapshot(settings),
		keys:       defaultKeyMap(),
		help:       help.New(),
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > maxProgressWidth {
			width = maxProgressWidth
		}
		if width < 10 {
			width = 10
		}
		m.progress.Width = width
		m.help.Width = msg.Width

	case snapshotMsg:
		if m.snapshot.State != timer.StateIdle {
			m.snapshot = timer.Snapshot(msg)
		}

	case eventMsg:
		if msg.Type == timer.EventTick {
			return m, nil
		}
		m.snapshot = timer.Snapshot{Mode: msg.Mode, State: msg.State, Remaining: msg.Remaining, Total: msg.Total}
		if msg.State == timer.StateIdle {
			m.snapshot = idleSnapshot(m.settings)
		}

	case alertMsg:
		m.alert = &msg

	case alertClosedMsg:
		if m.alert != nil && m.alert.serial == msg.serial {
			m.alert = nil
		}
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.controller.Stop()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Start):
		if m.snapshot.State != timer.StateIdle {
			return m, nil
		}
		if err := m.controller.Start(m.settings.TimerConfig()); err != nil {
			m.err = preferences.UserMessage(err)
			return m, nil
		}
		m.err = ""
		total := int(m.settings.WorkDuration().Seconds())
		m.snapshot = timer.Snapshot{Mode: timer.ModeWork, State: timer.StateActive, Remaining: total, Total: total}

	case key.Matches(msg, m.keys.Pause):
		m.controller.Pause()
		switch m.snapshot.State {
		case timer.StateActive:
			m.snapshot.State = timer.StatePaused
		case timer.StatePaused:
			m.snapshot.State = timer.StateActive
		}

	case key.Matches(msg, m.keys.Stop):
		m.controller.Stop()
		m.alert = nil
		m.snapshot = idleSnapshot(m.settings)

	case key.Matches(msg, m.keys.Dismiss):
		if m.alert != nil {
			dismiss := m.alert.dismiss
			m.alert = nil
			if dismiss != nil {
				dismiss()
			}
		}
	}

	return m, nil
}

// View renders the timer screen.
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(titleStyle.Render("Pomodoro Timer"))
	sb.WriteString("  ")
	sb.WriteString(modeStyle(m.snapshot.Mode).Render(modeLabel(m.snapshot)))
	sb.WriteString("\n")

	sb.WriteString(clockStyle.Render(formatClock(m.snapshot.Remaining)))
	sb.WriteString("\n")
	sb.WriteString(m.progress.ViewAs(m.snapshot.Progress()))
	sb.WriteString("\n\n")

	sb.WriteString(mutedStyle.Render(fmt.Sprintf("work %dm · break %dm %ds",
		m.settings.WorkMinutes, m.settings.BreakMinutes, m.settings.BreakSeconds)))
	sb.WriteString("\n")

	if m.alert != nil {
		sb.WriteString("\n")
		body := modeStyle(alertMode(m.alert.alert.Title)).Render(m.alert.alert.Title) + "\n" +
			m.alert.alert.Message + "\n" +
			mutedStyle.Render("press enter to continue")
		sb.WriteString(alertBoxStyle.Render(body))
		sb.WriteString("\n")
	}

	if m.err != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.err))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	sb.WriteString("\n")
	return sb.String()
}

func idleSnapshot(settings preferences.Settings) timer.Snapshot {
	return timer.Snapshot{Mode: timer.ModeWork, State: timer.StateIdle, Remaining: int(settings.WorkDuration().Seconds())}
}

func modeLabel(snapshot timer.Snapshot) string {
	mode := "Work"
	if snapshot.Mode == timer.ModeBreak {
		mode = "Break"
	}
	switch snapshot.State {
	case timer.StateIdle:
		return "Ready"
	case timer.StatePaused:
		return mode + " (paused)"
	case timer.StateAwaitingDismissal:
		return mode + " (waiting)"
	}
	return mode
}

func modeStyle(mode timer.Mode) lipgloss.Style {
	if mode == timer.ModeBreak {
		return breakStyle
	}
	return workStyle
}

func alertMode(title string) timer.Mode {
	if breakTitle, _ := timer.ModeBreak.Announcement(); title == breakTitle {
		return timer.ModeBreak
	}
	return timer.ModeWork
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
