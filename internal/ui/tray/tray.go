package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

const menuTitle = "Pomodoro"

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnStart       func()
	OnTogglePause func()
	OnStop        func()
	OnQuit        func()
}

// Icons are swapped as the timer pauses and resumes.
type Icons struct {
	Running fyne.Resource
	Paused  fyne.Resource
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	icons       Icons
	callbacks   Callbacks
	menu        *fyne.Menu
	statusItem  *fyne.MenuItem
	startItem   *fyne.MenuItem
	pauseItem   *fyne.MenuItem
	stopItem    *fyne.MenuItem
	running     bool
	paused      bool
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:         app,
		icons:       icons,
		callbacks:   callbacks,
		statusLabel: "idle",
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true
	manager.startItem = fyne.NewMenuItem("Start", invoke(&manager.callbacks.OnStart))
	manager.pauseItem = fyne.NewMenuItem("Pause", invoke(&manager.callbacks.OnTogglePause))
	manager.stopItem = fyne.NewMenuItem("Stop", invoke(&manager.callbacks.OnStop))
	manager.menu = fyne.NewMenu(menuTitle,
		manager.statusItem,
		fyne.NewMenuItem("Show Timer", invoke(&manager.callbacks.OnShow)),
		fyne.NewMenuItemSeparator(),
		manager.startItem,
		manager.pauseItem,
		manager.stopItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", invoke(&manager.callbacks.OnQuit)),
	)

	manager.updateItems()
	if app != nil {
		app.SetSystemTrayMenu(manager.menu)
		if icons.Running != nil {
			app.SetSystemTrayIcon(icons.Running)
		}
	}
	return manager
}

// Update sets the status line and which actions are available. The menu is
// refreshed only when something changed and the icon only when pause toggles.
func (manager *Manager) Update(status string, running, paused bool) {
	if status == manager.statusLabel && running == manager.running && paused == manager.paused {
		return
	}
	iconChanged := paused != manager.paused
	manager.statusLabel = status
	manager.running = running
	manager.paused = paused
	manager.applyState()

	if manager.app == nil || !iconChanged {
		return
	}
	icon := manager.icons.Running
	if paused && manager.icons.Paused != nil {
		icon = manager.icons.Paused
	}
	if icon != nil {
		manager.app.SetSystemTrayIcon(icon)
	}
}

func (manager *Manager) applyState() {
	manager.updateItems()
	if manager.app != nil {
		manager.menu.Refresh()
	}
}

func (manager *Manager) updateItems() {
	manager.statusItem.Label = statusLine(manager.statusLabel, manager.paused)
	manager.startItem.Disabled = manager.running
	manager.pauseItem.Disabled = !manager.running
	manager.stopItem.Disabled = !manager.running
	if manager.paused {
		manager.pauseItem.Label = "Resume"
	} else {
		manager.pauseItem.Label = "Pause"
	}
}

func statusLine(status string, paused bool) string {
	if paused {
		status = fmt.Sprintf("%s (paused)", status)
	}
	return fmt.Sprintf("Status: %s", status)
}

func invoke(handler *func()) func() {
	return func() {
		if *handler != nil {
			(*handler)()
		}
	}
}
