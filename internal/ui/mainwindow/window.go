// Package mainwindow is the desktop timer window: clock, progress bar,
// interval inputs and the start, pause and stop controls.
package mainwindow

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	fynestorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"pomodoro/internal/core/session"
	"pomodoro/internal/core/timer"
	"pomodoro/internal/logging"
	"pomodoro/internal/sound"
	"pomodoro/internal/ui/preferences"
)

const noSoundLabel = "(optional)"

// Status summarises the timer for the tray.
type Status struct {
	Text    string
	Running bool
	Paused  bool
}

// Options configures the window.
type Options struct {
	TickInterval time.Duration
	OnStatus     func(Status)
	// OnQuit runs after the window is closed and the timer stopped.
	OnQuit func()
}

// Window is the main timer window.
type Window struct {
	app        fyne.App
	window     fyne.Window
	controller *session.Controller
	options    Options

	settings preferences.Settings
	pending  *reload

	// fileSound is the sound path last read from the settings file.
	fileSound string
	// do runs fn on the UI goroutine.
	do func(fn func())

	clock       *canvas.Text
	modeLabel   *widget.Label
	progress    *widget.ProgressBar
	workEntry   *widget.Entry
	breakEntry  *widget.Entry
	secondEntry *widget.Entry
	soundButton *widget.Button
	soundLabel  *widget.Label
	startButton *widget.Button
	pauseButton *widget.Button
	stopButton  *widget.Button
}

// reload is a settings file change waiting to be applied.
type reload struct {
	settings     preferences.Settings
	soundChanged bool
}

// New creates the main window. notifier receives interval-end alerts.
func New(app fyne.App, settings preferences.Settings, notifier session.Notifier, options Options) *Window {
	window := app.NewWindow("Pomodoro Timer")

	clock := canvas.NewText(formatClock(settings.WorkMinutes*60), color.NRGBA{R: 214, G: 69, B: 65, A: 255})
	clock.Alignment = fyne.TextAlignCenter
	clock.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	clock.TextSize = 48

	modeLabel := widget.NewLabelWithStyle("Ready", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	progress := widget.NewProgressBar()
	progress.TextFormatter = func() string { return "" }

	workEntry := widget.NewEntry()
	breakEntry := widget.NewEntry()
	secondEntry := widget.NewEntry()

	soundButton := widget.NewButton("Select Sound", nil)
	soundLabel := widget.NewLabel(noSoundLabel)

	startButton := widget.NewButton("Start", nil)
	startButton.Importance = widget.HighImportance
	pauseButton := widget.NewButton("Pause", nil)
	stopButton := widget.NewButton("Stop", nil)

	inputs := container.NewHBox(
		layout.NewSpacer(),
		widget.NewLabel("Work (min):"), sizedEntry(workEntry),
		widget.NewLabel("Break (min):"), sizedEntry(breakEntry),
		widget.NewLabel("sec:"), sizedEntry(secondEntry),
		layout.NewSpacer(),
	)
	soundRow := container.NewHBox(layout.NewSpacer(), soundButton, soundLabel, layout.NewSpacer())
	buttons := container.NewHBox(layout.NewSpacer(), startButton, pauseButton, stopButton, layout.NewSpacer())

	window.SetContent(container.NewPadded(container.NewVBox(
		clock,
		modeLabel,
		progress,
		soundRow,
		inputs,
		buttons,
	)))
	window.Resize(fyne.NewSize(525, 450))

	view := &Window{
		app:         app,
		window:      window,
		options:     options,
		clock:       clock,
		modeLabel:   modeLabel,
		progress:    progress,
		workEntry:   workEntry,
		breakEntry:  breakEntry,
		secondEntry: secondEntry,
		soundButton: soundButton,
		soundLabel:  soundLabel,
		startButton: startButton,
		pauseButton: pauseButton,
		stopButton:  stopButton,
		fileSound:   settings.SoundPath,
		do:          fyne.Do,
	}
	view.controller = session.New(notifier, session.Options{
		TickInterval: options.TickInterval,
		OnTick:       view.handleTick,
		OnEvent:      view.handleEvent,
	})

	view.applySettings(settings)
	workEntry.OnChanged = view.handleWorkChanged
	soundButton.OnTapped = view.selectSound
	startButton.OnTapped = view.Start
	pauseButton.OnTapped = view.TogglePause
	stopButton.OnTapped = view.Stop
	window.SetCloseIntercept(view.Quit)

	view.showIdle()
	return view
}

// Show displays the window.
func (view *Window) Show() {
	view.window.Show()
	view.window.RequestFocus()
}

// Start validates the inputs and begins a work interval.
func (view *Window) Start() {
	if view.controller.Snapshot().State != timer.StateIdle {
		return
	}

	settings, err := preferences.ParseIntervals(view.settings, view.workEntry.Text, view.breakEntry.Text, view.secondEntry.Text)
	if err != nil {
		logging.Warnf("rejected interval input: %v", err)
		dialog.ShowError(errors.New(preferences.UserMessage(err)), view.window)
		return
	}
	view.settings = settings

	if err := view.controller.Start(settings.TimerConfig()); err != nil {
		dialog.ShowError(err, view.window)
		return
	}
	logging.Debugf("started with work=%dm break=%dm%ds sound=%q",
		settings.WorkMinutes, settings.BreakMinutes, settings.BreakSeconds, settings.SoundPath)

	view.render(timer.Snapshot{
		Mode:      timer.ModeWork,
		State:     timer.StateActive,
		Remaining: settings.WorkMinutes * 60,
		Total:     settings.WorkMinutes * 60,
	})
}

// TogglePause pauses or resumes the current run.
func (view *Window) TogglePause() {
	view.controller.Pause()
	view.render(view.controller.Snapshot())
}

// Stop ends the run and resets the display to the work interval.
func (view *Window) Stop() {
	view.controller.Stop()
	if view.pending != nil {
		view.applyReload(*view.pending)
		view.pending = nil
	}
	view.showIdle()
}

// Quit stops the timer and closes the window.
func (view *Window) Quit() {
	logging.Debugf("main window closing")
	view.controller.Stop()
	view.window.Close()
	if view.options.OnQuit != nil {
		view.options.OnQuit()
	}
}

// ApplySettings replaces the interval inputs with reloaded file settings.
// While a run is in progress the values are held until it stops. A sound
// picked in the window is kept unless the file's sound changed. Safe to call
// from any goroutine.
func (view *Window) ApplySettings(settings preferences.Settings) {
	view.do(func() {
		update := reload{
			settings:     settings,
			soundChanged: settings.SoundPath != view.fileSound,
		}
		view.fileSound = settings.SoundPath
		if view.pending != nil && view.pending.soundChanged {
			update.soundChanged = true
		}

		if view.controller.Snapshot().State != timer.StateIdle {
			view.pending = &update
			return
		}
		view.applyReload(update)
		view.showIdle()
	})
}

func (view *Window) applyReload(update reload) {
	settings := update.settings
	if !update.soundChanged {
		settings.SoundPath = view.settings.SoundPath
	}
	view.applySettings(settings)
}

func (view *Window) applySettings(settings preferences.Settings) {
	view.settings = settings
	view.workEntry.SetText(strconv.Itoa(settings.WorkMinutes))
	view.breakEntry.SetText(strconv.Itoa(settings.BreakMinutes))
	view.secondEntry.SetText(strconv.Itoa(settings.BreakSeconds))
	view.soundLabel.SetText(soundLabelText(settings.SoundPath))
}

func (view *Window) handleTick(timer.Snapshot) {
	view.do(view.renderCurrent)
}

func (view *Window) handleEvent(event timer.Event) {
	if event.Type == timer.EventTick {
		return
	}
	logging.Debugf("timer event %s: state=%s mode=%s remaining=%ds", event.Type, event.State, event.Mode, event.Remaining)
	view.do(view.renderCurrent)
}

// renderCurrent redraws from the controller. Stop has already drawn the idle
// state, so an idle controller is skipped.
func (view *Window) renderCurrent() {
	snapshot := view.controller.Snapshot()
	if snapshot.State == timer.StateIdle {
		return
	}
	view.render(snapshot)
}

func (view *Window) handleWorkChanged(text string) {
	if view.controller.Snapshot().State != timer.StateIdle {
		return
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		minutes = view.settings.WorkMinutes
	}
	view.clock.Text = formatClock(minutes * 60)
	view.clock.Refresh()
}

func (view *Window) selectSound() {
	picker := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, view.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		logging.Debugf("sound file selected: %s", path)
		view.settings.SoundPath = path
		view.soundLabel.SetText(soundLabelText(path))
	}, view.window)

	picker.SetFilter(fynestorage.NewExtensionFileFilter(sound.Extensions()))
	if view.settings.SoundPath != "" {
		if dir, err := fynestorage.ListerForURI(fynestorage.NewFileURI(filepath.Dir(view.settings.SoundPath))); err == nil {
			picker.SetLocation(dir)
		}
	}
	picker.Show()
}

// render updates every widget from snapshot. It must run on the UI goroutine.
func (view *Window) render(snapshot timer.Snapshot) {
	view.clock.Text = formatClock(snapshot.Remaining)
	view.clock.Refresh()

	maximum, value := progressRange(snapshot)
	view.progress.Max = maximum
	view.progress.SetValue(value)
	view.modeLabel.SetText(modeText(snapshot))

	running := snapshot.State != timer.StateIdle
	paused := snapshot.State == timer.StatePaused
	setEnabled(!running, view.workEntry, view.breakEntry, view.secondEntry, view.startButton)
	setEnabled(running, view.pauseButton, view.stopButton)
	setEnabled(!running || paused, view.soundButton)
	if paused {
		view.pauseButton.SetText("Resume")
	} else {
		view.pauseButton.SetText("Pause")
	}

	if view.options.OnStatus != nil {
		view.options.OnStatus(Status{Text: statusText(snapshot), Running: running, Paused: paused})
	}
}

func (view *Window) showIdle() {
	minutes, err := strconv.Atoi(strings.TrimSpace(view.workEntry.Text))
	if err != nil {
		minutes = view.settings.WorkMinutes
	}
	view.render(timer.Snapshot{Mode: timer.ModeWork, State: timer.StateIdle, Remaining: minutes * 60})
}

type enabler interface {
	Enable()
	Disable()
}

func setEnabled(enabled bool, widgets ...enabler) {
	for _, item := range widgets {
		if enabled {
			item.Enable()
		} else {
			item.Disable()
		}
	}
}

func sizedEntry(entry *widget.Entry) fyne.CanvasObject {
	return container.NewGridWrap(fyne.NewSize(64, entry.MinSize().Height), entry)
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// progressRange returns the bar maximum (the interval total) and elapsed seconds.
func progressRange(snapshot timer.Snapshot) (float64, float64) {
	if snapshot.State == timer.StateIdle || snapshot.Total <= 0 {
		return 1, 0
	}
	elapsed := snapshot.Total - snapshot.Remaining
	if elapsed < 0 {
		elapsed = 0
	}
	return float64(snapshot.Total), float64(elapsed)
}

func modeText(snapshot timer.Snapshot) string {
	switch snapshot.State {
	case timer.StateIdle:
		return "Ready"
	case timer.StatePaused:
		return "Paused"
	case timer.StateAwaitingDismissal:
		return "Waiting for you to dismiss the alert"
	}
	if snapshot.Mode == timer.ModeBreak {
		return "Break"
	}
	return "Work"
}

// statusText summarises the run in whole minutes so the tray changes once a
// minute rather than every tick.
func statusText(snapshot timer.Snapshot) string {
	if snapshot.State == timer.StateIdle {
		return "idle"
	}
	label := "Work"
	if snapshot.Mode == timer.ModeBreak {
		label = "Break"
	}
	minutes := (snapshot.Remaining + 59) / 60
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%s, %d min left", label, minutes)
}

func soundLabelText(path string) string {
	if strings.TrimSpace(path) == "" {
		return noSoundLabel
	}
	return filepath.Base(path)
}
