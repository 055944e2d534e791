package alert

import (
	"context"
	"image/color"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"pomodoro/internal/notify"
)

const (
	popupWidth  = float32(360)
	popupHeight = float32(150)
)

var (
	breakColor = color.NRGBA{R: 46, G: 160, B: 67, A: 255}
	workColor  = color.NRGBA{R: 214, G: 69, B: 65, A: 255}
)

// Window is a popup that stays up until the user acknowledges it.
type Window struct {
	window   fyne.Window
	title    *canvas.Text
	message  *widget.Label
	okButton *widget.Button
	serial   atomic.Uint64
	// dismiss is only touched on the UI goroutine.
	dismiss func()
	// do runs fn on the UI goroutine.
	do func(fn func())
}

// New creates the hidden popup window.
func New(app fyne.App) *Window {
	window := app.NewWindow("Pomodoro")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	title := canvas.NewText("", workColor)
	title.Alignment = fyne.TextAlignCenter
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = 22

	message := widget.NewLabel("")
	message.Alignment = fyne.TextAlignCenter
	message.Wrapping = fyne.TextWrapWord

	okButton := widget.NewButton("OK", nil)
	okButton.Importance = widget.HighImportance

	buttons := container.NewHBox(layout.NewSpacer(), okButton, layout.NewSpacer())
	window.SetContent(container.NewBorder(title, buttons, nil, nil, message))
	window.SetFixedSize(true)
	window.Resize(fyne.NewSize(popupWidth, popupHeight))

	popup := &Window{
		window:   window,
		title:    title,
		message:  message,
		okButton: okButton,
		do:       fyne.Do,
	}
	okButton.OnTapped = popup.acknowledge
	window.SetCloseIntercept(popup.acknowledge)
	return popup
}

// Present shows alert until the user acknowledges it or ctx is done. A later
// Present supersedes an earlier one, whose withdrawal is then ignored.
func (popup *Window) Present(ctx context.Context, alert notify.Alert, dismiss func()) {
	serial := popup.serial.Add(1)

	popup.do(func() {
		if popup.serial.Load() != serial {
			return
		}
		popup.dismiss = dismiss
		popup.title.Text = alert.Title
		popup.title.Color = titleColor(alert.Title)
		popup.title.Refresh()
		popup.message.SetText(alert.Message)
		popup.window.CenterOnScreen()
		popup.window.Show()
		popup.window.RequestFocus()
		popup.keepOnTop()
	})

	go func() {
		<-ctx.Done()
		popup.do(func() {
			if popup.serial.Load() != serial {
				return
			}
			popup.dismiss = nil
			popup.window.Hide()
		})
	}()
}

func (popup *Window) acknowledge() {
	handler := popup.dismiss
	popup.dismiss = nil
	popup.window.Hide()
	if handler != nil {
		handler()
	}
}

func titleColor(title string) color.Color {
	if title == "Break Time!" {
		return breakColor
	}
	return workColor
}
