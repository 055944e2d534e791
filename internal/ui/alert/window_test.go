package alert

import (
	"context"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/require"

	"pomodoro/internal/notify"
)

var breakAlert = notify.Alert{Title: "Break Time!", Message: "It's time to take a break!"}

// uiQueue collects work scheduled for the UI goroutine so the test goroutine
// can run it.
type uiQueue chan func()

func (queue uiQueue) do(fn func()) {
	queue <- fn
}

func (queue uiQueue) run(t *testing.T, count int) {
	t.Helper()
	for range count {
		select {
		case fn := <-queue:
			fn()
		case <-time.After(time.Second):
			t.Fatal("expected UI work was not scheduled")
		}
	}
}

func newTestPopup(t *testing.T) (*Window, uiQueue) {
	t.Helper()
	popup := New(test.NewTempApp(t))
	queue := make(uiQueue, 8)
	popup.do = queue.do
	return popup, queue
}

type dismissCounter struct {
	count int
}

func (counter *dismissCounter) dismiss() {
	counter.count++
}

func TestTitleColor(t *testing.T) {
	require.Equal(t, breakColor, titleColor("Break Time!"))
	require.Equal(t, workColor, titleColor("Work Time!"))
	require.Equal(t, workColor, titleColor(""))
}

func TestPresent_OKDismissesOnce(t *testing.T) {
	popup, queue := newTestPopup(t)
	counter := &dismissCounter{}

	popup.Present(context.Background(), breakAlert, counter.dismiss)
	queue.run(t, 1)

	require.Equal(t, "Break Time!", popup.title.Text)
	require.Equal(t, breakColor, popup.title.Color)
	require.Equal(t, "It's time to take a break!", popup.message.Text)

	test.Tap(popup.okButton)
	test.Tap(popup.okButton)

	require.Equal(t, 1, counter.count)
}

func TestPresent_CloseDismissesOnce(t *testing.T) {
	popup, queue := newTestPopup(t)
	counter := &dismissCounter{}

	popup.Present(context.Background(), notify.Alert{Title: "Work Time!", Message: "Break is over! Back to work."}, counter.dismiss)
	queue.run(t, 1)
	require.Equal(t, workColor, popup.title.Color)

	// acknowledge is the window's close intercept.
	popup.acknowledge()
	popup.acknowledge()

	require.Equal(t, 1, counter.count)
}

func TestPresent_WithdrawnWhenContextEnds(t *testing.T) {
	popup, queue := newTestPopup(t)
	counter := &dismissCounter{}
	ctx, cancel := context.WithCancel(context.Background())

	popup.Present(ctx, breakAlert, counter.dismiss)
	queue.run(t, 1)
	cancel()
	queue.run(t, 1)

	test.Tap(popup.okButton)
	require.Zero(t, counter.count)
}

func TestPresent_IgnoresStaleWithdrawal(t *testing.T) {
	popup, queue := newTestPopup(t)
	first := &dismissCounter{}
	second := &dismissCounter{}
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	popup.Present(firstCtx, breakAlert, first.dismiss)
	popup.Present(context.Background(), notify.Alert{Title: "Work Time!", Message: "Break is over! Back to work."}, second.dismiss)
	queue.run(t, 2)
	require.Equal(t, "Work Time!", popup.title.Text)

	cancelFirst()
	queue.run(t, 1)

	test.Tap(popup.okButton)
	require.Zero(t, first.count)
	require.Equal(t, 1, second.count)
}
