package tray

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/require"
)

type fakeTray struct {
	desktop.App
	menus []*fyne.Menu
	icons []fyne.Resource
}

func (tray *fakeTray) SetSystemTrayMenu(menu *fyne.Menu) {
	tray.menus = append(tray.menus, menu)
}

func (tray *fakeTray) SetSystemTrayIcon(icon fyne.Resource) {
	tray.icons = append(tray.icons, icon)
}

var (
	runningIcon = fyne.NewStaticResource("running.svg", []byte("<svg/>"))
	pausedIcon  = fyne.NewStaticResource("paused.svg", []byte("<svg/>"))
)

func TestManager_WithoutDesktopApp(t *testing.T) {
	started := 0
	manager := New(nil, Icons{}, Callbacks{OnStart: func() { started++ }})

	require.Equal(t, "Status: idle", manager.statusItem.Label)
	require.False(t, manager.startItem.Disabled)
	require.True(t, manager.pauseItem.Disabled)
	require.True(t, manager.stopItem.Disabled)

	manager.startItem.Action()
	require.Equal(t, 1, started)

	manager.Update("Work, 25 min left", true, false)
	require.Equal(t, "Status: Work, 25 min left", manager.statusItem.Label)
	require.True(t, manager.startItem.Disabled)
	require.False(t, manager.stopItem.Disabled)

	manager.Update("Work, 25 min left", true, true)
	require.Equal(t, "Status: Work, 25 min left (paused)", manager.statusItem.Label)
	require.Equal(t, "Resume", manager.pauseItem.Label)
}

func TestManager_SetsMenuOnceAndUpdatesInPlace(t *testing.T) {
	test.NewTempApp(t)
	tray := &fakeTray{}
	manager := New(tray, Icons{Running: runningIcon, Paused: pausedIcon}, Callbacks{})

	require.Len(t, tray.menus, 1)
	require.Equal(t, []fyne.Resource{runningIcon}, tray.icons)
	menu := tray.menus[0]

	for range 3 {
		manager.Update("Work, 25 min left", true, false)
	}
	manager.Update("Work, 24 min left", true, false)

	require.Len(t, tray.menus, 1)
	require.Equal(t, "Status: Work, 24 min left", menu.Items[0].Label)
	require.True(t, manager.startItem.Disabled)
	require.Len(t, tray.icons, 1)

	manager.Update("Work, 24 min left", true, true)
	require.Equal(t, []fyne.Resource{runningIcon, pausedIcon}, tray.icons)
	require.Equal(t, "Resume", manager.pauseItem.Label)

	manager.Update("Work, 24 min left", true, false)
	require.Equal(t, []fyne.Resource{runningIcon, pausedIcon, runningIcon}, tray.icons)
}

func TestInvoke_NilHandler(t *testing.T) {
	var handler func()
	require.NotPanics(t, invoke(&handler))
}
