package main

import (
	"context"
	"errors"
	"os"
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/cobra"

	"pomodoro/internal/logging"
	"pomodoro/internal/notify"
	"pomodoro/internal/platform"
	"pomodoro/internal/sound/playback"
	"pomodoro/internal/storage"
	"pomodoro/internal/ui/alert"
	"pomodoro/internal/ui/mainwindow"
	"pomodoro/internal/ui/preferences"
	"pomodoro/internal/ui/tray"
	"pomodoro/resources"
)

func runGUI(ctx context.Context, cmd *cobra.Command, opts *options, settings preferences.Settings) error {
	guard, err := platform.AcquireSingleInstance(appID)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			if activateErr := platform.ActivateRunning(appID); activateErr != nil {
				logging.Warnf("single instance: %v", activateErr)
			}
			logging.Infof("another instance is running; asked it to come forward")
			return nil
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.AppIconName))

	var presenter notify.Presenter
	if settings.Popup {
		presenter = alert.New(fyneApp)
	}
	dispatcher := notify.NewDispatcher(notify.Options{
		Player:      playback.NewBeepPlayer(),
		Presenter:   presenter,
		Toasters:    toasters(fyneApp, settings),
		RepeatSound: settings.RepeatSound,
	})
	defer dispatcher.Close()

	var trayManager *tray.Manager
	window := mainwindow.New(fyneApp, settings, dispatcher, mainwindow.Options{
		OnStatus: func(status mainwindow.Status) {
			if trayManager == nil {
				return
			}
			trayManager.Update(status.Text, status.Running, status.Paused)
		},
		OnQuit: fyneApp.Quit,
	})

	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, tray.Icons{
			Running: resources.MustIcon(resources.AppIconName),
			Paused:  resources.MustIcon(resources.PausedIconName),
		}, tray.Callbacks{
			OnShow: window.Show,
			OnStart: func() {
				window.Show()
				window.Start()
			},
			OnTogglePause: window.TogglePause,
			OnStop:        window.Stop,
			OnQuit:        window.Quit,
		})
	} else {
		logging.Infof("system tray unsupported on this platform")
	}

	go guard.Serve(func() {
		fyne.Do(window.Show)
	})

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if path, err := opts.settingsPath(); err != nil {
		logging.Warnf("settings watcher: %v", err)
	} else if err := storage.Watch(watchCtx, path, func(updated preferences.Settings) {
		window.ApplySettings(opts.applyOverrides(cmd, updated))
	}); err != nil {
		logging.Warnf("settings watcher: %v", err)
	}

	finished := make(chan struct{})
	go func() {
		select {
		case <-finished:
		case <-ctx.Done():
			select {
			case <-finished:
			default:
				logging.Infof("interrupted, shutting down")
				fyne.Do(window.Quit)
			}
		}
	}()

	window.Show()
	fyneApp.Run()
	close(finished)
	return nil
}

// toasters picks the desktop notification back-end for this OS.
func toasters(fyneApp fyne.App, settings preferences.Settings) []notify.Toaster {
	if !settings.DesktopToast {
		return nil
	}
	if runtime.GOOS == "linux" && os.Getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
		return []notify.Toaster{&notify.DBusToaster{AppName: appName, Icon: "alarm-symbolic"}}
	}
	if fyneApp != nil {
		return []notify.Toaster{notify.AppToaster{App: fyneApp}}
	}
	return nil
}
