package notify

import (
	"errors"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest     = "org.freedesktop.Notifications"
	notificationsPath     = "/org/freedesktop/Notifications"
	notificationsMethod   = "org.freedesktop.Notifications.Notify"
	notificationTimeoutMs = int32(10000)
)

// DBusToaster posts notifications to the freedesktop notification daemon.
type DBusToaster struct {
	AppName string
	Icon    string

	mu     sync.Mutex
	conn   *dbus.Conn
	lastID uint32
}

// Toast sends a notification, replacing the previous one from this toaster.
func (toaster *DBusToaster) Toast(title, message string) error {
	toaster.mu.Lock()
	defer toaster.mu.Unlock()

	if toaster.conn == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			return fmt.Errorf("connect session bus: %w", err)
		}
		toaster.conn = conn
	}

	object := toaster.conn.Object(notificationsDest, dbus.ObjectPath(notificationsPath))
	call := object.Call(notificationsMethod, 0,
		toaster.AppName,
		toaster.lastID,
		toaster.Icon,
		title,
		message,
		[]string{},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(1))},
		notificationTimeoutMs,
	)
	if call.Err != nil {
		return fmt.Errorf("send notification: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err == nil {
		toaster.lastID = id
	}
	return nil
}

// AppToaster sends notifications through the Fyne application.
type AppToaster struct {
	App fyne.App
}

// Toast implements Toaster.
func (toaster AppToaster) Toast(title, message string) error {
	if toaster.App == nil {
		return errors.New("send notification: no application")
	}
	toaster.App.SendNotification(fyne.NewNotification(title, message))
	return nil
}
