// Package platform holds the OS-specific pieces: login items, the config
// directory and the single-instance guard.
package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var errEmptyAppName = errors.New("app name is empty")

// LoginItem describes how the application is launched at login.
type LoginItem struct {
	AppName  string
	ExecPath string
	Args     []string
}

// Autostart manages the per-user login item.
type Autostart interface {
	Enable(item LoginItem) error
	Disable(appName string) error
	Enabled(appName string) (bool, error)
}

type autostart struct{}

// NewAutostart returns the implementation for the running OS.
func NewAutostart() Autostart {
	return autostart{}
}

// ConfigDir returns the OS-standard configuration directory, falling back to
// a path under the home directory when it cannot be determined.
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

func (item LoginItem) validate(action string) error {
	if strings.TrimSpace(item.AppName) == "" {
		return fmt.Errorf("%s autostart: %w", action, errEmptyAppName)
	}
	if strings.TrimSpace(item.ExecPath) == "" {
		return fmt.Errorf("%s autostart: exec path is empty", action)
	}
	return nil
}

// slug turns an application name into a lowercase file-name-safe identifier.
func slug(appName string) string {
	name := strings.ToLower(strings.TrimSpace(appName))
	name = strings.ReplaceAll(name, " ", "-")
	if name == "" {
		return "pomodoro"
	}
	return name
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
