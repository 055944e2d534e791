//go:build linux

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (autostart) Enable(item LoginItem) error {
	if err := item.validate("enable"); err != nil {
		return err
	}

	path, err := desktopEntryPath(item.AppName)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create autostart dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(buildDesktopEntry(item)), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write desktop entry: %w", err)
	}
	return nil
}

func (autostart) Disable(appName string) error {
	if strings.TrimSpace(appName) == "" {
		return fmt.Errorf("disable autostart: %w", errEmptyAppName)
	}

	path, err := desktopEntryPath(appName)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("disable autostart: remove desktop entry: %w", err)
	}
	return nil
}

func (autostart) Enabled(appName string) (bool, error) {
	path, err := desktopEntryPath(appName)
	if err != nil {
		return false, fmt.Errorf("autostart status: %w", err)
	}
	return fileExists(path)
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

func desktopEntryPath(appName string) (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart", slug(appName)+".desktop"), nil
}

// buildDesktopEntry renders an XDG autostart entry. Arguments containing
// spaces are quoted as the Exec key requires.
func buildDesktopEntry(item LoginItem) string {
	parts := make([]string, 0, len(item.Args)+1)
	for _, part := range append([]string{item.ExecPath}, item.Args...) {
		if strings.ContainsAny(part, ` "`) {
			part = `"` + strings.ReplaceAll(part, `"`, `\"`) + `"`
		}
		parts = append(parts, part)
	}

	return fmt.Sprintf(
		`[Desktop Entry]
Type=Application
Name=%s
Comment=Work/break interval timer
Exec=%s
Icon=%s
X-GNOME-Autostart-enabled=true
Terminal=false
`,
		item.AppName,
		strings.Join(parts, " "),
		slug(item.AppName),
	)
}
