//go:build windows

package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (autostart) Enable(item LoginItem) error {
	if err := item.validate("enable"); err != nil {
		return err
	}

	command := exec.Command("reg", "add", registryRunKey,
		"/v", item.AppName,
		"/t", "REG_SZ",
		"/d", commandLine(item),
		"/f",
	)
	if output, err := command.CombinedOutput(); err != nil {
		return fmt.Errorf("enable autostart: reg add failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (autostart) Disable(appName string) error {
	if strings.TrimSpace(appName) == "" {
		return fmt.Errorf("disable autostart: %w", errEmptyAppName)
	}

	command := exec.Command("reg", "delete", registryRunKey, "/v", appName, "/f")
	if output, err := command.CombinedOutput(); err != nil {
		return fmt.Errorf("disable autostart: reg delete failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (autostart) Enabled(appName string) (bool, error) {
	// reg query exits non-zero when the value is missing.
	command := exec.Command("reg", "query", registryRunKey, "/v", appName)
	if err := command.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("autostart status: %w", err)
	}
	return true, nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}

func commandLine(item LoginItem) string {
	parts := []string{quoteWindowsPath(item.ExecPath)}
	for _, arg := range item.Args {
		if strings.Contains(arg, " ") {
			arg = quoteWindowsPath(arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

func quoteWindowsPath(execPath string) string {
	return `"` + strings.Trim(execPath, `"`) + `"`
}
