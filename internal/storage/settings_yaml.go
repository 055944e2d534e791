package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"pomodoro/internal/platform"
	"pomodoro/internal/ui/preferences"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	WorkMinutes  int    `yaml:"work_minutes"`
	BreakMinutes int    `yaml:"break_minutes"`
	BreakSeconds int    `yaml:"break_seconds"`
	SoundPath    string `yaml:"sound_path"`
	RepeatSound  *bool  `yaml:"repeat_sound,omitempty"`
	DesktopToast *bool  `yaml:"desktop_toast,omitempty"`
	Popup        *bool  `yaml:"popup,omitempty"`
}

// DefaultPath returns the settings file location under the user config dir.
func DefaultPath(appName string) (string, error) {
	configDir, err := platform.ConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve settings path: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(path string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML, creating the directory.
func SaveSettings(path string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := MarshalSettings(settings)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// MarshalSettings renders settings in the on-disk YAML layout.
func MarshalSettings(settings preferences.Settings) ([]byte, error) {
	fileData := yamlSettings{
		WorkMinutes:  settings.WorkMinutes,
		BreakMinutes: settings.BreakMinutes,
		BreakSeconds: settings.BreakSeconds,
		SoundPath:    settings.SoundPath,
		RepeatSound:  &settings.RepeatSound,
		DesktopToast: &settings.DesktopToast,
		Popup:        &settings.Popup,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return nil, fmt.Errorf("marshal settings yaml: %w", err)
	}
	return serialized, nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.WorkMinutes > 0 {
		settings.WorkMinutes = fileData.WorkMinutes
	}
	// A break is kept only when the minutes and seconds add up to a positive interval.
	if fileData.BreakMinutes >= 0 && fileData.BreakSeconds >= 0 && fileData.BreakMinutes+fileData.BreakSeconds > 0 {
		settings.BreakMinutes = fileData.BreakMinutes
		settings.BreakSeconds = fileData.BreakSeconds
	}
	settings.SoundPath = strings.TrimSpace(fileData.SoundPath)

	if fileData.RepeatSound != nil {
		settings.RepeatSound = *fileData.RepeatSound
	}
	if fileData.DesktopToast != nil {
		settings.DesktopToast = *fileData.DesktopToast
	}
	if fileData.Popup != nil {
		settings.Popup = *fileData.Popup
	}
}
