package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pomodoro/internal/logging"
	"pomodoro/internal/platform"
	"pomodoro/internal/sound/playback"
	"pomodoro/internal/storage"
	"pomodoro/internal/tui"
)

func newTUICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the timer in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.loadSettings(cmd)
			if err != nil {
				return err
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			// Log lines would tear the full-screen view.
			logging.SetConsole(false)
			defer logging.SetConsole(true)

			return tui.Run(cmd.Context(), settings, tui.Options{
				Player:   playback.NewBeepPlayer(),
				Toasters: toasters(nil, settings),
			})
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the settings file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective settings to the settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.settingsPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("settings file %s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("check settings file: %w", err)
			}

			settings, err := opts.loadSettings(cmd)
			if err != nil {
				return err
			}
			if err := settings.Validate(); err != nil {
				return err
			}
			if err := storage.SaveSettings(path, settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.loadSettings(cmd)
			if err != nil {
				return err
			}
			serialized, err := storage.MarshalSettings(settings)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(serialized)
			return err
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.settingsPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd, pathCmd)
	return cmd
}

func newAutostartCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage launching the timer at login",
	}
	service := platform.NewAutostart()

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Launch the timer at login",
			RunE: func(cmd *cobra.Command, args []string) error {
				execPath, err := os.Executable()
				if err != nil {
					return fmt.Errorf("resolve executable: %w", err)
				}
				item := platform.LoginItem{AppName: appName, ExecPath: execPath}
				if opts.configPath != "" {
					path, err := opts.settingsPath()
					if err != nil {
						return err
					}
					item.Args = []string{"--config", path}
				}
				if err := service.Enable(item); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "autostart enabled")
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Stop launching the timer at login",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := service.Disable(appName); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "autostart disabled")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report whether the timer launches at login",
			RunE: func(cmd *cobra.Command, args []string) error {
				enabled, err := service.Enabled(appName)
				if err != nil {
					return err
				}
				if enabled {
					fmt.Fprintln(cmd.OutOrStdout(), "enabled")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "disabled")
				}
				return nil
			},
		},
	)
	return cmd
}
