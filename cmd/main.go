package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"pomodoro/internal/logging"
	"pomodoro/internal/storage"
	"pomodoro/internal/ui/preferences"
)

const (
	appName = "Pomodoro"
	appID   = "com.pomodoro.timer"
	// configDirName is the directory under the user config dir.
	configDirName = "pomodoro"
)

// Version is set at build time.
var Version = "dev"

// options holds the persistent flags shared by every command.
type options struct {
	configPath   string
	verbosity    int
	logLevel     string
	logFile      string
	work         int
	breakMinutes int
	breakSeconds int
	soundPath    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "pomodoro",
		Short:        "Work/break interval timer",
		Long:         "A Pomodoro timer that alternates work and break intervals and waits for you to acknowledge each one.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetVerbosity(opts.verbosity)
			if cmd.Flags().Changed("log-level") {
				level, err := logging.ParseLevel(opts.logLevel)
				if err != nil {
					return err
				}
				logging.SetLevel(level)
			}
			return logging.SetOutput(opts.logFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.loadSettings(cmd)
			if err != nil {
				return err
			}
			return runGUI(cmd.Context(), cmd, opts, settings)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "settings file (default is the user config dir)")
	flags.CountVarP(&opts.verbosity, "verbose", "v", "increase log detail (-v info, -vv debug)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (error, warn, info, debug); overrides -v")
	flags.StringVar(&opts.logFile, "log-file", "", "also append logs to this file")
	flags.IntVar(&opts.work, "work", 0, "work interval in minutes")
	flags.IntVar(&opts.breakMinutes, "break", 0, "break interval in minutes")
	flags.IntVar(&opts.breakSeconds, "break-seconds", 0, "additional break seconds")
	flags.StringVar(&opts.soundPath, "sound", "", "alarm sound file (.wav .mp3 .flac .ogg)")

	cmd.AddCommand(
		newTUICmd(opts),
		newConfigCmd(opts),
		newAutostartCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// settingsPath returns --config or the default settings location.
func (opts *options) settingsPath() (string, error) {
	if opts.configPath != "" {
		return filepath.Abs(opts.configPath)
	}
	return storage.DefaultPath(configDirName)
}

// loadSettings reads the settings file and applies flag overrides.
func (opts *options) loadSettings(cmd *cobra.Command) (preferences.Settings, error) {
	path, err := opts.settingsPath()
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	settings, err := storage.LoadSettings(path)
	if err != nil {
		return settings, err
	}
	return opts.applyOverrides(cmd, settings), nil
}

// applyOverrides replaces settings fields whose flags were given explicitly.
func (opts *options) applyOverrides(cmd *cobra.Command, settings preferences.Settings) preferences.Settings {
	flags := cmd.Flags()
	if flags.Changed("work") {
		settings.WorkMinutes = opts.work
	}
	if flags.Changed("break") {
		settings.BreakMinutes = opts.breakMinutes
		if !flags.Changed("break-seconds") {
			settings.BreakSeconds = 0
		}
	}
	if flags.Changed("break-seconds") {
		settings.BreakSeconds = opts.breakSeconds
	}
	if flags.Changed("sound") {
		settings.SoundPath = opts.soundPath
	}
	return settings
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pomodoro version %s\n", Version)
		},
	}
}
