// Package commands implements the beatsend CLI: it drives the M5Stack beat
// mask firmware by writing "1" (circle) and "0" (clear) lines to its serial
// port.
package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tuffrabit/m5stack-beatmask/pkg/config"
)

var (
	configPath string
	cfg        = config.Default()
	logger     = slog.Default()
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "beatsend",
		Short:        "Send beat commands to the M5Stack over serial",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := loadConfig(cmd.Flags(), configPath); err != nil {
					return err
				}
			}
			logger = setupLogger(cfg.Log)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file")
	pf.StringVar(&cfg.Serial.Port, "port", cfg.Serial.Port, "serial port of the M5Stack")
	pf.IntVar(&cfg.Serial.Baud, "baud", cfg.Serial.Baud, "serial baud rate")
	pf.DurationVar(&cfg.Serial.Timeout, "timeout", cfg.Serial.Timeout, "serial read timeout")
	pf.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn or error")
	pf.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "text or json")

	root.AddCommand(detectCmd(), randomCmd(), sendCmd(), devicesCmd())
	return root
}

// loadConfig merges the file into cfg. Flags set on the command line win
// over the file.
func loadConfig(flags *pflag.FlagSet, path string) error {
	explicit := map[string]string{}
	flags.Visit(func(f *pflag.Flag) {
		explicit[f.Name] = f.Value.String()
	})

	if err := cfg.LoadFile(path); err != nil {
		return err
	}

	for name, value := range explicit {
		if err := flags.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

// validate runs the given section checks, in order.
func validate(checks ...func() error) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func setupLogger(lc config.LogConfig) *slog.Logger {
	var level slog.Level
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
