package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gibdrop/cmd/gibdrop/globals"
	"gibdrop/internal/components/telemetry"
	"gibdrop/internal/config"
	libtelemetry "gibdrop/lib/telemetry"
	"gibdrop/lib/util/serviceutil"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output and dump http exchanges to .dev/resty.")
	rootCmd.PersistentFlags().String("workdir", ".", "Directory holding the miner's entry script, list files and gibdrop.json5.")
}

var rootCmd = &cobra.Command{
	Use:   "gibdrop",
	Short: "gibdrop finds drop campaign streamers and feeds them to the twitch channel points miner.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			serviceutil.Fatal("read flags", err)
		}
		workdir, err := cmd.Flags().GetString("workdir")
		if err != nil {
			serviceutil.Fatal("read flags", err)
		}

		initSlog(verbose)

		cfg, err := config.Load(workdir)
		if err != nil {
			serviceutil.Fatal("read config", err)
		}

		t, err := libtelemetry.SetupFromEnv(cmd.Context(), "gibdrop")
		if err != nil {
			serviceutil.Fatal("setup telemetry", err)
		}

		cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{
			Config:    cfg,
			Tel:       telemetry.NewSlogAPI(),
			Telemetry: t,
			Verbose:   verbose,
		}))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := globals.Get(cmd.Context()).Telemetry.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func initSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

func Execute() {
	if err := rootCmd.ExecuteContext(serviceutil.SignalContext()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
