package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rotorlabs/rotorctl/internal/admin"
	"github.com/rotorlabs/rotorctl/internal/config"
	"github.com/rotorlabs/rotorctl/internal/declare"
	"github.com/rotorlabs/rotorctl/internal/journal"
	"github.com/rotorlabs/rotorctl/internal/publish"
	"github.com/rotorlabs/rotorctl/internal/rotate"
	"github.com/rotorlabs/rotorctl/internal/schedule"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the render and rotate daemon",
		RunE:  runDaemon,
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The daemon needs a real config file; defaults alone would rotate
	// against paths nobody reviewed.
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	fs := osfs.New("/")
	invoker := rotate.NewInvoker(config.ToolRunner(cfg.Tool), cfg.Tool.Path, cfg.Tool.Flags, cfg.Tool.GuardForeignProcess)

	recorder := journal.Discard
	var history admin.HistoryFunc
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer j.Close()
		recorder = j
		history = j.Recent
	}

	daemon := schedule.New(schedule.Options{
		Loader:     declare.NewLoader(fs),
		Writer:     publish.NewWriter(fs),
		Invoker:    invoker,
		Recorder:   recorder,
		DeclDir:    cfg.DeclarationsDir,
		OutputPath: cfg.OutputPath,
		Interval:   cfg.Schedule.IntervalDuration(),
		Watch:      cfg.Schedule.Watch,
		Debounce:   cfg.Schedule.Debounce(),
	})

	if cfg.Admin.Addr != "" {
		srv := admin.New(admin.Options{
			Addr:        cfg.Admin.Addr,
			AuthToken:   cfg.Admin.AuthToken,
			CorsOrigins: cfg.Admin.CorsOrigins,
			Status:      daemon.Status,
			Actions:     daemonActions(daemon),
			History:     history,
		})
		go func() {
			if err := srv.Serve(); err != nil {
				log.Error().Err(err).Str("addr", cfg.Admin.Addr).Msg("admin server stopped")
			}
		}()
	}

	log.Info().
		Str("declarations", cfg.DeclarationsDir).
		Str("output", cfg.OutputPath).
		Str("tool", cfg.Tool.Path).
		Str("interval", cfg.Schedule.Interval).
		Bool("watch", cfg.Schedule.Watch).
		Msg("rotorctl daemon starting")

	return daemon.Run(ctx)
}

// daemonActions exposes one-shot render and rotate over the admin API.
func daemonActions(daemon *schedule.Daemon) map[string]admin.Action {
	return map[string]admin.Action{
		"render": func(ctx context.Context) (string, error) {
			n, err := daemon.RenderOnce(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("published %d entries", n), nil
		},
		"rotate": func(ctx context.Context) (string, error) {
			res, err := daemon.RotateOnce(ctx)
			if errors.Is(err, rotate.ErrInvocationInFlight) || errors.Is(err, rotate.ErrToolBusy) {
				return "skipped: " + err.Error(), nil
			}
			if err != nil {
				return "", err
			}
			return res.Output, nil
		},
	}
}
