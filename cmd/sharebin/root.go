package main

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sharebin/internal/config"
	"sharebin/internal/inbox"
	"sharebin/internal/media"
	"sharebin/internal/reminder"
	"sharebin/internal/storage"
	"sharebin/internal/thumbnail"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "sharebin",
	Short: "A local inbox for shared text, links and images",
	Long: `sharebin captures text, links and images shared to it, stores them
locally, and can remind you about a saved item later.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing config.yaml")
	rootCmd.AddCommand(saveCmd, cleanCmd, listCmd, pinCmd, deleteCmd, labelCmd, remindCmd, watchCmd)
}

// app bundles everything a command needs: config, logger, the open store and
// the services wired on top of it.
type app struct {
	cfg  config.Config
	log  *logrus.Logger
	repo *storage.BadgerRepository
	svc  *inbox.Service
	mgr  *reminder.Manager
	// sched is the in-process wake-up scheduler; only the watch daemon binds
	// a fire handler to it.
	sched *reminder.TimerScheduler
}

// openApp loads configuration and opens the item store. The caller must call
// Close when done.
func openApp() (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	repo, err := storage.NewBadgerRepository(filepath.Join(cfg.DataDir, "db"), log)
	if err != nil {
		return nil, fmt.Errorf("failed to open item store: %w", err)
	}

	svc := inbox.NewService(
		repo,
		thumbnail.NewHTTPFetcher(cfg.FetchTimeout, log),
		media.NewLocalImporter(cfg.DataDir, log),
		nil, // no OCR backend wired in the CLI build
		inbox.SystemClipboard{},
		inbox.LogShareSheet{Log: log},
		log,
	)

	sched := reminder.NewTimerScheduler(log)
	mgr := reminder.NewManager(repo, sched, reminder.NewConsoleNotifier(log), inbox.SystemClipboard{}, reminder.Options{
		Snooze:         cfg.Snooze,
		PreviewEdge:    cfg.PreviewEdge,
		PreviewTimeout: cfg.FetchTimeout,
	}, log)

	return &app{cfg: cfg, log: log, repo: repo, svc: svc, mgr: mgr, sched: sched}, nil
}

func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		a.log.WithError(err).Error("Error closing item store")
	}
}
