package main

import (
	"fmt"
	"os"

	"github.com/camuig/krx-stock-report/internal/ai"
	"github.com/camuig/krx-stock-report/internal/config"
	"github.com/camuig/krx-stock-report/internal/krx"
	"github.com/camuig/krx-stock-report/internal/logger"
	"github.com/camuig/krx-stock-report/internal/mailer"
	"github.com/camuig/krx-stock-report/internal/naver"
	"github.com/camuig/krx-stock-report/internal/pipeline"
	"github.com/camuig/krx-stock-report/internal/report"
	"github.com/camuig/krx-stock-report/internal/storage"
	"github.com/camuig/krx-stock-report/internal/telegram"
)

// app is everything a command needs, built from the loaded config.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	runner *pipeline.Runner
	repo   *storage.Repository
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return nil, nil, err
	}
	return cfg, logger.New(cfg.Logging.Level), nil
}

// newApp wires the pipeline. company, when set, overrides the configured one.
func newApp(company string) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if company != "" {
		cfg.Company = company
	}

	directory := krx.NewClient(cfg.Source.DirectoryURL, cfg.Source.UserAgent, cfg.SourceTimeout(), log)
	prices := naver.NewClient(naver.Options{
		PriceURL:          cfg.Source.PriceURL,
		UserAgent:         cfg.Source.UserAgent,
		Pages:             cfg.Source.Pages,
		Timeout:           cfg.SourceTimeout(),
		RequestsPerSecond: cfg.Source.RequestsPerSecond,
	}, log)

	deps := pipeline.Deps{
		Resolver: krx.NewResolver(directory),
		Prices:   prices,
		Builder:  report.NewBuilder(cfg, log),
		Sender:   mailer.NewMailer(cfg, log),
	}

	if commentator := ai.NewCommentator(cfg, log); commentator.Enabled() {
		deps.Commentator = commentator
	}
	if notifier := telegram.NewNotifier(cfg, log); notifier.Enabled() {
		deps.Notifier = notifier
	}

	a := &app{cfg: cfg, log: log}
	if cfg.StorageEnabled() {
		db, err := storage.NewDatabase(cfg.Storage.Path)
		if err != nil {
			// the journal is optional, the report still goes out
			log.Error("database init failed", "error", err)
		} else {
			a.repo = storage.NewRepository(db)
			deps.Journal = a.repo
		}
	}

	a.runner = pipeline.NewRunner(deps, cfg, log)
	return a, nil
}

func (a *app) close() {
	if a.repo == nil {
		return
	}
	if err := a.repo.Close(); err != nil {
		a.log.Error("close database", "error", err)
	}
}
