// Package pipeline runs one report: resolve the ticker code, fetch and clean
// the price history, build the report files and mail them. Stages run in
// order and the first failure aborts the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/camuig/krx-stock-report/internal/config"
	"github.com/camuig/krx-stock-report/internal/export"
	"github.com/camuig/krx-stock-report/internal/logger"
	"github.com/camuig/krx-stock-report/internal/mailer"
	"github.com/camuig/krx-stock-report/internal/market"
	"github.com/camuig/krx-stock-report/internal/report"
	"github.com/camuig/krx-stock-report/internal/storage"
)

// Stage names, as logged and journaled.
const (
	StageConfig     = "config"
	StageResolve    = "resolve"
	StageFetch      = "fetch"
	StageClean      = "clean"
	StageCommentary = "commentary"
	StageBuild      = "build"
	StageWorkbook   = "workbook"
	StageMail       = "mail"
)

type CodeResolver interface {
	Resolve(ctx context.Context, company string) (string, error)
}

type ReportBuilder interface {
	Build(h market.History, company string, now time.Time) (report.Artifacts, error)
}

type Sender interface {
	SendMessage(ctx context.Context, msg mailer.Message) (mailer.Result, error)
}

type Commentator interface {
	Comment(ctx context.Context, company string, summary market.Summary, recent market.History) (string, error)
}

type Journal interface {
	SaveRun(run *storage.Run) error
}

type Notifier interface {
	NotifyReport(company, close, path string, recipients int)
	NotifyError(stage string, err error)
}

// Deps are the stage implementations. Commentator, Journal and Notifier may
// be nil.
type Deps struct {
	Resolver    CodeResolver
	Prices      market.PriceSource
	Builder     ReportBuilder
	Sender      Sender
	Commentator Commentator
	Journal     Journal
	Notifier    Notifier
}

// StageError names the stage a run failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Outcome describes a completed run.
type Outcome struct {
	RunID      string
	Company    string
	Code       string
	History    market.History
	Summary    market.Summary
	Artifacts  report.Artifacts
	Workbook   string
	Commentary string
	Mail       mailer.Result
	Duration   time.Duration
}

type Runner struct {
	deps   Deps
	config *config.Config
	logger *logger.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewRunner(deps Deps, cfg *config.Config, log *logger.Logger) *Runner {
	return &Runner{
		deps:   deps,
		config: cfg,
		logger: log,
		loc:    cfg.ReportLocation(),
		now:    time.Now,
	}
}

// Resolve looks up the ticker code of company.
func (r *Runner) Resolve(ctx context.Context, company string) (string, error) {
	var code string
	err := r.stage(StageResolve, r.logger, func() error {
		var err error
		code, err = r.deps.Resolver.Resolve(ctx, company)
		return err
	})
	return code, err
}

// History resolves company and returns its cleaned price history.
func (r *Runner) History(ctx context.Context, company string) (string, market.History, error) {
	code, err := r.Resolve(ctx, company)
	if err != nil {
		return "", nil, err
	}
	log := r.logger.With("code", code)

	var raw []market.RawRecord
	if err := r.stage(StageFetch, log, func() error {
		var err error
		raw, err = r.deps.Prices.FetchHistory(ctx, code)
		return err
	}); err != nil {
		return code, nil, err
	}
	log.Info("price pages fetched", "raw_records", len(raw))

	var h market.History
	if err := r.stage(StageClean, log, func() error {
		var err error
		h, err = market.Clean(raw)
		return err
	}); err != nil {
		return code, nil, err
	}
	log.Info("history cleaned", "records", len(h), "dropped", len(raw)-len(h))

	return code, h, nil
}

// Run produces and mails the report for company.
func (r *Runner) Run(ctx context.Context, company string) (*Outcome, error) {
	started := r.now()
	out := &Outcome{RunID: uuid.NewString(), Company: company}
	log := r.logger.With("run_id", out.RunID, "company", company)
	log.Info("report run started")

	err := r.run(ctx, out, log)
	out.Duration = r.now().Sub(started)

	r.journal(out, err, log)
	if err != nil {
		stage := "run"
		var se *StageError
		if errors.As(err, &se) {
			stage = se.Stage
		}
		log.Error("report run failed", "stage", stage, "error", err, "duration", out.Duration.String())
		if r.deps.Notifier != nil {
			r.deps.Notifier.NotifyError(stage, err)
		}
		return out, err
	}

	log.Info("report run completed", "duration", out.Duration.String(), "recipients", len(out.Mail.Accepted))
	if r.deps.Notifier != nil {
		r.deps.Notifier.NotifyReport(company, report.FormatWon(out.Summary.LastClose), out.Artifacts.Presentation, len(out.Mail.Accepted))
	}
	return out, nil
}

func (r *Runner) run(ctx context.Context, out *Outcome, log *logger.Logger) error {
	if err := r.config.ValidateSMTP(); err != nil {
		return &StageError{Stage: StageConfig, Err: err}
	}

	code, h, err := r.History(ctx, out.Company)
	out.Code = code
	if err != nil {
		return err
	}
	out.History = h
	out.Summary = market.Summarize(h)
	log = log.With("code", code)

	now := r.now().In(r.loc)

	if r.deps.Commentator != nil {
		if err := r.stage(StageCommentary, log, func() error {
			var err error
			out.Commentary, err = r.deps.Commentator.Comment(ctx, out.Company, out.Summary, h.Recent(r.config.Report.TableRows))
			return err
		}); err != nil {
			log.Warn("commentary skipped", "error", err)
		}
	}

	if err := r.stage(StageBuild, log, func() error {
		var err error
		out.Artifacts, err = r.deps.Builder.Build(h, out.Company, now)
		return err
	}); err != nil {
		return err
	}

	if r.config.Report.Workbook {
		path := export.WorkbookPath(r.config.Report.Dir, out.Company)
		if err := r.stage(StageWorkbook, log, func() error {
			return export.WriteWorkbook(path, out.Company, h)
		}); err != nil {
			return err
		}
		out.Workbook = path
	}

	msg := mailer.Message{
		From:       r.config.SMTP.From,
		To:         r.config.SMTP.To,
		Subject:    Subject(r.config.SMTP.Subject, now),
		Body:       Body(r.config.SMTP.Body, out.Artifacts.Headline, out.Summary, out.Commentary),
		Attachment: out.Artifacts.Presentation,
	}
	return r.stage(StageMail, log, func() error {
		var err error
		out.Mail, err = r.deps.Sender.SendMessage(ctx, msg)
		return err
	})
}

// stage runs fn, logging its duration, and wraps a failure in *StageError.
func (r *Runner) stage(name string, log *logger.Logger, fn func() error) error {
	start := r.now()
	err := fn()
	elapsed := r.now().Sub(start)
	if err != nil {
		return &StageError{Stage: name, Err: err}
	}
	log.Info("stage done", "stage", name, "duration", elapsed.String())
	return nil
}

func (r *Runner) journal(out *Outcome, runErr error, log *logger.Logger) {
	if r.deps.Journal == nil {
		return
	}

	run := &storage.Run{
		RunID:        out.RunID,
		Company:      out.Company,
		Code:         out.Code,
		Records:      len(out.History),
		LastClose:    out.Summary.LastClose,
		Presentation: out.Artifacts.Presentation,
		Workbook:     out.Workbook,
		Commentary:   out.Commentary,
		Accepted:     len(out.Mail.Accepted),
		Status:       storage.StatusOK,
		DurationMs:   out.Duration.Milliseconds(),
	}
	if len(out.History) > 0 {
		run.LastDate = out.Summary.To.Format("2006-01-02")
	}
	if len(out.Mail.Refused) > 0 {
		run.Refused = out.Mail.Refused.Error()
	}
	if runErr != nil {
		run.Status = storage.StatusFailed
		run.Error = runErr.Error()
		var se *StageError
		if errors.As(runErr, &se) {
			run.FailedStage = se.Stage
		}
	}

	if err := r.deps.Journal.SaveRun(run); err != nil {
		log.Error("save run", "error", err)
	}
}

// Subject is the configured subject, or "(YYYYMMDD). 주식 보고서 분석 자료 입니다".
func Subject(configured string, now time.Time) string {
	if configured != "" {
		return configured
	}
	return fmt.Sprintf("(%s). 주식 보고서 분석 자료 입니다", now.Format("20060102"))
}

// Body is the configured text followed by the period summary and, if any,
// the commentary.
func Body(intro, headline string, s market.Summary, commentary string) string {
	var sb strings.Builder
	sb.WriteString(intro)
	sb.WriteString("\n\n")

	if headline != "" {
		sb.WriteString(headline + "\n")
	}
	if s.Days > 0 {
		sb.WriteString(fmt.Sprintf("기간: %s ~ %s (%d 거래일)\n",
			s.From.Format("2006-01-02"), s.To.Format("2006-01-02"), s.Days))
		sb.WriteString(fmt.Sprintf("종가: %s원 (전일비 %s)\n", report.FormatWon(s.LastClose), signed(s.LastDiff)))
		sb.WriteString(fmt.Sprintf("기간 등락률: %s%%\n", s.ChangePct.StringFixed(2)))
		sb.WriteString(fmt.Sprintf("최고가: %s원 (%s)\n", report.FormatWon(s.High), s.HighDate.Format("2006-01-02")))
		sb.WriteString(fmt.Sprintf("최저가: %s원 (%s)\n", report.FormatWon(s.Low), s.LowDate.Format("2006-01-02")))
	}

	if commentary != "" {
		sb.WriteString("\n")
		sb.WriteString(commentary)
		sb.WriteString("\n")
	}
	return sb.String()
}

func signed(v int64) string {
	if v > 0 {
		return "+" + report.FormatWon(v)
	}
	return report.FormatWon(v)
}
