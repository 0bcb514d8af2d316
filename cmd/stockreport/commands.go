package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/camuig/krx-stock-report/internal/market"
	"github.com/camuig/krx-stock-report/internal/report"
	"github.com/camuig/krx-stock-report/internal/storage"
)

type reportCmd struct {
	company string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "build the stock report for a company and email it" }
func (*reportCmd) Usage() string {
	return `stockreport [-config file] report [-company name]

  Resolves the company's ticker code, fetches its daily prices, renders the
  chart, table and presentation into the report directory and mails the
  presentation to the configured recipients.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.company, "company", "", "Company display name as listed by KRX. Overrides the config file.")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(c.company)
	if err != nil {
		return subcommands.ExitFailure
	}
	defer a.close()

	if a.cfg.Company == "" {
		a.log.Error("no company given: set company in the config or pass -company")
		return subcommands.ExitUsageError
	}

	out, err := a.runner.Run(ctx, a.cfg.Company)
	if err != nil {
		return subcommands.ExitFailure
	}
	fmt.Println(out.Artifacts.Presentation)
	return subcommands.ExitSuccess
}

type resolveCmd struct {
	company string
}

func (*resolveCmd) Name() string     { return "resolve" }
func (*resolveCmd) Synopsis() string { return "print the ticker code of a company" }
func (*resolveCmd) Usage() string {
	return `stockreport resolve -company name
`
}

func (c *resolveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.company, "company", "", "Company display name as listed by KRX.")
}

func (c *resolveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(c.company)
	if err != nil {
		return subcommands.ExitFailure
	}
	defer a.close()

	code, err := a.runner.Resolve(ctx, a.cfg.Company)
	if err != nil {
		if errors.Is(err, market.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "%q is not listed\n", a.cfg.Company)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return subcommands.ExitFailure
	}
	fmt.Println(code)
	return subcommands.ExitSuccess
}

type pricesCmd struct {
	company string
	rows    int
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "print the cleaned daily prices of a company" }
func (*pricesCmd) Usage() string {
	return `stockreport prices -company name [-rows n]

  Prints the most recent cleaned records, newest first. Nothing is written
  to disk and no mail is sent.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.company, "company", "", "Company display name as listed by KRX.")
	f.IntVar(&c.rows, "rows", 10, "Number of records to print; 0 prints all.")
}

func (c *pricesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(c.company)
	if err != nil {
		return subcommands.ExitFailure
	}
	defer a.close()

	code, h, err := a.runner.History(ctx, a.cfg.Company)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	n := c.rows
	if n <= 0 {
		n = len(h)
	}
	fmt.Printf("%s (%s), %d records\n", a.cfg.Company, code, len(h))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, strings.Join(market.Fields, "\t")+"\t")
	for _, r := range h.Recent(n) {
		fmt.Fprintln(w, strings.Join(report.TableRow(r), "\t")+"\t")
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type runsCmd struct {
	limit int
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "list recent report runs from the journal" }
func (*runsCmd) Usage() string {
	return `stockreport runs [-n limit]
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "Number of runs to list.")
}

func (c *runsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, err := loadConfig()
	if err != nil {
		return subcommands.ExitFailure
	}
	if !cfg.StorageEnabled() {
		fmt.Fprintln(os.Stderr, "storage.path is not set, no journal to read")
		return subcommands.ExitFailure
	}

	db, err := storage.NewDatabase(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	repo := storage.NewRepository(db)
	defer repo.Close()

	runs, err := repo.RecentRuns(c.limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "started\tcompany\tcode\tstatus\tlast close\trecords\tdetail")
	for _, r := range runs {
		detail := r.Presentation
		if r.Status == storage.StatusFailed {
			detail = r.FailedStage + ": " + r.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Company, r.Code, r.Status,
			report.FormatWon(r.LastClose), r.Records, detail)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
