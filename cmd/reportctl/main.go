// Command reportctl works the reports collection from a terminal: it loads
// reports through the REST API, derives flags and totals locally and renders
// the PDF export without a server round-trip.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	_ "time/tzdata"

	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/apiclient"
	"github.com/rogomes75/ROG-Report-V9/internal/config"
	"github.com/rogomes75/ROG-Report-V9/internal/pdfreport"
	"github.com/rogomes75/ROG-Report-V9/internal/reports"
	"github.com/rogomes75/ROG-Report-V9/pkg/logger"
)

const usage = `usage: reportctl <command> [flags]

commands:
  list     print reports with flag, overdue and gross profit
  export   render completed reports in a date range to PDF
  set      change one field of a report

env: POOL_API_URL, POOL_USERNAME, POOL_PASSWORD`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log := logger.NewWithWriter(cfg.Env, os.Stderr)
	if err := run(ctx, cfg, log, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "reportctl:", err)
		os.Exit(1)
	}
}

type app struct {
	cfg config.Config
	log zerolog.Logger
	out io.Writer
	api *apiclient.Client
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	a := &app{
		cfg: cfg,
		log: log,
		out: out,
		api: apiclient.New(envOr("POOL_API_URL", "http://localhost:"+cfg.Port), nil),
	}
	if _, err := a.api.Login(ctx, envOr("POOL_USERNAME", cfg.AdminUsername), envOr("POOL_PASSWORD", cfg.AdminPassword)); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	switch args[0] {
	case "list":
		return a.list(ctx, args[1:])
	case "export":
		return a.export(ctx, args[1:])
	case "set":
		return a.set(ctx, args[1:])
	}
	return fmt.Errorf("unknown command %q\n%s", args[0], usage)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func (a *app) engine() *reports.Engine {
	return reports.NewEngine(a.api, a.log, a.cfg.AutosaveDelay)
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	scopeFlag := fs.String("scope", "all", "all | active | completed")
	client := fs.String("client", "", "exact client name")
	empID := fs.String("employee-id", "", "employee id")
	empName := fs.String("employee", "", "employee name substring")
	if err := fs.Parse(args); err != nil {
		return err
	}
	scope, ok := reports.ParseScope(*scopeFlag)
	if !ok {
		return fmt.Errorf("invalid scope %q", *scopeFlag)
	}

	eng := a.engine()
	defer eng.Close()
	if err := eng.Load(ctx, scope); err != nil {
		return err
	}
	c := reports.Criteria{EmployeeID: *empID, ClientName: *client, EmployeeName: *empName}
	set := eng.Reports(c)

	loc := a.cfg.Location()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLIENT\tEMPLOYEE\tSTATUS\tREQUESTED\tFLAG\tOVERDUE\tGROSS PROFIT")
	var total float64
	for _, v := range eng.Views(c) {
		gp := "-"
		if v.GrossProfit != nil {
			gp = fmt.Sprintf("%.2f", *v.GrossProfit)
			if v.Completed() {
				total += *v.GrossProfit
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			v.ID, v.ClientName, v.EmployeeName, v.Status,
			v.RequestDate.In(loc).Format("01/02/2006"), v.Flag, v.Overdue, gp)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\n%d reports, period %s, completed gross profit %.2f\n",
		len(set), reports.PeriodLabel(set, loc), total)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	start := fs.String("start", "", "first day, YYYY-MM-DD")
	end := fs.String("end", "", "last day, YYYY-MM-DD")
	client := fs.String("client", "", "exact client name")
	empID := fs.String("employee-id", "", "employee id")
	outPath := fs.String("o", "", "output file (default: generated name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	loc := a.cfg.Location()
	from, err := time.ParseInLocation("2006-01-02", *start, loc)
	if err != nil {
		return fmt.Errorf("-start: %w", err)
	}
	to, err := time.ParseInLocation("2006-01-02", *end, loc)
	if err != nil {
		return fmt.Errorf("-end: %w", err)
	}
	if to.Before(from) {
		return errors.New("-end is before -start")
	}

	eng := a.engine()
	defer eng.Close()
	if err := eng.Load(ctx, reports.ScopeCompleted); err != nil {
		return err
	}

	gen := pdfreport.NewGenerator(a.log, a.cfg.PDFAttribution)
	doc, err := gen.Generate(ctx, eng.Reports(reports.Criteria{}), pdfreport.Params{
		Start:      from,
		End:        to,
		ClientName: *client,
		EmployeeID: *empID,
		Location:   loc,
	})
	if err != nil {
		return err
	}
	path := *outPath
	if path == "" {
		path = doc.Filename
	}
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s (%d pages", path, doc.Pages)
	if doc.SkippedImages > 0 {
		fmt.Fprintf(a.out, ", %d images skipped", doc.SkippedImages)
	}
	fmt.Fprintln(a.out, ")")
	return nil
}

func (a *app) set(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	id := fs.String("id", "", "report id")
	name := fs.String("field", "", "description | admin_notes | employee_notes | total_cost | parts_cost")
	value := fs.String("value", "", "new value")
	if err := fs.Parse(args); err != nil {
		return err
	}
	field, ok := reports.ParseField(*name)
	if !ok {
		return fmt.Errorf("unknown field %q", *name)
	}

	eng := a.engine()
	defer eng.Close()
	if err := eng.Load(ctx, reports.ScopeAll); err != nil {
		return err
	}
	if err := eng.UpdateField(*id, field, *value); err != nil {
		return err
	}
	if err := eng.Flush(ctx); err != nil {
		return err
	}
	r, _ := eng.Get(*id)
	v := reports.Decorate(r, time.Now())
	shown := reports.FieldValue(v.ServiceReport, field)
	if f, ok := shown.(*float64); ok && f != nil {
		shown = fmt.Sprintf("%.2f", *f)
	}
	fmt.Fprintf(a.out, "%s %s = %v", v.ID, field, shown)
	if v.GrossProfit != nil {
		fmt.Fprintf(a.out, " (gross profit %.2f)", *v.GrossProfit)
	}
	fmt.Fprintln(a.out)
	return nil
}
