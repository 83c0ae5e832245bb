package main

// Terminal front end for the job tracker API:
//   go run ./cmd/jobsctl add --title "Backend Engineer" --company Acme --resume cv.pdf
//   go run ./cmd/jobsctl list

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/umputun/go-flags"

	"jobtracker-backend/internal/client"
	"jobtracker-backend/internal/form"
	"jobtracker-backend/internal/jobs"
)

type fieldOpts struct {
	Title       string `long:"title" description:"job title"`
	Company     string `long:"company" description:"company name"`
	Location    string `long:"location" description:"location"`
	Link        string `long:"link" description:"posting URL"`
	Status      string `long:"status" description:"Applied, Interviewing, Offer or Rejected"`
	Notes       string `long:"notes" description:"free-form notes"`
	DateApplied string `long:"date" description:"date applied, YYYY-MM-DD"`
	Resume      string `long:"resume" description:"path to a resume file"`
	CoverLetter string `long:"cover-letter" description:"path to a cover letter file"`
}

type idArg struct {
	ID string `positional-arg-name:"id" required:"yes"`
}

type listCmd struct{}

type showCmd struct {
	Args idArg `positional-args:"yes"`
}

type addCmd struct {
	fieldOpts
}

type editCmd struct {
	fieldOpts
	Args idArg `positional-args:"yes"`
}

type rmCmd struct {
	Yes  bool  `short:"y" long:"yes" description:"skip confirmation"`
	Args idArg `positional-args:"yes"`
}

type textCmd struct {
	Args struct {
		ID   string `positional-arg-name:"id" required:"yes"`
		Kind string `positional-arg-name:"kind" description:"resume or coverLetter"`
	} `positional-args:"yes"`
}

var opts struct {
	Server  string        `short:"s" long:"server" env:"JOBS_SERVER" default:"http://localhost:5000" description:"API base URL"`
	Timeout time.Duration `long:"timeout" env:"JOBS_TIMEOUT" default:"30s" description:"request timeout"`
	Dbg     bool          `long:"dbg" env:"DEBUG" description:"debug mode"`

	List listCmd `command:"list" description:"list jobs, newest application first"`
	Show showCmd `command:"show" description:"show one job"`
	Add  addCmd  `command:"add" description:"record a new application"`
	Edit editCmd `command:"edit" description:"change fields of an application"`
	Rm   rmCmd   `command:"rm" description:"delete an application"`
	Text textCmd `command:"text" description:"print the text of an attachment"`
}

var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

func main() {
	p := flags.NewParser(&opts, flags.Default)
	p.CommandHandler = func(cmd flags.Commander, args []string) error {
		setupLogs(opts.Dbg)
		if cmd == nil {
			return nil
		}
		return cmd.Execute(args)
	}
	if _, err := p.Parse(); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func setupLogs(dbg bool) {
	if dbg {
		log.Setup(log.Debug, log.Msec, log.CallerFunc)
		return
	}
	log.Setup(log.Msec)
}

func newController() *form.Controller {
	return form.NewController(client.New(opts.Server, nil))
}

func newContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opts.Timeout)
}

func (listCmd) Execute([]string) error {
	ctx, cancel := newContext()
	defer cancel()
	ctrl := newController()
	if err := ctrl.Refresh(ctx); err != nil {
		return err
	}
	printTable(ctrl.State().Jobs)
	return nil
}

func (c *showCmd) Execute([]string) error {
	ctx, cancel := newContext()
	defer cancel()
	job, err := newController().Select(ctx, c.Args.ID)
	if err != nil {
		return err
	}
	printJob(job)
	return nil
}

func (c *addCmd) Execute([]string) error {
	ctx, cancel := newContext()
	defer cancel()
	ctrl := newController()
	if err := c.fieldOpts.apply(ctrl); err != nil {
		return err
	}
	job, err := ctrl.Submit(ctx)
	if err != nil {
		return err
	}
	log.Printf("[INFO] created %s", job.ID)
	printJob(job)
	return nil
}

func (c *editCmd) Execute([]string) error {
	ctx, cancel := newContext()
	defer cancel()
	ctrl := newController()
	if err := ctrl.StartEdit(ctx, c.Args.ID); err != nil {
		return err
	}
	if err := c.fieldOpts.apply(ctrl); err != nil {
		return err
	}
	job, err := ctrl.Submit(ctx)
	if err != nil {
		return err
	}
	log.Printf("[INFO] updated %s", job.ID)
	printJob(job)
	return nil
}

func (c *rmCmd) Execute([]string) error {
	ctx, cancel := newContext()
	defer cancel()
	confirm := func(job jobs.Job) bool {
		if c.Yes {
			return true
		}
		fmt.Fprintf(stdout, "delete %q at %s? [y/N] ", job.Title, job.Company)
		answer, _ := bufio.NewReader(stdin).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
	deleted, err := newController().Delete(ctx, c.Args.ID, confirm)
	if err != nil {
		return err
	}
	if !deleted {
		log.Printf("[INFO] kept %s", c.Args.ID)
		return nil
	}
	log.Printf("[INFO] deleted %s", c.Args.ID)
	return nil
}

func (c *textCmd) Execute([]string) error {
	kindArg := c.Args.Kind
	if kindArg == "" {
		kindArg = string(jobs.AttachmentResume)
	}
	kind, err := jobs.ParseAttachmentKind(kindArg)
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()
	text, err := client.New(opts.Server, nil).AttachmentText(ctx, c.Args.ID, kind)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, text)
	return nil
}

// apply copies every non-empty option into the controller's draft.
func (f fieldOpts) apply(ctrl *form.Controller) error {
	values := []struct {
		field form.Field
		value string
	}{
		{form.FieldTitle, f.Title},
		{form.FieldCompany, f.Company},
		{form.FieldLocation, f.Location},
		{form.FieldLink, f.Link},
		{form.FieldStatus, f.Status},
		{form.FieldNotes, f.Notes},
		{form.FieldDateApplied, f.DateApplied},
	}
	for _, v := range values {
		if v.value == "" {
			continue
		}
		ctrl.Dispatch(form.SetField{Field: v.field, Value: v.value})
	}

	files := []struct {
		kind jobs.AttachmentKind
		path string
	}{
		{jobs.AttachmentResume, f.Resume},
		{jobs.AttachmentCoverLetter, f.CoverLetter},
	}
	for _, file := range files {
		if file.path == "" {
			continue
		}
		data, err := os.ReadFile(file.path)
		if err != nil {
			return fmt.Errorf("read %s: %w", file.kind, err)
		}
		ctrl.Dispatch(form.AttachFile{Kind: file.kind, File: &client.File{Name: filepath.Base(file.path), Data: data}})
	}
	return nil
}

func printTable(list []jobs.Job) {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAPPLIED\tSTATUS\tCOMPANY\tTITLE")
	for _, j := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.ID, dateOrDash(j.DateApplied), j.Status, j.Company, j.Title)
	}
	_ = tw.Flush()
}

func printJob(j jobs.Job) {
	fmt.Fprintf(stdout, "id:           %s\n", j.ID)
	fmt.Fprintf(stdout, "title:        %s\n", j.Title)
	fmt.Fprintf(stdout, "company:      %s\n", j.Company)
	fmt.Fprintf(stdout, "location:     %s\n", j.Location)
	fmt.Fprintf(stdout, "link:         %s\n", j.Link)
	fmt.Fprintf(stdout, "status:       %s\n", j.Status)
	fmt.Fprintf(stdout, "date applied: %s\n", dateOrDash(j.DateApplied))
	fmt.Fprintf(stdout, "resume:       %s\n", refOrDash(j.Resume))
	fmt.Fprintf(stdout, "cover letter: %s\n", refOrDash(j.CoverLetter))
	if j.Notes != "" {
		fmt.Fprintf(stdout, "notes:\n%s\n", j.Notes)
	}
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return jobs.FormatDate(*t)
}

func refOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
