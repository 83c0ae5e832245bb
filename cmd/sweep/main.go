package main

// Remove stored attachments no job references:
//   go run ./cmd/sweep --grace=24h --dry-run

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/umputun/go-flags"

	"jobtracker-backend/internal/bootstrap"
	"jobtracker-backend/internal/shared/config"
	"jobtracker-backend/internal/uploads"
)

var opts struct {
	Grace       time.Duration `long:"grace" env:"SWEEP_GRACE" default:"24h" description:"keep unreferenced files younger than this"`
	Concurrency int           `long:"concurrency" env:"SWEEP_CONCURRENCY" default:"4" description:"parallel deletes"`
	DryRun      bool          `long:"dry-run" env:"SWEEP_DRY_RUN" description:"report orphans without deleting"`
	Dbg         bool          `long:"dbg" env:"DEBUG" description:"debug mode"`
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(2)
	}
	setupLogs(opts.Dbg)

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		// an in-memory repo has no records, so every stored file would look orphaned
		log.Fatalf("[ERROR] DATABASE_URL is required for sweeping")
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("[ERROR] bootstrap build: %v", err)
	}
	defer app.Close()
	if app.DB == nil {
		log.Fatalf("[ERROR] database unavailable, refusing to sweep")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := &uploads.Sweeper{
		Uploads:     app.Uploads,
		Records:     app.JobsRepo,
		Grace:       opts.Grace,
		Concurrency: opts.Concurrency,
		DryRun:      opts.DryRun,
	}
	res, err := sweeper.Run(ctx)
	if err != nil {
		log.Fatalf("[ERROR] sweep failed: %v", err)
	}

	for _, key := range res.Removed {
		if opts.DryRun {
			log.Printf("[INFO] would remove %s", key)
			continue
		}
		log.Printf("[DEBUG] removed %s", key)
	}
	for _, key := range res.Failed {
		log.Printf("[WARN] failed to remove %s", key)
	}
	log.Printf("[INFO] scanned %d, referenced %d, within grace %d, removed %d, failed %d",
		res.Scanned, res.Kept, res.Young, len(res.Removed), len(res.Failed))
	if len(res.Failed) > 0 {
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
