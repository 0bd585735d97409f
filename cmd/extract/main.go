// Command extract turns train/test JSONL battle logs into feature CSVs that
// share one column schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pkmn-analytics/battle-features/internal/features"
	"github.com/pkmn-analytics/battle-features/internal/ingest"
	"github.com/pkmn-analytics/battle-features/internal/logic"
	"github.com/pkmn-analytics/battle-features/internal/store"
)

type options struct {
	train        string
	test         string
	outDir       string
	profile      string
	profilesPath string
	sqlitePath   string
	workers      int
	fullLevel    bool
	report       bool
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.train, "train", "train.jsonl", "labelled battles (JSONL); empty to skip")
	flag.StringVar(&opts.test, "test", "test.jsonl", "unlabelled battles (JSONL); empty to skip")
	flag.StringVar(&opts.outDir, "out", ".", "directory for <name>_features.csv")
	flag.StringVar(&opts.profile, "profile", os.Getenv("FEATURE_PROFILE"), "feature profile (default from the profile set)")
	flag.StringVar(&opts.profilesPath, "profiles", os.Getenv("FEATURE_PROFILE_PATH"), "YAML profile set (default built-in)")
	flag.StringVar(&opts.sqlitePath, "sqlite", "", "also upsert rows into this SQLite file")
	flag.IntVar(&opts.workers, "workers", 0, "extraction goroutines (default GOMAXPROCS)")
	flag.BoolVar(&opts.fullLevel, "full-level", false, "keep only battles whose team is all level 100")
	flag.BoolVar(&opts.report, "completeness", true, "log battles with missing optional fields")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Sugar().Fatalw("Extraction failed", "error", err)
	}
}

func run(ctx context.Context, opts options, logger *zap.Logger) error {
	log := logger.Sugar()

	profiles, err := features.LoadProfiles(opts.profilesPath)
	if err != nil {
		return err
	}
	profile, err := profiles.Get(opts.profile)
	if err != nil {
		return err
	}
	extractor, err := features.New(profile,
		features.WithWorkers(opts.workers),
		features.WithLogger(logger),
		features.WithCompletenessReport(opts.report),
	)
	if err != nil {
		return err
	}

	svcCfg := logic.ExtractionConfig{Extractor: extractor, Logger: logger}
	if opts.sqlitePath != "" {
		sink, err := store.OpenSQLite(opts.sqlitePath)
		if err != nil {
			return err
		}
		defer sink.Close()
		svcCfg.Sink = sink
	}
	service := logic.NewExtractionService(svcCfg)

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	inputs := []struct {
		name      string
		path      string
		withLabel bool
	}{
		{"train", opts.train, true},
		{"test", opts.test, false},
	}
	for _, in := range inputs {
		if in.path == "" {
			continue
		}
		if err := extractFile(ctx, service, in.name, in.path, in.withLabel, opts, log); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(ctx context.Context, service logic.ExtractionService, name, path string, withLabel bool, opts options, log *zap.SugaredLogger) error {
	loaded, err := ingest.LoadFile(path, ingest.Options{
		RequireFullLevel: opts.fullLevel,
		Logger:           log.Desugar(),
	})
	if err != nil {
		return err
	}
	log.Infow("Loaded battles",
		"file", path,
		"battles", len(loaded.Battles),
		"badLines", len(loaded.LineErrors),
		"possibleDuplicates", loaded.Duplicates,
		"filtered", loaded.Filtered,
	)

	report, err := service.Run(ctx, filepath.Base(path), loaded.Battles)
	if err != nil {
		return err
	}

	for _, f := range report.Failures {
		log.Warnw("Battle skipped", "file", path, "battle_id", f.BattleID, "reason", f.Reason)
	}
	for _, issue := range report.Incomplete {
		log.Debugw("Missing optional fields", "battle_id", issue.BattleID, "fields", strings.Join(issue.MissingFields, ", "))
	}

	out := filepath.Join(opts.outDir, name+"_features.csv")
	if err := store.WriteCSVFile(out, service.Schema(), report.Rows, withLabel); err != nil {
		return err
	}
	log.Infow("Wrote features",
		"file", out,
		"profile", service.Profile(),
		"rows", len(report.Rows),
		"columns", len(service.Schema()),
		"failed", len(report.Failures),
		"incomplete", len(report.Incomplete),
	)
	return nil
}
