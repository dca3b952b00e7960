package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"OptiLiveAudit/internal/app"
	"OptiLiveAudit/internal/config"
	"OptiLiveAudit/internal/logging"
	"OptiLiveAudit/internal/usecase"
)

const usage = `usage: optiliveaudit <command> [flags]

commands:
  run     generate, score and audit one population, print the report as JSON
  serve   expose the HTTP API and run scheduled audits
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.NewWithWriter(os.Stderr, cfg.Logging.Level)

	if err := run(ctx, cfg, logger, os.Args[1:], os.Stdout); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "run":
		return runAudit(ctx, cfg, logger, args[1:], stdout)
	case "serve":
		application, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer application.Close()
		return application.Serve(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runAudit(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	population := fs.Int("population", cfg.Audit.Population, "number of synthetic citizens")
	seed := fs.Uint64("seed", cfg.Audit.Seed, "generator seed")
	threshold := fs.Int("threshold", cfg.Audit.Threshold, "selection threshold (inclusive)")
	features := fs.String("features", strings.Join(cfg.Audit.Features, ","), "comma separated sensitive features")
	citizens := fs.Bool("citizens", false, "include scored citizens in the output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	report, err := application.RunOnce(ctx, usecase.AuditRequest{
		Population: *population,
		Seed:       *seed,
		Threshold:  *threshold,
		Features:   splitFeatures(*features),
	})
	if err != nil {
		return err
	}

	if !*citizens {
		report.Citizens = nil
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func splitFeatures(raw string) []string {
	var out []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
