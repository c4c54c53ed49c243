package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"storefront/internal/api"
	"storefront/internal/config"
	"storefront/internal/export"
)

func main() {
	var (
		outPath string
		timeout time.Duration
	)
	flag.StringVar(&outPath, "out", "", "Path of the CSV file to write (stdout when empty)")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Deadline for fetching the catalog")
	flag.Parse()

	logger := log.WithField("component", "catalog-export")
	if err := run(logger, outPath, timeout); err != nil {
		logger.WithError(err).Error("catalog export failed")
		os.Exit(1)
	}
}

// run exports the catalog to outPath, or stdout when it is empty. A partial
// file is removed when the export fails.
func run(logger *log.Entry, outPath string, timeout time.Duration) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, createErr := os.Create(outPath)
		if createErr != nil {
			return fmt.Errorf("create file: %w", createErr)
		}
		defer func() {
			err = errors.Join(err, f.Close())
			if err != nil {
				_ = os.Remove(outPath)
			}
		}()
		out = f
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := api.New(cfg.APIURL, cfg.CDNURL, nil, api.WithLogger(logger))
	exp := export.NewCSVExporter(out, client)

	start := time.Now()
	count, err := exp.Run(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Exported %d products from %s in %s\n", count, cfg.APIURL, time.Since(start).Truncate(time.Millisecond))
	return nil
}
