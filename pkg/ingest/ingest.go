// ABOUTME: Document ingestion pipeline: comment filter, scanner, builder, store commit
// ABOUTME: Adds timing, logging and metrics around one parse

// Package ingest runs one tag-value document through the filter, scanner
// and builder into a graph store. Journaled stores are committed on success
// and abandoned on failure.
package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nainya/spdxtv/internal/logger"
	"github.com/nainya/spdxtv/internal/metrics"
	"github.com/nainya/spdxtv/pkg/builder"
	"github.com/nainya/spdxtv/pkg/graph"
	"github.com/nainya/spdxtv/pkg/mapping"
	"github.com/nainya/spdxtv/pkg/tagvalue"
)

// Options configures a parse. The zero value uses the default mapping and
// discards logs and metrics.
type Options struct {
	Mapping *mapping.Mapping
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	// Source names the input in logs
	Source string
	// Strict rejects documents that produce warnings
	Strict  bool
	Builder []builder.Option
}

// Result is a built document plus pipeline statistics
type Result struct {
	builder.Result
	Source   string
	Records  int
	Duration time.Duration
}

// Parse reads one document from r into store.
func Parse(ctx context.Context, r io.Reader, store graph.Store, opts Options) (*Result, error) {
	start := time.Now()
	m := opts.Mapping
	if m == nil {
		m = mapping.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	plog := log.ParseLogger(opts.Source)

	bopts := []builder.Option{builder.WithLogger(plog.Zerolog())}
	if opts.Strict {
		bopts = append(bopts, builder.WithStrictWarnings())
	}
	b := builder.New(store, append(bopts, opts.Builder...)...)

	res := &Result{Source: opts.Source}
	err := run(ctx, tagvalue.NewScanner(r, m), b, res)
	res.Duration = time.Since(start)

	if c, journaled := store.(graph.Committer); journaled {
		if err == nil {
			if cerr := c.Commit(); cerr != nil {
				err = fmt.Errorf("ingest: commit %s: %w", res.Namespace, cerr)
			} else if opts.Metrics != nil {
				opts.Metrics.JournalCommits.Inc()
			}
		}
		if err != nil {
			c.Abandon()
		}
	}

	if opts.Metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		opts.Metrics.RecordParse(status, res.Duration, res.Records, len(res.Warnings), res.Counts)
	}
	for _, w := range res.Warnings {
		plog.Warn(w.Msg).Int("line", w.Line).Send()
	}
	log.LogParse(opts.Source, res.Namespace, res.Duration, len(res.Warnings), err)
	return res, err
}

func run(ctx context.Context, sc *tagvalue.Scanner, b *builder.Builder, res *Result) error {
	for rec, err := range sc.Records() {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Records++
		if err := b.Apply(rec); err != nil {
			return err
		}
	}
	built, err := b.Complete()
	res.Result = built
	return err
}
