package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nainya/spdxtv/internal/source"
	"github.com/nainya/spdxtv/pkg/builder"
	"github.com/nainya/spdxtv/pkg/graph"
	"github.com/nainya/spdxtv/pkg/ingest"
	"github.com/nainya/spdxtv/pkg/mapping"
	"github.com/nainya/spdxtv/pkg/tagvalue"
)

type parseFlags struct {
	store   string
	mapping string
	json    bool
	strict  bool
}

func parseCmd(a *app) *cobra.Command {
	var f parseFlags
	cmd := &cobra.Command{
		Use:   "parse [location...]",
		Short: "Parse tag-value documents into the store",
		Long: `Parse reads each location (a file, a doublestar glob such as
sboms/**/*.spdx, s3://bucket/key, or - for stdin) and builds it into the
store. Without locations standard input is read.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(cmd, args, f)
		},
	}
	cmd.Flags().StringVar(&f.store, "store", "", "journal file (default: in-memory)")
	cmd.Flags().StringVar(&f.mapping, "mapping", "", "tag mapping YAML (default: built-in SPDX 2.3)")
	cmd.Flags().BoolVar(&f.json, "json", false, "print one JSON object per document")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "treat warnings as failures")
	return cmd
}

// parseReport is one document's outcome as printed by parse
type parseReport struct {
	Source     string         `json:"source"`
	Namespace  string         `json:"namespace,omitempty"`
	DocumentID string         `json:"documentId,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	Elements   map[string]int `json:"elements,omitempty"`
	Error      *reportError   `json:"error,omitempty"`
}

type reportError struct {
	Kind    string `json:"kind"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func (a *app) runParse(cmd *cobra.Command, args []string, f parseFlags) error {
	if len(args) == 0 {
		args = []string{source.Stdin}
	}
	locations, err := source.Expand(args)
	if err != nil {
		return err
	}
	m, err := a.loadMapping(cmd, f.mapping)
	if err != nil {
		return err
	}
	store, closeStore, err := a.openStore(a.storePath(cmd, f.store))
	if err != nil {
		return err
	}
	defer closeStore()

	opener := source.NewOpener(a.cfg.S3).WithStdin(cmd.InOrStdin())
	failed := 0
	for _, loc := range locations {
		rep := a.parseOne(cmd.Context(), opener, loc, store, m, f.strict)
		if rep.Error != nil {
			failed++
		}
		if err := printReport(cmd.OutOrStdout(), rep, f.json); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(locations))
	}
	return nil
}

func (a *app) parseOne(ctx context.Context, opener *source.Opener, loc string, store graph.Store, m *mapping.Mapping, strict bool) parseReport {
	rep := parseReport{Source: loc}
	rc, err := opener.Open(ctx, loc)
	if err != nil {
		rep.Error = &reportError{Kind: "io", Message: err.Error()}
		return rep
	}
	defer rc.Close()

	res, err := ingest.Parse(ctx, rc, store, ingest.Options{
		Mapping: m,
		Logger:  a.log,
		Source:  loc,
		Strict:  strict,
	})
	if res != nil {
		rep.Namespace = res.Namespace
		rep.DocumentID = res.DocumentID
		rep.Elements = res.Counts
		for _, w := range res.Warnings {
			rep.Warnings = append(rep.Warnings, w.String())
		}
	}
	var perr *tagvalue.Error
	switch {
	case err == nil:
	case errors.As(err, &perr):
		rep.Error = &reportError{Kind: perr.Kind.String(), Line: perr.Line, Message: perr.Msg}
	case errors.Is(err, builder.ErrWarnings):
		rep.Error = &reportError{Kind: "warnings", Message: err.Error()}
	default:
		rep.Error = &reportError{Kind: "io", Message: err.Error()}
	}
	return rep
}

func printReport(w io.Writer, rep parseReport, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(rep)
	}
	if rep.Error != nil {
		_, err := fmt.Fprintf(w, "%s: %s\n", rep.Source, formatError(rep.Error))
		return err
	}
	if _, err := fmt.Fprintf(w, "%s: %s (%d warnings)\n", rep.Source, rep.Namespace, len(rep.Warnings)); err != nil {
		return err
	}
	for _, msg := range rep.Warnings {
		if _, err := fmt.Fprintf(w, "  warning: %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}

func formatError(e *reportError) string {
	if e.Line > 0 {
		return fmt.Sprintf("%s error at line %d: %s", e.Kind, e.Line, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}
