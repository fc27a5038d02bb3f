package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nainya/spdxtv/internal/source"
	"github.com/nainya/spdxtv/internal/watch"
)

func watchCmd(a *app) *cobra.Command {
	var (
		pattern   string
		storeFlag string
		mapFlag   string
		strict    bool
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Ingest documents under a directory as they appear",
		Long: `Watch parses every existing document under dir that matches the pattern,
then parses files again whenever they are created or written. A changed
document must carry a new DocumentNamespace to be accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadMapping(cmd, mapFlag)
			if err != nil {
				return err
			}
			store, closeStore, err := a.openStore(a.storePath(cmd, storeFlag))
			if err != nil {
				return err
			}
			defer closeStore()

			opener := source.NewOpener(a.cfg.S3)
			out := cmd.OutOrStdout()
			handle := func(ctx context.Context, path string) {
				rep := a.parseOne(ctx, opener, path, store, m, strict)
				if err := printReport(out, rep, false); err != nil {
					a.log.Error("cannot write report").Err(err).Send()
				}
			}

			w, err := watch.New(args[0], watch.Config{
				Pattern: pattern,
				Logger:  a.log.With("component", "watch").Zerolog(),
			}, handle)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			existing, err := w.Existing()
			if err != nil {
				return err
			}
			for _, path := range existing {
				handle(ctx, path)
			}
			a.log.Info("watching").Str("dir", args[0]).Str("pattern", pattern).Send()
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", watch.DefaultPattern, "doublestar pattern relative to dir")
	cmd.Flags().StringVar(&storeFlag, "store", "", "journal file (default: in-memory)")
	cmd.Flags().StringVar(&mapFlag, "mapping", "", "tag mapping YAML (default: built-in SPDX 2.3)")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as failures")
	return cmd
}
