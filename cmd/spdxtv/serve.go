package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nainya/spdxtv/internal/metrics"
	"github.com/nainya/spdxtv/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var (
		addr      string
		storeFlag string
		mapFlag   string
		strict    bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ingestion API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			m, err := a.loadMapping(cmd, mapFlag)
			if err != nil {
				return err
			}
			path := a.storePath(cmd, storeFlag)
			store, closeStore, err := a.openStore(path)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Options{
				Store:   store,
				Mapping: m,
				Logger:  a.log,
				Metrics: metrics.NewMetrics(nil),
				Config:  cfg,
				Strict:  strict,
			})
			a.log.LogServerStart(cfg.Addr, path)
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&storeFlag, "store", "", "journal file (default: in-memory)")
	cmd.Flags().StringVar(&mapFlag, "mapping", "", "tag mapping YAML (default: built-in SPDX 2.3)")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject documents with warnings")
	return cmd
}
