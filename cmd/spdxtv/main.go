// spdxtv parses SPDX tag-value documents into a graph store and serves
// the result over HTTP
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nainya/spdxtv/internal/config"
	"github.com/nainya/spdxtv/internal/logger"
	"github.com/nainya/spdxtv/pkg/graph"
	"github.com/nainya/spdxtv/pkg/mapping"
)

const (
	Version = "0.1.0"
	appName = "spdxtv"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand shares once flags are parsed
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *logger.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "SPDX tag-value parser and graph store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (YAML)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		parseCmd(a),
		serveCmd(a),
		watchCmd(a),
		tagsCmd(a),
		compactCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.log = logger.InitGlobalLogger(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

// storePath prefers an explicit --store flag over the configured path
func (a *app) storePath(cmd *cobra.Command, flag string) string {
	if cmd.Flags().Changed("store") {
		return flag
	}
	return a.cfg.Store.Path
}

// openStore opens the journal at path, or an in-memory store when path is
// empty. The returned func closes it.
func (a *app) openStore(path string) (graph.Store, func() error, error) {
	if path == "" {
		return graph.NewMemory(), func() error { return nil }, nil
	}
	d, err := graph.OpenDurable(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", path, err)
	}
	a.log.StoreLogger("open").Info("store opened").
		Str("path", path).
		Int("namespaces", len(d.Namespaces())).
		Send()
	return d, d.Close, nil
}

func (a *app) loadMapping(cmd *cobra.Command, flag string) (*mapping.Mapping, error) {
	path := a.cfg.Mapping
	if cmd.Flags().Changed("mapping") {
		path = flag
	}
	if path == "" {
		return mapping.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mapping.Load(f)
}
