package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nainya/spdxtv/pkg/journal"
)

func compactCmd(a *app) *cobra.Command {
	var storeFlag string
	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Drop abandoned transactions from the store journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.storePath(cmd, storeFlag)
			if path == "" {
				return errors.New("compact needs a journal (--store or store.path)")
			}
			dropped, err := journal.Compact(path)
			if err != nil {
				return err
			}
			a.log.StoreLogger("compact").Info("journal compacted").
				Str("path", path).
				Int("dropped", dropped).
				Send()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: dropped %d entries\n", path, dropped)
			return nil
		},
	}
	cmd.Flags().StringVar(&storeFlag, "store", "", "journal file")
	return cmd
}
