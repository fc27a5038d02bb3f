package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func tagsCmd(a *app) *cobra.Command {
	var (
		mapFlag string
		asYAML  bool
	)
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Print the active tag mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadMapping(cmd, mapFlag)
			if err != nil {
				return err
			}
			if asYAML {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(map[string]any{"tags": m.Entries()}); err != nil {
					return err
				}
				return enc.Close()
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TAG\tKIND\tPROPERTY\tVALUE\tFLAGS")
			for _, e := range m.Entries() {
				flags := ""
				if e.Opens {
					flags += "opens "
				}
				if e.Multi {
					flags += "multi"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Tag, e.Kind, e.Property, e.Value, flags)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&mapFlag, "mapping", "", "tag mapping YAML (default: built-in SPDX 2.3)")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the mapping as loadable YAML")
	return cmd
}
