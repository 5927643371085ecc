package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/xpoints/internal/domain/rules"
)

func newRulesCmd(c *cli) *cobra.Command {
	var (
		version string
		path    string
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print a rule set as YAML",
		Long:  "Prints the resolved rule set. The output is a valid --rules file and can be edited to try other scoring rules.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if list {
				return listVersions(cmd.OutOrStdout())
			}
			if !cmd.Flags().Changed("rules-version") {
				version = c.cfg.RulesVersion
			}
			if !cmd.Flags().Changed("rules") {
				path = c.cfg.RulesPath
			}
			rs, err := rules.Resolve(version, path)
			if err != nil {
				return err
			}
			return rules.Encode(cmd.OutOrStdout(), rs)
		},
	}

	cmd.Flags().StringVar(&version, "rules-version", "", "Built-in rule set version")
	cmd.Flags().StringVar(&path, "rules", "", "YAML rule set file")
	cmd.Flags().BoolVar(&list, "list", false, "List built-in versions")
	return cmd
}

func listVersions(w io.Writer) error {
	for _, v := range rules.Versions() {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	return nil
}
