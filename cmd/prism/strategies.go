package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List available allocation strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, log, err := setup(nil)
		if err != nil {
			return err
		}
		defer log.Sync()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STRATEGY\tALLOCATION")
		for _, name := range a.Catalog().Names() {
			policy, err := a.Catalog().Get(name)
			if err != nil {
				return err
			}
			var alloc string
			for i, sym := range policy.Assets() {
				if i > 0 {
					alloc += " "
				}
				alloc += fmt.Sprintf("%s=%.0f%%", sym, policy[sym]*100)
			}
			fmt.Fprintf(tw, "%s\t%s\n", name, alloc)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
