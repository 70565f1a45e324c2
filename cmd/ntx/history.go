package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List committed transactions or show one",
		Args:  cobra.MaximumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		e, err := setup(root, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if len(args) == 1 {
			r, err := e.p.Report(args[0])
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), r)
			return nil
		}

		ids, err := e.p.History()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	}

	return cmd
}
