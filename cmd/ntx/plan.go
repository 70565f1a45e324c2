package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/the-maldridge/ntx/pkg/planner"
)

type planOptions struct {
	Install     []string
	TrueInstall []string
	Update      []string
	Erase       []string
	Obsolete    []string
	Commit      bool
}

func (o *planOptions) AddFlags(flags *pflag.FlagSet) {
	flags.StringSliceVar(&o.Install, "install", nil, "Packages to install (updates if already installed)")
	flags.StringSliceVar(&o.TrueInstall, "true-install", nil, "Packages to install regardless of what is installed")
	flags.StringSliceVar(&o.Update, "update", nil, "Installed packages to update")
	flags.StringSliceVar(&o.Erase, "erase", nil, "Installed packages to remove")
	flags.StringSliceVar(&o.Obsolete, "obsolete", nil, "Replacements in the form new=old")
	flags.BoolVar(&o.Commit, "commit", false, "Hand the transaction to the dispatcher and store it")
}

func newPlanCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a transaction and print its order",
	}

	var opts planOptions
	opts.AddFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		e, err := setup(root, true)
		if err != nil {
			return err
		}
		defer e.Close()

		steps := []struct {
			names []string
			f     func(string) error
		}{
			{opts.Install, func(n string) error { _, err := e.p.Install(n); return err }},
			{opts.TrueInstall, func(n string) error { _, err := e.p.TrueInstall(n); return err }},
			{opts.Update, func(n string) error { _, err := e.p.Update(n); return err }},
			{opts.Erase, func(n string) error { _, err := e.p.Erase(n); return err }},
			{opts.Obsolete, func(n string) error {
				parts := strings.SplitN(n, "=", 2)
				if len(parts) != 2 {
					return fmt.Errorf("obsolete %q: want new=old", n)
				}
				_, err := e.p.Obsolete(parts[0], parts[1])
				return err
			}},
		}
		for _, s := range steps {
			for _, n := range s.names {
				if err := s.f(n); err != nil {
					return fmt.Errorf("%s: %w", n, err)
				}
			}
		}

		r := e.p.Plan()
		if opts.Commit {
			r, err = e.p.Commit(cmd.Context())
			if err != nil {
				return err
			}
		}
		printReport(cmd.OutOrStdout(), r)
		return nil
	}

	return cmd
}

func printReport(out io.Writer, r *planner.Report) {
	if r.ID != "" {
		fmt.Fprintln(out, "Transaction", r.ID)
	}
	for _, b := range []struct {
		title string
		pkgs  []string
	}{
		{"Installing", r.Installed},
		{"Updating", r.Updated},
		{"Removing", r.Removed},
		{"Obsoleted", r.Obsoleted},
		{"Installing for dependencies", r.DepInstalled},
		{"Updating for dependencies", r.DepUpdated},
		{"Removing for dependencies", r.DepRemoved},
	} {
		if len(b.pkgs) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s:\n", b.title)
		for _, p := range b.pkgs {
			fmt.Fprintf(out, "  %s\n", p)
		}
	}

	fmt.Fprintln(out, "Order:")
	for i, p := range r.Order {
		fmt.Fprintf(out, "  %3d %s\n", i+1, p)
	}
	for _, l := range r.Loops {
		fmt.Fprintf(out, "Loop: %s\n", strings.Join(l, " -> "))
	}
	for _, u := range r.Unresolved {
		fmt.Fprintf(out, "Unresolved: %s\n", u)
	}
}
