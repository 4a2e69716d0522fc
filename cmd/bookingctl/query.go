package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func runQuote(cmd *cobra.Command, args []string) error {
	cl, err := newClient()
	if err != nil {
		return err
	}
	out, err := cl.Quote(cmd.Context(), strings.ToUpper(args[0]), args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runAvailability(cmd *cobra.Command, args []string) error {
	cl, err := newClient()
	if err != nil {
		return err
	}
	out, err := cl.AvailabilityReport(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runRoute(cmd *cobra.Command, args []string) error {
	cl, err := newClient()
	if err != nil {
		return err
	}
	r, err := cl.ShortestPath(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%g)\n", strings.Join(r.Path, " -> "), r.Distance)
	return nil
}
