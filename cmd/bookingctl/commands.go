package main

import (
	"github.com/spf13/cobra"

	"bookingmx/internal/adapters/bookingclient"
)

// --- Global flags ---
var (
	apiBase     string
	rps         int
	seedFile    string
	seedCount   int
	seedWorkers int
	seedConfirm bool
	seedStart   string

	rootCmd = &cobra.Command{
		Use:          "bookingctl",
		Short:        "Command line client for the bookingmx reservation API",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if apiBase == "" {
				apiBase = cfg.APIBaseURL
			}
			if rps <= 0 {
				rps = cfg.ClientRPS
			}
		},
	}

	// --- Data ---
	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create reservations concurrently from a YAML file or generated guests",
		RunE:  runSeed,
	}

	// --- Read-only queries ---
	quoteCmd = &cobra.Command{
		Use:   "quote [room-type] [check-in] [check-out]",
		Short: "Print the price breakdown for a stay",
		Args:  cobra.ExactArgs(3),
		RunE:  runQuote,
	}
	availabilityCmd = &cobra.Command{
		Use:     "availability [check-in] [check-out]",
		Short:   "Print the availability report for a date range",
		Aliases: []string{"avail"},
		Args:    cobra.ExactArgs(2),
		RunE:    runAvailability,
	}
	routeCmd = &cobra.Command{
		Use:   "route [from] [to]",
		Short: "Print the shortest route between two cities",
		Args:  cobra.ExactArgs(2),
		RunE:  runRoute,
	}

	// --- Events ---
	eventsCmd = &cobra.Command{
		Use:   "events",
		Short: "Tail reservation events from the message queue",
		RunE:  runEvents,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", "", "API base URL (default $API_BASE_URL)")
	rootCmd.PersistentFlags().IntVar(&rps, "rps", 0, "client requests per second (default $CLIENT_RPS)")

	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML file of reservations to create")
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 20, "number of generated reservations when no file is given")
	seedCmd.Flags().IntVarP(&seedWorkers, "workers", "w", 0, "concurrent requests (default $SEED_WORKERS)")
	seedCmd.Flags().BoolVar(&seedConfirm, "confirm", false, "confirm each reservation after creating it")
	seedCmd.Flags().StringVar(&seedStart, "start", "", "first check-in date for generated stays (default tomorrow)")

	rootCmd.AddCommand(seedCmd, quoteCmd, availabilityCmd, routeCmd, eventsCmd)
}

func newClient() (*bookingclient.Client, error) {
	return bookingclient.New(apiBase, rps)
}
