package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"bookingmx/internal/adapters/observability"
	"bookingmx/internal/shared"
)

var cfg shared.Config

func main() {
	cfg = shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
