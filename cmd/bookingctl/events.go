package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bookingmx/internal/adapters/rabbitmq"
	"bookingmx/internal/domain"
)

func runEvents(cmd *cobra.Command, args []string) error {
	if cfg.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL is not set")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := cmd.OutOrStdout()
	err := rabbitmq.Consume(ctx, cfg.AMQPURL, cfg.EventsQueue, func(_ context.Context, ev domain.ReservationEvent) error {
		_, err := fmt.Fprintf(w, "%s %-28s %s %s %s\n",
			ev.OccurredAt.Format("2006-01-02T15:04:05Z07:00"), ev.Type, ev.ReservationID, ev.Status, ev.RoomType)
		return err
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
