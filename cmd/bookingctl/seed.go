package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"

	"bookingmx/internal/adapters/bookingclient"
	"bookingmx/internal/dates"
	"bookingmx/internal/domain"
)

type seedFileFormat struct {
	Reservations []bookingclient.CreateRequest `yaml:"reservations"`
}

func readSeedFile(r io.Reader) ([]bookingclient.CreateRequest, error) {
	var f seedFileFormat
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return f.Reservations, nil
}

// generate builds n stays spread over the room types, 1-4 nights each,
// starting on consecutive days from start.
func generate(n int, start time.Time) []bookingclient.CreateRequest {
	types := domain.RoomTypes()
	out := make([]bookingclient.CreateRequest, 0, n)
	for i := 0; i < n; i++ {
		in := dates.Day(start).AddDate(0, 0, i%30)
		out = append(out, bookingclient.CreateRequest{
			GuestName:  fmt.Sprintf("Guest %03d", i+1),
			GuestEmail: fmt.Sprintf("guest%03d@example.com", i+1),
			CheckIn:    dates.Format(in),
			CheckOut:   dates.Format(in.AddDate(0, 0, 1+i%4)),
			RoomType:   string(types[i%len(types)]),
		})
	}
	return out
}

type seedResult struct {
	Created, Confirmed, Failed int64
}

// seed creates every request with at most workers calls in flight.
func seed(ctx context.Context, cl *bookingclient.Client, reqs []bookingclient.CreateRequest, workers int, confirm bool) (seedResult, error) {
	var (
		res seedResult
		wg  sync.WaitGroup
		sem = semaphore.NewWeighted(int64(workers))
	)
	for i, req := range reqs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return res, err
		}
		wg.Add(1)
		go func(i int, req bookingclient.CreateRequest) {
			defer wg.Done()
			defer sem.Release(1)

			r, err := cl.Create(ctx, req)
			if err != nil {
				atomic.AddInt64(&res.Failed, 1)
				ev := log.Warn()
				if bookingclient.IsRetryable(err) {
					ev = log.Error()
				}
				ev.Int("row", i).Str("guest", req.GuestName).Err(err).Msg("create failed")
				return
			}
			atomic.AddInt64(&res.Created, 1)
			if !confirm {
				return
			}
			if _, err := cl.Transition(ctx, r.ID, "confirm"); err != nil {
				log.Warn().Str("reservation_id", r.ID).Err(err).Msg("confirm failed")
				return
			}
			atomic.AddInt64(&res.Confirmed, 1)
		}(i, req)
	}
	wg.Wait()
	return res, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cl, err := newClient()
	if err != nil {
		return err
	}

	var reqs []bookingclient.CreateRequest
	if seedFile != "" {
		fh, err := os.Open(seedFile)
		if err != nil {
			return err
		}
		defer fh.Close()
		if reqs, err = readSeedFile(fh); err != nil {
			return err
		}
	} else {
		start := time.Now().AddDate(0, 0, 1)
		if seedStart != "" {
			if start, err = dates.Parse(seedStart); err != nil {
				return err
			}
		}
		reqs = generate(seedCount, start)
	}

	workers := seedWorkers
	if workers <= 0 {
		workers = cfg.SeedWorkers
	}
	log.Info().Int("reservations", len(reqs)).Int("workers", workers).Str("api", apiBase).Msg("seeding")

	res, err := seed(cmd.Context(), cl, reqs, workers, seedConfirm)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created=%d confirmed=%d failed=%d\n", res.Created, res.Confirmed, res.Failed)
	if res.Failed > 0 {
		return fmt.Errorf("%d reservations failed", res.Failed)
	}
	return nil
}
