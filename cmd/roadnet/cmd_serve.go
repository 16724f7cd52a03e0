package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/hupe1980/roadnet"
	"github.com/hupe1980/roadnet/httpapi"
	"github.com/hupe1980/roadnet/metrics/prometheus"
	"github.com/hupe1980/roadnet/resource"
)

type serveFlags struct {
	addr         string
	scores       string
	maxSearches  int64
	memoryLimit  int64
	ioLimit      int64
	copyOnLoad   bool
	shutdownWait time.Duration
}

func newServeCmd(a *app) *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve NAME",
		Short: "Serve snapshot NAME over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&f.scores, "scores", "", "score blob enabling weight overrides")
	cmd.Flags().Int64Var(&f.maxSearches, "max-searches", int64(runtime.GOMAXPROCS(0)), "concurrent searches")
	cmd.Flags().Int64Var(&f.memoryLimit, "memory-limit", 0, "bytes reserved for the network, 0 for unlimited")
	cmd.Flags().Int64Var(&f.ioLimit, "io-limit", 0, "snapshot read rate in bytes per second, 0 for unlimited")
	cmd.Flags().BoolVar(&f.copyOnLoad, "copy", false, "copy the snapshot into the heap instead of mapping it")
	cmd.Flags().DurationVar(&f.shutdownWait, "shutdown-timeout", 10*time.Second, "grace period for open requests")
	return cmd
}

func (a *app) serve(ctx context.Context, name string, f serveFlags) error {
	reg := prom.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector, err := prometheus.NewCollector(reg)
	if err != nil {
		return err
	}

	opts := []roadnet.Option{
		roadnet.WithMetricsCollector(collector),
		roadnet.WithResourceController(resource.NewController(resource.Config{
			MemoryLimitBytes:      f.memoryLimit,
			MaxConcurrentSearches: f.maxSearches,
			IOLimitBytesPerSec:    f.ioLimit,
		})),
	}
	if f.copyOnLoad {
		opts = append(opts, roadnet.WithCopyOnLoad())
	}
	if f.scores != "" {
		t, err := a.loadScores(ctx, f.scores)
		if err != nil {
			return err
		}
		opts = append(opts, roadnet.WithScores(t))
	}

	r, err := a.openRouter(ctx, name, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	srv := &http.Server{
		Addr:              f.addr,
		Handler:           httpapi.New(r, httpapi.WithLogger(a.logger), httpapi.WithMetricsHandler(reg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.InfoContext(ctx, "listening", "addr", f.addr, "network", name)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), f.shutdownWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if f.scores != "" {
		return a.saveServedScores(shutdownCtx, r, f.scores)
	}
	return nil
}

// saveServedScores persists scores processed while serving.
func (a *app) saveServedScores(ctx context.Context, r *roadnet.Router, name string) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	return roadnet.SaveScores(ctx, store, name, r.Scores())
}
