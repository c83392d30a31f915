package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/DoyleJ11/boxy-commentary/internal/broadcast"
	"github.com/DoyleJ11/boxy-commentary/internal/commentary"
	"github.com/DoyleJ11/boxy-commentary/internal/config"
	"github.com/DoyleJ11/boxy-commentary/internal/httpapi"
	"github.com/DoyleJ11/boxy-commentary/internal/logging"
	"github.com/DoyleJ11/boxy-commentary/internal/store"
	"github.com/DoyleJ11/boxy-commentary/internal/widget"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	settings, err := config.FromEnv()
	if err != nil {
		return err
	}

	log, err := logging.New(settings.LogLevel, settings.Development)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.NewStore(ctx, log.Named("store"))
	b := broadcast.NewBroadcaster(ctx, commentary.Welcome, log.Named("broadcast"))

	// A bad widget config must keep the server from starting.
	w, err := widget.New(settings.Widget, b, widget.WithLogger(log.Named("widget")))
	if err != nil {
		log.Error("widget initialization failed", zap.Error(err))
		return err
	}
	if err := w.Start(st.Sample); err != nil {
		return err
	}
	defer w.Stop()

	var limiter *rate.Limiter
	if settings.PublishRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(settings.PublishRate), int(settings.PublishRate)+1)
	}

	// Build the router *with* the actors injected
	srv := &http.Server{
		Addr: settings.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Store:       st,
			Broadcaster: b,
			Widget:      w,
			Limiter:     limiter,
			Log:         log.Named("http"),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", settings.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		w.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
