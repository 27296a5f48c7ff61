package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tuicubserv/bus"
	"tuicubserv/events"
	"tuicubserv/game"
	"tuicubserv/httpapi"
	"tuicubserv/rng"
	"tuicubserv/store"
	"tuicubserv/tiles"
)

const httpTimeout = 10 * time.Second

// newLogger builds the JSON logger writing to the configured logfile,
// falling back to stderr when the file cannot be opened.
func newLogger(logfile string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{logfile}
	log, err := cfg.Build()
	if err != nil {
		cfg.OutputPaths = []string{"stderr"}
		log = zap.Must(cfg.Build())
		log.Warn("logfile unavailable", zap.String("logfile", logfile), zap.Error(err))
	}
	return log
}

// runAPI wires the API process: store, engine, bus client and HTTP server.
func runAPI(ctx context.Context, cfg *Config, flags *apiFlags) error {
	log := newLogger(cfg.Logfile)
	defer log.Sync()

	st, err := store.Open(cfg.DBURL)
	if err != nil {
		return err
	}

	engine := game.NewEngine(tiles.NewValidator(), rng.New())
	busAddr := net.JoinHostPort(cfg.MessagesHost, strconv.Itoa(cfg.MessagesPort))
	client := bus.NewClient(busAddr, cfg.MessagesSecret, log)
	defer client.Close()

	api := httpapi.New(st, engine, bus.NewService(client), cfg.EventsSecret, log)

	srv := &http.Server{
		Addr:              net.JoinHostPort(flags.host, strconv.Itoa(flags.port)),
		Handler:           api.Handler(),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       httpTimeout,
		ReadHeaderTimeout: httpTimeout,
		WriteTimeout:      httpTimeout,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("api server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// runEvents wires the events process: the client listener, the bus
// listener and the disconnect callback client.
func runEvents(ctx context.Context, cfg *Config, flags *eventsFlags) error {
	log := newLogger(cfg.Logfile)
	defer log.Sync()

	st, err := store.Open(cfg.DBURL)
	if err != nil {
		return err
	}

	notifier := events.NewAPIClient(flags.apiURL, cfg.EventsSecret, log)
	server := events.NewServer(events.NewStoreResolver(st), notifier, cfg.MessagesSecret, log)

	clientLn, err := net.Listen("tcp", net.JoinHostPort(flags.eventsHost, strconv.Itoa(flags.eventsPort)))
	if err != nil {
		return err
	}
	defer clientLn.Close()
	busLn, err := net.Listen("tcp", net.JoinHostPort(flags.messagesHost, strconv.Itoa(flags.messagesPort)))
	if err != nil {
		return err
	}
	defer busLn.Close()

	errs := make(chan error, 2)
	go func() {
		log.Info("events server listening", zap.String("addr", clientLn.Addr().String()))
		errs <- server.ServeClients(clientLn)
	}()
	go func() {
		log.Info("messages server listening", zap.String("addr", busLn.Addr().String()))
		errs <- server.ServeBus(busLn)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		return nil
	}
}
