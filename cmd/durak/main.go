package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/durak-client/internal/command"
	"github.com/DoyleJ11/durak-client/internal/config"
	"github.com/DoyleJ11/durak-client/internal/dispatch"
	"github.com/DoyleJ11/durak-client/internal/httpapi"
	"github.com/DoyleJ11/durak-client/internal/journal"
	"github.com/DoyleJ11/durak-client/internal/locator"
	"github.com/DoyleJ11/durak-client/internal/logging"
	"github.com/DoyleJ11/durak-client/internal/notify"
	"github.com/DoyleJ11/durak-client/internal/transport"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading DURAK_* variables")
	replay := flag.String("replay", "", "rebuild the view of a recorded session id and print it")
	flag.Parse()

	if err := run(*envFile, *replay); err != nil {
		fmt.Fprintln(os.Stderr, "durak:", err)
		os.Exit(1)
	}
}

func run(envFile, replay string) (err error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if replay != "" && cfg.Nickname == "" {
		// Replays never connect, so the nickname is not needed.
		cfg.Nickname = "replay"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Local(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if replay != "" {
		return runReplay(ctx, cfg, replay, log)
	}
	return runClient(ctx, cfg, log)
}

func runReplay(ctx context.Context, cfg config.Config, session string, log *zap.Logger) (err error) {
	id, err := uuid.Parse(session)
	if err != nil {
		return fmt.Errorf("session id: %w", err)
	}
	if cfg.JournalDSN == "" {
		return errors.New("replay needs DURAK_JOURNAL_DSN")
	}
	store, err := journal.Open(cfg.JournalDSN, false)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, store.Close()) }()

	res, err := journal.ReplaySession(ctx, store, id, dispatch.Options{AutoStart: cfg.AutoStart}, log)
	if err != nil {
		return err
	}
	log.Info("replayed session",
		zap.Stringer("session", id),
		zap.Int("applied", res.Applied),
		zap.Int("dropped", res.Dropped),
		zap.Int("recorded_sends", res.Recorded),
		zap.Int("would_send", len(res.Sent)),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res.View)
}

func runClient(ctx context.Context, cfg config.Config, log *zap.Logger) (err error) {
	rooms, err := locator.Open(cfg.Locator, cfg.LocatorPath, cfg.RedisURL, "durak:room:"+cfg.Nickname)
	if err != nil {
		return err
	}
	if r, ok := rooms.(*locator.Redis); ok {
		defer func() { err = multierr.Append(err, r.Close()) }()
	}

	hint, err := locator.Hint(ctx, cfg.RoomLink, rooms)
	if err != nil {
		log.Warn("no room to rejoin", zap.Error(err))
	}

	var rec *journal.Recorder
	if cfg.JournalDSN != "" {
		store, openErr := journal.Open(cfg.JournalDSN, false)
		if openErr != nil {
			return openErr
		}
		defer func() { err = multierr.Append(err, store.Close()) }()
		rec = journal.NewRecorder(store, uuid.New(), log)
		log.Info("journal enabled", zap.Stringer("session", rec.Session()))
	}

	conn, err := transport.Dial(ctx, cfg.ServerURL, log, transport.Options{})
	if err != nil {
		return err
	}
	log.Info("connected", zap.String("server", cfg.ServerURL), zap.String("nickname", cfg.Nickname))

	var sender dispatch.Sender = conn
	if rec != nil {
		sender = rec.Sender(conn)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	render := notify.New(cfg.Lang)
	loop := dispatch.NewLoop(ctx, dispatch.LoopConfig{
		Log: log,
		Dispatcher: dispatch.New(log, dispatch.Options{
			RoomHint:  hint,
			AutoStart: cfg.AutoStart,
		}),
		Sender:   sender,
		Rooms:    rooms,
		Render:   render.Render,
		ErrorTTL: cfg.ErrorTTL,
		InfoTTL:  cfg.InfoTTL,
	})

	deliver := loop.Deliver
	if rec != nil {
		deliver = rec.Tap(deliver)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Losing the server connection ends the session.
	g.Go(func() error {
		defer cancel()
		return conn.Run(gctx, deliver)
	})

	if rec != nil {
		g.Go(func() error { return rec.Run(gctx) })
	}

	if cfg.HTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.SetupRoutes(loop, log),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Info("listening", zap.String("addr", cfg.HTTPAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	// The server answers with session-established only after the handshake.
	sender.Send(command.Join(strings.TrimSpace(cfg.Nickname)))

	err = g.Wait()
	<-loop.Done()
	log.Info("disconnected")
	return err
}
