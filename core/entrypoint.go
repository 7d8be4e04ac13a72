package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/encodeous/dvroute/state"
	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

// Message is a data packet a host sends once the network has converged.
type Message struct {
	Src  state.NodeId
	Dst  state.NodeId
	Data string
}

type Options struct {
	// Duration is how long to keep the network running after the messages are sent.
	Duration time.Duration
	// Quiet is how long the routing tables must be stable to count as converged.
	Quiet     time.Duration
	Messages  []Message
	LogLevel  slog.Level
	LogPath   string
	DebugAddr string
	Out       io.Writer
}

// NewLogger logs to stderr, and additionally to logPath when set.
func NewLogger(level slog.Level, logPath, prefix string) (*slog.Logger, error) {
	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:        level,
			AddSource:    false,
			CustomPrefix: prefix,
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))

	if logPath != "" {
		err := os.MkdirAll(path.Dir(logPath), 0700)
		if err != nil {
			return nil, err
		}
		f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0700)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slogmulti.Fanout(handlers...)), nil
}

func setupDebugging(addr string, log *slog.Logger) {
	if addr == "" {
		return
	}
	go func() {
		log.Info("serving debug endpoints", "addr", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Error("debug server failed", "error", err)
		}
	}()
}

// Start runs the topology until the messages have been sent and Duration has elapsed,
// or until SIGINT/SIGTERM, then prints every routing table to opts.Out.
func Start(topo *state.Topology, opts Options) error {
	logger, err := NewLogger(opts.LogLevel, opts.LogPath, "dvroute")
	if err != nil {
		return err
	}
	setupDebugging(opts.DebugAddr, logger)

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(context.Canceled)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(c)
	go func() {
		select {
		case <-c:
			cancel(errors.New("received shutdown signal"))
		case <-ctx.Done():
		}
	}()

	nw, err := Build(topo, state.NewEnv(topo, logger))
	if err != nil {
		return err
	}
	nw.Start(ctx)
	defer nw.Stop()
	logger.Info("network is running. To exit early, send SIGINT or Ctrl+C.")

	if err := run(ctx, nw, opts); err != nil && !errors.Is(err, context.Cause(ctx)) {
		return err
	}
	if cause := context.Cause(ctx); cause != nil {
		logger.Info("stopping", "reason", cause)
	}
	nw.Stop()

	for _, id := range nw.RouterIds() {
		out, err := nw.Inspect(context.Background(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(opts.Out, "%s:\n%s", id, out)
	}
	return nil
}

func run(ctx context.Context, nw *Network, opts Options) error {
	start := time.Now()
	if err := nw.WaitConverged(ctx, opts.Quiet); err != nil {
		return err
	}
	nw.Env.Log.Info("routing converged", "elapsed", time.Since(start))

	for _, m := range opts.Messages {
		if err := nw.Send(m.Src, m.Dst, []byte(m.Data)); err != nil {
			return fmt.Errorf("send %s -> %s: %w", m.Src, m.Dst, err)
		}
	}
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-time.After(opts.Duration):
	}
	return nil
}
