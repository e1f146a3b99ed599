// Command subengine drives the persistent subscription engine end to end
// against a local Pebble store: append events to a stream, run a group's
// subscription loop against it, and inspect a group's durable checkpoint.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	cfgpkg "github.com/JLoveI/EventStore/internal/config"
	"github.com/JLoveI/EventStore/internal/eventlog"
	pebblestore "github.com/JLoveI/EventStore/internal/storage/pebble"
	"github.com/JLoveI/EventStore/internal/subadapters"
	"github.com/JLoveI/EventStore/internal/subscription"
	logpkg "github.com/JLoveI/EventStore/pkg/log"
)

func main() {
	level, err := logpkg.ParseLevel(os.Getenv("SUBENGINE_LOG_LEVEL"))
	if err != nil {
		level = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(level),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	logpkg.RedirectStdLog(logger)

	root := &cobra.Command{
		Use:   "subengine",
		Short: "Persistent subscription engine CLI",
		Long:  "subengine drives a Pebble-backed event log and its persistent subscription groups.",
	}
	root.AddCommand(newServeCmd(logger), newPublishCmd(logger), newInspectCmd(logger))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openLog(dataDir, stream string) (*pebblestore.DB, *eventlog.Log, error) {
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dataDir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	l, err := eventlog.OpenLog(db, "default", stream, 0)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return db, l, nil
}

func newPublishCmd(logger logpkg.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Append one event to a stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgpkg.Default()
			cfgpkg.FromEnv(&cfg)
			dataDir, _ := cmd.Flags().GetString("data-dir")
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			stream, _ := cmd.Flags().GetString("stream")
			eventType, _ := cmd.Flags().GetString("type")
			data, _ := cmd.Flags().GetString("data")

			db, l, err := openLog(cfg.DataDir, stream)
			if err != nil {
				return err
			}
			defer db.Close()

			ev := subscription.StreamEvent{EventID: uuid.New(), EventType: eventType, Data: []byte(data)}
			seqs, err := l.Append(cmd.Context(), []eventlog.AppendRecord{subadapters.EncodeEvent(ev)})
			if err != nil {
				return fmt.Errorf("append: %w", err)
			}
			logger.Info("appended event", logpkg.Str("stream", stream), logpkg.Int("eventNumber", int(seqs[0])))
			return nil
		},
	}
	cmd.Flags().String("data-dir", "", "Data directory (defaults to the OS application data directory)")
	cmd.Flags().String("stream", "", "Stream name")
	cmd.Flags().String("type", "event", "Event type")
	cmd.Flags().String("data", "", "Event payload")
	_ = cmd.MarkFlagRequired("stream")
	return cmd
}

func newServeCmd(logger logpkg.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a persistent subscription group and print deliveries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgpkg.Default()
			cfgpkg.FromEnv(&cfg)
			dataDir, _ := cmd.Flags().GetString("data-dir")
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			stream, _ := cmd.Flags().GetString("stream")
			group, _ := cmd.Flags().GetString("group")
			timeoutMs, _ := cmd.Flags().GetInt("timeout-ms")
			if !cmd.Flags().Changed("timeout-ms") {
				timeoutMs = cfg.DefaultTimeout
			}
			roundRobin, _ := cmd.Flags().GetBool("round-robin")

			db, l, err := openLog(cfg.DataDir, stream)
			if err != nil {
				return err
			}
			defer db.Close()

			subCfg := subscription.Default()
			subCfg.StreamName = stream
			subCfg.GroupName = group
			subCfg.Timeout = time.Duration(timeoutMs) * time.Millisecond
			subCfg.ReadBatchSize = cfg.DefaultReadSize
			subCfg.PreferRoundRobin = roundRobin

			loader := subadapters.NewPebbleEventLoader(l)
			store := subadapters.NewPebbleCheckpointStore(l, group)
			sink := subadapters.NewChannelReplySink()

			engine, err := subscription.New(subCfg, loader, store, store, sink, logger)
			if err != nil {
				return fmt.Errorf("new engine: %w", err)
			}
			defer engine.Stop()

			deliveries := make(chan subscription.DeliveredEvent, 64)
			if err := engine.AddClient("cli", "cli-consumer", deliveries, 16, "", "", ""); err != nil {
				return fmt.Errorf("add client: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			for {
				select {
				case d := <-deliveries:
					logger.Info("delivered", logpkg.Int("eventNumber", int(d.Event.EventNumber)), logpkg.Str("eventType", d.Event.EventType))
					if err := engine.Ack(d.CorrelationID, d.Event.EventID); err != nil {
						logger.Warn("ack failed", logpkg.Err(err))
					}
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().String("data-dir", "", "Data directory (defaults to the OS application data directory)")
	cmd.Flags().String("stream", "", "Stream name")
	cmd.Flags().String("group", "", "Subscription group name")
	cmd.Flags().Int("timeout-ms", 30_000, "In-flight ack timeout in milliseconds")
	cmd.Flags().Bool("round-robin", true, "Use round-robin dispatch instead of prefer-single")
	_ = cmd.MarkFlagRequired("stream")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

func newInspectCmd(logger logpkg.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a group's durable checkpoint and the stream's tail",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgpkg.Default()
			cfgpkg.FromEnv(&cfg)
			dataDir, _ := cmd.Flags().GetString("data-dir")
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			stream, _ := cmd.Flags().GetString("stream")
			group, _ := cmd.Flags().GetString("group")

			db, l, err := openLog(cfg.DataDir, stream)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Printf("stream=%s lastSeq=%d\n", stream, l.LastSeq())
			if tok, ok := l.GetCursor(group); ok {
				fmt.Printf("group=%s lastAcked=%d\n", group, tok.Seq())
			} else {
				fmt.Printf("group=%s: no checkpoint persisted yet\n", group)
			}
			return nil
		},
	}
	cmd.Flags().String("data-dir", "", "Data directory (defaults to the OS application data directory)")
	cmd.Flags().String("stream", "", "Stream name")
	cmd.Flags().String("group", "", "Subscription group name")
	_ = cmd.MarkFlagRequired("stream")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}
