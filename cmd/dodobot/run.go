package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jdelaire/dodobot/adapters/telegram"
	"github.com/jdelaire/dodobot/core"
	"github.com/jdelaire/dodobot/core/commands"
	"github.com/jdelaire/dodobot/core/configwatch"
	"github.com/jdelaire/dodobot/core/policy"
	"github.com/jdelaire/dodobot/core/schedule"
	"github.com/jdelaire/dodobot/internal/catalog"
	"github.com/jdelaire/dodobot/internal/config"
	"github.com/jdelaire/dodobot/internal/keychain"
	"github.com/jdelaire/dodobot/internal/logger"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Long-poll Telegram and answer until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), v)
		},
	}

	cmd.Flags().Int64("chat-id", config.DefaultChatID, "Chat that receives the scheduled poll.")
	cmd.Flags().String("catalog", config.DefaultCatalogPath, "Response catalog file.")
	cmd.Flags().String("weekday", "thursday", "Weekday of the scheduled poll.")
	cmd.Flags().String("timezone", "Local", "IANA time zone for the schedule.")
	cmd.Flags().Int("poll-timeout", config.DefaultPollTimeout, "Long-poll timeout in seconds.")
	cmd.Flags().Float64("max-rate", config.DefaultMaxRate, "Maximum getUpdates requests per second (0 = unlimited).")

	_ = v.BindPFlag("bot.chat_id", cmd.Flags().Lookup("chat-id"))
	_ = v.BindPFlag("catalog.path", cmd.Flags().Lookup("catalog"))
	_ = v.BindPFlag("schedule.weekday", cmd.Flags().Lookup("weekday"))
	_ = v.BindPFlag("schedule.timezone", cmd.Flags().Lookup("timezone"))
	_ = v.BindPFlag("poll.timeout", cmd.Flags().Lookup("poll-timeout"))
	_ = v.BindPFlag("poll.max_rate", cmd.Flags().Lookup("max-rate"))

	return cmd
}

func runBot(ctx context.Context, v *viper.Viper) error {
	cfg, err := config.Load(v, keychain.Token)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrConfig, err)
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmds := commands.NewRegistry()
	if err := cmds.Register(commands.Command{Name: cfg.Bot.Command, Description: cfg.Bot.CommandDescription}); err != nil {
		return fmt.Errorf("%w: %w", config.ErrConfig, err)
	}

	source := catalog.NewSource(cfg.Catalog.Path)
	if err := catalog.Check(source.Path()); err != nil {
		log.Warn("catalog unusable, polls will be skipped until it is fixed",
			slog.String("path", source.Path()),
			slog.String("error", err.Error()),
		)
	}

	g, gctx := errgroup.WithContext(ctx)

	tr, err := telegram.New(gctx, cfg.Bot.Token, telegram.Options{PollTimeout: cfg.Poll.Timeout}, log)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrConfig, err)
	}
	if _, err := tr.Verify(gctx); err != nil {
		if errors.Is(err, telegram.ErrUnauthorized) {
			return fmt.Errorf("%w: %w", config.ErrConfig, err)
		}
		log.Warn("telegram unreachable at startup, continuing", slog.String("error", err.Error()))
	}

	router := core.NewRouter(cfg.Bot.Triggers, cmds, cfg.Bot.Command)
	dispatcher := core.NewDispatcher(router, tr, source, cfg.Assets, log)
	loop := core.NewPollLoop(tr, dispatcher, core.LoopConfig{
		ChatID:   cfg.Bot.ChatID,
		Gate:     schedule.NewGate(cfg.Schedule.Weekday, cfg.Schedule.Location),
		Commands: cmds,
		Policy: policy.New(policy.Options{
			AllowedChats: cfg.Bot.AllowedChats,
			MaxAge:       cfg.Bot.MaxMessageAge,
		}),
		Limiter:        newLimiter(cfg.Poll.MaxRate),
		HandlerTimeout: cfg.Poll.HandlerTimeout,
	}, log)

	log.Info("dodobot starting",
		slog.Int64("chat_id", cfg.Bot.ChatID),
		slog.String("weekday", cfg.Schedule.Weekday.String()),
		slog.String("timezone", cfg.Schedule.Location.String()),
		slog.String("catalog", cfg.Catalog.Path),
		slog.String("token_source", cfg.Bot.TokenSource),
	)

	g.Go(func() error { return loop.Run(gctx) })
	if cfg.Catalog.WatchInterval > 0 {
		w := configwatch.New(cfg.Catalog.WatchInterval, log)
		w.Watch(cfg.Catalog.Path, catalog.Check)
		g.Go(func() error {
			w.Run(gctx)
			return nil
		})
	}

	err = g.Wait()
	log.Info("dodobot stopped", slog.Int64("offset", loop.Offset()))
	return err
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}
