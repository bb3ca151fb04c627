// Package main runs a small demonstration bot wiring the full stack
// together: config, resilient transport, registry, state stores, and either
// the polling or the webhook driver.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alem-hub/botcore/config"
	"github.com/alem-hub/botcore/dispatch"
	"github.com/alem-hub/botcore/poller"
	"github.com/alem-hub/botcore/state"
	pgstate "github.com/alem-hub/botcore/state/postgres"
	redisstate "github.com/alem-hub/botcore/state/redis"
	"github.com/alem-hub/botcore/telegram"
	"github.com/alem-hub/botcore/webhook"
)

// chatState tracks a per-chat message counter shared by the handlers. The
// counter lives in Redis when configured, in memory otherwise; text messages
// are additionally journaled to PostgreSQL when configured.
type chatState struct {
	Counters *state.ChatStore[int]
	Remote   *redisstate.ChatStore[int]
	History  *pgstate.MessageStore[string]
}

func (s chatState) bumpCounter(ctx context.Context, chatID int64) error {
	if s.Remote == nil {
		s.Counters.Update(chatID, func(n int) int { return n + 1 })
		return nil
	}
	n, err := s.Remote.Get(ctx, chatID)
	if err != nil && !errors.Is(err, redisstate.ErrNotFound) {
		return err
	}
	return s.Remote.Set(ctx, chatID, n+1)
}

func (s chatState) counter(ctx context.Context, chatID int64) (int, error) {
	if s.Remote == nil {
		n, _ := s.Counters.Get(chatID)
		return n, nil
	}
	n, err := s.Remote.Get(ctx, chatID)
	if errors.Is(err, redisstate.ErrNotFound) {
		return 0, nil
	}
	return n, err
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "echobot:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.App.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	client := telegram.NewClient(telegram.ClientConfig{
		BaseURL: cfg.Telegram.BaseURL,
		Timeout: cfg.Telegram.Timeout,
		Logger:  logger,
		Debug:   cfg.App.Debug,
	})
	transport := telegram.NewResilientCaller(client, telegram.ResilientConfig{Logger: logger})
	bot := telegram.NewBot(cfg.Telegram.Token, transport)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	me, err := bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("identify bot: %w", err)
	}
	username := cfg.Telegram.Username
	if username == "" {
		username = me.Username
	}
	logger.Info("bot identified", "id", me.ID, "username", username)

	st := chatState{Counters: state.NewChatStore[int]()}

	if !cfg.Redis.Disabled {
		rcfg := redisstate.DefaultConfig()
		rcfg.Host = cfg.Redis.Host
		rcfg.Port = cfg.Redis.Port
		rcfg.Password = cfg.Redis.Password
		rcfg.DB = cfg.Redis.DB
		counters, err := redisstate.NewChatStore[int](ctx, rcfg, "botcore:counters:"+username)
		if err != nil {
			return fmt.Errorf("redis chat store: %w", err)
		}
		defer counters.Close()
		st.Remote = counters
		logger.Info("redis chat store attached", "addr", rcfg.Addr())
	}

	if !cfg.Database.Disabled {
		pcfg := pgstate.DefaultConfig()
		pcfg.Host = cfg.Database.Host
		pcfg.Port = cfg.Database.Port
		pcfg.Database = cfg.Database.Database
		pcfg.User = cfg.Database.User
		pcfg.Password = cfg.Database.Password
		pcfg.SSLMode = cfg.Database.SSLMode
		history, err := pgstate.NewMessageStore[string](ctx, pcfg, "echobot_history")
		if err != nil {
			return fmt.Errorf("postgres message store: %w", err)
		}
		defer history.Close()
		st.History = history
		logger.Info("postgres message store attached", "database", pcfg.Database)
	}

	registry := dispatch.New(bot, st).
		WithUsername(username).
		WithLogger(logger)

	registerHandlers(registry)

	commands := []telegram.BotCommand{
		{Command: "ping", Description: "Check that the bot is alive"},
		{Command: "count", Description: "How many messages this chat sent"},
		{Command: "keyboard", Description: "Show a demo inline keyboard"},
	}

	if cfg.Webhook.Enabled {
		srv, err := webhook.New(bot, registry, webhook.Config{
			Addr:           cfg.Webhook.Addr,
			PublicURL:      cfg.Webhook.PublicURL,
			SecretToken:    cfg.Webhook.SecretToken,
			MaxConnections: cfg.Webhook.MaxConnections,
			Commands:       commands,
			Logger:         logger,
		})
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	}

	p := poller.New(bot, registry, poller.Config{
		Timeout:      cfg.Polling.Timeout,
		Limit:        cfg.Polling.Limit,
		PollInterval: cfg.Polling.Interval,
		LastN:        cfg.Polling.LastN,
		DropPending:  cfg.Polling.DropPending,
		Concurrency:  cfg.Polling.Concurrency,
		Commands:     commands,
		Logger:       logger,
	})
	err = p.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}

func registerHandlers(r *dispatch.Registry[chatState]) {
	r.BeforeUpdate(func(ctx context.Context, env dispatch.Env[chatState], u *telegram.Update) error {
		if m := u.AnyMessage(); m != nil {
			return env.State.bumpCounter(ctx, m.Chat.ID)
		}
		return nil
	})

	r.OnCommand("ping", func(ctx context.Context, env dispatch.Env[chatState], cmd *dispatch.CommandEvent) error {
		_, err := env.Bot.SendMessage(ctx, telegram.ChatInt(cmd.Message.Chat.ID), "pong", nil)
		return err
	})

	r.OnCommand("count", func(ctx context.Context, env dispatch.Env[chatState], cmd *dispatch.CommandEvent) error {
		n, err := env.State.counter(ctx, cmd.Message.Chat.ID)
		if err != nil {
			return err
		}
		text := fmt.Sprintf("this chat sent %d messages", n)
		if env.State.History != nil {
			stored, err := env.State.History.LenInChat(ctx, cmd.Message.Chat.ID)
			if err != nil {
				return err
			}
			text = fmt.Sprintf("%s (%d on record)", text, stored)
		}
		_, err = env.Bot.SendMessage(ctx, telegram.ChatInt(cmd.Message.Chat.ID), text, nil)
		return err
	})

	r.OnCommand("keyboard", func(ctx context.Context, env dispatch.Env[chatState], cmd *dispatch.CommandEvent) error {
		markup := telegram.NewKeyboard().
			Row(telegram.DataButton("Say hi", "hi"), telegram.DataButton("Say bye", "bye")).
			Build()
		_, err := env.Bot.SendMessage(ctx, telegram.ChatInt(cmd.Message.Chat.ID), "pick one", &telegram.SendMessageOptions{
			SendOptions: telegram.SendOptions{ReplyMarkup: markup},
		})
		return err
	})

	r.OnMessageDataCallback(func(ctx context.Context, env dispatch.Env[chatState], q *telegram.CallbackQuery) error {
		reply := "hi there"
		if q.Data == "bye" {
			reply = "see you"
		}
		return env.Bot.AnswerCallbackQuery(ctx, q.ID, &telegram.AnswerCallbackOptions{Text: reply})
	})

	r.OnText(func(ctx context.Context, env dispatch.Env[chatState], m *telegram.Message) error {
		if env.State.History != nil {
			key := state.MessageKey{ChatID: m.Chat.ID, MessageID: m.MessageID}
			if err := env.State.History.Set(ctx, key, m.Text); err != nil {
				return err
			}
		}
		// Echo with the same entities so formatting survives.
		_, err := env.Bot.SendMessage(ctx, telegram.ChatInt(m.Chat.ID), m.Text, &telegram.SendMessageOptions{
			Entities: m.Entities,
		})
		return err
	})

	r.OnPhoto(func(ctx context.Context, env dispatch.Env[chatState], m *telegram.Message) error {
		if len(m.Photo) == 0 {
			return nil
		}
		largest := m.Photo[len(m.Photo)-1]
		_, err := env.Bot.SendPhoto(ctx, telegram.ChatInt(m.Chat.ID), telegram.FileID(largest.FileID), &telegram.CaptionOptions{
			Caption: strings.TrimSpace("echo " + m.Caption),
		})
		return err
	})

	r.OnUnhandled(func(ctx context.Context, env dispatch.Env[chatState], u *telegram.Update) error {
		slog.Debug("unhandled update", "update_id", u.ID, "kind", u.Kind().String())
		return nil
	})
}
