// Package telegram binds the poll loop to the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jdelaire/dodobot/core"
	"github.com/jdelaire/dodobot/core/commands"
)

const (
	defaultPollTimeout = 30 * time.Second
	// httpSlack keeps the HTTP deadline past the server-side long-poll timeout.
	httpSlack = 10 * time.Second
)

// ErrUnauthorized means Telegram rejected the bot token.
var ErrUnauthorized = errors.New("bot token rejected by telegram")

// Options tune a Transport. Zero values pick the defaults.
type Options struct {
	PollTimeout time.Duration
	Client      *http.Client
}

// Transport implements core.Transport on top of tgbotapi.
type Transport struct {
	bot         *tgbotapi.BotAPI
	pollTimeout int
	logger      *slog.Logger
}

// New creates a Transport without contacting Telegram. Every request is bound
// to ctx, so cancelling it aborts an in-flight long poll.
func New(ctx context.Context, token string, opts Options, log *slog.Logger) (*Transport, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("adapter", "telegram"))

	pollTimeout := opts.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: pollTimeout + httpSlack}
	}

	if err := tgbotapi.SetLogger(&slogBotLogger{log: log}); err != nil {
		return nil, fmt.Errorf("set telegram logger: %w", err)
	}

	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: &boundClient{ctx: ctx, client: client},
		Buffer: 100,
	}
	bot.SetAPIEndpoint(tgbotapi.APIEndpoint)

	return &Transport{
		bot:         bot,
		pollTimeout: int(pollTimeout / time.Second),
		logger:      log,
	}, nil
}

// WithEndpoint overrides the Bot API endpoint (for testing). The endpoint is a
// format string taking the token and the method name, like tgbotapi.APIEndpoint.
func (t *Transport) WithEndpoint(endpoint string) *Transport {
	t.bot.SetAPIEndpoint(endpoint)
	return t
}

// Verify checks the token with getMe and returns the bot's username.
// A rejected token yields ErrUnauthorized.
func (t *Transport) Verify(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	me, err := t.bot.GetMe()
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
			return "", fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
		}
		return "", wrap("getMe", err)
	}
	t.bot.Self = me
	t.logger.Info("connected", slog.String("bot", me.UserName))
	return me.UserName, nil
}

// FetchUpdates long-polls getUpdates starting at offset.
func (t *Transport) FetchUpdates(ctx context.Context, offset int64) ([]core.Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := tgbotapi.NewUpdate(int(offset))
	cfg.Timeout = t.pollTimeout

	raw, err := t.bot.GetUpdates(cfg)
	if err != nil {
		return nil, wrap("getUpdates", err)
	}

	updates := make([]core.Update, 0, len(raw))
	for _, u := range raw {
		updates = append(updates, convertUpdate(u))
	}
	if len(updates) > 0 {
		t.logger.Debug("updates received", slog.Int("count", len(updates)), slog.Int64("offset", offset))
	}
	return updates, nil
}

// SendAnimation uploads the file at path as an animation replying to replyTo.
func (t *Transport) SendAnimation(ctx context.Context, chatID, replyTo int64, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("animation asset: %w", err)
	}
	anim := tgbotapi.NewAnimation(chatID, tgbotapi.FilePath(path))
	anim.ReplyToMessageID = int(replyTo)
	if _, err := t.bot.Send(anim); err != nil {
		return wrap("sendAnimation", err)
	}
	return nil
}

// SendPoll posts a poll, as a reply when replyTo is set.
func (t *Transport) SendPoll(ctx context.Context, chatID int64, question string, options []string, replyTo *int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	poll := tgbotapi.NewPoll(chatID, question, options...)
	if replyTo != nil {
		poll.ReplyToMessageID = int(*replyTo)
	}
	if _, err := t.bot.Send(poll); err != nil {
		return wrap("sendPoll", err)
	}
	return nil
}

// SetCommands replaces the bot's command list.
func (t *Transport) SetCommands(ctx context.Context, cmds []commands.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	botCmds := make([]tgbotapi.BotCommand, 0, len(cmds))
	for _, c := range cmds {
		botCmds = append(botCmds, tgbotapi.BotCommand{Command: c.Name, Description: c.Description})
	}
	if _, err := t.bot.Request(tgbotapi.NewSetMyCommands(botCmds...)); err != nil {
		return wrap("setMyCommands", err)
	}
	return nil
}

func convertUpdate(u tgbotapi.Update) core.Update {
	out := core.Update{ID: int64(u.UpdateID)}
	if u.Message == nil {
		return out
	}
	msg := &core.Message{
		ID:   int64(u.Message.MessageID),
		Date: time.Unix(int64(u.Message.Date), 0),
	}
	if u.Message.Chat != nil {
		msg.ChatID = u.Message.Chat.ID
	}
	// Telegram never sends an empty text field: empty means absent.
	if u.Message.Text != "" {
		text := u.Message.Text
		msg.Text = &text
	}
	out.Message = msg
	return out
}

func wrap(method string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrTransport, method, err)
}

// boundClient attaches a fixed context to every request tgbotapi makes.
type boundClient struct {
	ctx    context.Context
	client *http.Client
}

func (c *boundClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(c.ctx))
}
