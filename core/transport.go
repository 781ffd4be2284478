package core

import (
	"context"
	"errors"

	"github.com/jdelaire/dodobot/core/commands"
)

// ErrTransport marks network or Bot API failures. Adapters wrap it so callers
// can tell transport trouble from data trouble.
var ErrTransport = errors.New("transport error")

// Transport is the chat platform binding the loop polls and replies through.
type Transport interface {
	FetchUpdates(ctx context.Context, offset int64) ([]Update, error)
	SendAnimation(ctx context.Context, chatID, replyTo int64, path string) error
	// SendPoll posts a poll. A nil replyTo sends it as a standalone message.
	SendPoll(ctx context.Context, chatID int64, question string, options []string, replyTo *int64) error
	SetCommands(ctx context.Context, cmds []commands.Command) error
}
