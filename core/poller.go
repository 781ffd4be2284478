package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jdelaire/dodobot/core/commands"
	"github.com/jdelaire/dodobot/core/policy"
	"github.com/jdelaire/dodobot/core/schedule"
	"github.com/jdelaire/dodobot/internal/catalog"
	"github.com/jdelaire/dodobot/internal/logger"
)

const (
	defaultHandlerTimeout = 30 * time.Second
	setCommandsTimeout    = 10 * time.Second
)

// LoopConfig wires the collaborators of a PollLoop.
type LoopConfig struct {
	// ChatID receives the scheduled poll.
	ChatID   int64
	Gate     *schedule.Gate
	Commands *commands.Registry
	// Policy filters messages before dispatch. Nil accepts everything.
	Policy *policy.Policy
	// Limiter paces fetches. Nil means unlimited.
	Limiter        *rate.Limiter
	HandlerTimeout time.Duration
}

// PollLoop repeatedly fetches updates, hands each message to the dispatcher
// in its own goroutine, and fires the scheduled poll when the gate opens.
type PollLoop struct {
	transport      Transport
	dispatcher     *Dispatcher
	gate           *schedule.Gate
	commands       *commands.Registry
	policy         *policy.Policy
	limiter        *rate.Limiter
	chatID         int64
	handlerTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time

	offset atomic.Int64
	wg     sync.WaitGroup
}

// NewPollLoop creates a PollLoop.
func NewPollLoop(transport Transport, dispatcher *Dispatcher, cfg LoopConfig, log *slog.Logger) *PollLoop {
	if log == nil {
		log = slog.Default()
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	timeout := cfg.HandlerTimeout
	if timeout <= 0 {
		timeout = defaultHandlerTimeout
	}
	cmds := cfg.Commands
	if cmds == nil {
		cmds = commands.NewRegistry()
	}
	gate := cfg.Gate
	if gate == nil {
		gate = schedule.NewGate(time.Thursday, nil)
	}
	return &PollLoop{
		transport:      transport,
		dispatcher:     dispatcher,
		gate:           gate,
		commands:       cmds,
		policy:         cfg.Policy,
		limiter:        limiter,
		chatID:         cfg.ChatID,
		handlerTimeout: timeout,
		logger:         log,
		now:            time.Now,
	}
}

// WithClock overrides the time source consulted by the schedule gate.
func (l *PollLoop) WithClock(now func() time.Time) *PollLoop {
	if now != nil {
		l.now = now
	}
	return l
}

// Offset returns the smallest update ID not yet acknowledged.
func (l *PollLoop) Offset() int64 {
	return l.offset.Load()
}

// Wait blocks until every spawned handler has returned.
func (l *PollLoop) Wait() {
	l.wg.Wait()
}

// Run registers the bot commands and loops until ctx is cancelled. Transport
// and handler failures are logged, never returned. Run waits for in-flight
// handlers before returning.
func (l *PollLoop) Run(ctx context.Context) error {
	l.logger.Info("poll loop started", "chat_id", l.chatID, "weekday", l.gate.Weekday().String())
	l.registerCommands(ctx)

	for ctx.Err() == nil {
		l.tick(ctx)
	}

	l.wg.Wait()
	l.logger.Info("poll loop stopped", "offset", l.Offset())
	return nil
}

func (l *PollLoop) registerCommands(ctx context.Context) {
	cmds := l.commands.List()
	if len(cmds) == 0 {
		return
	}
	setCtx, cancel := context.WithTimeout(ctx, setCommandsTimeout)
	defer cancel()
	if err := l.transport.SetCommands(setCtx, cmds); err != nil {
		l.logger.Error("failed to set commands", "count", len(cmds), "error", err)
		return
	}
	l.logger.Info("commands registered", "count", len(cmds))
}

// tick runs one cycle: consult the gate, fetch, dispatch.
func (l *PollLoop) tick(ctx context.Context) {
	l.checkSchedule(ctx)

	if err := l.limiter.Wait(ctx); err != nil {
		return
	}

	offset := l.Offset()
	updates, err := l.transport.FetchUpdates(ctx, offset)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		l.logger.Error("fetch updates failed", "offset", offset, "error", err)
		return
	}

	l.process(ctx, updates)
}

func (l *PollLoop) checkSchedule(ctx context.Context) {
	if !l.gate.Consult(l.now()) {
		return
	}
	poll := SendPoll{
		ChatID:   l.chatID,
		Question: schedule.PollQuestion(l.gate.Weekday()),
	}
	l.logger.Info("scheduled poll due", "chat_id", l.chatID, "question", poll.Question)
	l.spawn(ctx, "scheduled_poll", []any{"chat_id", l.chatID}, func(ctx context.Context) error {
		return l.dispatcher.Execute(ctx, poll)
	})
}

// process dispatches a batch in arrival order and acknowledges every update
// once read, whatever its handler later does.
func (l *PollLoop) process(ctx context.Context, updates []Update) {
	for _, u := range updates {
		if u.Message != nil && l.accept(u) {
			msg := *u.Message
			attrs := []any{"update_id", u.ID, "chat_id", msg.ChatID, "message_id", msg.ID}
			l.spawn(ctx, "handle_message", attrs, func(ctx context.Context) error {
				return l.dispatcher.Handle(ctx, msg)
			})
		}
		l.advance(u.ID + 1)
	}
}

func (l *PollLoop) accept(u Update) bool {
	if l.policy == nil {
		return true
	}
	if err := l.policy.Authorize(u.Message.ChatID, u.ID, u.Message.Date); err != nil {
		l.logger.Debug("message rejected by policy", "update_id", u.ID, "chat_id", u.Message.ChatID, "error", err)
		return false
	}
	return true
}

func (l *PollLoop) advance(next int64) {
	if next > l.offset.Load() {
		l.offset.Store(next)
	}
}

// spawn runs fn in its own goroutine behind a recover-and-log boundary so a
// failing handler cannot take down the loop or its siblings.
func (l *PollLoop) spawn(ctx context.Context, op string, attrs []any, fn func(context.Context) error) {
	log := l.logger.With(append([]any{"handler_id", uuid.NewString(), "op", op}, attrs...)...)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error("handler panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			}
		}()

		hctx, cancel := context.WithTimeout(logger.WithContext(ctx, log), l.handlerTimeout)
		defer cancel()

		err := fn(hctx)
		switch {
		case err == nil:
		case errors.Is(err, catalog.ErrData):
			log.Warn("action skipped: catalog data unusable", "error", err)
		default:
			log.Error("handler failed", "error", err)
		}
	}()
}
