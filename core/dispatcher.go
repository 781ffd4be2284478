package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jdelaire/dodobot/internal/catalog"
	"github.com/jdelaire/dodobot/internal/logger"
)

// CatalogLoader loads a fresh catalog for each poll built.
type CatalogLoader interface {
	Load() (*catalog.Catalog, error)
}

// Dispatcher routes inbound messages and executes the resulting actions
// against the transport.
type Dispatcher struct {
	router    *Router
	transport Transport
	catalog   CatalogLoader
	assets    map[string]string
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher. assets maps asset names used by actions
// to files on disk.
func NewDispatcher(router *Router, transport Transport, cat CatalogLoader, assets map[string]string, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		router:    router,
		transport: transport,
		catalog:   cat,
		assets:    assets,
		logger:    log,
	}
}

// Handle routes a message and runs every action it triggers. One failed action
// does not stop the others; their errors are joined.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) error {
	actions := d.router.Route(msg)
	if len(actions) == 0 {
		return nil
	}

	var errs []error
	for _, a := range actions {
		if err := d.Execute(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Op(), err))
		}
	}
	return errors.Join(errs...)
}

// Execute performs a single action.
func (d *Dispatcher) Execute(ctx context.Context, a Action) error {
	switch a := a.(type) {
	case SendAnimation:
		return d.sendAnimation(ctx, a)
	case SendPoll:
		return d.sendPoll(ctx, a)
	default:
		return fmt.Errorf("unsupported action %T", a)
	}
}

func (d *Dispatcher) sendAnimation(ctx context.Context, a SendAnimation) error {
	path, ok := d.assets[a.Asset]
	if !ok || path == "" {
		return fmt.Errorf("unknown asset %q", a.Asset)
	}
	if err := d.transport.SendAnimation(ctx, a.ChatID, a.ReplyTo, path); err != nil {
		return err
	}
	d.log(ctx).Info("animation sent", "chat_id", a.ChatID, "reply_to", a.ReplyTo, "asset", a.Asset)
	return nil
}

func (d *Dispatcher) sendPoll(ctx context.Context, p SendPoll) error {
	if len(p.Options) == 0 {
		options, err := d.pollOptions()
		if err != nil {
			return err
		}
		p.Options = options
	}
	if err := d.transport.SendPoll(ctx, p.ChatID, p.Question, p.Options, p.ReplyTo); err != nil {
		return err
	}
	d.log(ctx).Info("poll sent", "chat_id", p.ChatID, "question", p.Question, "scheduled", p.ReplyTo == nil)
	return nil
}

func (d *Dispatcher) pollOptions() ([]string, error) {
	if d.catalog == nil {
		return nil, fmt.Errorf("%w: no catalog configured", catalog.ErrDataUnavailable)
	}
	c, err := d.catalog.Load()
	if err != nil {
		return nil, err
	}
	return c.PickPair()
}

func (d *Dispatcher) log(ctx context.Context) *slog.Logger {
	if l, ok := logger.Lookup(ctx); ok {
		return l
	}
	return d.logger
}
