package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jdelaire/dodobot/core/commands"
	"github.com/jdelaire/dodobot/internal/catalog"
)

type sentAnimation struct {
	chatID  int64
	replyTo int64
	path    string
}

type sentPoll struct {
	chatID   int64
	question string
	options  []string
	replyTo  *int64
}

// fakeTransport serves scripted update batches, then blocks until the context
// is cancelled, like an idle long poll.
type fakeTransport struct {
	mu         sync.Mutex
	batches    [][]Update
	fetchErrs  []error
	offsets    []int64
	animations []sentAnimation
	polls      []sentPoll
	commands   []commands.Command

	setCommandsErr error
	sendErr        error
	panicOnChat    int64
}

func (f *fakeTransport) FetchUpdates(ctx context.Context, offset int64) ([]Update, error) {
	f.mu.Lock()
	f.offsets = append(f.offsets, offset)
	if len(f.fetchErrs) > 0 {
		err := f.fetchErrs[0]
		f.fetchErrs = f.fetchErrs[1:]
		f.mu.Unlock()
		return nil, err
	}
	if len(f.batches) > 0 {
		batch := f.batches[0]
		f.batches = f.batches[1:]
		f.mu.Unlock()
		return batch, nil
	}
	f.mu.Unlock()

	<-ctx.Done()
	return nil, fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
}

func (f *fakeTransport) SendAnimation(_ context.Context, chatID, replyTo int64, path string) error {
	if f.panicOnChat != 0 && chatID == f.panicOnChat {
		panic("boom")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.animations = append(f.animations, sentAnimation{chatID: chatID, replyTo: replyTo, path: path})
	return nil
}

func (f *fakeTransport) SendPoll(_ context.Context, chatID int64, question string, options []string, replyTo *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.polls = append(f.polls, sentPoll{chatID: chatID, question: question, options: options, replyTo: replyTo})
	return nil
}

func (f *fakeTransport) SetCommands(_ context.Context, cmds []commands.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = cmds
	return f.setCommandsErr
}

func (f *fakeTransport) sentAnimations() []sentAnimation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentAnimation(nil), f.animations...)
}

func (f *fakeTransport) sentPolls() []sentPoll {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentPoll(nil), f.polls...)
}

func (f *fakeTransport) fetchOffsets() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.offsets...)
}

func (f *fakeTransport) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.offsets)
}

type staticCatalog struct {
	cat *catalog.Catalog
	err error
}

func (s staticCatalog) Load() (*catalog.Catalog, error) {
	return s.cat, s.err
}

func testCatalog(yes, no []string) staticCatalog {
	return staticCatalog{cat: &catalog.Catalog{DodoPoll: &catalog.PollOptions{Yes: yes, No: no}}}
}

var errSend = errors.New("send failed")
