package core

import "fmt"

// Action is a reaction the router decided on. The dispatcher executes it.
type Action interface {
	// Op names the action in logs.
	Op() string
}

// SendAnimation replies with a named animation asset.
type SendAnimation struct {
	ChatID  int64
	ReplyTo int64
	Asset   string
}

func (SendAnimation) Op() string { return "send_animation" }

// SendPoll posts a yes/no poll. Options is left empty by the router and filled
// from the catalog when the action runs.
type SendPoll struct {
	ChatID   int64
	ReplyTo  *int64
	Question string
	Options  []string
}

func (SendPoll) Op() string { return "send_poll" }

func (p SendPoll) String() string {
	if p.ReplyTo == nil {
		return fmt.Sprintf("poll %q to chat %d", p.Question, p.ChatID)
	}
	return fmt.Sprintf("poll %q to chat %d (reply to %d)", p.Question, p.ChatID, *p.ReplyTo)
}
