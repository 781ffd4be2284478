package core

import (
	"strings"

	"github.com/jdelaire/dodobot/core/commands"
)

const (
	// AssetDoubtReaction names the animation sent when someone voices doubt.
	AssetDoubtReaction = "doubt-reaction"

	// ReplyPollQuestion is the question of the poll sent in reply to the
	// poll command. The scheduled poll uses a day-dependent question instead.
	ReplyPollQuestion = "Dodo?"
)

// Router decides how the bot reacts to a message. It has no side effects.
type Router struct {
	triggers    []string
	commands    *commands.Registry
	pollCommand string
}

// NewRouter creates a Router. Empty triggers are ignored, since every text
// contains the empty string. pollCommand must be registered in cmds.
func NewRouter(triggers []string, cmds *commands.Registry, pollCommand string) *Router {
	kept := make([]string, 0, len(triggers))
	for _, t := range triggers {
		if t != "" {
			kept = append(kept, t)
		}
	}
	return &Router{
		triggers:    kept,
		commands:    cmds,
		pollCommand: strings.TrimPrefix(pollCommand, "/"),
	}
}

// Route returns the actions a message triggers, in a fixed order: the doubt
// reaction first, then the poll. Rules are independent, so one message may
// trigger both.
func (r *Router) Route(msg Message) []Action {
	if msg.Text == nil {
		return nil
	}
	text := *msg.Text

	var actions []Action
	if r.containsTrigger(text) {
		actions = append(actions, SendAnimation{
			ChatID:  msg.ChatID,
			ReplyTo: msg.ID,
			Asset:   AssetDoubtReaction,
		})
	}

	if cmd, ok := r.commands.Match(text); ok && cmd.Name == r.pollCommand {
		replyTo := msg.ID
		actions = append(actions, SendPoll{
			ChatID:   msg.ChatID,
			ReplyTo:  &replyTo,
			Question: ReplyPollQuestion,
		})
	}

	return actions
}

func (r *Router) containsTrigger(text string) bool {
	for _, t := range r.triggers {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
