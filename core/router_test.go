package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jdelaire/dodobot/core/commands"
)

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	cmds := commands.NewRegistry()
	if err := cmds.Register(commands.Command{Name: "dodo", Description: "Polls for dota availability"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return NewRouter([]string{"doubt", "daut"}, cmds, "dodo")
}

func textMsg(id int64, text string) Message {
	return Message{ID: id, ChatID: 100, Text: strPtr(text)}
}

func TestRoute(t *testing.T) {
	r := newTestRouter(t)

	animation := func(id int64) Action {
		return SendAnimation{ChatID: 100, ReplyTo: id, Asset: AssetDoubtReaction}
	}
	poll := func(id int64) Action {
		return SendPoll{ChatID: 100, ReplyTo: int64Ptr(id), Question: ReplyPollQuestion}
	}

	tests := []struct {
		name string
		msg  Message
		want []Action
	}{
		{"no text", Message{ID: 1, ChatID: 100}, nil},
		{"empty text", textMsg(2, ""), nil},
		{"unrelated", textMsg(3, "gg wp"), nil},
		{"doubt", textMsg(4, "I doubt it"), []Action{animation(4)}},
		{"daut", textMsg(5, "i daut it"), []Action{animation(5)}},
		{"substring inside word", textMsg(6, "undoubtedly"), []Action{animation(6)}},
		{"case sensitive", textMsg(7, "I DOUBT it"), nil},
		{"command", textMsg(8, "/dodo"), []Action{poll(8)}},
		{"command trailing space", textMsg(9, "/dodo "), nil},
		{"command capitalized", textMsg(10, "/Dodo"), nil},
		{"command with args", textMsg(11, "/dodo doubt"), []Action{animation(11)}},
		{"unknown command", textMsg(12, "/status"), nil},
		{"unicode", textMsg(13, "Zweifel 🤔 doubt ✓"), []Action{animation(13)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Route(tt.msg)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Route() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRouteBothRules(t *testing.T) {
	cmds := commands.NewRegistry()
	cmds.Register(commands.Command{Name: "doubt"})
	r := NewRouter([]string{"doubt"}, cmds, "doubt")

	got := r.Route(textMsg(1, "/doubt"))
	want := []Action{
		SendAnimation{ChatID: 100, ReplyTo: 1, Asset: AssetDoubtReaction},
		SendPoll{ChatID: 100, ReplyTo: int64Ptr(1), Question: ReplyPollQuestion},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Route() mismatch (-want +got):\n%s", diff)
	}
}

func TestRouteTriggerProperty(t *testing.T) {
	r := newTestRouter(t)
	inputs := []string{
		"", "d", "dou", "doub", "doubt", "xxdoubtxx", "dau", "daut", "DAUT",
		"d o u b t", "no", strings.Repeat("a", 1<<20) + "daut", strings.Repeat("b", 1<<20),
	}

	for _, in := range inputs {
		want := strings.Contains(in, "doubt") || strings.Contains(in, "daut")
		got := false
		for _, a := range r.Route(textMsg(1, in)) {
			if _, ok := a.(SendAnimation); ok {
				got = true
			}
		}
		if got != want {
			t.Errorf("Route(%.20q...) animation = %v, want %v", in, got, want)
		}
	}
}

func TestRouteIgnoresEmptyTriggers(t *testing.T) {
	r := NewRouter([]string{"", "doubt"}, commands.NewRegistry(), "dodo")
	if got := r.Route(textMsg(1, "hello")); len(got) != 0 {
		t.Errorf("Route() = %v, want no actions", got)
	}
}

func TestRoutePollCommandWithSlash(t *testing.T) {
	cmds := commands.NewRegistry()
	cmds.Register(commands.Command{Name: "dodo"})
	r := NewRouter(nil, cmds, "/dodo")

	if got := r.Route(textMsg(1, "/dodo")); len(got) != 1 {
		t.Fatalf("Route() = %v, want one poll", got)
	}
}
