package commands

import "testing"

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Command{Name: "dodo", Description: "Polls for dota availability"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cmd, ok := r.Get("dodo")
	if !ok {
		t.Fatal("expected dodo to be registered")
	}
	if cmd.Description != "Polls for dota availability" {
		t.Errorf("description = %q", cmd.Description)
	}
}

func TestRegisterStripsSlash(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Command{Name: "/dodo"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := r.Get("dodo"); !ok {
		t.Error("expected leading slash to be stripped")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Name: "dodo"})
	if err := r.Register(Command{Name: "dodo"}); err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}

func TestRegisterInvalid(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"", "/", "do do", "dodo@bot"} {
		if err := r.Register(Command{Name: name}); err == nil {
			t.Errorf("Register(%q) = nil, want error", name)
		}
	}
}

func TestMatchExactOnly(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Name: "dodo"})

	tests := []struct {
		text string
		want bool
	}{
		{"/dodo", true},
		{"/dodo ", false},
		{" /dodo", false},
		{"/Dodo", false},
		{"/dodo@mybot", false},
		{"/dodo now", false},
		{"dodo", false},
		{"/", false},
		{"", false},
	}

	for _, tt := range tests {
		_, got := r.Match(tt.text)
		if got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestListSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(Command{Name: "zeta"})
	r.Register(Command{Name: "alpha"})
	r.Register(Command{Name: "dodo"})

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	want := []string{"alpha", "dodo", "zeta"}
	for i, cmd := range list {
		if cmd.Name != want[i] {
			t.Errorf("list[%d] = %q, want %q", i, cmd.Name, want[i])
		}
	}
}
