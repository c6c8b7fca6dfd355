package core

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Command
		ok      bool
		invalid bool
	}{
		{name: "login", line: "/login alice secret", want: Command{Kind: CommandLogin, Username: "alice", Password: "secret"}, ok: true},
		{name: "login extra spaces", line: "  /login   alice   secret ", want: Command{Kind: CommandLogin, Username: "alice", Password: "secret"}, ok: true},
		{name: "login missing password", line: "/login alice", invalid: true},
		{name: "login too many args", line: "/login a b c", invalid: true},
		{name: "join", line: "/join general", want: Command{Kind: CommandJoin, Channel: "general"}, ok: true},
		{name: "join no channel", line: "/join", invalid: true},
		{name: "leave", line: "/leave", want: Command{Kind: CommandLeave}, ok: true},
		{name: "leave with arg", line: "/leave now", invalid: true},
		{name: "users", line: "/users", want: Command{Kind: CommandUsers}, ok: true},
		{name: "users with arg", line: "/users general", invalid: true},
		{name: "free text", line: "hello there", want: Command{Kind: CommandSay, Text: "hello there"}, ok: true},
		{name: "unknown verb is text", line: "/shrug ok", want: Command{Kind: CommandSay, Text: "/shrug ok"}, ok: true},
		{name: "blank", line: "   ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok, err := ParseCommand(tt.line)
			if tt.invalid {
				if err == nil || err.Code != ErrCodeInvalidCommand || err.Message != "Invalid command." {
					t.Fatalf("expected invalid command, got %+v %v", cmd, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && cmd != tt.want {
				t.Fatalf("cmd = %+v, want %+v", cmd, tt.want)
			}
		})
	}
}

func TestCommandKindString(t *testing.T) {
	tests := map[CommandKind]string{
		CommandSay:      "say",
		CommandLogin:    "login",
		CommandJoin:     "join",
		CommandLeave:    "leave",
		CommandUsers:    "users",
		CommandKind(99): "unknown",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(kind), got, want)
		}
	}
}
