package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/linechat/internal/auth"
	"github.com/vovakirdan/linechat/internal/store/memory"
)

func newTestAuth() *auth.Service {
	return auth.NewService(memory.New(), bcrypt.MinCost)
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	return NewRouter(newTestAuth(), nil, Options{}, nil)
}

// textsFor returns the lines addressed to id, in order.
func textsFor(effects []Effect, id ConnID) []string {
	var out []string
	for _, e := range effects {
		if e.To == id && !e.Close {
			out = append(out, e.Text)
		}
	}
	return out
}

func hasClose(effects []Effect, id ConnID) bool {
	for _, e := range effects {
		if e.To == id && e.Close {
			return true
		}
	}
	return false
}

// loggedIn connects id and logs it in as user with password "pw".
func loggedIn(t *testing.T, r *Router, id ConnID, user string) {
	t.Helper()
	r.Connect(id)
	effects := r.HandleLine(context.Background(), id, fmt.Sprintf("/login %s pw", user))
	got := textsFor(effects, id)
	if len(got) == 0 || (got[0] != registeredText(user) && got[0] != loggedInText(user)) {
		t.Fatalf("login %s failed: %v", user, got)
	}
}

// inChannel connects, logs in and joins channel.
func inChannel(t *testing.T, r *Router, id ConnID, user, channel string) {
	t.Helper()
	loggedIn(t, r, id, user)
	r.HandleLine(context.Background(), id, "/join "+channel)
	s, err := r.Sessions().Get(id)
	if err != nil || s.Channel != channel {
		t.Fatalf("%s did not join %s: %+v %v", user, channel, s, err)
	}
}

func mustLine(t *testing.T, ch <-chan string) string {
	t.Helper()

	select {
	case line := <-ch:
		return line
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a line, got none")
		return ""
	}
}

func expectNoLine(t *testing.T, ch <-chan string) {
	t.Helper()

	select {
	case line := <-ch:
		t.Fatalf("unexpected line %q", line)
	case <-time.After(50 * time.Millisecond):
	}
}
