package tcp

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/linechat/internal/auth"
	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/store/memory"
)

type testConn struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func startTestServer(t *testing.T, mutate func(*config.Config)) (string, context.CancelFunc) {
	t.Helper()

	cfg := config.Default()
	cfg.TCPAddr = "127.0.0.1:0"
	if mutate != nil {
		mutate(&cfg)
	}

	disabledLogger := zerolog.New(nil)
	hub := core.NewHub(auth.NewService(memory.New(), bcrypt.MinCost), core.HubOptions{
		Options: core.Options{
			MaxClientsPerChannel: cfg.MaxClientsPerChannel,
			HistorySize:          cfg.HistorySize,
		},
		OutboundBuffer: cfg.OutboundBuffer,
	}, &disabledLogger)

	server := NewServer(hub, &cfg, &disabledLogger)
	if err := server.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("serve returned %v", err)
			}
		case <-time.After(3 * time.Second):
			t.Errorf("server did not stop")
		}
	})

	return server.Addr().String(), cancel
}

func dial(t *testing.T, addr string) *testConn {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	c := &testConn{t: t, conn: conn, r: bufio.NewReader(conn)}
	c.expect("/users") // wait for the welcome text
	return c
}

func (c *testConn) send(line string) {
	c.t.Helper()
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

// expect reads lines until one contains substr.
func (c *testConn) expect(substr string) string {
	c.t.Helper()

	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		line, err := c.r.ReadString('\n')
		if err != nil {
			c.t.Fatalf("waiting for %q: %v", substr, err)
		}
		if strings.Contains(line, substr) {
			return strings.TrimRight(line, "\n")
		}
	}
}

func TestTCPChatRoundTrip(t *testing.T) {
	addr, _ := startTestServer(t, nil)

	alice := dial(t, addr)
	bob := dial(t, addr)

	alice.send("/login alice secret")
	alice.expect("Registered and logged in as alice.")
	bob.send("/login bob secret")
	bob.expect("Registered and logged in as bob.")

	alice.send("/join general")
	alice.expect("* alice joined general")
	bob.send("/join general")
	alice.expect("* bob joined general")
	bob.expect("* bob joined general")

	alice.send("hello bob")
	if got := bob.expect("hello bob"); got != "[alice] hello bob" {
		t.Fatalf("bob got %q", got)
	}
	if got := alice.expect("hello bob"); got != "[you] hello bob" {
		t.Fatalf("alice got %q", got)
	}

	bob.send("/users")
	if got := bob.expect("Users in"); got != "Users in general: alice, bob" {
		t.Fatalf("unexpected users line %q", got)
	}

	alice.send("/leave")
	bob.expect("* alice left general")
	alice.expect("Goodbye.")

	// The server closes alice's connection after the goodbye.
	_ = alice.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := alice.r.ReadString('\n'); err == nil {
		t.Fatalf("expected alice's connection to be closed")
	}
}

func TestTCPDroppedConnectionNotifiesChannel(t *testing.T) {
	addr, _ := startTestServer(t, nil)

	alice := dial(t, addr)
	bob := dial(t, addr)
	alice.send("/login alice pw")
	alice.send("/join general")
	alice.expect("* alice joined general")
	bob.send("/login bob pw")
	bob.send("/join general")
	bob.expect("* bob joined general")

	_ = alice.conn.Close()
	bob.expect("* alice left general")
}

func TestTCPInvalidCommandKeepsConnection(t *testing.T) {
	addr, _ := startTestServer(t, nil)

	c := dial(t, addr)
	c.send("/login onlyname")
	c.expect("Invalid command.")
	c.send("/join general")
	c.expect("You must log in first.")
	c.send("/login carol pw")
	c.expect("logged in as carol")
}

func TestTCPRateLimit(t *testing.T) {
	addr, _ := startTestServer(t, func(cfg *config.Config) {
		cfg.RateLimitPerMinute = 2
	})

	c := dial(t, addr)
	c.send("/users")
	c.send("/users")
	c.send("/users")
	c.expect(slowDownText)
}

func TestTCPLineTooLongIsDiscarded(t *testing.T) {
	addr, _ := startTestServer(t, func(cfg *config.Config) {
		cfg.MaxLineBytes = 64
	})

	c := dial(t, addr)
	c.send(strings.Repeat("x", 200))
	c.expect(tooLongText)

	// The connection stays usable and the tail of the long line is not
	// read as a command.
	c.send("/login erin pw")
	if got := c.expect("erin"); got != "Registered and logged in as erin." {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestTCPLinesAfterLeaveAreIgnored(t *testing.T) {
	addr, _ := startTestServer(t, nil)

	alice := dial(t, addr)
	bob := dial(t, addr)
	alice.send("/login alice pw")
	alice.send("/join general")
	alice.expect("* alice joined general")
	bob.send("/login bob pw")
	bob.send("/join general")
	bob.expect("* bob joined general")

	if _, err := alice.conn.Write([]byte("/leave\n/join general\nghost message\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	bob.expect("* alice left general")

	// Nothing from alice may arrive between the leave notice and this reply.
	bob.send("/users")
	_ = bob.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bob.r.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := strings.TrimRight(line, "\n"); got != "Users in general: bob" {
		t.Fatalf("unexpected line after leave: %q", got)
	}
}
