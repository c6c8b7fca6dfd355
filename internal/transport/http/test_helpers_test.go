package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/linechat/internal/auth"
	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/store/memory"
)

func startTestServer(t *testing.T) (*httptest.Server, *core.Hub) {
	t.Helper()

	cfg := config.Default()
	logger := zerolog.Nop()
	authService := auth.NewService(memory.New(), bcrypt.MinCost)
	hub := core.NewHub(authService, core.HubOptions{
		Options: core.Options{
			MaxClientsPerChannel: cfg.MaxClientsPerChannel,
			HistorySize:          cfg.HistorySize,
		},
		OutboundBuffer: cfg.OutboundBuffer,
	}, &logger)

	server := NewServer(hub, authService, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialWS(t *testing.T, ts *httptest.Server) *wsClient {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.CloseNow() })

	c := &wsClient{t: t, conn: conn}
	c.expect("/users") // wait for the welcome text
	return c
}

func (c *wsClient) send(line string) {
	c.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

// expect reads frames until one contains substr. The welcome text arrives as
// a single multi-line frame.
func (c *wsClient) expect(substr string) string {
	c.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			c.t.Fatalf("waiting for %q: %v", substr, err)
		}
		if strings.Contains(string(data), substr) {
			return string(data)
		}
	}
}
