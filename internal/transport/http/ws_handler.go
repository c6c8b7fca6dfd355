package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/core"
)

const wsWriteTimeout = 10 * time.Second

// WSHandler upgrades HTTP connections and bridges them to the hub. Every text
// frame is one line in either direction.
type WSHandler struct {
	hub          *core.Hub
	maxLineBytes int64
	log          *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, maxLineBytes int, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, maxLineBytes: int64(maxLineBytes), log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()
	if h.maxLineBytes > 0 {
		conn.SetReadLimit(h.maxLineBytes)
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := h.hub.Connect()
	logger := h.log.With().Str("conn_id", string(client.ID)).Str("remote", r.RemoteAddr).Logger()
	logger.Debug().Msg("ws connection accepted")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		if err := h.writeLoop(ctx, conn, client); err != nil {
			logger.Debug().Err(err).Msg("ws write loop ended")
			// Unblocks the reader.
			cancel()
		}
	}()

	err = h.readLoop(ctx, conn, client)
	if err != nil && !isExpectedClose(err) && !closing(client) {
		logger.Warn().Err(err).Msg("ws connection closed with error")
	}

	h.hub.Disconnect(client)
	<-writerDone
	logger.Debug().Msg("ws connection closed")
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if closing(client) {
			return nil
		}
		if typ != websocket.MessageText {
			continue
		}
		line := strings.TrimRight(string(data), "\r\n")
		h.hub.Handle(ctx, client, line)
	}
}

// writeLoop sends queued lines until the core ends the connection, then
// drains the mailbox and performs the close handshake.
func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	write := func(line string) error {
		wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
		defer cancel()
		return conn.Write(wctx, websocket.MessageText, []byte(line))
	}

	for {
		select {
		case line := <-client.Outgoing:
			if err := write(line); err != nil {
				return err
			}
		case <-client.Done():
			for {
				select {
				case line := <-client.Outgoing:
					if err := write(line); err != nil {
						return err
					}
				default:
					return conn.Close(websocket.StatusNormalClosure, "goodbye")
				}
			}
		}
	}
}

func isExpectedClose(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}

func closing(client *core.Client) bool {
	select {
	case <-client.Done():
		return true
	default:
		return false
	}
}
