// Package tcp serves the line protocol over plain TCP connections: one line
// in, zero or more lines out, each terminated by "\n".
package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/core"
)

const (
	writeTimeout = 10 * time.Second
	slowDownText = "Slow down."
	tooLongText  = "Line too long."
)

// Server accepts TCP connections and bridges them to a core.Hub.
type Server struct {
	hub          *core.Hub
	addr         string
	maxLineBytes int
	idleTimeout  time.Duration
	ratePerMin   int
	log          *zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// NewServer builds a TCP server for cfg.TCPAddr.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *Server {
	return &Server{
		hub:          hub,
		addr:         cfg.TCPAddr,
		maxLineBytes: cfg.MaxLineBytes,
		idleTimeout:  cfg.IdleTimeout,
		ratePerMin:   cfg.RateLimitPerMinute,
		log:          logger,
		conns:        make(map[net.Conn]struct{}),
	}
}

// Listen binds the listening socket. Serve calls it when needed.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen tcp %s: %w", s.addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled, then closes every open
// connection and waits for their goroutines.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.log.Info().Str("addr", s.Addr().String()).Msg("tcp server listening")

	stop := context.AfterFunc(ctx, s.shutdown)
	defer stop()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}

		s.track(conn, true)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.track(conn, false)
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.listener != nil {
		_ = s.listener.Close()
	}
	for conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *Server) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if add {
		if s.closed {
			_ = conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	client := s.hub.Connect()
	logger := s.log.With().Str("conn_id", string(client.ID)).Str("remote", conn.RemoteAddr().String()).Logger()
	logger.Debug().Msg("connection accepted")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		if err := s.writeLoop(conn, client); err != nil {
			logger.Debug().Err(err).Msg("write loop ended")
		}
		// Unblocks the reader when the core ends the connection.
		_ = conn.Close()
	}()

	if err := s.readLoop(ctx, conn, client); err != nil {
		logger.Debug().Err(err).Msg("read loop ended")
	}

	s.hub.Disconnect(client)
	<-writerDone
	_ = conn.Close()
	logger.Debug().Msg("connection closed")
}

func (s *Server) readLoop(ctx context.Context, conn net.Conn, client *core.Client) error {
	r := bufio.NewReaderSize(conn, s.maxLineBytes)
	limiter := newRateLimiter(s.ratePerMin)

	for {
		if s.idleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(s.idleTimeout)); err != nil {
				return err
			}
		}
		line, tooLong, err := readLine(r)
		if err != nil {
			return err
		}

		// Lines already buffered after /leave are not handled.
		select {
		case <-client.Done():
			return nil
		default:
		}

		if tooLong {
			s.hub.Send(client, tooLongText)
			continue
		}
		if !limiter.allow() {
			s.hub.Send(client, slowDownText)
			continue
		}
		s.hub.Handle(ctx, client, line)
	}
}

// readLine returns the next line without its terminator. A line that does
// not fit in r's buffer is consumed and reported as tooLong.
func readLine(r *bufio.Reader) (line string, tooLong bool, err error) {
	frag, isPrefix, err := r.ReadLine()
	if err != nil {
		return "", false, err
	}
	if !isPrefix {
		return string(frag), false, nil
	}
	for isPrefix {
		if _, isPrefix, err = r.ReadLine(); err != nil {
			return "", true, err
		}
	}
	return "", true, nil
}

func (s *Server) writeLoop(conn net.Conn, client *core.Client) error {
	w := bufio.NewWriter(conn)

	write := func(line string) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return err
		}
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
		// Flush once the mailbox is drained to batch bursts.
		if len(client.Outgoing) == 0 {
			return w.Flush()
		}
		return nil
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
					return w.Flush()
				}
			}
		}
	}
}
