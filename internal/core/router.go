package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/auth"
)

// Authenticator checks or registers credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (auth.Outcome, error)
}

// Options tunes router limits. Zero values select the defaults.
type Options struct {
	MaxClientsPerChannel int
	HistorySize          int
}

// Router interprets decoded lines against the session table, the channel
// directory and the activity log, and turns each one into effects.
//
// Every command that reads or changes membership runs under the directory
// lock and hands its effects to the outbox before the lock is released, so
// the order effects reach a mailbox is the order state changed. No I/O
// happens under the lock.
type Router struct {
	sessions *SessionTable
	dir      *Directory
	history  *ActivityLog
	auth     Authenticator
	outbox   Outbox
	log      *zerolog.Logger
}

// NewRouter builds a router with fresh state. outbox and logger may be nil.
func NewRouter(authenticator Authenticator, outbox Outbox, opts Options, logger *zerolog.Logger) *Router {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	sessions := NewSessionTable()
	return &Router{
		sessions: sessions,
		dir:      NewDirectory(sessions, opts.MaxClientsPerChannel),
		history:  NewActivityLog(opts.HistorySize),
		auth:     authenticator,
		outbox:   outbox,
		log:      logger,
	}
}

// Sessions exposes the session table for read-only queries.
func (r *Router) Sessions() *SessionTable { return r.sessions }

// Directory exposes channel membership queries.
func (r *Router) Directory() *Directory { return r.dir }

// History exposes the activity log.
func (r *Router) History() *ActivityLog { return r.history }

// Connect registers a new anonymous session and greets it.
func (r *Router) Connect(id ConnID) []Effect {
	return r.commit(func(b *batch) {
		if err := r.sessions.OnConnect(id); err != nil {
			r.log.Warn().Err(err).Str("conn_id", string(id)).Msg("connect ignored")
			return
		}
		r.log.Debug().Str("conn_id", string(id)).Msg("session opened")
		b.send(id, WelcomeText)
	})
}

// Disconnect removes the session. A session still in a channel leaves it
// exactly as with /leave. Repeated calls are no-ops.
func (r *Router) Disconnect(id ConnID) []Effect {
	return r.commit(func(b *batch) {
		s, err := r.sessions.OnDisconnect(id)
		if err != nil {
			return
		}
		if s.InChannel() {
			r.announceLeave(b, s)
		}
		r.log.Debug().Str("conn_id", string(id)).Str("user", s.Username).Msg("session closed")
	})
}

// HandleLine interprets one decoded line from id.
func (r *Router) HandleLine(ctx context.Context, id ConnID, line string) []Effect {
	cmd, ok, perr := ParseCommand(line)
	if perr != nil {
		return r.commit(func(b *batch) {
			if _, err := r.sessions.Get(id); err == nil {
				b.fail(id, perr)
			}
		})
	}
	if !ok {
		return nil
	}

	r.log.Trace().Str("conn_id", string(id)).Stringer("command", cmd.Kind).Msg("command")

	switch cmd.Kind {
	case CommandLogin:
		return r.login(ctx, id, cmd.Username, cmd.Password)
	case CommandJoin:
		return r.commit(func(b *batch) { r.join(b, id, cmd.Channel) })
	case CommandLeave:
		return r.commit(func(b *batch) { r.leave(b, id) })
	case CommandUsers:
		return r.commit(func(b *batch) { r.users(b, id) })
	default:
		return r.commit(func(b *batch) { r.say(b, id, cmd.Text) })
	}
}

// Channels returns a snapshot of every non-empty channel.
func (r *Router) Channels() []ChannelSnapshot {
	r.dir.mu.Lock()
	groups := r.dir.channels()
	r.dir.mu.Unlock()

	out := make([]ChannelSnapshot, 0, len(groups))
	for name, members := range groups {
		out = append(out, ChannelSnapshot{
			Name:    name,
			Members: members,
			Recent:  r.history.Recent(name),
		})
	}
	return out
}

// Channel returns a snapshot of one channel. Recent activity is kept after
// the last member leaves, so an empty channel may still have history.
func (r *Router) Channel(name string) ChannelSnapshot {
	r.dir.mu.Lock()
	members := r.dir.usernamesIn(name)
	r.dir.mu.Unlock()

	return ChannelSnapshot{
		Name:    name,
		Members: members,
		Recent:  r.history.Recent(name),
	}
}

// commit runs fn under the directory lock and enqueues what it produced.
func (r *Router) commit(fn func(b *batch)) []Effect {
	r.dir.mu.Lock()
	defer r.dir.mu.Unlock()

	var b batch
	fn(&b)
	if len(b.effects) > 0 && r.outbox != nil {
		r.outbox.Enqueue(b.effects)
	}
	return b.effects
}

func (r *Router) login(ctx context.Context, id ConnID, username, password string) []Effect {
	if _, err := r.sessions.Get(id); err != nil {
		return nil
	}

	// Password hashing is slow; keep it outside the directory lock.
	outcome, err := r.auth.Authenticate(ctx, username, password)

	return r.commit(func(b *batch) {
		s, getErr := r.sessions.Get(id)
		if getErr != nil {
			return
		}
		logger := r.log.With().Str("conn_id", string(id)).Str("user", username).Logger()

		if err != nil {
			if errors.Is(err, auth.ErrInvalidUsername) {
				b.fail(id, errInvalidCommand())
				return
			}
			logger.Error().Err(err).Msg("authenticate failed")
			b.fail(id, errLoginFailed())
			return
		}

		switch outcome {
		case auth.OutcomeWrongPassword:
			logger.Info().Msg("wrong password")
			b.fail(id, errWrongPassword())
			return
		case auth.OutcomeRegistered:
			b.send(id, registeredText(username))
		default:
			b.send(id, loggedInText(username))
		}

		// A re-login leaves the previous channel with a notice.
		if s.InChannel() {
			r.announceLeave(b, s)
		}
		if err := r.sessions.SetUser(id, username); err != nil {
			logger.Warn().Err(err).Msg("set user")
			return
		}
		logger.Info().Str("outcome", outcome.String()).Msg("login")
	})
}

func (r *Router) join(b *batch, id ConnID, channel string) {
	s, err := r.sessions.Get(id)
	if err != nil {
		return
	}
	if !s.Authenticated() {
		b.fail(id, errNotLoggedIn())
		return
	}
	if s.Channel == channel {
		b.fail(id, errAlreadyInChannel(channel))
		return
	}
	// Checked before leaving the old channel so a rejected join changes nothing.
	if !r.dir.CanJoin(channel) {
		b.fail(id, errChannelFull(channel))
		return
	}

	if s.InChannel() {
		r.announceLeave(b, s)
	}
	if err := r.dir.joinLocked(id, channel); err != nil {
		var ce *CoreError
		if errors.As(err, &ce) {
			b.fail(id, ce)
		}
		return
	}

	entry := joinedText(s.Username, channel)
	b.fanOut(r.dir.MembersOf(channel), id, entry)
	r.history.Append(channel, entry)
	for _, line := range r.history.Recent(channel) {
		b.send(id, line)
	}

	r.log.Info().Str("conn_id", string(id)).Str("user", s.Username).Str("channel", channel).Msg("joined channel")
}

func (r *Router) leave(b *batch, id ConnID) {
	s, err := r.sessions.Get(id)
	if err != nil {
		return
	}
	if !s.InChannel() {
		b.fail(id, errNotInChannel())
		return
	}

	r.announceLeave(b, s)
	// The session ends here; later lines from id and the transport's
	// Disconnect find nothing.
	if _, err := r.sessions.OnDisconnect(id); err != nil {
		return
	}
	b.send(id, goodbyeText)
	b.close(id)
}

func (r *Router) users(b *batch, id ConnID) {
	s, err := r.sessions.Get(id)
	if err != nil {
		return
	}
	if !s.InChannel() {
		b.fail(id, errNotInChannel())
		return
	}
	b.send(id, usersText(s.Channel, r.dir.usernamesIn(s.Channel)))
}

func (r *Router) say(b *batch, id ConnID, text string) {
	s, err := r.sessions.Get(id)
	if err != nil {
		return
	}
	if !s.Authenticated() {
		b.fail(id, errNotLoggedIn())
		return
	}
	if !s.InChannel() {
		b.fail(id, errNotInChannel())
		return
	}

	entry := chatText(s.Username, text)
	b.fanOut(r.dir.MembersOf(s.Channel), id, entry)
	b.send(id, echoText(text))
	r.history.Append(s.Channel, entry)
}

// announceLeave notifies the other members of s.Channel and logs the event.
// It does not change the session.
func (r *Router) announceLeave(b *batch, s Session) {
	entry := leftText(s.Username, s.Channel)
	b.fanOut(r.dir.MembersOf(s.Channel), s.ID, entry)
	r.history.Append(s.Channel, entry)
	r.log.Info().Str("conn_id", string(s.ID)).Str("user", s.Username).Str("channel", s.Channel).Msg("left channel")
}
