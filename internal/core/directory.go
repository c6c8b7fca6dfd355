package core

import (
	"sort"
	"sync"
)

// DefaultMaxClientsPerChannel is the channel capacity used when none is configured.
const DefaultMaxClientsPerChannel = 10

// Directory answers membership questions over a SessionTable. Membership is
// derived from Session.Channel and never stored twice.
//
// Join attempts are serialized for the whole directory so that two joiners
// cannot both observe a free slot.
type Directory struct {
	mu         sync.Mutex
	sessions   *SessionTable
	maxClients int
}

// NewDirectory builds a directory over sessions. maxClients <= 0 selects the default.
func NewDirectory(sessions *SessionTable, maxClients int) *Directory {
	if maxClients <= 0 {
		maxClients = DefaultMaxClientsPerChannel
	}
	return &Directory{sessions: sessions, maxClients: maxClients}
}

// MaxClients returns the per-channel capacity.
func (d *Directory) MaxClients() int {
	return d.maxClients
}

// MembersOf returns the connection ids currently in channel.
func (d *Directory) MembersOf(channel string) []ConnID {
	var ids []ConnID
	d.sessions.each(func(s Session) {
		if s.Channel == channel {
			ids = append(ids, s.ID)
		}
	})
	return ids
}

// CountIn returns the number of connections in channel.
func (d *Directory) CountIn(channel string) int {
	n := 0
	d.sessions.each(func(s Session) {
		if s.Channel == channel {
			n++
		}
	})
	return n
}

// CanJoin reports whether channel has a free slot.
func (d *Directory) CanJoin(channel string) bool {
	return d.CountIn(channel) < d.maxClients
}

func (d *Directory) joinLocked(id ConnID, channel string) error {
	if !d.CanJoin(channel) {
		return errChannelFull(channel)
	}
	return d.sessions.SetChannel(id, channel)
}

// usernamesIn returns the sorted usernames of channel members.
func (d *Directory) usernamesIn(channel string) []string {
	var names []string
	d.sessions.each(func(s Session) {
		if s.Channel == channel {
			names = append(names, s.Username)
		}
	})
	sort.Strings(names)
	return names
}

// ChannelSnapshot is a point-in-time view of one channel.
type ChannelSnapshot struct {
	Name    string
	Members []string
	Recent  []string
}

// channels groups member usernames by channel name.
func (d *Directory) channels() map[string][]string {
	out := make(map[string][]string)
	d.sessions.each(func(s Session) {
		if s.Channel != "" {
			out[s.Channel] = append(out[s.Channel], s.Username)
		}
	})
	for name := range out {
		sort.Strings(out[name])
	}
	return out
}
