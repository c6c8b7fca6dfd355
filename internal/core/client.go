package core

import (
	"sync"
	"sync/atomic"
)

// DefaultOutboundBuffer is the mailbox size of a client.
const DefaultOutboundBuffer = 64

// Client is a connection as seen by the hub: an id plus a bounded mailbox of
// outbound lines that a transport writer drains.
type Client struct {
	ID       ConnID
	Outgoing chan string

	quit      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64
}

// NewClient constructs a client with an initialized mailbox.
func NewClient(id ConnID, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultOutboundBuffer
	}
	return &Client{
		ID:       id,
		Outgoing: make(chan string, buffer),
		quit:     make(chan struct{}),
	}
}

// Done is closed once the core wants the connection ended. Lines queued
// before that point are still in Outgoing.
func (c *Client) Done() <-chan struct{} {
	return c.quit
}

// Dropped returns how many lines were discarded because the mailbox was full.
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

func (c *Client) closing() bool {
	select {
	case <-c.quit:
		return true
	default:
		return false
	}
}

func (c *Client) deliver(text string) bool {
	if c.closing() {
		return false
	}
	select {
	case c.Outgoing <- text:
		return true
	default:
		// Drop if slow consumer.
		c.dropped.Add(1)
		return false
	}
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() { close(c.quit) })
}
