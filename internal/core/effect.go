package core

import (
	"fmt"
	"strings"
)

// Effect is one line of output addressed to a connection. Close asks the
// transport to end the connection once the preceding effects are flushed.
type Effect struct {
	To    ConnID
	Text  string
	Close bool
}

// Outbox accepts effects in the order the router produced them.
// Enqueue must not block.
type Outbox interface {
	Enqueue(effects []Effect)
}

// batch accumulates the effects of a single command.
type batch struct {
	effects []Effect
}

func (b *batch) send(to ConnID, text string) {
	b.effects = append(b.effects, Effect{To: to, Text: text})
}

func (b *batch) fail(to ConnID, err *CoreError) {
	b.send(to, err.Message)
}

func (b *batch) close(to ConnID) {
	b.effects = append(b.effects, Effect{To: to, Close: true})
}

// fanOut sends text to every id in members except skip.
func (b *batch) fanOut(members []ConnID, skip ConnID, text string) {
	for _, id := range members {
		if id == skip {
			continue
		}
		b.send(id, text)
	}
}

// WelcomeText is sent to every new connection.
const WelcomeText = `Welcome to linechat!
Commands:
  /login <user> <pass>  log in (unknown users are registered)
  /join <channel>       join a channel
  /leave                leave the channel and disconnect
  /users                list users in your channel
  anything else         is sent to your channel`

func joinedText(user, channel string) string {
	return fmt.Sprintf("* %s joined %s", user, channel)
}

func leftText(user, channel string) string {
	return fmt.Sprintf("* %s left %s", user, channel)
}

func chatText(user, text string) string {
	return fmt.Sprintf("[%s] %s", user, text)
}

func echoText(text string) string {
	return "[you] " + text
}

func usersText(channel string, names []string) string {
	return fmt.Sprintf("Users in %s: %s", channel, strings.Join(names, ", "))
}

func registeredText(user string) string {
	return fmt.Sprintf("Registered and logged in as %s.", user)
}

func loggedInText(user string) string {
	return fmt.Sprintf("Logged in as %s.", user)
}

const goodbyeText = "Goodbye."
