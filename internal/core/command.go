package core

import "strings"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSay broadcasts free text to the caller's channel.
	CommandSay CommandKind = iota
	// CommandLogin authenticates or registers the caller.
	CommandLogin
	// CommandJoin moves the caller into a channel.
	CommandJoin
	// CommandLeave leaves the channel and ends the connection.
	CommandLeave
	// CommandUsers lists the members of the caller's channel.
	CommandUsers
)

func (k CommandKind) String() string {
	switch k {
	case CommandSay:
		return "say"
	case CommandLogin:
		return "login"
	case CommandJoin:
		return "join"
	case CommandLeave:
		return "leave"
	case CommandUsers:
		return "users"
	default:
		return "unknown"
	}
}

// Command is one decoded client line.
type Command struct {
	Kind     CommandKind
	Username string
	Password string
	Channel  string
	Text     string
}

var verbs = map[string]struct {
	kind  CommandKind
	arity int
}{
	"/login": {CommandLogin, 2},
	"/join":  {CommandJoin, 1},
	"/leave": {CommandLeave, 0},
	"/users": {CommandUsers, 0},
}

// ParseCommand decodes a line. Blank lines return ok=false and no error.
// Known verbs with the wrong number of arguments return an invalid_command
// error; every other line is free text.
func ParseCommand(line string) (cmd Command, ok bool, err *CoreError) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false, nil
	}

	verb, known := verbs[fields[0]]
	if !known {
		return Command{Kind: CommandSay, Text: strings.TrimSpace(line)}, true, nil
	}
	if len(fields)-1 != verb.arity {
		return Command{}, false, errInvalidCommand()
	}

	cmd = Command{Kind: verb.kind}
	switch verb.kind {
	case CommandLogin:
		cmd.Username, cmd.Password = fields[1], fields[2]
	case CommandJoin:
		cmd.Channel = fields[1]
	}
	return cmd, true, nil
}
