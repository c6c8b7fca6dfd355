package proto

// Channel describes one non-empty channel in admin responses.
type Channel struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Members []string `json:"members"`
	Recent  []string `json:"recent"`
}

// ChannelsResponse is returned by GET /api/channels.
type ChannelsResponse struct {
	Channels             []Channel `json:"channels"`
	Connections          int       `json:"connections"`
	Sessions             int       `json:"sessions"`
	RegisteredUsers      int       `json:"registered_users"`
	MaxClientsPerChannel int       `json:"max_clients_per_channel"`
	HistorySize          int       `json:"history_size"`
}

// ChannelResponse is returned by GET /api/channels/:name.
type ChannelResponse struct {
	Channel
	CanJoin bool `json:"can_join"`
}

// Error is the JSON body of a failed request.
type Error struct {
	Error string `json:"error"`
}
