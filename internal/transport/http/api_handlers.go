package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/proto"
)

// UserCounter reports how many usernames are registered.
type UserCounter interface {
	Registered(ctx context.Context) (int, error)
}

// ChannelHandlers serves read-only views of the channel directory.
type ChannelHandlers struct {
	hub   *core.Hub
	users UserCounter
	log   *zerolog.Logger
}

// NewChannelHandlers creates a new channel handlers instance.
func NewChannelHandlers(hub *core.Hub, users UserCounter, logger *zerolog.Logger) *ChannelHandlers {
	return &ChannelHandlers{hub: hub, users: users, log: logger}
}

// List returns every non-empty channel.
// GET /api/channels
func (h *ChannelHandlers) List(c *gin.Context) {
	registered, err := h.users.Registered(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("count registered users")
		c.JSON(http.StatusInternalServerError, proto.Error{Error: "internal error"})
		return
	}

	router := h.hub.Router()
	c.JSON(http.StatusOK, proto.ChannelsResponse{
		Channels:             channelsFromSnapshots(h.hub.Channels()),
		Connections:          h.hub.Clients(),
		Sessions:             router.Sessions().Len(),
		RegisteredUsers:      registered,
		MaxClientsPerChannel: router.Directory().MaxClients(),
		HistorySize:          router.History().Limit(),
	})
}

// Get returns one channel, including recent activity of a channel that
// currently has no members.
// GET /api/channels/:name
func (h *ChannelHandlers) Get(c *gin.Context) {
	name := c.Param("name")
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " \t") {
		c.JSON(http.StatusBadRequest, proto.Error{Error: "invalid channel name"})
		return
	}

	router := h.hub.Router()
	snap := router.Channel(name)
	if len(snap.Members) == 0 && len(snap.Recent) == 0 {
		c.JSON(http.StatusNotFound, proto.Error{Error: "channel not found"})
		return
	}

	c.JSON(http.StatusOK, proto.ChannelResponse{
		Channel: channelFromSnapshot(snap),
		CanJoin: router.Directory().CanJoin(name),
	})
}
