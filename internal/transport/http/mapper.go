package http

import (
	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/proto"
)

func channelFromSnapshot(snap core.ChannelSnapshot) proto.Channel {
	members := snap.Members
	if members == nil {
		members = []string{}
	}
	recent := snap.Recent
	if recent == nil {
		recent = []string{}
	}
	return proto.Channel{
		Name:    snap.Name,
		Count:   len(members),
		Members: members,
		Recent:  recent,
	}
}

func channelsFromSnapshots(snaps []core.ChannelSnapshot) []proto.Channel {
	out := make([]proto.Channel, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, channelFromSnapshot(snap))
	}
	return out
}
