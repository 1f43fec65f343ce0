package mtproto

import (
	"github.com/gotd/td/tg"

	"github.com/tinyland-inc/mediafwd/pkg/forward"
)

// channelIDOffset turns a channel id into the "-100…" form used by the Bot API and
// most Telegram tooling.
const channelIDOffset = 1_000_000_000_000

func markedChannelID(id int64) int64 {
	return -(channelIDOffset + id)
}

// chatFromClass converts a chat returned by the API into a forward.Chat whose Ref is
// the tg.InputPeerClass used to address it.
func chatFromClass(c tg.ChatClass) (forward.Chat, bool) {
	switch c := c.(type) {
	case *tg.Channel:
		return forward.Chat{
			ID:       markedChannelID(c.ID),
			Title:    c.Title,
			Username: c.Username,
			Ref:      &tg.InputPeerChannel{ChannelID: c.ID, AccessHash: c.AccessHash},
		}, true
	case *tg.Chat:
		return forward.Chat{
			ID:    -c.ID,
			Title: c.Title,
			Ref:   &tg.InputPeerChat{ChatID: c.ID},
		}, true
	default:
		return forward.Chat{}, false
	}
}

// sourceChat resolves the chat a message was posted in from the update entities.
func sourceChat(peer tg.PeerClass, e tg.Entities) (forward.Chat, bool) {
	switch p := peer.(type) {
	case *tg.PeerUser:
		u, ok := e.Users[p.UserID]
		if !ok {
			return forward.Chat{}, false
		}
		return forward.Chat{
			ID:       u.ID,
			Username: u.Username,
			Ref:      &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash},
		}, true
	case *tg.PeerChat:
		c, ok := e.Chats[p.ChatID]
		if !ok {
			return forward.Chat{}, false
		}
		return chatFromClass(c)
	case *tg.PeerChannel:
		c, ok := e.Channels[p.ChannelID]
		if !ok {
			return forward.Chat{}, false
		}
		return chatFromClass(c)
	default:
		return forward.Chat{}, false
	}
}

// mediaKind names the payload of a message. Link previews and media the client
// cannot render do not count as media.
func mediaKind(m tg.MessageMediaClass) string {
	switch m := m.(type) {
	case nil, *tg.MessageMediaEmpty, *tg.MessageMediaWebPage, *tg.MessageMediaUnsupported:
		return ""
	case *tg.MessageMediaPhoto:
		return "photo"
	case *tg.MessageMediaDocument:
		return documentKind(m.Document)
	case *tg.MessageMediaGeo, *tg.MessageMediaGeoLive:
		return "location"
	case *tg.MessageMediaVenue:
		return "venue"
	case *tg.MessageMediaContact:
		return "contact"
	case *tg.MessageMediaPoll:
		return "poll"
	case *tg.MessageMediaDice:
		return "dice"
	case *tg.MessageMediaGame:
		return "game"
	case *tg.MessageMediaStory:
		return "story"
	default:
		return "other"
	}
}

func documentKind(d tg.DocumentClass) string {
	doc, ok := d.(*tg.Document)
	if !ok {
		return "document"
	}
	kind := "document"
	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeSticker:
			return "sticker"
		case *tg.DocumentAttributeAnimated:
			return "animation"
		case *tg.DocumentAttributeVideo:
			if a.RoundMessage {
				kind = "video_note"
			} else {
				kind = "video"
			}
		case *tg.DocumentAttributeAudio:
			if a.Voice {
				kind = "voice"
			} else {
				kind = "audio"
			}
		}
	}
	return kind
}

// toMessage converts an incoming tg.Message. It reports false when the source chat
// is missing from the entities and the message therefore cannot be addressed.
func toMessage(m *tg.Message, e tg.Entities) (*forward.Message, bool) {
	src, ok := sourceChat(m.PeerID, e)
	if !ok {
		return nil, false
	}
	return &forward.Message{
		ID:        m.ID,
		Source:    src,
		MediaKind: mediaKind(m.Media),
		Outgoing:  m.Out,
		Ref:       src.Ref,
	}, true
}
