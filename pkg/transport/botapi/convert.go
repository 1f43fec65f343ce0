package botapi

import (
	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/mediafwd/pkg/forward"
)

func toMessage(m *telego.Message, botID int64) *forward.Message {
	return &forward.Message{
		ID: m.MessageID,
		Source: forward.Chat{
			ID:       m.Chat.ID,
			Title:    m.Chat.Title,
			Username: m.Chat.Username,
			Ref:      telego.ChatID{ID: m.Chat.ID},
		},
		MediaKind: mediaKind(m),
		Outgoing:  botID != 0 && m.From != nil && m.From.ID == botID,
		Ref:       m,
	}
}

// mediaKind names the payload of a message. Order matters: animations also carry a
// document and venues also carry a location.
func mediaKind(m *telego.Message) string {
	switch {
	case len(m.Photo) > 0:
		return "photo"
	case m.Animation != nil:
		return "animation"
	case m.Sticker != nil:
		return "sticker"
	case m.Video != nil:
		return "video"
	case m.VideoNote != nil:
		return "video_note"
	case m.Voice != nil:
		return "voice"
	case m.Audio != nil:
		return "audio"
	case m.Document != nil:
		return "document"
	case m.Venue != nil:
		return "venue"
	case m.Location != nil:
		return "location"
	case m.Contact != nil:
		return "contact"
	case m.Poll != nil:
		return "poll"
	case m.Dice != nil:
		return "dice"
	case m.Game != nil:
		return "game"
	case m.Story != nil:
		return "story"
	default:
		return ""
	}
}
