package forward

// Filter selects the inbound messages the forwarder acts on.
type Filter struct {
	Senders *SenderSet
	// MediaOnly drops messages without a media payload.
	MediaOnly bool
}

func (f Filter) Match(msg *Message) bool {
	if msg.Outgoing {
		return false
	}
	if f.MediaOnly && !msg.HasMedia() {
		return false
	}
	return f.Senders.Contains(msg.Source.ID, msg.Source.Username)
}
