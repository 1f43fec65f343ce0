package forward

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyParticipant is returned by Transport.Join when the account is already a
	// member of the target chat. Resolution falls back to Transport.Lookup.
	ErrAlreadyParticipant = errors.New("already a participant of the target chat")

	// ErrUnsupportedTarget is returned when a transport cannot act on a kind of target reference.
	ErrUnsupportedTarget = errors.New("target reference not supported by transport")
)

// Chat is a resolved Telegram chat. Ref carries the transport's own peer handle.
type Chat struct {
	ID       int64
	Title    string
	Username string
	Ref      any
}

// Label is a human readable name for log lines.
func (c Chat) Label() string {
	switch {
	case c.Title != "":
		return c.Title
	case c.Username != "":
		return "@" + c.Username
	default:
		return strconv.FormatInt(c.ID, 10)
	}
}

// Message is one inbound event as seen by the forwarder.
type Message struct {
	ID int
	// Source is the chat the message arrived in, which for private chats is the sender.
	Source Chat
	// MediaKind is empty when the message carries no media payload.
	MediaKind string
	Outgoing  bool
	Ref       any
	// EventID correlates every log line about one dispatch. Set by Subscription.Dispatch.
	EventID string
}

func (m *Message) HasMedia() bool {
	return m.MediaKind != ""
}

// Key identifies a message across re-deliveries.
func (m *Message) Key() string {
	return fmt.Sprintf("%d:%d", m.Source.ID, m.ID)
}

// Handler is invoked once per matching inbound message.
type Handler func(ctx context.Context, msg *Message)

// Subscription binds a handler to the filter that gates it.
type Subscription struct {
	Filter  Filter
	Handler Handler
}

// Dispatch runs the handler when msg passes the filter. A panicking handler is
// recovered so the transport's receive loop keeps running.
func (s Subscription) Dispatch(ctx context.Context, msg *Message) {
	if s.Handler == nil || msg == nil || !s.Filter.Match(msg) {
		return
	}
	if msg.EventID == "" {
		msg.EventID = uuid.NewString()
	}
	defer func() {
		if r := recover(); r != nil {
			logPanic(msg, r)
		}
	}()
	s.Handler(ctx, msg)
}

// Transport is a Telegram connection able to join a chat and copy messages into it.
type Transport interface {
	Name() string
	// Subscribe registers the handler invoked for inbound messages. Must be called before Run.
	Subscribe(sub Subscription)
	// Run opens the session, calls f, and closes the session on every exit path.
	Run(ctx context.Context, f func(ctx context.Context) error) error
	Join(ctx context.Context, ref TargetRef) (Chat, error)
	Lookup(ctx context.Context, ref TargetRef) (Chat, error)
	// Copy duplicates msg into the target chat without re-uploading its media.
	Copy(ctx context.Context, msg *Message, to Chat) error
}
