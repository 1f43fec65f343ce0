// Package forward copies media messages from monitored Telegram chats into one target chat.
//
// The Forwarder resolves the target once at startup, inside the transport session, and
// then reacts to inbound messages the transport delivers through its Subscription.
// Every message is handled independently: failures are logged and the message is dropped.
package forward

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tinyland-inc/mediafwd/pkg/logger"
)

const component = "forwarder"

type Options struct {
	// Target is the raw target reference (invite link, username or chat id).
	Target string
	// Senders are the monitored sender entries.
	Senders []string
	// DedupeSize bounds the memory of handled messages. Zero disables de-duplication.
	DedupeSize int
}

type Forwarder struct {
	transport Transport
	target    TargetRef
	senders   *SenderSet
	slot      *TargetSlot
	seen      *lru.Cache[string, struct{}]
}

// New validates opts and registers the forwarding handler with the transport.
func New(t Transport, opts Options) (*Forwarder, error) {
	if t == nil {
		return nil, errors.New("transport is nil")
	}
	ref, err := ParseTargetRef(opts.Target)
	if err != nil {
		return nil, err
	}
	senders := NewSenderSet(opts.Senders)
	if senders.Len() == 0 {
		return nil, errors.New("at least one monitored sender is required")
	}

	f := &Forwarder{
		transport: t,
		target:    ref,
		senders:   senders,
		slot:      NewTargetSlot(),
	}
	if opts.DedupeSize > 0 {
		f.seen, err = lru.New[string, struct{}](opts.DedupeSize)
		if err != nil {
			return nil, fmt.Errorf("creating dedupe cache: %w", err)
		}
	}

	t.Subscribe(Subscription{
		Filter:  Filter{Senders: senders, MediaOnly: true},
		Handler: f.Handle,
	})
	return f, nil
}

// Target returns the resolved target chat, if any.
func (f *Forwarder) Target() (Chat, bool) {
	return f.slot.Get()
}

// Resolved reports whether startup resolution has completed.
func (f *Forwarder) Resolved() bool {
	_, ok := f.slot.Get()
	return ok
}

// Resolve joins the target chat, falling back to a lookup when the account is already
// a member, and records the result. It must run inside Transport.Run.
func (f *Forwarder) Resolve(ctx context.Context) (Chat, error) {
	chat, err := f.transport.Join(ctx, f.target)
	joined := err == nil
	if errors.Is(err, ErrAlreadyParticipant) {
		chat, err = f.transport.Lookup(ctx, f.target)
	}
	if err != nil {
		return Chat{}, fmt.Errorf("resolving target %s: %w", f.target, err)
	}
	if err := f.slot.Set(chat); err != nil {
		return Chat{}, err
	}

	fields := map[string]any{
		"chat":    chat.Label(),
		"chat_id": chat.ID,
	}
	if joined {
		logger.InfoCF(component, "Joined and set target channel", fields)
	} else {
		logger.InfoCF(component, "Already in the target channel", fields)
	}
	return chat, nil
}

// Handle copies one matching message into the target chat.
func (f *Forwarder) Handle(ctx context.Context, msg *Message) {
	fields := map[string]any{
		"event_id":   msg.EventID,
		"source":     msg.Source.Label(),
		"message_id": msg.ID,
		"media":      msg.MediaKind,
	}

	target, ok := f.slot.Get()
	if !ok {
		logger.WarnCF(component, "Target chat not resolved yet, skipping message", fields)
		return
	}

	if f.seen != nil {
		if found, _ := f.seen.ContainsOrAdd(msg.Key(), struct{}{}); found {
			logger.DebugCF(component, "Duplicate delivery, skipping message", fields)
			return
		}
	}

	if err := f.transport.Copy(ctx, msg, target); err != nil {
		fields["error"] = err.Error()
		logger.ErrorCF(component, "Failed to copy message", fields)
		return
	}
	logger.InfoCF(component, "Copied media to target channel", fields)
}

// Run opens the transport session, resolves the target and then blocks until ctx is
// canceled. A resolution failure ends the session and is returned.
func (f *Forwarder) Run(ctx context.Context) error {
	return f.transport.Run(ctx, func(ctx context.Context) error {
		if _, err := f.Resolve(ctx); err != nil {
			logger.ErrorCF(component, "Could not join or get target chat", map[string]any{
				"target": f.target.String(),
				"error":  err.Error(),
			})
			return err
		}

		logger.InfoCF(component, "Telegram media forwarder is running", map[string]any{
			"transport": f.transport.Name(),
			"senders":   f.senders.Entries(),
		})
		<-ctx.Done()
		return nil
	})
}

func logPanic(msg *Message, r any) {
	logger.ErrorCF(component, "Handler panicked, message dropped", map[string]any{
		"event_id":   msg.EventID,
		"source":     msg.Source.Label(),
		"message_id": msg.ID,
		"panic":      fmt.Sprint(r),
	})
}
