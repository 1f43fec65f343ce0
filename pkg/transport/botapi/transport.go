// Package botapi implements forward.Transport for a bot account over the Telegram Bot API.
package botapi

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mymmrac/telego"

	"github.com/tinyland-inc/mediafwd/pkg/forward"
	"github.com/tinyland-inc/mediafwd/pkg/logger"
)

const (
	component   = "botapi"
	pollTimeout = 30
)

type Transport struct {
	bot   *telego.Bot
	botID atomic.Int64

	mu  sync.RWMutex
	sub forward.Subscription
}

// New creates the bot client. Extra options are applied after the logger, e.g. to point
// the client at a self-hosted Bot API server.
func New(token string, opts ...telego.BotOption) (*Transport, error) {
	opts = append([]telego.BotOption{telego.WithLogger(logger.Zap(component).Sugar())}, opts...)
	bot, err := telego.NewBot(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating bot: %w", err)
	}
	return &Transport{bot: bot}, nil
}

func (t *Transport) Name() string { return component }

func (t *Transport) Subscribe(sub forward.Subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sub = sub
}

func (t *Transport) subscription() forward.Subscription {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sub
}

// Run starts long polling, calls f and stops polling once f returns.
func (t *Transport) Run(ctx context.Context, f func(ctx context.Context) error) error {
	me, err := t.bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("getting bot identity: %w", err)
	}
	t.botID.Store(me.ID)
	logger.InfoCF(component, "Logged in", map[string]any{
		"user_id":  me.ID,
		"username": me.Username,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, err := t.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        pollTimeout,
		AllowedUpdates: []string{"message", "channel_post"},
	})
	if err != nil {
		return fmt.Errorf("starting long polling: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for u := range updates {
			t.handle(ctx, u)
		}
	}()

	err = f(ctx)
	cancel()
	wg.Wait()
	return err
}

func (t *Transport) handle(ctx context.Context, u telego.Update) {
	m := u.Message
	if m == nil {
		m = u.ChannelPost
	}
	if m == nil {
		return
	}
	t.subscription().Dispatch(ctx, toMessage(m, t.botID.Load()))
}

// Join cannot accept invites for a bot: membership is granted by a channel admin.
// For usernames and ids it reports ErrAlreadyParticipant so resolution falls back
// to Lookup.
func (t *Transport) Join(_ context.Context, ref forward.TargetRef) (forward.Chat, error) {
	if ref.Kind == forward.TargetInvite {
		return forward.Chat{}, fmt.Errorf("%w: bots cannot join by invite link %s", forward.ErrUnsupportedTarget, ref)
	}
	return forward.Chat{}, forward.ErrAlreadyParticipant
}

func (t *Transport) Lookup(ctx context.Context, ref forward.TargetRef) (forward.Chat, error) {
	id, err := chatID(ref)
	if err != nil {
		return forward.Chat{}, err
	}
	info, err := t.bot.GetChat(ctx, &telego.GetChatParams{ChatID: id})
	if err != nil {
		return forward.Chat{}, fmt.Errorf("getting chat %s: %w", ref, err)
	}
	return forward.Chat{
		ID:       info.ID,
		Title:    info.Title,
		Username: info.Username,
		Ref:      telego.ChatID{ID: info.ID},
	}, nil
}

// Copy sends a copy of the message without a link to the original.
func (t *Transport) Copy(ctx context.Context, msg *forward.Message, to forward.Chat) error {
	_, err := t.bot.CopyMessage(ctx, &telego.CopyMessageParams{
		ChatID:     telego.ChatID{ID: to.ID},
		FromChatID: telego.ChatID{ID: msg.Source.ID},
		MessageID:  msg.ID,
	})
	if err != nil {
		return fmt.Errorf("copying message %d: %w", msg.ID, err)
	}
	return nil
}

func chatID(ref forward.TargetRef) (telego.ChatID, error) {
	switch ref.Kind {
	case forward.TargetChatID:
		return telego.ChatID{ID: ref.ChatID}, nil
	case forward.TargetUsername:
		return telego.ChatID{Username: "@" + ref.Username}, nil
	default:
		return telego.ChatID{}, fmt.Errorf("%w: %s target %s", forward.ErrUnsupportedTarget, ref.Kind, ref)
	}
}
