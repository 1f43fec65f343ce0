// Package mtproto implements forward.Transport for a Telegram user account over MTProto.
//
// The account is restored from a string session exported by another client library
// (Pyrogram or Telethon), so no interactive login happens here.
package mtproto

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/updates"
	updhook "github.com/gotd/td/telegram/updates/hook"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"golang.org/x/sync/errgroup"

	"github.com/tinyland-inc/mediafwd/pkg/forward"
	"github.com/tinyland-inc/mediafwd/pkg/logger"
)

const component = "mtproto"

// ErrNotAuthorized is returned by Run when the restored session is not logged in.
var ErrNotAuthorized = errors.New("session is not authorized")

type Config struct {
	AppID         int
	AppHash       string
	Session       string
	SessionFormat string
}

type Transport struct {
	client *telegram.Client
	api    *tg.Client
	// gaps orders updates and recovers the ones missed across reconnects.
	gaps *updates.Manager

	mu  sync.RWMutex
	sub forward.Subscription
}

// New restores the session into memory and prepares the client. No connection is made
// until Run.
func New(cfg Config) (*Transport, error) {
	data, err := DecodeSession(cfg.SessionFormat, cfg.Session)
	if err != nil {
		return nil, err
	}

	storage := new(session.StorageMemory)
	loader := session.Loader{Storage: storage}
	if err := loader.Save(context.Background(), data); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	t := &Transport{}
	t.gaps = t.newUpdateManager()
	t.client = telegram.NewClient(cfg.AppID, cfg.AppHash, telegram.Options{
		SessionStorage: storage,
		UpdateHandler:  t.gaps,
		Middlewares:    []telegram.Middleware{updhook.UpdateHook(t.gaps.Handle)},
		Logger:         logger.Zap(component),
	})
	t.api = t.client.API()
	return t, nil
}

func (t *Transport) newUpdateManager() *updates.Manager {
	dispatcher := tg.NewUpdateDispatcher()
	dispatcher.OnNewMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
		t.handle(ctx, e, u.Message)
		return nil
	})
	dispatcher.OnNewChannelMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewChannelMessage) error {
		t.handle(ctx, e, u.Message)
		return nil
	})
	return updates.New(updates.Config{
		Handler: dispatcher,
		Logger:  logger.Zap(component).Named("gaps"),
		OnChannelTooLong: func(channelID int64) {
			logger.WarnCF(component, "Channel difference too long, missed updates were dropped", map[string]any{
				"channel_id": channelID,
			})
		},
	})
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

// handle converts one update message and hands it to the subscription. Errors are
// never returned to the dispatcher so one bad update cannot stall the others.
func (t *Transport) handle(ctx context.Context, e tg.Entities, mc tg.MessageClass) {
	m, ok := mc.(*tg.Message)
	if !ok {
		return
	}
	msg, ok := toMessage(m, e)
	if !ok {
		logger.DebugCF(component, "Skipping message from unknown peer", map[string]any{
			"message_id": m.ID,
		})
		return
	}
	t.subscription().Dispatch(ctx, msg)
}

// Run connects, checks the session is authorized, starts update recovery and calls f.
// The connection is closed when f returns or ctx is canceled.
func (t *Transport) Run(ctx context.Context, f func(ctx context.Context) error) error {
	return t.client.Run(ctx, func(ctx context.Context) error {
		status, err := t.client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("checking authorization: %w", err)
		}
		if !status.Authorized {
			return ErrNotAuthorized
		}
		if status.User == nil {
			return ErrNotAuthorized
		}
		logger.InfoCF(component, "Logged in", map[string]any{
			"user_id":  status.User.ID,
			"username": status.User.Username,
		})
		return t.serve(ctx, status.User.ID, status.User.Bot, f)
	})
}

// serve runs the update manager next to f. The manager fetches the update state first,
// so f only starts once updates are flowing. Either side stopping stops the other.
func (t *Transport) serve(ctx context.Context, userID int64, isBot bool, f func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	started := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := t.gaps.Run(gctx, t.api, userID, updates.AuthOptions{
			IsBot:   isBot,
			OnStart: func(context.Context) { close(started) },
		})
		if err == nil || ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("receiving updates: %w", err)
	})
	g.Go(func() error {
		defer cancel()
		select {
		case <-started:
		case <-gctx.Done():
			return nil
		}
		return f(gctx)
	})
	return g.Wait()
}

func (t *Transport) Join(ctx context.Context, ref forward.TargetRef) (forward.Chat, error) {
	switch ref.Kind {
	case forward.TargetInvite:
		upd, err := t.api.MessagesImportChatInvite(ctx, ref.Hash)
		if err != nil {
			return forward.Chat{}, joinError(err)
		}
		return chatFromUpdates(upd)
	case forward.TargetUsername:
		chat, err := t.resolveUsername(ctx, ref.Username)
		if err != nil {
			return forward.Chat{}, err
		}
		peer, ok := chat.Ref.(*tg.InputPeerChannel)
		if !ok {
			// Basic groups cannot be joined by username, only by invite.
			return forward.Chat{}, fmt.Errorf("%w: %s is not a channel", forward.ErrUnsupportedTarget, ref)
		}
		_, err = t.api.ChannelsJoinChannel(ctx, &tg.InputChannel{
			ChannelID:  peer.ChannelID,
			AccessHash: peer.AccessHash,
		})
		if err != nil {
			return forward.Chat{}, joinError(err)
		}
		return chat, nil
	default:
		return forward.Chat{}, fmt.Errorf("%w: %s target %s, use an invite link or username",
			forward.ErrUnsupportedTarget, ref.Kind, ref)
	}
}

func (t *Transport) Lookup(ctx context.Context, ref forward.TargetRef) (forward.Chat, error) {
	switch ref.Kind {
	case forward.TargetInvite:
		inv, err := t.api.MessagesCheckChatInvite(ctx, ref.Hash)
		if err != nil {
			return forward.Chat{}, fmt.Errorf("checking invite: %w", err)
		}
		return chatFromInvite(inv)
	case forward.TargetUsername:
		return t.resolveUsername(ctx, ref.Username)
	default:
		return forward.Chat{}, fmt.Errorf("%w: %s target %s", forward.ErrUnsupportedTarget, ref.Kind, ref)
	}
}

// Copy forwards the message with drop_author set, which duplicates its content on the
// server side without the "forwarded from" header.
func (t *Transport) Copy(ctx context.Context, msg *forward.Message, to forward.Chat) error {
	from, ok := msg.Ref.(tg.InputPeerClass)
	if !ok {
		return fmt.Errorf("message %d has no source peer", msg.ID)
	}
	dst, ok := to.Ref.(tg.InputPeerClass)
	if !ok {
		return fmt.Errorf("target %s has no peer", to.Label())
	}

	_, err := t.api.MessagesForwardMessages(ctx, &tg.MessagesForwardMessagesRequest{
		FromPeer:   from,
		ID:         []int{msg.ID},
		RandomID:   []int64{rand.Int64()},
		ToPeer:     dst,
		DropAuthor: true,
	})
	if err != nil {
		return fmt.Errorf("forwarding message %d: %w", msg.ID, err)
	}
	return nil
}

func (t *Transport) resolveUsername(ctx context.Context, username string) (forward.Chat, error) {
	res, err := t.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: username})
	if err != nil {
		return forward.Chat{}, fmt.Errorf("resolving @%s: %w", username, err)
	}
	return chatFromResolved(res)
}

func joinError(err error) error {
	if tgerr.Is(err, "USER_ALREADY_PARTICIPANT") {
		return fmt.Errorf("%w: %w", forward.ErrAlreadyParticipant, err)
	}
	return fmt.Errorf("joining target: %w", err)
}

func chatFromUpdates(u tg.UpdatesClass) (forward.Chat, error) {
	var chats []tg.ChatClass
	switch u := u.(type) {
	case *tg.Updates:
		chats = u.Chats
	case *tg.UpdatesCombined:
		chats = u.Chats
	}
	for _, c := range chats {
		if chat, ok := chatFromClass(c); ok {
			return chat, nil
		}
	}
	return forward.Chat{}, errors.New("join response carried no chat")
}

func chatFromInvite(inv tg.ChatInviteClass) (forward.Chat, error) {
	var c tg.ChatClass
	switch inv := inv.(type) {
	case *tg.ChatInviteAlready:
		c = inv.Chat
	case *tg.ChatInvitePeek:
		c = inv.Chat
	case *tg.ChatInvite:
		return forward.Chat{}, fmt.Errorf("not a member of %q", inv.Title)
	}
	if chat, ok := chatFromClass(c); ok {
		return chat, nil
	}
	return forward.Chat{}, errors.New("invite does not reference an accessible chat")
}

func chatFromResolved(res *tg.ContactsResolvedPeer) (forward.Chat, error) {
	var want int64
	switch p := res.Peer.(type) {
	case *tg.PeerChannel:
		want = p.ChannelID
	case *tg.PeerChat:
		want = p.ChatID
	default:
		return forward.Chat{}, fmt.Errorf("%w: username belongs to a user", forward.ErrUnsupportedTarget)
	}
	for _, c := range res.Chats {
		if c.GetID() != want {
			continue
		}
		if chat, ok := chatFromClass(c); ok {
			return chat, nil
		}
	}
	return forward.Chat{}, errors.New("resolved peer missing from response")
}
