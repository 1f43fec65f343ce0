package forward

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidTarget is returned when TARGET_CHANNEL_INVITE cannot be understood.
var ErrInvalidTarget = errors.New("invalid target reference")

type TargetKind int

const (
	TargetInvite TargetKind = iota + 1
	TargetUsername
	TargetChatID
)

func (k TargetKind) String() string {
	switch k {
	case TargetInvite:
		return "invite"
	case TargetUsername:
		return "username"
	case TargetChatID:
		return "chat_id"
	default:
		return "unknown"
	}
}

// TargetRef is a parsed reference to the target chat.
type TargetRef struct {
	Kind TargetKind
	// Hash is set for TargetInvite.
	Hash string
	// Username is set for TargetUsername, without the leading "@".
	Username string
	// ChatID is set for TargetChatID, in Bot API form (-100… for channels).
	ChatID int64
	Raw    string
}

func (r TargetRef) String() string {
	return r.Raw
}

var (
	usernameRe   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{3,31}$`)
	inviteHashRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

var telegramHosts = map[string]bool{
	"t.me":            true,
	"telegram.me":     true,
	"telegram.dog":    true,
	"www.t.me":        true,
	"www.telegram.me": true,
}

// ParseTargetRef accepts invite links (t.me/+H, t.me/joinchat/H, tg://join?invite=H, +H),
// public links and usernames (t.me/name, @name, name, tg://resolve?domain=name) and
// numeric chat ids.
func ParseTargetRef(raw string) (TargetRef, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return TargetRef{}, fmt.Errorf("%w: empty", ErrInvalidTarget)
	}

	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return TargetRef{Kind: TargetChatID, ChatID: id, Raw: s}, nil
	}

	if strings.HasPrefix(s, "+") {
		return inviteRef(s[1:], s)
	}
	if strings.HasPrefix(s, "@") {
		return usernameRef(s[1:], s)
	}

	if strings.HasPrefix(s, "tg://") {
		u, err := url.Parse(s)
		if err != nil {
			return TargetRef{}, fmt.Errorf("%w: %q: %w", ErrInvalidTarget, s, err)
		}
		switch u.Host {
		case "join":
			return inviteRef(u.Query().Get("invite"), s)
		case "resolve":
			return usernameRef(u.Query().Get("domain"), s)
		}
		return TargetRef{}, fmt.Errorf("%w: unsupported tg:// link %q", ErrInvalidTarget, s)
	}

	link := s
	if !strings.Contains(link, "://") {
		link = "https://" + link
	}
	u, err := url.Parse(link)
	if err == nil && telegramHosts[strings.ToLower(u.Host)] {
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		switch {
		case parts[0] == "joinchat":
			if len(parts) < 2 {
				return TargetRef{}, fmt.Errorf("%w: link %q has no invite hash", ErrInvalidTarget, s)
			}
			return inviteRef(parts[1], s)
		case strings.HasPrefix(parts[0], "+"):
			return inviteRef(parts[0][1:], s)
		case parts[0] != "":
			return usernameRef(parts[0], s)
		}
		return TargetRef{}, fmt.Errorf("%w: link %q has no chat", ErrInvalidTarget, s)
	}

	return usernameRef(s, s)
}

func inviteRef(hash, raw string) (TargetRef, error) {
	if !inviteHashRe.MatchString(hash) {
		return TargetRef{}, fmt.Errorf("%w: bad invite hash in %q", ErrInvalidTarget, raw)
	}
	return TargetRef{Kind: TargetInvite, Hash: hash, Raw: raw}, nil
}

func usernameRef(name, raw string) (TargetRef, error) {
	if !usernameRe.MatchString(name) {
		return TargetRef{}, fmt.Errorf("%w: bad username in %q", ErrInvalidTarget, raw)
	}
	return TargetRef{Kind: TargetUsername, Username: name, Raw: raw}, nil
}
