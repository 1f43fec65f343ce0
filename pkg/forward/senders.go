package forward

import (
	"strconv"
	"strings"
)

// SenderSet is the set of monitored source chats. Entries may be a numeric chat id,
// a username with or without a leading "@", or the compound "id|username" form. Both
// halves of a compound entry are registered, whichever kind each turns out to be.
// Usernames compare case-insensitively, as Telegram treats them.
type SenderSet struct {
	ids       map[int64]struct{}
	usernames map[string]struct{}
	entries   []string
}

func NewSenderSet(entries []string) *SenderSet {
	s := &SenderSet{
		ids:       make(map[int64]struct{}),
		usernames: make(map[string]struct{}),
	}
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		s.entries = append(s.entries, entry)

		for _, part := range strings.SplitN(entry, "|", 2) {
			s.add(part)
		}
	}
	return s
}

// add registers one part of an entry: a number is a chat id, anything else a username.
func (s *SenderSet) add(part string) {
	part = strings.TrimSpace(part)
	if id, err := strconv.ParseInt(part, 10, 64); err == nil {
		s.ids[id] = struct{}{}
		return
	}
	if u := normalizeUsername(part); u != "" {
		s.usernames[u] = struct{}{}
	}
}

func normalizeUsername(u string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(u), "@"))
}

// Contains reports whether a chat with the given id or username is monitored.
// An empty set contains nothing.
func (s *SenderSet) Contains(id int64, username string) bool {
	if s == nil {
		return false
	}
	if _, ok := s.ids[id]; ok && id != 0 {
		return true
	}
	if u := normalizeUsername(username); u != "" {
		_, ok := s.usernames[u]
		return ok
	}
	return false
}

func (s *SenderSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns the configured entries in their original form.
func (s *SenderSet) Entries() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.entries...)
}
