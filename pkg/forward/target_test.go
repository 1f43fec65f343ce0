package forward

import (
	"errors"
	"testing"
)

func TestParseTargetRef(t *testing.T) {
	tests := []struct {
		in       string
		kind     TargetKind
		hash     string
		username string
		chatID   int64
	}{
		{in: "https://t.me/+AbCdEf123", kind: TargetInvite, hash: "AbCdEf123"},
		{in: "t.me/+AbC-d_Ef", kind: TargetInvite, hash: "AbC-d_Ef"},
		{in: "https://t.me/joinchat/AAAAAE1234", kind: TargetInvite, hash: "AAAAAE1234"},
		{in: "https://telegram.me/joinchat/AAAAAE1234/", kind: TargetInvite, hash: "AAAAAE1234"},
		{in: "tg://join?invite=XyZ987", kind: TargetInvite, hash: "XyZ987"},
		{in: "+XyZ987", kind: TargetInvite, hash: "XyZ987"},
		{in: "https://t.me/media_archive", kind: TargetUsername, username: "media_archive"},
		{in: "t.me/media_archive?start=1", kind: TargetUsername, username: "media_archive"},
		{in: "@media_archive", kind: TargetUsername, username: "media_archive"},
		{in: "media_archive", kind: TargetUsername, username: "media_archive"},
		{in: "tg://resolve?domain=media_archive", kind: TargetUsername, username: "media_archive"},
		{in: "-1001234567890", kind: TargetChatID, chatID: -1001234567890},
		{in: "  @media_archive  ", kind: TargetUsername, username: "media_archive"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ref, err := ParseTargetRef(tt.in)
			if err != nil {
				t.Fatalf("ParseTargetRef(%q) error: %v", tt.in, err)
			}
			if ref.Kind != tt.kind {
				t.Errorf("kind: got %v, want %v", ref.Kind, tt.kind)
			}
			if ref.Hash != tt.hash {
				t.Errorf("hash: got %q, want %q", ref.Hash, tt.hash)
			}
			if ref.Username != tt.username {
				t.Errorf("username: got %q, want %q", ref.Username, tt.username)
			}
			if ref.ChatID != tt.chatID {
				t.Errorf("chat id: got %d, want %d", ref.ChatID, tt.chatID)
			}
		})
	}
}

func TestParseTargetRef_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"https://t.me/",
		"https://t.me/joinchat/",
		"tg://join",
		"tg://settings",
		"@ab",
		"has space",
		"https://t.me/+bad$hash",
	} {
		if _, err := ParseTargetRef(in); !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("ParseTargetRef(%q): expected ErrInvalidTarget, got %v", in, err)
		}
	}
}

func TestTargetKindString(t *testing.T) {
	if TargetInvite.String() != "invite" || TargetUsername.String() != "username" || TargetChatID.String() != "chat_id" {
		t.Error("unexpected kind names")
	}
	if TargetKind(0).String() != "unknown" {
		t.Error("zero kind should be unknown")
	}
}
