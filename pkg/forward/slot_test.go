package forward

import (
	"errors"
	"testing"
)

func TestTargetSlot_WriteOnce(t *testing.T) {
	s := NewTargetSlot()

	if _, ok := s.Get(); ok {
		t.Fatal("new slot must be empty")
	}
	select {
	case <-s.Ready():
		t.Fatal("Ready closed before Set")
	default:
	}

	if err := s.Set(Chat{ID: 1, Title: "first"}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Set(Chat{ID: 2, Title: "second"}); !errors.Is(err, ErrTargetAlreadySet) {
		t.Errorf("second Set: expected ErrTargetAlreadySet, got %v", err)
	}

	c, ok := s.Get()
	if !ok || c.ID != 1 {
		t.Errorf("Get: got %+v, %v; want ID 1", c, ok)
	}
	select {
	case <-s.Ready():
	default:
		t.Error("Ready not closed after Set")
	}
}

func TestChatLabel(t *testing.T) {
	if got := (Chat{ID: 1, Title: "Archive", Username: "arch"}).Label(); got != "Archive" {
		t.Errorf("got %q", got)
	}
	if got := (Chat{ID: 1, Username: "arch"}).Label(); got != "@arch" {
		t.Errorf("got %q", got)
	}
	if got := (Chat{ID: -100}).Label(); got != "-100" {
		t.Errorf("got %q", got)
	}
}
