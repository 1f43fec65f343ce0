package forward

import (
	"errors"
	"sync/atomic"
)

// ErrTargetAlreadySet is returned by TargetSlot.Set after the first successful call.
var ErrTargetAlreadySet = errors.New("target already resolved")

// TargetSlot holds the resolved target chat. It is written once during startup and
// read lock-free by every handler invocation afterwards.
type TargetSlot struct {
	chat  atomic.Pointer[Chat]
	ready chan struct{}
}

func NewTargetSlot() *TargetSlot {
	return &TargetSlot{ready: make(chan struct{})}
}

func (s *TargetSlot) Set(c Chat) error {
	if !s.chat.CompareAndSwap(nil, &c) {
		return ErrTargetAlreadySet
	}
	close(s.ready)
	return nil
}

func (s *TargetSlot) Get() (Chat, bool) {
	c := s.chat.Load()
	if c == nil {
		return Chat{}, false
	}
	return *c, true
}

// Ready is closed once the slot has been set.
func (s *TargetSlot) Ready() <-chan struct{} {
	return s.ready
}
