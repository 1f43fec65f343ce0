package forward

import "testing"

func TestSenderSet_Contains(t *testing.T) {
	s := NewSenderSet([]string{"@First_Bot", "second_bot", "12345", "67890|third_bot", "  ", ""})

	tests := []struct {
		name     string
		id       int64
		username string
		want     bool
	}{
		{"username with at", 1, "first_bot", true},
		{"case insensitive", 1, "FIRST_BOT", true},
		{"bare username", 2, "second_bot", true},
		{"numeric id", 12345, "", true},
		{"compound id", 67890, "", true},
		{"compound username", 3, "third_bot", true},
		{"unknown", 4, "fourth_bot", false},
		{"zero id without username", 0, "", false},
		{"username given with at", 9, "@second_bot", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Contains(tt.id, tt.username); got != tt.want {
				t.Errorf("Contains(%d, %q) = %v, want %v", tt.id, tt.username, got, tt.want)
			}
		})
	}

	if s.Len() != 4 {
		t.Errorf("Len: got %d, want 4", s.Len())
	}
}

func TestSenderSet_EmptyContainsNothing(t *testing.T) {
	var nilSet *SenderSet
	if nilSet.Contains(1, "any") {
		t.Error("nil set must contain nothing")
	}
	if NewSenderSet(nil).Contains(1, "any") {
		t.Error("empty set must contain nothing")
	}
}

func TestSenderSet_EntriesCopy(t *testing.T) {
	s := NewSenderSet([]string{"a_bot"})
	e := s.Entries()
	e[0] = "mutated"
	if s.Entries()[0] != "a_bot" {
		t.Error("Entries must return a copy")
	}
}

func TestSenderSet_CompoundEntryKeepsBothParts(t *testing.T) {
	s := NewSenderSet([]string{"abc|def_bot", "ghi_bot|555", " 777 | @Jkl_Bot "})

	for _, u := range []string{"abc", "def_bot", "ghi_bot", "jkl_bot"} {
		if !s.Contains(1, u) {
			t.Errorf("expected username %q to be monitored", u)
		}
	}
	for _, id := range []int64{555, 777} {
		if !s.Contains(id, "") {
			t.Errorf("expected id %d to be monitored", id)
		}
	}
	if s.Len() != 3 {
		t.Errorf("Len: got %d, want 3", s.Len())
	}
}
