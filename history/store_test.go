package history

import (
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenEmptySynthesizesConversation(t *testing.T) {
	s := openTestStore(t)

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if s.ActiveID() == "" {
		t.Error("no active conversation after open")
	}
	if got := s.Active(); len(got) != 0 {
		t.Errorf("Active() has %d messages, want 0", len(got))
	}
	items := s.Items()
	if items[0].Title != placeholderTitle {
		t.Errorf("Title = %q, want %q", items[0].Title, placeholderTitle)
	}
	if items[0].Preview != emptyPreview {
		t.Errorf("Preview = %q, want %q", items[0].Preview, emptyPreview)
	}
}

func TestOpenCorruptDataResetsHistory(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.set(keyConversations, []byte("{definitely not json")); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after corrupt reset", s.Len())
	}
	if s.ActiveID() == "" {
		t.Error("no active conversation after corrupt reset")
	}
}

func TestTitleSetOnceFromFirstUserMessage(t *testing.T) {
	s := openTestStore(t)

	s.AppendMessage(RoleUser, "book an appointment")
	if got := s.Items()[0].Title; got != "book an appointment" {
		t.Errorf("Title = %q, want first user message", got)
	}

	s.AppendMessage(RoleAssistant, "Sure, what day works?")
	s.AppendMessage(RoleUser, "next tuesday please")
	if got := s.Items()[0].Title; got != "book an appointment" {
		t.Errorf("Title = %q, should never change after first rewrite", got)
	}
}

func TestTitleTruncation(t *testing.T) {
	s := openTestStore(t)

	long := strings.Repeat("a", 45)
	s.AppendMessage(RoleUser, long)

	want := strings.Repeat("a", 30) + "..."
	if got := s.Items()[0].Title; got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}
}

func TestAssistantFirstMessageKeepsPlaceholder(t *testing.T) {
	s := openTestStore(t)

	// A microphone-failure notice arrives before the user ever speaks.
	s.AppendMessage(RoleAssistant, "Sorry, I cannot access your microphone.")
	s.AppendMessage(RoleUser, "hello there")

	if got := s.Items()[0].Title; got != placeholderTitle {
		t.Errorf("Title = %q, want placeholder when first message is not from the user", got)
	}
}

func TestAppendWhitespaceIsNoOp(t *testing.T) {
	s := openTestStore(t)

	for _, content := range []string{"", "   ", "\n\t "} {
		s.AppendMessage(RoleUser, content)
	}

	if got := s.Active(); len(got) != 0 {
		t.Errorf("Active() has %d messages, want 0", len(got))
	}
	if got := s.Items()[0].Title; got != placeholderTitle {
		t.Errorf("Title = %q, blank appends must not retitle", got)
	}
}

func TestCreateConversationPrependsAndActivates(t *testing.T) {
	s := openTestStore(t)
	s.AppendMessage(RoleUser, "first chat")

	before := s.Len()
	id := s.CreateConversation()

	if s.Len() != before+1 {
		t.Errorf("Len() = %d, want %d", s.Len(), before+1)
	}
	if s.ActiveID() != id {
		t.Error("new conversation should become active")
	}
	items := s.Items()
	if items[0].ID != id {
		t.Error("new conversation should be first in the list")
	}
	if len(s.Active()) != 0 {
		t.Error("new conversation should start with no messages")
	}
}

func TestSetActiveUnknownIDIsNoOp(t *testing.T) {
	s := openTestStore(t)
	want := s.ActiveID()

	s.SetActive("no-such-conversation")

	if got := s.ActiveID(); got != want {
		t.Errorf("ActiveID() = %q, want %q", got, want)
	}
}

func TestSetActiveSwitchesMessagePane(t *testing.T) {
	s := openTestStore(t)
	s.AppendMessage(RoleUser, "old chat")
	oldID := s.ActiveID()

	s.CreateConversation()
	s.AppendMessage(RoleUser, "new chat")

	s.SetActive(oldID)
	msgs := s.Active()
	if len(msgs) != 1 || msgs[0].Content != "old chat" {
		t.Errorf("Active() = %v, want the old chat's messages", msgs)
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.AppendMessage(RoleUser, "book an appointment")
	s.AppendMessage(RoleAssistant, "Sure, what day works?")
	s.CreateConversation()
	s.AppendMessage(RoleUser, "is the pharmacy open")
	wantItems := s.Items()
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	gotItems := s.Items()
	if len(gotItems) != len(wantItems) {
		t.Fatalf("reloaded %d conversations, want %d", len(gotItems), len(wantItems))
	}
	for i := range wantItems {
		if gotItems[i] != wantItems[i] {
			t.Errorf("item %d = %+v, want %+v", i, gotItems[i], wantItems[i])
		}
	}

	// Most recent conversation is active again after reload.
	msgs := s.Active()
	if len(msgs) != 1 || msgs[0].Content != "is the pharmacy open" {
		t.Errorf("Active() = %v, want the newest conversation's messages", msgs)
	}
}

func TestPreviewShowsLastMessage(t *testing.T) {
	s := openTestStore(t)

	s.AppendMessage(RoleUser, "hello")
	s.AppendMessage(RoleAssistant, strings.Repeat("b", 60))

	want := strings.Repeat("b", 50) + "..."
	if got := s.Items()[0].Preview; got != want {
		t.Errorf("Preview = %q, want %q", got, want)
	}
}

func TestChangeNotifications(t *testing.T) {
	s := openTestStore(t)

	var changes []Change
	s.OnChange(func(ch Change) { changes = append(changes, ch) })

	s.AppendMessage(RoleUser, "hi")
	s.CreateConversation()
	s.AppendMessage(RoleUser, "") // no-op, must not notify

	if len(changes) != 2 {
		t.Fatalf("got %d notifications, want 2", len(changes))
	}
	for i, ch := range changes {
		if !ch.Messages || !ch.History {
			t.Errorf("change %d = %+v, want both views invalidated", i, ch)
		}
	}
}

func TestThemePersistence(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := s.Theme(); got != "light" {
		t.Errorf("Theme() = %q, want light by default", got)
	}
	s.SetTheme("dark")
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if got := s.Theme(); got != "dark" {
		t.Errorf("Theme() = %q, want dark after reload", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 30, "short"},
		{strings.Repeat("x", 30), 30, strings.Repeat("x", 30)},
		{strings.Repeat("x", 31), 30, strings.Repeat("x", 30) + "..."},
		{"héllø wörld héllø wörld", 5, "héllø..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
