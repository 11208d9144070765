// Package history owns the persisted conversation list for the assistant.
//
// All conversations live in a single badger key and are rewritten whole on
// every mutation. There is no delta persistence and no schema versioning: a
// value that fails to decode is treated the same as no value at all.
package history

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	placeholderTitle = "New Conversation"
	emptyPreview     = "No messages yet"

	titleRunes   = 30
	previewRunes = 50
)

var (
	keyConversations = []byte("conversations")
	keyTheme         = []byte("theme")
)

// Role identifies the author of a message.
type Role string

// The only two roles a message may carry.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single utterance in a conversation. Messages are append-only:
// once stored they are never mutated or removed.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is an ordered, append-only message sequence. Title starts as
// a placeholder and is rewritten at most once, from the first user message.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// Item is the sidebar view model for one conversation.
type Item struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
	Active  bool   `json:"active"`
}

// Change describes which views a mutation invalidated.
type Change struct {
	Messages bool
	History  bool
}

// Store is the single source of truth for conversations. It loads the list
// once at open and rewrites the whole list after every mutation.
type Store struct {
	mu            sync.Mutex
	db            *badger.DB
	conversations []*Conversation
	activeID      string
	notify        func(Change)
}

// Open opens (or creates) the history database at path and loads the
// conversation list. A corrupt or missing list never fails the open; it is
// replaced by a fresh list with one empty conversation.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	s.load()
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// OnChange registers the change callback invoked after every mutation.
// Pass nil to disable notifications.
func (s *Store) OnChange(fn func(Change)) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

func (s *Store) load() {
	s.mu.Lock()

	data, err := s.get(keyConversations)
	if err == nil && len(data) > 0 {
		if err := json.Unmarshal(data, &s.conversations); err != nil {
			slog.Warn("discard corrupt history", "error", err)
			s.conversations = nil
		}
	}

	if len(s.conversations) == 0 {
		s.createLocked()
	} else {
		// New conversations are prepended, so the first is the newest.
		s.activeID = s.conversations[0].ID
	}
	s.mu.Unlock()
}

// CreateConversation prepends a fresh conversation, makes it active,
// persists, and returns its id.
func (s *Store) CreateConversation() string {
	s.mu.Lock()
	id := s.createLocked()
	s.mu.Unlock()

	s.emit(Change{Messages: true, History: true})
	return id
}

func (s *Store) createLocked() string {
	conv := &Conversation{
		ID:        uuid.NewString(),
		Title:     placeholderTitle,
		CreatedAt: time.Now(),
	}
	s.conversations = append([]*Conversation{conv}, s.conversations...)
	s.activeID = conv.ID
	s.persistLocked()
	return conv.ID
}

// SetActive switches the active conversation. Unknown ids are ignored.
func (s *Store) SetActive(id string) {
	s.mu.Lock()
	if s.findLocked(id) == nil {
		s.mu.Unlock()
		return
	}
	s.activeID = id
	s.mu.Unlock()

	s.emit(Change{Messages: true, History: true})
}

// AppendMessage appends one message to the active conversation and persists.
// Empty or whitespace-only content is discarded without side effects. The
// first user message also becomes the conversation title, once.
func (s *Store) AppendMessage(role Role, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}

	s.mu.Lock()
	conv := s.findLocked(s.activeID)
	if conv == nil {
		s.mu.Unlock()
		return
	}

	conv.Messages = append(conv.Messages, Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})

	if role == RoleUser && len(conv.Messages) == 1 {
		conv.Title = truncate(content, titleRunes)
	}

	s.persistLocked()
	s.mu.Unlock()

	// The history list shows each conversation's last message as preview,
	// so an append invalidates it too.
	s.emit(Change{Messages: true, History: true})
}

// Active returns the active conversation's messages, oldest first.
// The returned slice must not be mutated.
func (s *Store) Active() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(s.activeID)
	if conv == nil {
		return nil
	}
	return conv.Messages
}

// ActiveID returns the id of the active conversation.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// Items returns sidebar view models, most recent first.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, 0, len(s.conversations))
	for _, conv := range s.conversations {
		preview := emptyPreview
		if n := len(conv.Messages); n > 0 {
			preview = truncate(conv.Messages[n-1].Content, previewRunes)
		}
		items = append(items, Item{
			ID:      conv.ID,
			Title:   conv.Title,
			Preview: preview,
			Active:  conv.ID == s.activeID,
		})
	}
	return items
}

// Theme returns the persisted theme preference, defaulting to "light".
func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.get(keyTheme)
	if err != nil || len(data) == 0 {
		return "light"
	}
	return string(data)
}

// SetTheme persists the theme preference.
func (s *Store) SetTheme(theme string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.set(keyTheme, []byte(theme)); err != nil {
		slog.Error("persist theme", "error", err)
	}
}

// persistLocked rewrites the whole conversation list. Write failures are
// logged, not propagated: the in-memory list stays authoritative for the
// rest of the session.
func (s *Store) persistLocked() {
	data, err := json.Marshal(s.conversations)
	if err != nil {
		slog.Error("marshal history", "error", err)
		return
	}
	if err := s.set(keyConversations, data); err != nil {
		slog.Error("persist history", "error", err)
	}
}

func (s *Store) findLocked(id string) *Conversation {
	for _, conv := range s.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

func (s *Store) emit(ch Change) {
	s.mu.Lock()
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify(ch)
	}
}

func (s *Store) get(key []byte) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	return data, err
}

func (s *Store) set(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
