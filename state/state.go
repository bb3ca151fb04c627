// Package state provides the optional per-chat and per-message stores shared
// with handlers. The stores are plain maps and perform no synchronization of
// their own; callers that dispatch concurrently must wrap access in their own
// locking.
package state

// ══════════════════════════════════════════════════════════════════════════════
// PER-CHAT STORE
// ══════════════════════════════════════════════════════════════════════════════

// ChatStore maps chat ids to user-defined values.
type ChatStore[T any] struct {
	m map[int64]T
}

// NewChatStore creates an empty per-chat store.
func NewChatStore[T any]() *ChatStore[T] {
	return &ChatStore[T]{m: make(map[int64]T)}
}

// Get returns the value stored for chatID.
func (s *ChatStore[T]) Get(chatID int64) (T, bool) {
	v, ok := s.m[chatID]
	return v, ok
}

// Set stores value under chatID, replacing any previous value.
func (s *ChatStore[T]) Set(chatID int64, value T) {
	s.m[chatID] = value
}

// Update applies fn to the value stored for chatID, creating the zero value
// first when absent, and stores the result.
func (s *ChatStore[T]) Update(chatID int64, fn func(T) T) {
	s.m[chatID] = fn(s.m[chatID])
}

// Delete removes the value stored for chatID.
func (s *ChatStore[T]) Delete(chatID int64) {
	delete(s.m, chatID)
}

// Len returns the number of chats with a stored value.
func (s *ChatStore[T]) Len() int {
	return len(s.m)
}

// ForEach calls fn for every stored entry in unspecified order. Returning
// false stops the iteration.
func (s *ChatStore[T]) ForEach(fn func(chatID int64, value T) bool) {
	for id, v := range s.m {
		if !fn(id, v) {
			return
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PER-MESSAGE STORE
// ══════════════════════════════════════════════════════════════════════════════

// MessageKey identifies one message within one chat.
type MessageKey struct {
	ChatID    int64
	MessageID int64
}

// MessageStore maps {chat, message} pairs to user-defined values and supports
// bulk operations scoped to a single chat.
type MessageStore[T any] struct {
	m      map[MessageKey]T
	byChat map[int64]map[int64]struct{}
}

// NewMessageStore creates an empty per-message store.
func NewMessageStore[T any]() *MessageStore[T] {
	return &MessageStore[T]{
		m:      make(map[MessageKey]T),
		byChat: make(map[int64]map[int64]struct{}),
	}
}

// Get returns the value stored for key.
func (s *MessageStore[T]) Get(key MessageKey) (T, bool) {
	v, ok := s.m[key]
	return v, ok
}

// Set stores value under key, replacing any previous value.
func (s *MessageStore[T]) Set(key MessageKey, value T) {
	s.m[key] = value
	ids := s.byChat[key.ChatID]
	if ids == nil {
		ids = make(map[int64]struct{})
		s.byChat[key.ChatID] = ids
	}
	ids[key.MessageID] = struct{}{}
}

// Delete removes the value stored for key.
func (s *MessageStore[T]) Delete(key MessageKey) {
	delete(s.m, key)
	if ids := s.byChat[key.ChatID]; ids != nil {
		delete(ids, key.MessageID)
		if len(ids) == 0 {
			delete(s.byChat, key.ChatID)
		}
	}
}

// Len returns the total number of stored entries.
func (s *MessageStore[T]) Len() int {
	return len(s.m)
}

// LenInChat returns the number of entries stored for one chat.
func (s *MessageStore[T]) LenInChat(chatID int64) int {
	return len(s.byChat[chatID])
}

// ClearInChat removes every entry stored for one chat and returns how many
// were removed.
func (s *MessageStore[T]) ClearInChat(chatID int64) int {
	ids := s.byChat[chatID]
	for messageID := range ids {
		delete(s.m, MessageKey{ChatID: chatID, MessageID: messageID})
	}
	delete(s.byChat, chatID)
	return len(ids)
}

// ForEachInChat calls fn for every entry of one chat in unspecified order.
// Returning false stops the iteration.
func (s *MessageStore[T]) ForEachInChat(chatID int64, fn func(messageID int64, value T) bool) {
	for messageID := range s.byChat[chatID] {
		if !fn(messageID, s.m[MessageKey{ChatID: chatID, MessageID: messageID}]) {
			return
		}
	}
}
