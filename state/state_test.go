package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatStore_Basics(t *testing.T) {
	s := NewChatStore[int]()

	_, ok := s.Get(1)
	assert.False(t, ok)

	s.Set(1, 10)
	s.Set(2, 20)
	v, ok := s.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, s.Len())

	s.Delete(1)
	_, ok = s.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestChatStore_Update(t *testing.T) {
	s := NewChatStore[int]()

	// Update on a missing key starts from the zero value.
	s.Update(5, func(n int) int { return n + 1 })
	s.Update(5, func(n int) int { return n + 1 })

	v, ok := s.Get(5)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestChatStore_ForEach(t *testing.T) {
	s := NewChatStore[string]()
	s.Set(1, "a")
	s.Set(2, "b")
	s.Set(3, "c")

	seen := map[int64]string{}
	s.ForEach(func(chatID int64, v string) bool {
		seen[chatID] = v
		return true
	})
	assert.Equal(t, map[int64]string{1: "a", 2: "b", 3: "c"}, seen)

	// Returning false stops the walk.
	count := 0
	s.ForEach(func(chatID int64, v string) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestMessageStore_Basics(t *testing.T) {
	s := NewMessageStore[string]()

	key := MessageKey{ChatID: 42, MessageID: 1}
	_, ok := s.Get(key)
	assert.False(t, ok)

	s.Set(key, "hello")
	s.Set(key, "hello again")
	v, ok := s.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "hello again", v)
	assert.Equal(t, 1, s.Len())

	s.Delete(key)
	_, ok = s.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.LenInChat(42))
}

func TestMessageStore_ChatIndex(t *testing.T) {
	s := NewMessageStore[int]()
	s.Set(MessageKey{ChatID: 1, MessageID: 10}, 100)
	s.Set(MessageKey{ChatID: 1, MessageID: 11}, 110)
	s.Set(MessageKey{ChatID: 2, MessageID: 10}, 200)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.LenInChat(1))
	assert.Equal(t, 1, s.LenInChat(2))
	assert.Equal(t, 0, s.LenInChat(3))

	seen := map[int64]int{}
	s.ForEachInChat(1, func(messageID int64, v int) bool {
		seen[messageID] = v
		return true
	})
	assert.Equal(t, map[int64]int{10: 100, 11: 110}, seen)

	cleared := s.ClearInChat(1)
	assert.Equal(t, 2, cleared)
	assert.Equal(t, 0, s.LenInChat(1))
	assert.Equal(t, 1, s.Len())

	// The other chat's entry with the same message id survives.
	v, ok := s.Get(MessageKey{ChatID: 2, MessageID: 10})
	assert.True(t, ok)
	assert.Equal(t, 200, v)

	assert.Equal(t, 0, s.ClearInChat(3))
}
