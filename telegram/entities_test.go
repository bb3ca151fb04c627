package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand_Bare(t *testing.T) {
	entities := []MessageEntity{{Type: EntityBotCommand, Offset: 0, Length: 5}}

	cmd, ok := ParseCommand("/ping", entities)
	assert.True(t, ok)
	assert.Equal(t, "ping", cmd.Name)
	assert.Equal(t, "", cmd.Username)
}

func TestParseCommand_Addressed(t *testing.T) {
	entities := []MessageEntity{{Type: EntityBotCommand, Offset: 0, Length: 10}}

	cmd, ok := ParseCommand("/ping@beta", entities)
	assert.True(t, ok)
	assert.Equal(t, "ping", cmd.Name)
	assert.Equal(t, "beta", cmd.Username)
}

func TestParseCommand_NotAtOffsetZero(t *testing.T) {
	entities := []MessageEntity{{Type: EntityBotCommand, Offset: 4, Length: 5}}

	_, ok := ParseCommand("say /ping", entities)
	assert.False(t, ok)
}

func TestParseCommand_NoEntities(t *testing.T) {
	_, ok := ParseCommand("/ping", nil)
	assert.False(t, ok)
}

func TestParseCommand_RoundTrip(t *testing.T) {
	// The original substring must equal "/" + name + ("@" + username).
	text := "/start@alpha rest"
	entities := []MessageEntity{{Type: EntityBotCommand, Offset: 0, Length: 12}}

	cmd, ok := ParseCommand(text, entities)
	assert.True(t, ok)
	assert.Equal(t, "/"+cmd.Name+"@"+cmd.Username, text[:12])
}

func TestTrimCommand_RemovesCommandAndWhitespace(t *testing.T) {
	text := "/echo  hello"
	entities := []MessageEntity{
		{Type: EntityBotCommand, Offset: 0, Length: 5},
		{Type: EntityBold, Offset: 7, Length: 5},
	}

	trimmed, shifted, cut := TrimCommand(text, entities)
	assert.Equal(t, "hello", trimmed)
	assert.Equal(t, 7, cut)
	assert.Len(t, shifted, 1)
	assert.Equal(t, EntityBold, shifted[0].Type)
	assert.Equal(t, 0, shifted[0].Offset)
	assert.Equal(t, 5, shifted[0].Length)
}

func TestTrimCommand_UTF16Offsets(t *testing.T) {
	// The emoji is one rune but two UTF-16 code units, so the bold entity
	// starts at code unit 9: len("/echo ") + 2 + len(" ").
	text := "/echo \U0001F600 bold"
	entities := []MessageEntity{
		{Type: EntityBotCommand, Offset: 0, Length: 5},
		{Type: EntityBold, Offset: 9, Length: 4},
	}

	trimmed, shifted, cut := TrimCommand(text, entities)
	assert.Equal(t, "\U0001F600 bold", trimmed)
	assert.Equal(t, 6, cut)
	assert.Len(t, shifted, 1)
	assert.Equal(t, 3, shifted[0].Offset)
	assert.Equal(t, "bold", EntityText(trimmed, shifted[0]))
}

func TestTrimCommand_NoCommand(t *testing.T) {
	text := "plain text"
	entities := []MessageEntity{{Type: EntityBold, Offset: 0, Length: 5}}

	trimmed, shifted, cut := TrimCommand(text, entities)
	assert.Equal(t, text, trimmed)
	assert.Equal(t, entities, shifted)
	assert.Equal(t, 0, cut)
}

func TestTrimCommand_CommandOnly(t *testing.T) {
	text := "/ping"
	entities := []MessageEntity{{Type: EntityBotCommand, Offset: 0, Length: 5}}

	trimmed, shifted, cut := TrimCommand(text, entities)
	assert.Equal(t, "", trimmed)
	assert.Empty(t, shifted)
	assert.Equal(t, 5, cut)
}

func TestEntityText_Surrogates(t *testing.T) {
	text := "\U0001F600 hi"
	e := MessageEntity{Type: EntityBold, Offset: 3, Length: 2}
	assert.Equal(t, "hi", EntityText(text, e))

	whole := MessageEntity{Type: EntityBold, Offset: 0, Length: 2}
	assert.Equal(t, "\U0001F600", EntityText(text, whole))
}

func TestEntityText_OutOfRange(t *testing.T) {
	assert.Equal(t, "", EntityText("hi", MessageEntity{Offset: 1, Length: 5}))
	assert.Equal(t, "", EntityText("hi", MessageEntity{Offset: -1, Length: 1}))
}

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 0, UTF16Len(""))
	assert.Equal(t, 5, UTF16Len("hello"))
	assert.Equal(t, 2, UTF16Len("\U0001F600"))
	assert.Equal(t, 1, UTF16Len("é"))
}
