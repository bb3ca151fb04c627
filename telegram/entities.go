package telegram

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE ENTITIES
// Entity offsets and lengths are expressed in UTF-16 code units, not bytes.
// All slicing here goes through an explicit UTF-16 view of the text.
// ══════════════════════════════════════════════════════════════════════════════

// EntityType is the documented entity kind name.
type EntityType string

const (
	EntityMention       EntityType = "mention"
	EntityHashtag       EntityType = "hashtag"
	EntityCashtag       EntityType = "cashtag"
	EntityBotCommand    EntityType = "bot_command"
	EntityURL           EntityType = "url"
	EntityEmail         EntityType = "email"
	EntityPhoneNumber   EntityType = "phone_number"
	EntityBold          EntityType = "bold"
	EntityItalic        EntityType = "italic"
	EntityUnderline     EntityType = "underline"
	EntityStrikethrough EntityType = "strikethrough"
	EntityCode          EntityType = "code"
	EntityPre           EntityType = "pre"
	EntityTextLink      EntityType = "text_link"
	EntityTextMention   EntityType = "text_mention"
)

// MessageEntity is a substring annotation on message text.
type MessageEntity struct {
	Type EntityType `json:"type"`
	// Offset is measured in UTF-16 code units from the start of the text.
	Offset int `json:"offset"`
	// Length is measured in UTF-16 code units.
	Length int `json:"length"`
	// URL is set for text_link entities.
	URL string `json:"url,omitempty"`
	// User is set for text_mention entities.
	User *User `json:"user,omitempty"`
	// Language is set for pre entities.
	Language string `json:"language,omitempty"`
}

// EntityText returns the substring of text selected by the entity, sliced on
// the UTF-16 view. Out-of-range entities yield "".
func EntityText(text string, e MessageEntity) string {
	units := utf16.Encode([]rune(text))
	if e.Offset < 0 || e.Length < 0 || e.Offset+e.Length > len(units) {
		return ""
	}
	return string(utf16.Decode(units[e.Offset : e.Offset+e.Length]))
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n++
		if r > 0xFFFF {
			n++
		}
	}
	return n
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMAND PARSING
// ══════════════════════════════════════════════════════════════════════════════

// Command is a parsed bot command. The original substring always equals
// "/" + Name + ("@" + Username when Username is non-empty).
type Command struct {
	// Name is the command name without the leading slash. Matching is
	// case-sensitive.
	Name string
	// Username is the bot username the command was addressed to, without the
	// "@"; empty for a bare "/cmd".
	Username string
}

// commandEntity returns the bot_command entity marking the message as a
// command. Only an entity starting at offset 0 qualifies.
func commandEntity(entities []MessageEntity) (MessageEntity, bool) {
	for _, e := range entities {
		if e.Type == EntityBotCommand && e.Offset == 0 {
			return e, true
		}
	}
	return MessageEntity{}, false
}

// ParseCommand parses a leading bot command out of text. It returns false
// when no bot_command entity starts at offset 0.
func ParseCommand(text string, entities []MessageEntity) (Command, bool) {
	e, ok := commandEntity(entities)
	if !ok {
		return Command{}, false
	}
	raw := EntityText(text, e)
	if len(raw) < 2 || raw[0] != '/' {
		return Command{}, false
	}
	raw = raw[1:]
	if at := strings.IndexByte(raw, '@'); at >= 0 {
		return Command{Name: raw[:at], Username: raw[at+1:]}, true
	}
	return Command{Name: raw}, true
}

// TrimCommand removes the leading command entity and the whitespace that
// follows it from text. Remaining entities are shifted left by the removed
// code-unit count; the command entity itself is dropped. It returns the
// trimmed text, the shifted entities, and the number of UTF-16 code units
// removed. Text without a leading command is returned unchanged.
func TrimCommand(text string, entities []MessageEntity) (string, []MessageEntity, int) {
	e, ok := commandEntity(entities)
	if !ok {
		return text, entities, 0
	}

	units := utf16.Encode([]rune(text))
	cut := e.Length
	if cut > len(units) {
		cut = len(units)
	}
	// Whitespace is BMP-only, so every whitespace code unit is one rune.
	for cut < len(units) && unicode.IsSpace(rune(units[cut])) {
		cut++
	}

	trimmed := string(utf16.Decode(units[cut:]))
	shifted := make([]MessageEntity, 0, len(entities))
	for _, ent := range entities {
		if ent.Type == EntityBotCommand && ent.Offset == 0 {
			continue
		}
		if ent.Offset < cut {
			// Entities never straddle the command prefix; anything that does
			// is malformed and dropped rather than shifted negative.
			continue
		}
		ent.Offset -= cut
		shifted = append(shifted, ent)
	}
	return trimmed, shifted, cut
}
