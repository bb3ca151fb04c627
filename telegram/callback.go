package telegram

// ══════════════════════════════════════════════════════════════════════════════
// CALLBACK QUERIES
// Origin and kind are discriminated structurally (key presence), not tagged.
// ══════════════════════════════════════════════════════════════════════════════

// CallbackQuery is an incoming callback query from an inline keyboard button.
type CallbackQuery struct {
	ID   string `json:"id"`
	From User   `json:"from"`
	// Message is present when the button was attached to a message sent by
	// the bot; exactly one of Message and InlineMessageID is set.
	Message         *Message `json:"message,omitempty"`
	InlineMessageID string   `json:"inline_message_id,omitempty"`
	ChatInstance    string   `json:"chat_instance"`
	// Data is present for data buttons; exactly one of Data and
	// GameShortName is set.
	Data          string `json:"data,omitempty"`
	GameShortName string `json:"game_short_name,omitempty"`
}

// CallbackOriginKind names where the callback's source message lives.
type CallbackOriginKind int

const (
	// CallbackOriginInvalid marks a query violating the exactly-one rule.
	CallbackOriginInvalid CallbackOriginKind = iota
	// CallbackOriginMessage: the source is a full message known to the bot.
	CallbackOriginMessage
	// CallbackOriginInline: the source is an inline-mode message identified
	// only by an opaque inline_message_id.
	CallbackOriginInline
)

// CallbackOrigin is the discriminated origin of a callback query.
type CallbackOrigin struct {
	Kind            CallbackOriginKind
	Message         *Message
	InlineMessageID string
}

// Origin discriminates the query's origin: Message if the message key is
// present, Inline if inline_message_id is present. Exactly one must be.
func (q *CallbackQuery) Origin() CallbackOrigin {
	switch {
	case q.Message != nil && q.InlineMessageID == "":
		return CallbackOrigin{Kind: CallbackOriginMessage, Message: q.Message}
	case q.Message == nil && q.InlineMessageID != "":
		return CallbackOrigin{Kind: CallbackOriginInline, InlineMessageID: q.InlineMessageID}
	default:
		return CallbackOrigin{Kind: CallbackOriginInvalid}
	}
}

// CallbackKindTag names the payload variant of a callback query.
type CallbackKindTag int

const (
	CallbackKindInvalid CallbackKindTag = iota
	// CallbackKindData: the button carried an opaque data string.
	CallbackKindData
	// CallbackKindGame: the button launched a game.
	CallbackKindGame
)

// CallbackKind is the discriminated payload of a callback query.
type CallbackKind struct {
	Kind          CallbackKindTag
	Data          string
	GameShortName string
}

// PayloadKind discriminates the query's payload: Data if the data key is
// present, Game if game_short_name is present.
func (q *CallbackQuery) PayloadKind() CallbackKind {
	switch {
	case q.Data != "":
		return CallbackKind{Kind: CallbackKindData, Data: q.Data}
	case q.GameShortName != "":
		return CallbackKind{Kind: CallbackKindGame, GameShortName: q.GameShortName}
	default:
		return CallbackKind{Kind: CallbackKindInvalid}
	}
}
