// Package telegram implements the Telegram Bot API wire layer: the update
// model, the JSON/multipart request codec, the HTTPS transport, and the Bot
// context exposing the method surface used by handlers.
//
// Updates are decoded into an envelope whose variant is discriminated by the
// presence of exactly one payload field. Unrecognized payloads decode into
// UpdateUnknown instead of failing, so new server-side update kinds never
// break ingestion.
package telegram

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// UpdateKind names the variant carried by an Update.
type UpdateKind int

const (
	// UpdateUnknown marks an update whose payload the decoder does not
	// recognize. Never an error; routed to unhandled handlers only.
	UpdateUnknown UpdateKind = iota
	UpdateNewMessage
	UpdateEditedMessage
	UpdateChannelPost
	UpdateEditedChannelPost
	UpdateInlineQuery
	UpdateChosenInlineResult
	UpdateCallbackQuery
	UpdateShippingQuery
	UpdatePreCheckoutQuery
	UpdatePoll
	UpdatePollAnswer
	UpdateMyChatMember
	UpdateChatMember
)

// String returns the documented lowercase update type name, as used in
// allowed_updates.
func (k UpdateKind) String() string {
	switch k {
	case UpdateNewMessage:
		return "message"
	case UpdateEditedMessage:
		return "edited_message"
	case UpdateChannelPost:
		return "channel_post"
	case UpdateEditedChannelPost:
		return "edited_channel_post"
	case UpdateInlineQuery:
		return "inline_query"
	case UpdateChosenInlineResult:
		return "chosen_inline_result"
	case UpdateCallbackQuery:
		return "callback_query"
	case UpdateShippingQuery:
		return "shipping_query"
	case UpdatePreCheckoutQuery:
		return "pre_checkout_query"
	case UpdatePoll:
		return "poll"
	case UpdatePollAnswer:
		return "poll_answer"
	case UpdateMyChatMember:
		return "my_chat_member"
	case UpdateChatMember:
		return "chat_member"
	default:
		return "unknown"
	}
}

// Update is one envelope delivered by the Bot API. At most one of the payload
// fields is present in any given update.
type Update struct {
	// ID is the update's unique identifier. IDs are strictly increasing per
	// bot; the polling driver tracks the maximum seen and asks for ID+1 next.
	ID int64 `json:"update_id"`

	Message            *Message            `json:"message,omitempty"`
	EditedMessage      *Message            `json:"edited_message,omitempty"`
	ChannelPost        *Message            `json:"channel_post,omitempty"`
	EditedChannelPost  *Message            `json:"edited_channel_post,omitempty"`
	InlineQuery        *InlineQuery        `json:"inline_query,omitempty"`
	ChosenInlineResult *ChosenInlineResult `json:"chosen_inline_result,omitempty"`
	CallbackQuery      *CallbackQuery      `json:"callback_query,omitempty"`
	ShippingQuery      *ShippingQuery      `json:"shipping_query,omitempty"`
	PreCheckoutQuery   *PreCheckoutQuery   `json:"pre_checkout_query,omitempty"`
	Poll               *Poll               `json:"poll,omitempty"`
	PollAnswer         *PollAnswer         `json:"poll_answer,omitempty"`
	MyChatMember       *ChatMemberUpdated  `json:"my_chat_member,omitempty"`
	ChatMember         *ChatMemberUpdated  `json:"chat_member,omitempty"`
}

// Kind discriminates the update's variant by payload presence.
func (u *Update) Kind() UpdateKind {
	switch {
	case u.Message != nil:
		return UpdateNewMessage
	case u.EditedMessage != nil:
		return UpdateEditedMessage
	case u.ChannelPost != nil:
		return UpdateChannelPost
	case u.EditedChannelPost != nil:
		return UpdateEditedChannelPost
	case u.InlineQuery != nil:
		return UpdateInlineQuery
	case u.ChosenInlineResult != nil:
		return UpdateChosenInlineResult
	case u.CallbackQuery != nil:
		return UpdateCallbackQuery
	case u.ShippingQuery != nil:
		return UpdateShippingQuery
	case u.PreCheckoutQuery != nil:
		return UpdatePreCheckoutQuery
	case u.Poll != nil:
		return UpdatePoll
	case u.PollAnswer != nil:
		return UpdatePollAnswer
	case u.MyChatMember != nil:
		return UpdateMyChatMember
	case u.ChatMember != nil:
		return UpdateChatMember
	default:
		return UpdateUnknown
	}
}

// AnyMessage returns the message payload regardless of which of the four
// message-bearing variants carries it, or nil.
func (u *Update) AnyMessage() *Message {
	switch {
	case u.Message != nil:
		return u.Message
	case u.EditedMessage != nil:
		return u.EditedMessage
	case u.ChannelPost != nil:
		return u.ChannelPost
	case u.EditedChannelPost != nil:
		return u.EditedChannelPost
	default:
		return nil
	}
}

// From returns the user the update originates from, if any. Channel posts
// and poll updates have no originating user.
func (u *Update) From() *User {
	switch {
	case u.Message != nil:
		return u.Message.From
	case u.EditedMessage != nil:
		return u.EditedMessage.From
	case u.InlineQuery != nil:
		return &u.InlineQuery.From
	case u.ChosenInlineResult != nil:
		return &u.ChosenInlineResult.From
	case u.CallbackQuery != nil:
		return &u.CallbackQuery.From
	case u.ShippingQuery != nil:
		return &u.ShippingQuery.From
	case u.PreCheckoutQuery != nil:
		return &u.PreCheckoutQuery.From
	case u.PollAnswer != nil:
		return &u.PollAnswer.User
	case u.MyChatMember != nil:
		return &u.MyChatMember.From
	case u.ChatMember != nil:
		return &u.ChatMember.From
	default:
		return nil
	}
}

// DecodeUpdate decodes one Update JSON object. Unknown payload keys are
// ignored, yielding an UpdateUnknown envelope rather than an error.
func DecodeUpdate(raw []byte) (*Update, error) {
	var u Update
	if err := codecJSON.Unmarshal(raw, &u); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return &u, nil
}
