package telegram

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// Message represents a message. Exactly one content variant applies; service
// payloads (title changes, migrations, new members, ...) never coexist with
// user content. Use ContentKind to discriminate.
type Message struct {
	MessageID int64 `json:"message_id"`
	From      *User `json:"from,omitempty"`
	// SenderChat is set for channel posts and for messages sent on behalf of
	// a chat (anonymous group admins, linked channels).
	SenderChat *Chat `json:"sender_chat,omitempty"`
	Date       int64 `json:"date"`
	Chat       Chat  `json:"chat"`

	// Forward envelope. Discriminated structurally, see ForwardOrigin.
	ForwardFrom       *User  `json:"forward_from,omitempty"`
	ForwardFromChat   *Chat  `json:"forward_from_chat,omitempty"`
	ForwardFromMsgID  int64  `json:"forward_from_message_id,omitempty"`
	ForwardSignature  string `json:"forward_signature,omitempty"`
	ForwardSenderName string `json:"forward_sender_name,omitempty"`
	ForwardDate       int64  `json:"forward_date,omitempty"`

	ReplyToMessage  *Message `json:"reply_to_message,omitempty"`
	ViaBot          *User    `json:"via_bot,omitempty"`
	EditDate        int64    `json:"edit_date,omitempty"`
	MediaGroupID    string   `json:"media_group_id,omitempty"`
	AuthorSignature string   `json:"author_signature,omitempty"`

	// Text content.
	Text     string          `json:"text,omitempty"`
	Entities []MessageEntity `json:"entities,omitempty"`

	// Media content. Captions apply to the media variant that is present.
	Audio           *Audio          `json:"audio,omitempty"`
	Document        *Document       `json:"document,omitempty"`
	Animation       *Animation      `json:"animation,omitempty"`
	Photo           []PhotoSize     `json:"photo,omitempty"`
	Sticker         *Sticker        `json:"sticker,omitempty"`
	Video           *Video          `json:"video,omitempty"`
	VideoNote       *VideoNote      `json:"video_note,omitempty"`
	Voice           *Voice          `json:"voice,omitempty"`
	Caption         string          `json:"caption,omitempty"`
	CaptionEntities []MessageEntity `json:"caption_entities,omitempty"`

	Game              *Game              `json:"game,omitempty"`
	Contact           *Contact           `json:"contact,omitempty"`
	Location          *Location          `json:"location,omitempty"`
	Venue             *Venue             `json:"venue,omitempty"`
	Poll              *Poll              `json:"poll,omitempty"`
	Dice              *Dice              `json:"dice,omitempty"`
	Invoice           *Invoice           `json:"invoice,omitempty"`
	SuccessfulPayment *SuccessfulPayment `json:"successful_payment,omitempty"`
	PassportData      *PassportData      `json:"passport_data,omitempty"`
	ConnectedWebsite  string             `json:"connected_website,omitempty"`

	// Service payloads.
	NewChatMembers        []User                         `json:"new_chat_members,omitempty"`
	LeftChatMember        *User                          `json:"left_chat_member,omitempty"`
	NewChatTitle          string                         `json:"new_chat_title,omitempty"`
	NewChatPhoto          []PhotoSize                    `json:"new_chat_photo,omitempty"`
	DeleteChatPhoto       bool                           `json:"delete_chat_photo,omitempty"`
	GroupChatCreated      bool                           `json:"group_chat_created,omitempty"`
	SupergroupChatCreated bool                           `json:"supergroup_chat_created,omitempty"`
	ChannelChatCreated    bool                           `json:"channel_chat_created,omitempty"`
	MigrateToChatID       int64                          `json:"migrate_to_chat_id,omitempty"`
	MigrateFromChatID     int64                          `json:"migrate_from_chat_id,omitempty"`
	PinnedMessage         *Message                       `json:"pinned_message,omitempty"`
	ProximityAlert        *ProximityAlertTriggered       `json:"proximity_alert_triggered,omitempty"`
	AutoDeleteTimer       *MessageAutoDeleteTimerChanged `json:"message_auto_delete_timer_changed,omitempty"`
	VoiceChatScheduled    *VoiceChatScheduled            `json:"voice_chat_scheduled,omitempty"`
	VoiceChatStarted      *VoiceChatStarted              `json:"voice_chat_started,omitempty"`
	VoiceChatEnded        *VoiceChatEnded                `json:"voice_chat_ended,omitempty"`
	VoiceChatInvited      *VoiceChatParticipantsInvited  `json:"voice_chat_participants_invited,omitempty"`

	// ReplyMarkup is the inline keyboard attached to the message, if any.
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT DISCRIMINATION
// ══════════════════════════════════════════════════════════════════════════════

// MessageKind names the single content variant a Message carries.
type MessageKind int

const (
	// KindUnknown marks a message whose content the decoder does not
	// recognize. Routed to unhandled handlers only.
	KindUnknown MessageKind = iota
	KindText
	KindAudio
	KindDocument
	KindAnimation
	KindPhoto
	KindSticker
	KindVideo
	KindVideoNote
	KindVoice
	KindGame
	KindContact
	KindLocation
	KindVenue
	KindPoll
	KindDice
	KindInvoice
	KindSuccessfulPayment
	KindPassportData
	KindConnectedWebsite
	KindNewChatMembers
	KindLeftChatMember
	KindNewChatTitle
	KindNewChatPhoto
	KindChatPhotoDeleted
	KindGroupCreated
	KindSupergroupCreated
	KindChannelCreated
	KindMigrateTo
	KindMigrateFrom
	KindPinned
	KindProximityAlert
	KindAutoDeleteTimer
	KindVoiceChatScheduled
	KindVoiceChatStarted
	KindVoiceChatEnded
	KindVoiceChatInvited
)

// ContentKind discriminates the message's content variant. Animation takes
// precedence over Document: the API sets both for animations.
func (m *Message) ContentKind() MessageKind {
	switch {
	case m.Text != "":
		return KindText
	case m.Animation != nil:
		return KindAnimation
	case m.Audio != nil:
		return KindAudio
	case m.Document != nil:
		return KindDocument
	case len(m.Photo) > 0:
		return KindPhoto
	case m.Sticker != nil:
		return KindSticker
	case m.Video != nil:
		return KindVideo
	case m.VideoNote != nil:
		return KindVideoNote
	case m.Voice != nil:
		return KindVoice
	case m.Game != nil:
		return KindGame
	case m.Contact != nil:
		return KindContact
	case m.Venue != nil:
		// Venue before Location: venue messages carry both.
		return KindVenue
	case m.Location != nil:
		return KindLocation
	case m.Poll != nil:
		return KindPoll
	case m.Dice != nil:
		return KindDice
	case m.Invoice != nil:
		return KindInvoice
	case m.SuccessfulPayment != nil:
		return KindSuccessfulPayment
	case m.PassportData != nil:
		return KindPassportData
	case m.ConnectedWebsite != "":
		return KindConnectedWebsite
	case len(m.NewChatMembers) > 0:
		return KindNewChatMembers
	case m.LeftChatMember != nil:
		return KindLeftChatMember
	case m.NewChatTitle != "":
		return KindNewChatTitle
	case len(m.NewChatPhoto) > 0:
		return KindNewChatPhoto
	case m.DeleteChatPhoto:
		return KindChatPhotoDeleted
	case m.GroupChatCreated:
		return KindGroupCreated
	case m.SupergroupChatCreated:
		return KindSupergroupCreated
	case m.ChannelChatCreated:
		return KindChannelCreated
	case m.MigrateToChatID != 0:
		return KindMigrateTo
	case m.MigrateFromChatID != 0:
		return KindMigrateFrom
	case m.PinnedMessage != nil:
		return KindPinned
	case m.ProximityAlert != nil:
		return KindProximityAlert
	case m.AutoDeleteTimer != nil:
		return KindAutoDeleteTimer
	case m.VoiceChatScheduled != nil:
		return KindVoiceChatScheduled
	case m.VoiceChatStarted != nil:
		return KindVoiceChatStarted
	case m.VoiceChatEnded != nil:
		return KindVoiceChatEnded
	case m.VoiceChatInvited != nil:
		return KindVoiceChatInvited
	default:
		return KindUnknown
	}
}

// IsService reports whether the kind is a service message rather than user
// content. Service messages are unreachable on the edited-message path.
func (k MessageKind) IsService() bool {
	switch k {
	case KindNewChatMembers, KindLeftChatMember, KindNewChatTitle,
		KindNewChatPhoto, KindChatPhotoDeleted, KindGroupCreated,
		KindSupergroupCreated, KindChannelCreated, KindMigrateTo,
		KindMigrateFrom, KindPinned, KindProximityAlert, KindAutoDeleteTimer,
		KindVoiceChatScheduled, KindVoiceChatStarted, KindVoiceChatEnded,
		KindVoiceChatInvited, KindConnectedWebsite:
		return true
	}
	return false
}

// IsEdited reports whether the message arrived through an edited path.
// edit_date is present iff the update key was edited_message or
// edited_channel_post.
func (m *Message) IsEdited() bool { return m.EditDate != 0 }

// ══════════════════════════════════════════════════════════════════════════════
// FORWARD ORIGIN
// ══════════════════════════════════════════════════════════════════════════════

// ForwardKind names where a forwarded message originally came from.
type ForwardKind int

const (
	ForwardNone ForwardKind = iota
	// ForwardUser: forwarded from a visible user account.
	ForwardUser
	// ForwardHiddenUser: forwarded from a user who disallowed linking, only
	// the sender name is known.
	ForwardHiddenUser
	// ForwardChannel: forwarded from a channel post.
	ForwardChannel
	// ForwardAnonymousAdmin: forwarded on behalf of an anonymous group admin.
	ForwardAnonymousAdmin
)

// ForwardOrigin describes the origin of a forwarded message.
type ForwardOrigin struct {
	Kind ForwardKind
	// User is set for ForwardUser.
	User *User
	// SenderName is set for ForwardHiddenUser and ForwardAnonymousAdmin.
	SenderName string
	// Chat and MessageID are set for ForwardChannel; Signature optionally.
	Chat      *Chat
	MessageID int64
	Signature string
}

// Forward discriminates the forward envelope structurally: channel origin if
// forward_from_chat names a channel, anonymous admin if it names a group,
// hidden user if only forward_sender_name is present, plain user if
// forward_from is present.
func (m *Message) Forward() ForwardOrigin {
	switch {
	case m.ForwardFromChat != nil && m.ForwardFromChat.Type == ChatTypeChannel:
		return ForwardOrigin{
			Kind:      ForwardChannel,
			Chat:      m.ForwardFromChat,
			MessageID: m.ForwardFromMsgID,
			Signature: m.ForwardSignature,
		}
	case m.ForwardFromChat != nil:
		return ForwardOrigin{
			Kind:       ForwardAnonymousAdmin,
			Chat:       m.ForwardFromChat,
			SenderName: m.ForwardSenderName,
			Signature:  m.ForwardSignature,
		}
	case m.ForwardSenderName != "":
		return ForwardOrigin{Kind: ForwardHiddenUser, SenderName: m.ForwardSenderName}
	case m.ForwardFrom != nil:
		return ForwardOrigin{Kind: ForwardUser, User: m.ForwardFrom}
	default:
		return ForwardOrigin{Kind: ForwardNone}
	}
}
