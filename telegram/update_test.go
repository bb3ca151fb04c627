package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeUpdate_Message(t *testing.T) {
	raw := []byte(`{
		"update_id": 10,
		"message": {
			"message_id": 1,
			"date": 0,
			"chat": {"id": 42, "type": "private"},
			"text": "/ping",
			"entities": [{"type": "bot_command", "offset": 0, "length": 5}]
		}
	}`)

	u, err := DecodeUpdate(raw)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), u.ID)
	assert.Equal(t, UpdateNewMessage, u.Kind())
	assert.Equal(t, "/ping", u.Message.Text)
	assert.Equal(t, KindText, u.Message.ContentKind())
}

func TestDecodeUpdate_UnknownPayload(t *testing.T) {
	// A future update kind must decode cleanly, not fail.
	raw := []byte(`{"update_id": 11, "chat_boost": {"boost_id": "x"}}`)

	u, err := DecodeUpdate(raw)
	assert.NoError(t, err)
	assert.Equal(t, int64(11), u.ID)
	assert.Equal(t, UpdateUnknown, u.Kind())
	assert.Nil(t, u.AnyMessage())
}

func TestDecodeUpdate_Malformed(t *testing.T) {
	_, err := DecodeUpdate([]byte(`{"update_id": `))
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestUpdate_KindDiscrimination(t *testing.T) {
	assert.Equal(t, UpdateEditedMessage, (&Update{EditedMessage: &Message{}}).Kind())
	assert.Equal(t, UpdateChannelPost, (&Update{ChannelPost: &Message{}}).Kind())
	assert.Equal(t, UpdateCallbackQuery, (&Update{CallbackQuery: &CallbackQuery{}}).Kind())
	assert.Equal(t, UpdatePoll, (&Update{Poll: &Poll{}}).Kind())
	assert.Equal(t, UpdatePollAnswer, (&Update{PollAnswer: &PollAnswer{}}).Kind())
	assert.Equal(t, UpdateUnknown, (&Update{}).Kind())
}

func TestMessage_ContentKindPrecedence(t *testing.T) {
	// Animations also carry a document payload; animation wins.
	m := &Message{Animation: &Animation{}, Document: &Document{}}
	assert.Equal(t, KindAnimation, m.ContentKind())

	// Venues also carry a location; venue wins.
	m = &Message{Venue: &Venue{}, Location: &Location{}}
	assert.Equal(t, KindVenue, m.ContentKind())
}

func TestMessage_IsEdited(t *testing.T) {
	assert.False(t, (&Message{}).IsEdited())
	assert.True(t, (&Message{EditDate: 100}).IsEdited())
}

func TestMessage_ForwardDiscrimination(t *testing.T) {
	channel := Chat{ID: -100, Type: ChatTypeChannel}
	group := Chat{ID: -1, Type: ChatTypeGroup}
	user := User{ID: 5, FirstName: "Ann"}

	f := (&Message{ForwardFromChat: &channel, ForwardFromMsgID: 7}).Forward()
	assert.Equal(t, ForwardChannel, f.Kind)
	assert.Equal(t, int64(7), f.MessageID)

	f = (&Message{ForwardFromChat: &group}).Forward()
	assert.Equal(t, ForwardAnonymousAdmin, f.Kind)

	f = (&Message{ForwardSenderName: "Hidden"}).Forward()
	assert.Equal(t, ForwardHiddenUser, f.Kind)
	assert.Equal(t, "Hidden", f.SenderName)

	f = (&Message{ForwardFrom: &user}).Forward()
	assert.Equal(t, ForwardUser, f.Kind)
	assert.Equal(t, int64(5), f.User.ID)

	f = (&Message{}).Forward()
	assert.Equal(t, ForwardNone, f.Kind)
}

func TestCallbackQuery_Origin(t *testing.T) {
	q := &CallbackQuery{Message: &Message{MessageID: 3}}
	origin := q.Origin()
	assert.Equal(t, CallbackOriginMessage, origin.Kind)
	assert.Equal(t, int64(3), origin.Message.MessageID)

	q = &CallbackQuery{InlineMessageID: "im"}
	origin = q.Origin()
	assert.Equal(t, CallbackOriginInline, origin.Kind)
	assert.Equal(t, "im", origin.InlineMessageID)

	// Violating the exactly-one rule is invalid, not a guess.
	q = &CallbackQuery{Message: &Message{}, InlineMessageID: "im"}
	assert.Equal(t, CallbackOriginInvalid, q.Origin().Kind)
	q = &CallbackQuery{}
	assert.Equal(t, CallbackOriginInvalid, q.Origin().Kind)
}

func TestCallbackQuery_PayloadKind(t *testing.T) {
	q := &CallbackQuery{Data: "payload"}
	pk := q.PayloadKind()
	assert.Equal(t, CallbackKindData, pk.Kind)
	assert.Equal(t, "payload", pk.Data)

	q = &CallbackQuery{GameShortName: "tetris"}
	pk = q.PayloadKind()
	assert.Equal(t, CallbackKindGame, pk.Kind)
	assert.Equal(t, "tetris", pk.GameShortName)

	assert.Equal(t, CallbackKindInvalid, (&CallbackQuery{}).PayloadKind().Kind)
}
