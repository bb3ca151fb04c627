package telegram

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT CONTEXT
// A Bot binds one token to a shared transport. It is immutable and safe for
// concurrent use; construct as many as needed on the same Client.
// ══════════════════════════════════════════════════════════════════════════════

// Bot is the api surface of a single bot account.
type Bot struct {
	token     string
	transport Caller
}

// NewBot binds token to transport.
func NewBot(token string, transport Caller) *Bot {
	return &Bot{token: token, transport: transport}
}

// Token returns the bound token.
func (b *Bot) Token() string { return b.token }

// Call invokes an arbitrary API method. It is the escape hatch for methods
// without a typed wrapper.
func (b *Bot) Call(ctx context.Context, method string, payload *Payload, dest any) error {
	return b.transport.Call(ctx, b.token, method, payload, dest)
}

// ══════════════════════════════════════════════════════════════════════════════
// IDENTITY AND UPDATES
// ══════════════════════════════════════════════════════════════════════════════

// GetMe returns the bot account behind the token.
func (b *Bot) GetMe(ctx context.Context) (*User, error) {
	var u User
	if err := b.Call(ctx, "getMe", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUpdates performs one long poll request.
func (b *Bot) GetUpdates(ctx context.Context, params GetUpdatesParams) ([]Update, error) {
	var updates []Update
	if err := b.Call(ctx, "getUpdates", params.payload(), &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SetWebhook registers the delivery URL.
func (b *Bot) SetWebhook(ctx context.Context, params SetWebhookParams) error {
	return b.Call(ctx, "setWebhook", params.payload(), nil)
}

// DeleteWebhook removes the registered webhook, optionally discarding the
// pending update backlog.
func (b *Bot) DeleteWebhook(ctx context.Context, dropPending bool) error {
	p := NewPayload()
	if dropPending {
		p.Set("drop_pending_updates", true)
	}
	return b.Call(ctx, "deleteWebhook", p, nil)
}

// GetWebhookInfo returns the current webhook registration.
func (b *Bot) GetWebhookInfo(ctx context.Context) (*WebhookInfo, error) {
	var info WebhookInfo
	if err := b.Call(ctx, "getWebhookInfo", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SENDING
// ══════════════════════════════════════════════════════════════════════════════

func (b *Bot) sendMessageCall(ctx context.Context, method string, p *Payload) (*Message, error) {
	var msg Message
	if err := b.Call(ctx, method, p, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SendMessage sends a text message.
func (b *Bot) SendMessage(ctx context.Context, to ChatID, text string, opts *SendMessageOptions) (*Message, error) {
	p := NewPayload().Set("chat_id", to).Set("text", text)
	opts.applyTo(p)
	return b.sendMessageCall(ctx, "sendMessage", p)
}

// ForwardMessage forwards a message between chats.
func (b *Bot) ForwardMessage(ctx context.Context, to, from ChatID, messageID int64, opts *SendOptions) (*Message, error) {
	p := NewPayload().
		Set("chat_id", to).
		Set("from_chat_id", from).
		Set("message_id", messageID)
	opts.applyTo(p)
	return b.sendMessageCall(ctx, "forwardMessage", p)
}

// CopyMessage copies a message without the forward header. Only the new
// message id comes back.
func (b *Bot) CopyMessage(ctx context.Context, to, from ChatID, messageID int64, opts *CopyMessageOptions) (int64, error) {
	p := NewPayload().
		Set("chat_id", to).
		Set("from_chat_id", from).
		Set("message_id", messageID)
	opts.applyTo(p)
	var result struct {
		MessageID int64 `json:"message_id"`
	}
	if err := b.Call(ctx, "copyMessage", p, &result); err != nil {
		return 0, err
	}
	return result.MessageID, nil
}

func (b *Bot) sendMedia(ctx context.Context, method, field string, to ChatID, file *InputFile, opts *CaptionOptions) (*Message, error) {
	p := NewPayload().Set("chat_id", to).SetFile(field, file)
	opts.applyTo(p)
	return b.sendMessageCall(ctx, method, p)
}

// SendPhoto sends a photo. Local bytes are uploaded multipart.
func (b *Bot) SendPhoto(ctx context.Context, to ChatID, photo *InputFile, opts *CaptionOptions) (*Message, error) {
	return b.sendMedia(ctx, "sendPhoto", "photo", to, photo, opts)
}

// SendDocument sends a general file.
func (b *Bot) SendDocument(ctx context.Context, to ChatID, document *InputFile, opts *CaptionOptions) (*Message, error) {
	return b.sendMedia(ctx, "sendDocument", "document", to, document, opts)
}

// SendAudio sends an audio track.
func (b *Bot) SendAudio(ctx context.Context, to ChatID, audio *InputFile, opts *CaptionOptions) (*Message, error) {
	return b.sendMedia(ctx, "sendAudio", "audio", to, audio, opts)
}

// SendVideo sends a video.
func (b *Bot) SendVideo(ctx context.Context, to ChatID, video *InputFile, opts *CaptionOptions) (*Message, error) {
	return b.sendMedia(ctx, "sendVideo", "video", to, video, opts)
}

// SendAnimation sends an animation (GIF or soundless MP4).
func (b *Bot) SendAnimation(ctx context.Context, to ChatID, animation *InputFile, opts *CaptionOptions) (*Message, error) {
	return b.sendMedia(ctx, "sendAnimation", "animation", to, animation, opts)
}

// SendVoice sends a voice note.
func (b *Bot) SendVoice(ctx context.Context, to ChatID, voice *InputFile, opts *CaptionOptions) (*Message, error) {
	return b.sendMedia(ctx, "sendVoice", "voice", to, voice, opts)
}

// SendVideoNote sends a round video note.
func (b *Bot) SendVideoNote(ctx context.Context, to ChatID, note *InputFile, opts *SendOptions) (*Message, error) {
	p := NewPayload().Set("chat_id", to).SetFile("video_note", note)
	opts.applyTo(p)
	return b.sendMessageCall(ctx, "sendVideoNote", p)
}

// SendLocation sends a point on the map.
func (b *Bot) SendLocation(ctx context.Context, to ChatID, latitude, longitude float64, opts *SendLocationOptions) (*Message, error) {
	p := NewPayload().
		Set("chat_id", to).
		Set("latitude", latitude).
		Set("longitude", longitude)
	opts.applyTo(p)
	return b.sendMessageCall(ctx, "sendLocation", p)
}

// SendVenue sends a venue.
func (b *Bot) SendVenue(ctx context.Context, to ChatID, venue Venue, opts *SendOptions) (*Message, error) {
	p := NewPayload().
		Set("chat_id", to).
		Set("latitude", venue.Location.Latitude).
		Set("longitude", venue.Location.Longitude).
		Set("title", venue.Title).
		Set("address", venue.Address)
	if venue.FoursquareID != "" {
		p.Set("foursquare_id", venue.FoursquareID)
	}
	if venue.FoursquareType != "" {
		p.Set("foursquare_type", venue.FoursquareType)
	}
	opts.applyTo(p)
	return b.sendMessageCall(ctx, "sendVenue", p)
}

// SendContact sends a phone contact.
func (b *Bot) SendContact(ctx context.Context, to ChatID, contact Contact, opts *SendOptions) (*Message, error) {
	p := NewPayload().
		Set("chat_id", to).
		Set("phone_number", contact.PhoneNumber).
		Set("first_name", contact.FirstName)
	if contact.LastName != "" {
		p.Set("last_name", contact.LastName)
	}
	if contact.VCard != "" {
		p.Set("vcard", contact.VCard)
	}
	opts.applyTo(p)
	return b.sendMessageCall(ctx, "sendContact", p)
}

// SendPoll sends a native poll.
func (b *Bot) SendPoll(ctx context.Context, to ChatID, question string, options []string, opts *SendPollOptions) (*Message, error) {
	p := NewPayload().
		Set("chat_id", to).
		Set("question", question).
		Set("options", options)
	opts.applyTo(p)
	return b.sendMessageCall(ctx, "sendPoll", p)
}

// SendDice sends an animated emoji with a random value.
func (b *Bot) SendDice(ctx context.Context, to ChatID, emoji string, opts *SendOptions) (*Message, error) {
	p := NewPayload().Set("chat_id", to)
	if emoji != "" {
		p.Set("emoji", emoji)
	}
	opts.applyTo(p)
	return b.sendMessageCall(ctx, "sendDice", p)
}

// SendChatAction broadcasts a chat action ("typing", "upload_photo", ...).
func (b *Bot) SendChatAction(ctx context.Context, to ChatID, action string) error {
	p := NewPayload().Set("chat_id", to).Set("action", action)
	return b.Call(ctx, "sendChatAction", p, nil)
}

// ══════════════════════════════════════════════════════════════════════════════
// EDITING AND DELETION
// ══════════════════════════════════════════════════════════════════════════════

// EditMessageText replaces the text of a sent message.
func (b *Bot) EditMessageText(ctx context.Context, chat ChatID, messageID int64, text string, opts *EditMessageOptions) (*Message, error) {
	p := NewPayload().
		Set("chat_id", chat).
		Set("message_id", messageID).
		Set("text", text)
	opts.applyTo(p)
	return b.sendMessageCall(ctx, "editMessageText", p)
}

// EditMessageCaption replaces the caption of a sent media message.
func (b *Bot) EditMessageCaption(ctx context.Context, chat ChatID, messageID int64, caption string, opts *EditCaptionOptions) (*Message, error) {
	p := NewPayload().
		Set("chat_id", chat).
		Set("message_id", messageID).
		Set("caption", caption)
	opts.applyTo(p)
	return b.sendMessageCall(ctx, "editMessageCaption", p)
}

// EditMessageReplyMarkup replaces the inline keyboard of a sent message. A
// nil markup removes it.
func (b *Bot) EditMessageReplyMarkup(ctx context.Context, chat ChatID, messageID int64, markup *InlineKeyboardMarkup) (*Message, error) {
	p := NewPayload().
		Set("chat_id", chat).
		Set("message_id", messageID)
	if markup != nil {
		p.Set("reply_markup", markup)
	}
	return b.sendMessageCall(ctx, "editMessageReplyMarkup", p)
}

// DeleteMessage removes a message.
func (b *Bot) DeleteMessage(ctx context.Context, chat ChatID, messageID int64) error {
	p := NewPayload().Set("chat_id", chat).Set("message_id", messageID)
	return b.Call(ctx, "deleteMessage", p, nil)
}

// StopPoll closes a poll and returns its final state.
func (b *Bot) StopPoll(ctx context.Context, chat ChatID, messageID int64, markup *InlineKeyboardMarkup) (*Poll, error) {
	p := NewPayload().Set("chat_id", chat).Set("message_id", messageID)
	if markup != nil {
		p.Set("reply_markup", markup)
	}
	var poll Poll
	if err := b.Call(ctx, "stopPoll", p, &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERY ANSWERS
// ══════════════════════════════════════════════════════════════════════════════

// AnswerCallbackQuery acknowledges a callback query.
func (b *Bot) AnswerCallbackQuery(ctx context.Context, queryID string, opts *AnswerCallbackOptions) error {
	p := NewPayload().Set("callback_query_id", queryID)
	opts.applyTo(p)
	return b.Call(ctx, "answerCallbackQuery", p, nil)
}

// AnswerInlineQuery answers an inline query with pre-built result documents.
func (b *Bot) AnswerInlineQuery(ctx context.Context, queryID string, results []any, opts *AnswerInlineOptions) error {
	p := NewPayload().
		Set("inline_query_id", queryID).
		Set("results", results)
	opts.applyTo(p)
	return b.Call(ctx, "answerInlineQuery", p, nil)
}

// AnswerShippingQuery replies to a shipping query. A non-empty errMessage
// declines the order.
func (b *Bot) AnswerShippingQuery(ctx context.Context, queryID string, shippingOptions []any, errMessage string) error {
	p := NewPayload().Set("shipping_query_id", queryID)
	if errMessage != "" {
		p.Set("ok", false).Set("error_message", errMessage)
	} else {
		p.Set("ok", true).Set("shipping_options", shippingOptions)
	}
	return b.Call(ctx, "answerShippingQuery", p, nil)
}

// AnswerPreCheckoutQuery confirms or declines the final checkout.
func (b *Bot) AnswerPreCheckoutQuery(ctx context.Context, queryID string, errMessage string) error {
	p := NewPayload().Set("pre_checkout_query_id", queryID)
	if errMessage != "" {
		p.Set("ok", false).Set("error_message", errMessage)
	} else {
		p.Set("ok", true)
	}
	return b.Call(ctx, "answerPreCheckoutQuery", p, nil)
}

// ══════════════════════════════════════════════════════════════════════════════
// CHAT MANAGEMENT
// ══════════════════════════════════════════════════════════════════════════════

// GetChat returns up-to-date information about a chat.
func (b *Bot) GetChat(ctx context.Context, chat ChatID) (*Chat, error) {
	p := NewPayload().Set("chat_id", chat)
	var c Chat
	if err := b.Call(ctx, "getChat", p, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetFile returns file metadata including the download path.
func (b *Bot) GetFile(ctx context.Context, fileID string) (*File, error) {
	p := NewPayload().Set("file_id", fileID)
	var f File
	if err := b.Call(ctx, "getFile", p, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// PinChatMessage pins a message in a chat.
func (b *Bot) PinChatMessage(ctx context.Context, chat ChatID, messageID int64, disableNotification bool) error {
	p := NewPayload().Set("chat_id", chat).Set("message_id", messageID)
	if disableNotification {
		p.Set("disable_notification", true)
	}
	return b.Call(ctx, "pinChatMessage", p, nil)
}

// UnpinChatMessage unpins one message, or the most recent pin when
// messageID is zero.
func (b *Bot) UnpinChatMessage(ctx context.Context, chat ChatID, messageID int64) error {
	p := NewPayload().Set("chat_id", chat)
	if messageID != 0 {
		p.Set("message_id", messageID)
	}
	return b.Call(ctx, "unpinChatMessage", p, nil)
}

// BanChatMember bans a user from a group or channel.
func (b *Bot) BanChatMember(ctx context.Context, chat ChatID, userID int64, opts *BanChatMemberOptions) error {
	p := NewPayload().Set("chat_id", chat).Set("user_id", userID)
	opts.applyTo(p)
	return b.Call(ctx, "banChatMember", p, nil)
}

// UnbanChatMember lifts a ban. onlyIfBanned avoids kicking a present member.
func (b *Bot) UnbanChatMember(ctx context.Context, chat ChatID, userID int64, onlyIfBanned bool) error {
	p := NewPayload().Set("chat_id", chat).Set("user_id", userID)
	if onlyIfBanned {
		p.Set("only_if_banned", true)
	}
	return b.Call(ctx, "unbanChatMember", p, nil)
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMAND MENU
// ══════════════════════════════════════════════════════════════════════════════

// SetMyCommands publishes the bot command menu.
func (b *Bot) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	p := NewPayload().Set("commands", commands)
	return b.Call(ctx, "setMyCommands", p, nil)
}

// GetMyCommands returns the published command menu.
func (b *Bot) GetMyCommands(ctx context.Context) ([]BotCommand, error) {
	var commands []BotCommand
	if err := b.Call(ctx, "getMyCommands", nil, &commands); err != nil {
		return nil, err
	}
	return commands, nil
}

// DeleteMyCommands removes the published command menu.
func (b *Bot) DeleteMyCommands(ctx context.Context) error {
	return b.Call(ctx, "deleteMyCommands", nil, nil)
}
