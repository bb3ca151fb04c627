package dispatch

import (
	"context"
	"fmt"

	"github.com/alem-hub/botcore/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISPATCH
// One update in, handler invocations out. before_update runs first, then
// exactly one subtype list (or unhandled), then after_update. A failing
// handler is reported and never aborts the others.
// ══════════════════════════════════════════════════════════════════════════════

// Dispatch routes one decoded update through the registry.
func (r *Registry[S]) Dispatch(ctx context.Context, u *telegram.Update) {
	env := Env[S]{Bot: r.bot, State: r.state}

	r.runList(ctx, env, u, r.slots[slotBefore])

	switch u.Kind() {
	case telegram.UpdateNewMessage, telegram.UpdateChannelPost:
		r.dispatchMessage(ctx, env, u, false)
	case telegram.UpdateEditedMessage, telegram.UpdateEditedChannelPost:
		r.dispatchMessage(ctx, env, u, true)
	case telegram.UpdateCallbackQuery:
		r.dispatchCallback(ctx, env, u)
	case telegram.UpdateInlineQuery:
		r.route(ctx, env, u, slotInlineQuery)
	case telegram.UpdateChosenInlineResult:
		r.route(ctx, env, u, slotChosenInline)
	case telegram.UpdateShippingQuery:
		r.route(ctx, env, u, slotShipping)
	case telegram.UpdatePreCheckoutQuery:
		r.route(ctx, env, u, slotPreCheckout)
	case telegram.UpdatePoll:
		r.route(ctx, env, u, slotUpdatedPoll)
	case telegram.UpdatePollAnswer:
		r.route(ctx, env, u, slotPollAnswer)
	case telegram.UpdateMyChatMember:
		r.route(ctx, env, u, slotMyChatMember)
	case telegram.UpdateChatMember:
		r.route(ctx, env, u, slotChatMember)
	default:
		r.runList(ctx, env, u, r.slots[slotUnhandled])
	}

	r.runList(ctx, env, u, r.slots[slotAfter])
}

// route invokes the slot's handler list; an empty list falls through to
// unhandled.
func (r *Registry[S]) route(ctx context.Context, env Env[S], u *telegram.Update, s slot) {
	list := r.slots[s]
	if len(list) == 0 {
		list = r.slots[slotUnhandled]
	}
	r.runList(ctx, env, u, list)
}

func (r *Registry[S]) runList(ctx context.Context, env Env[S], u *telegram.Update, list []boxed[S]) {
	for _, h := range list {
		r.invoke(ctx, u, func() error { return h(ctx, env, u) })
	}
}

// invoke runs one handler, converting a panic or error into a report.
func (r *Registry[S]) invoke(ctx context.Context, u *telegram.Update, fn func() error) {
	defer func() {
		if p := recover(); p != nil {
			r.reportError(ctx, u, fmt.Errorf("handler panic: %v", p))
		}
	}()
	if err := fn(); err != nil {
		r.reportError(ctx, u, err)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE ROUTING
// ══════════════════════════════════════════════════════════════════════════════

// editableKind reports whether the content kind can legally appear on the
// edited message path.
func editableKind(k telegram.MessageKind) bool {
	switch k {
	case telegram.KindText, telegram.KindAnimation, telegram.KindAudio,
		telegram.KindDocument, telegram.KindLocation, telegram.KindPhoto,
		telegram.KindVideo:
		return true
	default:
		return false
	}
}

func (r *Registry[S]) dispatchMessage(ctx context.Context, env Env[S], u *telegram.Update, edited bool) {
	m := u.AnyMessage()
	kind := m.ContentKind()

	if edited && !editableKind(kind) {
		// The server never edits service or media-note content in place.
		// Seeing it here means the envelope is inconsistent; surface it.
		r.reportError(ctx, u, fmt.Errorf("edited message carries uneditable content kind %d", kind))
		r.runList(ctx, env, u, r.slots[slotUnhandled])
		return
	}

	if kind == telegram.KindText {
		r.dispatchText(ctx, env, u, m, edited)
		return
	}

	r.route(ctx, env, u, messageSlot(kind, edited))
}

func (r *Registry[S]) dispatchText(ctx context.Context, env Env[S], u *telegram.Update, m *telegram.Message, edited bool) {
	commands := r.commands
	textSlot := slotText
	if edited {
		commands = r.editedCommands
		textSlot = slotEditedText
	}

	if cmd, ok := telegram.ParseCommand(m.Text, m.Entities); ok {
		// "/cmd@other" is not for us. An addressed command with no
		// configured username is dropped as well.
		if cmd.Username != "" && cmd.Username != r.username {
			return
		}
		if list := commands[cmd.Name]; len(list) > 0 {
			args, argEntities, _ := telegram.TrimCommand(m.Text, m.Entities)
			ev := &CommandEvent{
				Message:     m,
				Command:     cmd,
				Args:        args,
				ArgEntities: argEntities,
			}
			for _, h := range list {
				h := h
				r.invoke(ctx, u, func() error { return h(ctx, env, ev) })
			}
			return
		}
	}

	r.route(ctx, env, u, textSlot)
}

func messageSlot(kind telegram.MessageKind, edited bool) slot {
	if edited {
		switch kind {
		case telegram.KindAnimation:
			return slotEditedAnimation
		case telegram.KindAudio:
			return slotEditedAudio
		case telegram.KindDocument:
			return slotEditedDocument
		case telegram.KindLocation:
			return slotEditedLocation
		case telegram.KindPhoto:
			return slotEditedPhoto
		case telegram.KindVideo:
			return slotEditedVideo
		}
	}
	switch kind {
	case telegram.KindAnimation:
		return slotAnimation
	case telegram.KindAudio:
		return slotAudio
	case telegram.KindDocument:
		return slotDocument
	case telegram.KindPhoto:
		return slotPhoto
	case telegram.KindVideo:
		return slotVideo
	case telegram.KindLocation:
		return slotLocation
	case telegram.KindVideoNote:
		return slotVideoNote
	case telegram.KindVoice:
		return slotVoice
	case telegram.KindSticker:
		return slotSticker
	case telegram.KindGame:
		return slotGame
	case telegram.KindDice:
		return slotDice
	case telegram.KindContact:
		return slotContact
	case telegram.KindVenue:
		return slotVenue
	case telegram.KindPoll:
		return slotMessagePoll
	case telegram.KindInvoice:
		return slotInvoice
	case telegram.KindSuccessfulPayment:
		return slotPayment
	case telegram.KindPassportData:
		return slotPassport
	case telegram.KindConnectedWebsite:
		return slotConnectedWebsite
	case telegram.KindNewChatMembers:
		return slotNewMembers
	case telegram.KindLeftChatMember:
		return slotLeftMember
	case telegram.KindNewChatTitle:
		return slotNewChatTitle
	case telegram.KindNewChatPhoto:
		return slotNewChatPhoto
	case telegram.KindChatPhotoDeleted:
		return slotDeletedChatPhoto
	case telegram.KindGroupCreated, telegram.KindSupergroupCreated, telegram.KindChannelCreated:
		return slotChatCreated
	case telegram.KindMigrateTo, telegram.KindMigrateFrom:
		return slotMigration
	case telegram.KindPinned:
		return slotPinned
	case telegram.KindProximityAlert:
		return slotProximityAlert
	case telegram.KindAutoDeleteTimer:
		return slotAutoDeleteTimer
	case telegram.KindVoiceChatScheduled:
		return slotVoiceChatScheduled
	case telegram.KindVoiceChatStarted:
		return slotVoiceChatStarted
	case telegram.KindVoiceChatEnded:
		return slotVoiceChatEnded
	case telegram.KindVoiceChatInvited:
		return slotVoiceChatInvited
	default:
		return slotUnhandled
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CALLBACK ROUTING
// ══════════════════════════════════════════════════════════════════════════════

func (r *Registry[S]) dispatchCallback(ctx context.Context, env Env[S], u *telegram.Update) {
	q := u.CallbackQuery
	origin := q.Origin()
	payload := q.PayloadKind()

	var s slot
	switch {
	case payload.Kind == telegram.CallbackKindData && origin.Kind == telegram.CallbackOriginMessage:
		s = slotMessageDataCallback
	case payload.Kind == telegram.CallbackKindData && origin.Kind == telegram.CallbackOriginInline:
		s = slotInlineDataCallback
	case payload.Kind == telegram.CallbackKindGame && origin.Kind == telegram.CallbackOriginMessage:
		s = slotMessageGameCallback
	case payload.Kind == telegram.CallbackKindGame && origin.Kind == telegram.CallbackOriginInline:
		s = slotInlineGameCallback
	default:
		r.runList(ctx, env, u, r.slots[slotUnhandled])
		return
	}
	r.route(ctx, env, u, s)
}
