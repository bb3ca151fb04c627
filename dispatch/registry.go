// Package dispatch routes decoded updates to user handlers. A Registry holds
// per-subtype handler lists plus keyed command maps; registration is
// append-only and statically typed per subtype, while storage is a single
// slot-keyed map of boxed closures. After the driver starts, the registry is
// read-only and safe for concurrent dispatch.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alem-hub/botcore/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Env carries the per-invocation context: the immutable bot handle and the
// shared user state. It is copied cheaply into every handler call.
type Env[S any] struct {
	Bot   *telegram.Bot
	State S
}

// CommandEvent is the argument of command handlers. Args holds the message
// text with the command prefix and its trailing whitespace removed;
// ArgEntities are shifted to match.
type CommandEvent struct {
	Message     *telegram.Message
	Command     telegram.Command
	Args        string
	ArgEntities []telegram.MessageEntity
}

type (
	UpdateHandler[S any]       func(ctx context.Context, env Env[S], u *telegram.Update) error
	MessageHandler[S any]      func(ctx context.Context, env Env[S], m *telegram.Message) error
	CommandHandler[S any]      func(ctx context.Context, env Env[S], cmd *CommandEvent) error
	CallbackHandler[S any]     func(ctx context.Context, env Env[S], q *telegram.CallbackQuery) error
	InlineQueryHandler[S any]  func(ctx context.Context, env Env[S], q *telegram.InlineQuery) error
	ChosenInlineHandler[S any] func(ctx context.Context, env Env[S], r *telegram.ChosenInlineResult) error
	ShippingHandler[S any]     func(ctx context.Context, env Env[S], q *telegram.ShippingQuery) error
	PreCheckoutHandler[S any]  func(ctx context.Context, env Env[S], q *telegram.PreCheckoutQuery) error
	PollHandler[S any]         func(ctx context.Context, env Env[S], p *telegram.Poll) error
	PollAnswerHandler[S any]   func(ctx context.Context, env Env[S], a *telegram.PollAnswer) error
	ChatMemberHandler[S any]   func(ctx context.Context, env Env[S], m *telegram.ChatMemberUpdated) error
)

// ErrorHandler receives driver-level failures (polling cycle errors) and
// per-handler failures.
type ErrorHandler func(ctx context.Context, err error)

// ══════════════════════════════════════════════════════════════════════════════
// SLOTS
// One slot per subtype list. Typed registration methods box their handler
// into an update-shaped closure keyed by slot.
// ══════════════════════════════════════════════════════════════════════════════

type slot int

const (
	slotBefore slot = iota
	slotAfter
	slotUnhandled

	slotText
	slotEditedText
	slotAnimation
	slotEditedAnimation
	slotAudio
	slotEditedAudio
	slotDocument
	slotEditedDocument
	slotPhoto
	slotEditedPhoto
	slotVideo
	slotEditedVideo
	slotLocation
	slotEditedLocation

	slotVideoNote
	slotVoice
	slotSticker
	slotGame
	slotDice
	slotContact
	slotVenue
	slotMessagePoll
	slotInvoice
	slotPayment
	slotPassport
	slotConnectedWebsite
	slotNewMembers
	slotLeftMember
	slotNewChatTitle
	slotNewChatPhoto
	slotDeletedChatPhoto
	slotChatCreated
	slotMigration
	slotPinned
	slotProximityAlert
	slotAutoDeleteTimer
	slotVoiceChatScheduled
	slotVoiceChatStarted
	slotVoiceChatEnded
	slotVoiceChatInvited

	slotInlineQuery
	slotChosenInline
	slotShipping
	slotPreCheckout
	slotUpdatedPoll
	slotPollAnswer
	slotMyChatMember
	slotChatMember

	slotMessageDataCallback
	slotInlineDataCallback
	slotMessageGameCallback
	slotInlineGameCallback
)

type boxed[S any] func(ctx context.Context, env Env[S], u *telegram.Update) error

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRY
// ══════════════════════════════════════════════════════════════════════════════

// Registry holds the handler lists for one bot. S is the user state type
// shared by every handler; use struct{} when no state is needed.
type Registry[S any] struct {
	bot      *telegram.Bot
	state    S
	username string
	logger   *slog.Logger

	slots          map[slot][]boxed[S]
	commands       map[string][]CommandHandler[S]
	editedCommands map[string][]CommandHandler[S]
	pollingErrors  []ErrorHandler
	errorHook      ErrorHandler
}

// New creates an empty registry bound to bot, sharing state with every
// handler invocation.
func New[S any](bot *telegram.Bot, state S) *Registry[S] {
	return &Registry[S]{
		bot:            bot,
		state:          state,
		logger:         slog.Default(),
		slots:          make(map[slot][]boxed[S]),
		commands:       make(map[string][]CommandHandler[S]),
		editedCommands: make(map[string][]CommandHandler[S]),
	}
}

// WithUsername sets the bot username used to gate commands addressed as
// "/cmd@username". A leading "@" is stripped. Without a username every
// addressed command is dropped.
func (r *Registry[S]) WithUsername(username string) *Registry[S] {
	r.username = strings.TrimPrefix(username, "@")
	return r
}

// WithLogger replaces the logger used for handler failures when no error
// hook is installed.
func (r *Registry[S]) WithLogger(logger *slog.Logger) *Registry[S] {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithErrorHook installs the sink for per-handler failures and panics.
func (r *Registry[S]) WithErrorHook(hook ErrorHandler) *Registry[S] {
	r.errorHook = hook
	return r
}

// Bot returns the bound bot handle.
func (r *Registry[S]) Bot() *telegram.Bot { return r.bot }

// Username returns the configured bot username, without "@".
func (r *Registry[S]) Username() string { return r.username }

func (r *Registry[S]) add(s slot, h boxed[S]) {
	r.slots[s] = append(r.slots[s], h)
}

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION
// ══════════════════════════════════════════════════════════════════════════════

// BeforeUpdate registers a handler invoked before any subtype routing, for
// every update.
func (r *Registry[S]) BeforeUpdate(h UpdateHandler[S]) { r.add(slotBefore, boxed[S](h)) }

// AfterUpdate registers a handler invoked after subtype routing, for every
// update, including ones that fell through to unhandled.
func (r *Registry[S]) AfterUpdate(h UpdateHandler[S]) { r.add(slotAfter, boxed[S](h)) }

// OnUnhandled registers the fallthrough handler for updates no subtype list
// accepted, including unknown update kinds.
func (r *Registry[S]) OnUnhandled(h UpdateHandler[S]) { r.add(slotUnhandled, boxed[S](h)) }

// OnPollingError registers a sink for polling cycle failures. The polling
// driver reports through HandlePollingError.
func (r *Registry[S]) OnPollingError(h ErrorHandler) {
	r.pollingErrors = append(r.pollingErrors, h)
}

// OnCommand registers a handler for "/name". Matching is case-sensitive.
func (r *Registry[S]) OnCommand(name string, h CommandHandler[S]) {
	name = strings.TrimPrefix(name, "/")
	r.commands[name] = append(r.commands[name], h)
}

// OnEditedCommand registers a handler for "/name" arriving on the edited
// message path.
func (r *Registry[S]) OnEditedCommand(name string, h CommandHandler[S]) {
	name = strings.TrimPrefix(name, "/")
	r.editedCommands[name] = append(r.editedCommands[name], h)
}

func onMessage[S any](r *Registry[S], s slot, h MessageHandler[S]) {
	r.add(s, func(ctx context.Context, env Env[S], u *telegram.Update) error {
		return h(ctx, env, u.AnyMessage())
	})
}

func (r *Registry[S]) OnText(h MessageHandler[S])       { onMessage(r, slotText, h) }
func (r *Registry[S]) OnEditedText(h MessageHandler[S]) { onMessage(r, slotEditedText, h) }

func (r *Registry[S]) OnAnimation(h MessageHandler[S])       { onMessage(r, slotAnimation, h) }
func (r *Registry[S]) OnEditedAnimation(h MessageHandler[S]) { onMessage(r, slotEditedAnimation, h) }
func (r *Registry[S]) OnAudio(h MessageHandler[S])           { onMessage(r, slotAudio, h) }
func (r *Registry[S]) OnEditedAudio(h MessageHandler[S])     { onMessage(r, slotEditedAudio, h) }
func (r *Registry[S]) OnDocument(h MessageHandler[S])        { onMessage(r, slotDocument, h) }
func (r *Registry[S]) OnEditedDocument(h MessageHandler[S])  { onMessage(r, slotEditedDocument, h) }
func (r *Registry[S]) OnPhoto(h MessageHandler[S])           { onMessage(r, slotPhoto, h) }
func (r *Registry[S]) OnEditedPhoto(h MessageHandler[S])     { onMessage(r, slotEditedPhoto, h) }
func (r *Registry[S]) OnVideo(h MessageHandler[S])           { onMessage(r, slotVideo, h) }
func (r *Registry[S]) OnEditedVideo(h MessageHandler[S])     { onMessage(r, slotEditedVideo, h) }
func (r *Registry[S]) OnLocation(h MessageHandler[S])        { onMessage(r, slotLocation, h) }
func (r *Registry[S]) OnEditedLocation(h MessageHandler[S])  { onMessage(r, slotEditedLocation, h) }

func (r *Registry[S]) OnVideoNote(h MessageHandler[S])        { onMessage(r, slotVideoNote, h) }
func (r *Registry[S]) OnVoice(h MessageHandler[S])            { onMessage(r, slotVoice, h) }
func (r *Registry[S]) OnSticker(h MessageHandler[S])          { onMessage(r, slotSticker, h) }
func (r *Registry[S]) OnGame(h MessageHandler[S])             { onMessage(r, slotGame, h) }
func (r *Registry[S]) OnDice(h MessageHandler[S])             { onMessage(r, slotDice, h) }
func (r *Registry[S]) OnContact(h MessageHandler[S])          { onMessage(r, slotContact, h) }
func (r *Registry[S]) OnVenue(h MessageHandler[S])            { onMessage(r, slotVenue, h) }
func (r *Registry[S]) OnMessagePoll(h MessageHandler[S])      { onMessage(r, slotMessagePoll, h) }
func (r *Registry[S]) OnInvoice(h MessageHandler[S])          { onMessage(r, slotInvoice, h) }
func (r *Registry[S]) OnPayment(h MessageHandler[S])          { onMessage(r, slotPayment, h) }
func (r *Registry[S]) OnPassport(h MessageHandler[S])         { onMessage(r, slotPassport, h) }
func (r *Registry[S]) OnConnectedWebsite(h MessageHandler[S]) { onMessage(r, slotConnectedWebsite, h) }
func (r *Registry[S]) OnNewChatMembers(h MessageHandler[S])   { onMessage(r, slotNewMembers, h) }
func (r *Registry[S]) OnLeftChatMember(h MessageHandler[S])   { onMessage(r, slotLeftMember, h) }
func (r *Registry[S]) OnNewChatTitle(h MessageHandler[S])     { onMessage(r, slotNewChatTitle, h) }
func (r *Registry[S]) OnNewChatPhoto(h MessageHandler[S])     { onMessage(r, slotNewChatPhoto, h) }
func (r *Registry[S]) OnDeletedChatPhoto(h MessageHandler[S]) { onMessage(r, slotDeletedChatPhoto, h) }
func (r *Registry[S]) OnChatCreated(h MessageHandler[S])      { onMessage(r, slotChatCreated, h) }
func (r *Registry[S]) OnMigration(h MessageHandler[S])        { onMessage(r, slotMigration, h) }
func (r *Registry[S]) OnPinnedMessage(h MessageHandler[S])    { onMessage(r, slotPinned, h) }
func (r *Registry[S]) OnProximityAlert(h MessageHandler[S])   { onMessage(r, slotProximityAlert, h) }
func (r *Registry[S]) OnAutoDeleteTimer(h MessageHandler[S])  { onMessage(r, slotAutoDeleteTimer, h) }

func (r *Registry[S]) OnVoiceChatScheduled(h MessageHandler[S]) {
	onMessage(r, slotVoiceChatScheduled, h)
}
func (r *Registry[S]) OnVoiceChatStarted(h MessageHandler[S]) { onMessage(r, slotVoiceChatStarted, h) }
func (r *Registry[S]) OnVoiceChatEnded(h MessageHandler[S])   { onMessage(r, slotVoiceChatEnded, h) }
func (r *Registry[S]) OnVoiceChatInvited(h MessageHandler[S]) { onMessage(r, slotVoiceChatInvited, h) }

func (r *Registry[S]) OnInlineQuery(h InlineQueryHandler[S]) {
	r.add(slotInlineQuery, func(ctx context.Context, env Env[S], u *telegram.Update) error {
		return h(ctx, env, u.InlineQuery)
	})
}

func (r *Registry[S]) OnChosenInlineResult(h ChosenInlineHandler[S]) {
	r.add(slotChosenInline, func(ctx context.Context, env Env[S], u *telegram.Update) error {
		return h(ctx, env, u.ChosenInlineResult)
	})
}

func (r *Registry[S]) OnShippingQuery(h ShippingHandler[S]) {
	r.add(slotShipping, func(ctx context.Context, env Env[S], u *telegram.Update) error {
		return h(ctx, env, u.ShippingQuery)
	})
}

func (r *Registry[S]) OnPreCheckoutQuery(h PreCheckoutHandler[S]) {
	r.add(slotPreCheckout, func(ctx context.Context, env Env[S], u *telegram.Update) error {
		return h(ctx, env, u.PreCheckoutQuery)
	})
}

// OnUpdatedPoll handles poll state updates delivered as their own update
// kind, not polls embedded in messages.
func (r *Registry[S]) OnUpdatedPoll(h PollHandler[S]) {
	r.add(slotUpdatedPoll, func(ctx context.Context, env Env[S], u *telegram.Update) error {
		return h(ctx, env, u.Poll)
	})
}

func (r *Registry[S]) OnPollAnswer(h PollAnswerHandler[S]) {
	r.add(slotPollAnswer, func(ctx context.Context, env Env[S], u *telegram.Update) error {
		return h(ctx, env, u.PollAnswer)
	})
}

func (r *Registry[S]) OnMyChatMember(h ChatMemberHandler[S]) {
	r.add(slotMyChatMember, func(ctx context.Context, env Env[S], u *telegram.Update) error {
		return h(ctx, env, u.MyChatMember)
	})
}

func (r *Registry[S]) OnChatMember(h ChatMemberHandler[S]) {
	r.add(slotChatMember, func(ctx context.Context, env Env[S], u *telegram.Update) error {
		return h(ctx, env, u.ChatMember)
	})
}

func onCallback[S any](r *Registry[S], s slot, h CallbackHandler[S]) {
	r.add(s, func(ctx context.Context, env Env[S], u *telegram.Update) error {
		return h(ctx, env, u.CallbackQuery)
	})
}

// OnMessageDataCallback handles data callbacks whose origin is a full
// message.
func (r *Registry[S]) OnMessageDataCallback(h CallbackHandler[S]) {
	onCallback(r, slotMessageDataCallback, h)
}

// OnInlineDataCallback handles data callbacks originating from inline-mode
// messages.
func (r *Registry[S]) OnInlineDataCallback(h CallbackHandler[S]) {
	onCallback(r, slotInlineDataCallback, h)
}

func (r *Registry[S]) OnMessageGameCallback(h CallbackHandler[S]) {
	onCallback(r, slotMessageGameCallback, h)
}

func (r *Registry[S]) OnInlineGameCallback(h CallbackHandler[S]) {
	onCallback(r, slotInlineGameCallback, h)
}

// ══════════════════════════════════════════════════════════════════════════════
// FAILURE REPORTING
// ══════════════════════════════════════════════════════════════════════════════

// HandlePollingError feeds a polling cycle failure to the registered sinks.
// With no sinks it logs the error.
func (r *Registry[S]) HandlePollingError(ctx context.Context, err error) {
	if len(r.pollingErrors) == 0 {
		r.logger.Error("polling error", "error", err)
		return
	}
	for _, h := range r.pollingErrors {
		h(ctx, err)
	}
}

func (r *Registry[S]) reportError(ctx context.Context, u *telegram.Update, err error) {
	if r.errorHook != nil {
		r.errorHook(ctx, fmt.Errorf("update %d: %w", u.ID, err))
		return
	}
	r.logger.Error("handler failure",
		"update_id", u.ID,
		"update_kind", u.Kind().String(),
		"error", err,
	)
}
