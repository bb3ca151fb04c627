package telegram

// ══════════════════════════════════════════════════════════════════════════════
// METHOD OPTIONS
// Optional method parameters live in per-method option structs. A nil options
// pointer means every optional stays absent on the wire.
// ══════════════════════════════════════════════════════════════════════════════

// SendOptions are the optionals shared by every send* method.
type SendOptions struct {
	DisableNotification      bool
	ProtectContent           bool
	ReplyToMessageID         int64
	AllowSendingWithoutReply bool
	ReplyMarkup              ReplyMarkup
}

func (o *SendOptions) applyTo(p *Payload) {
	if o == nil {
		return
	}
	if o.DisableNotification {
		p.Set("disable_notification", true)
	}
	if o.ProtectContent {
		p.Set("protect_content", true)
	}
	if o.ReplyToMessageID != 0 {
		p.Set("reply_to_message_id", o.ReplyToMessageID)
	}
	if o.AllowSendingWithoutReply {
		p.Set("allow_sending_without_reply", true)
	}
	if o.ReplyMarkup != nil {
		p.Set("reply_markup", o.ReplyMarkup)
	}
}

// SendMessageOptions are the optionals of sendMessage.
type SendMessageOptions struct {
	SendOptions
	ParseMode             ParseMode
	Entities              []MessageEntity
	DisableWebPagePreview bool
}

func (o *SendMessageOptions) applyTo(p *Payload) {
	if o == nil {
		return
	}
	o.SendOptions.applyTo(p)
	if o.ParseMode != "" {
		p.Set("parse_mode", o.ParseMode)
	}
	if len(o.Entities) > 0 {
		p.Set("entities", o.Entities)
	}
	if o.DisableWebPagePreview {
		p.Set("disable_web_page_preview", true)
	}
}

// CaptionOptions are the optionals shared by captioned media senders.
type CaptionOptions struct {
	SendOptions
	Caption         string
	ParseMode       ParseMode
	CaptionEntities []MessageEntity
}

func (o *CaptionOptions) applyTo(p *Payload) {
	if o == nil {
		return
	}
	o.SendOptions.applyTo(p)
	if o.Caption != "" {
		p.Set("caption", o.Caption)
	}
	if o.ParseMode != "" {
		p.Set("parse_mode", o.ParseMode)
	}
	if len(o.CaptionEntities) > 0 {
		p.Set("caption_entities", o.CaptionEntities)
	}
}

// CopyMessageOptions are the optionals of copyMessage.
type CopyMessageOptions = CaptionOptions

// SendLocationOptions are the optionals of sendLocation.
type SendLocationOptions struct {
	SendOptions
	HorizontalAccuracy   float64
	LivePeriod           int
	Heading              int
	ProximityAlertRadius int
}

func (o *SendLocationOptions) applyTo(p *Payload) {
	if o == nil {
		return
	}
	o.SendOptions.applyTo(p)
	if o.HorizontalAccuracy != 0 {
		p.Set("horizontal_accuracy", o.HorizontalAccuracy)
	}
	if o.LivePeriod != 0 {
		p.Set("live_period", o.LivePeriod)
	}
	if o.Heading != 0 {
		p.Set("heading", o.Heading)
	}
	if o.ProximityAlertRadius != 0 {
		p.Set("proximity_alert_radius", o.ProximityAlertRadius)
	}
}

// SendPollOptions are the optionals of sendPoll.
type SendPollOptions struct {
	SendOptions
	IsAnonymous           *bool
	Type                  string
	AllowsMultipleAnswers bool
	CorrectOptionID       *int
	Explanation           string
	ExplanationParseMode  ParseMode
	OpenPeriod            int
	CloseDate             int64
	IsClosed              bool
}

func (o *SendPollOptions) applyTo(p *Payload) {
	if o == nil {
		return
	}
	o.SendOptions.applyTo(p)
	if o.IsAnonymous != nil {
		p.Set("is_anonymous", *o.IsAnonymous)
	}
	if o.Type != "" {
		p.Set("type", o.Type)
	}
	if o.AllowsMultipleAnswers {
		p.Set("allows_multiple_answers", true)
	}
	if o.CorrectOptionID != nil {
		p.Set("correct_option_id", *o.CorrectOptionID)
	}
	if o.Explanation != "" {
		p.Set("explanation", o.Explanation)
	}
	if o.ExplanationParseMode != "" {
		p.Set("explanation_parse_mode", o.ExplanationParseMode)
	}
	if o.OpenPeriod != 0 {
		p.Set("open_period", o.OpenPeriod)
	}
	if o.CloseDate != 0 {
		p.Set("close_date", o.CloseDate)
	}
	if o.IsClosed {
		p.Set("is_closed", true)
	}
}

// EditMessageOptions are the optionals of editMessageText.
type EditMessageOptions struct {
	ParseMode             ParseMode
	Entities              []MessageEntity
	DisableWebPagePreview bool
	ReplyMarkup           *InlineKeyboardMarkup
}

func (o *EditMessageOptions) applyTo(p *Payload) {
	if o == nil {
		return
	}
	if o.ParseMode != "" {
		p.Set("parse_mode", o.ParseMode)
	}
	if len(o.Entities) > 0 {
		p.Set("entities", o.Entities)
	}
	if o.DisableWebPagePreview {
		p.Set("disable_web_page_preview", true)
	}
	if o.ReplyMarkup != nil {
		p.Set("reply_markup", o.ReplyMarkup)
	}
}

// EditCaptionOptions are the optionals of editMessageCaption.
type EditCaptionOptions struct {
	ParseMode       ParseMode
	CaptionEntities []MessageEntity
	ReplyMarkup     *InlineKeyboardMarkup
}

func (o *EditCaptionOptions) applyTo(p *Payload) {
	if o == nil {
		return
	}
	if o.ParseMode != "" {
		p.Set("parse_mode", o.ParseMode)
	}
	if len(o.CaptionEntities) > 0 {
		p.Set("caption_entities", o.CaptionEntities)
	}
	if o.ReplyMarkup != nil {
		p.Set("reply_markup", o.ReplyMarkup)
	}
}

// AnswerCallbackOptions are the optionals of answerCallbackQuery.
type AnswerCallbackOptions struct {
	Text      string
	ShowAlert bool
	URL       string
	CacheTime int
}

func (o *AnswerCallbackOptions) applyTo(p *Payload) {
	if o == nil {
		return
	}
	if o.Text != "" {
		p.Set("text", o.Text)
	}
	if o.ShowAlert {
		p.Set("show_alert", true)
	}
	if o.URL != "" {
		p.Set("url", o.URL)
	}
	if o.CacheTime != 0 {
		p.Set("cache_time", o.CacheTime)
	}
}

// AnswerInlineOptions are the optionals of answerInlineQuery. Results are
// passed as pre-built documents because inline result types are open-ended.
type AnswerInlineOptions struct {
	CacheTime         int
	IsPersonal        bool
	NextOffset        string
	SwitchPMText      string
	SwitchPMParameter string
}

func (o *AnswerInlineOptions) applyTo(p *Payload) {
	if o == nil {
		return
	}
	if o.CacheTime != 0 {
		p.Set("cache_time", o.CacheTime)
	}
	if o.IsPersonal {
		p.Set("is_personal", true)
	}
	if o.NextOffset != "" {
		p.Set("next_offset", o.NextOffset)
	}
	if o.SwitchPMText != "" {
		p.Set("switch_pm_text", o.SwitchPMText)
	}
	if o.SwitchPMParameter != "" {
		p.Set("switch_pm_parameter", o.SwitchPMParameter)
	}
}

// BanChatMemberOptions are the optionals of banChatMember.
type BanChatMemberOptions struct {
	UntilDate      int64
	RevokeMessages bool
}

func (o *BanChatMemberOptions) applyTo(p *Payload) {
	if o == nil {
		return
	}
	if o.UntilDate != 0 {
		p.Set("until_date", o.UntilDate)
	}
	if o.RevokeMessages {
		p.Set("revoke_messages", true)
	}
}

// GetUpdatesParams are the parameters of getUpdates. Zero values are omitted
// except Offset, which is meaningful at any value and controlled by Send.
type GetUpdatesParams struct {
	Offset         int64
	Limit          int
	Timeout        int
	AllowedUpdates []string
}

func (g GetUpdatesParams) payload() *Payload {
	p := NewPayload()
	if g.Offset != 0 {
		p.Set("offset", g.Offset)
	}
	if g.Limit != 0 {
		p.Set("limit", g.Limit)
	}
	if g.Timeout != 0 {
		p.Set("timeout", g.Timeout)
	}
	if g.AllowedUpdates != nil {
		p.Set("allowed_updates", g.AllowedUpdates)
	}
	return p
}

// SetWebhookParams are the parameters of setWebhook. URL is required.
type SetWebhookParams struct {
	URL string
	// Certificate uploads a self-signed TLS certificate; it forces the
	// multipart encoding path.
	Certificate        *InputFile
	IPAddress          string
	MaxConnections     int
	AllowedUpdates     []string
	DropPendingUpdates bool
	// SecretToken is echoed back by the server in the
	// X-Telegram-Bot-Api-Secret-Token header of every delivery.
	SecretToken string
}

func (s SetWebhookParams) payload() *Payload {
	p := NewPayload()
	p.Set("url", s.URL)
	if s.Certificate != nil {
		p.SetFile("certificate", s.Certificate)
	}
	if s.IPAddress != "" {
		p.Set("ip_address", s.IPAddress)
	}
	if s.MaxConnections != 0 {
		p.Set("max_connections", s.MaxConnections)
	}
	if s.AllowedUpdates != nil {
		p.Set("allowed_updates", s.AllowedUpdates)
	}
	if s.DropPendingUpdates {
		p.Set("drop_pending_updates", true)
	}
	if s.SecretToken != "" {
		p.Set("secret_token", s.SecretToken)
	}
	return p
}
