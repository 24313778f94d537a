package bot

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"wtgbot/internal/config"
	"wtgbot/internal/fetcher"
	"wtgbot/internal/linkmatch"
	"wtgbot/internal/pipeline"
)

const welcomeMessage = `🎮 <b>WTG Bot</b> - Game Review Parser

Hello! I can parse links from wtg.com.ua and show you game information with comments.

Just send me a WTG comment link like:
<code>https://wtg.com.ua/game/game-name/comment/comment-id</code>

I'll extract:
• Game title and score
• Comment details
• Game image
• Link to original post

Type /help for more information.`

const helpMessage = `🔧 <b>How to use WTG Bot:</b>

<b>Supported URLs:</b>
• <code>https://wtg.com.ua/game/*/comment/*</code>

<b>What I extract:</b>
• 🎮 Game title
• ⭐ Game score/rating
• 👤 Comment author &amp; date
• 💬 Comment text
• 🖼️ Game cover image
• 🔗 Link to original post

<b>Commands:</b>
• /start - Welcome message
• /help - This help message

Just paste a WTG comment link and I'll do the rest!`

// Handler holds dependencies for the Telegram bot handlers.
type Handler struct {
	bot      *tgbot.Bot
	cfg      config.Config
	pipeline *pipeline.Pipeline
	images   fetcher.Fetcher
	log      logrus.FieldLogger
}

// NewHandler creates a new bot handler instance.
func NewHandler(cfg config.Config, p *pipeline.Pipeline, images fetcher.Fetcher, logger logrus.FieldLogger) (*Handler, error) {
	log := logger.WithField("component", "bot_handler")

	b, err := tgbot.New(cfg.TelegramBotToken)
	if err != nil {
		log.WithError(err).Error("Failed to create Telegram bot instance")
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	h := &Handler{
		bot:      b,
		cfg:      cfg,
		pipeline: p,
		images:   images,
		log:      log,
	}
	h.registerHandlers()

	log.Info("Telegram bot handler initialized")
	return h, nil
}

// registerHandlers sets up the command and message handlers.
func (h *Handler) registerHandlers() {
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypeExact, h.startHandler)
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/help", tgbot.MatchTypeExact, h.helpHandler)
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "", tgbot.MatchTypeContains, h.messageHandler)
}

// Start begins polling for updates from Telegram. Blocks until the
// context is cancelled.
func (h *Handler) Start(ctx context.Context) {
	h.log.Info("Starting Telegram bot polling...")
	h.bot.Start(ctx)
	h.log.Info("Telegram bot polling stopped.")
}

// StartWebhook runs the bot in webhook mode. The returned http.Handler
// must be mounted at the webhook path by the caller; this method blocks
// processing updates until the context is cancelled.
func (h *Handler) StartWebhook(ctx context.Context) {
	h.log.WithField("webhook_url", h.cfg.WebhookURL).Info("Starting Telegram bot in webhook mode...")
	if _, err := h.bot.SetWebhook(ctx, &tgbot.SetWebhookParams{
		URL: strings.TrimRight(h.cfg.WebhookURL, "/") + "/webhook",
	}); err != nil {
		h.log.WithError(err).Error("Failed to register webhook with Telegram")
	}
	h.bot.StartWebhook(ctx)
	h.log.Info("Telegram bot webhook processing stopped.")
}

// WebhookHandler returns the HTTP handler that receives Telegram updates
// in webhook mode.
func (h *Handler) WebhookHandler() http.HandlerFunc {
	return h.bot.WebhookHandler()
}

// startHandler handles the /start command.
func (h *Handler) startHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	h.sendHTML(ctx, update.Message.Chat.ID, welcomeMessage)
	h.log.WithFields(logrus.Fields{
		"user_id": update.Message.From.ID,
		"command": "/start",
	}).Info("Received /start command")
}

// helpHandler handles the /help command.
func (h *Handler) helpHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	h.sendHTML(ctx, update.Message.Chat.ID, helpMessage)
	h.log.WithFields(logrus.Fields{
		"user_id": update.Message.From.ID,
		"command": "/help",
	}).Info("Received /help command")
}

// messageHandler runs every plain text message through the reply
// pipeline. Messages without a recognized link are ignored silently.
func (h *Handler) messageHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	text := update.Message.Text
	if strings.HasPrefix(text, "/") {
		// Commands are handled by their own handlers.
		return
	}

	chatID := update.Message.Chat.ID
	log := h.log.WithField("user_id", update.Message.From.ID)

	// The transport catches anything unexpected so the chat is never
	// left hanging.
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Recovered from panic while handling message")
			h.sendPlain(ctx, chatID, "❌ An error occurred while processing your link. Please try again later.")
		}
	}()

	if linkmatch.Extract(text) == nil {
		log.Debug("Message contains no WTG link, ignoring")
		return
	}

	processing, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   "🔄 Processing WTG link...",
	})
	if err != nil {
		log.WithError(err).Error("Failed to send processing message")
	}

	outcome := h.pipeline.Handle(ctx, text)
	switch outcome.Kind {
	case pipeline.KindNoLink:
		h.deleteProcessing(ctx, chatID, processing)
	case pipeline.KindUserError:
		h.replaceProcessing(ctx, chatID, processing, outcome.ErrorMessage, "")
	case pipeline.KindReply:
		h.sendReply(ctx, chatID, processing, outcome)
	}
}

// sendReply delivers the formatted reply, preferring a photo with the
// text as caption and falling back to plain text when the image cannot
// be fetched or sent.
func (h *Handler) sendReply(ctx context.Context, chatID int64, processing *models.Message, outcome pipeline.Outcome) {
	log := h.log.WithField("chat_id", chatID)

	if outcome.Reply.ImageURL != "" {
		data, err := h.images.FetchImage(ctx, outcome.Reply.ImageURL)
		if err == nil {
			_, err = h.bot.SendPhoto(ctx, &tgbot.SendPhotoParams{
				ChatID:    chatID,
				Photo:     &models.InputFileUpload{Filename: "cover.jpg", Data: bytes.NewReader(data)},
				Caption:   outcome.Reply.Text,
				ParseMode: models.ParseModeHTML,
			})
			if err == nil {
				h.deleteProcessing(ctx, chatID, processing)
				return
			}
			log.WithError(err).Error("Failed to send photo, falling back to text")
		} else {
			log.WithError(err).Warn("Image download failed, sending text only")
		}
	}

	h.replaceProcessing(ctx, chatID, processing, outcome.Reply.Text, models.ParseModeHTML)
}

// replaceProcessing edits the processing message into its final text, or
// sends a fresh message when the processing message never made it out.
func (h *Handler) replaceProcessing(ctx context.Context, chatID int64, processing *models.Message, text string, parseMode models.ParseMode) {
	if processing == nil {
		h.send(ctx, chatID, text, parseMode)
		return
	}
	_, err := h.bot.EditMessageText(ctx, &tgbot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: processing.ID,
		Text:      text,
		ParseMode: parseMode,
	})
	if err != nil {
		h.log.WithError(err).Error("Failed to edit processing message")
		h.send(ctx, chatID, text, parseMode)
	}
}

func (h *Handler) deleteProcessing(ctx context.Context, chatID int64, processing *models.Message) {
	if processing == nil {
		return
	}
	if _, err := h.bot.DeleteMessage(ctx, &tgbot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: processing.ID,
	}); err != nil {
		h.log.WithError(err).Warn("Failed to delete processing message")
	}
}

func (h *Handler) sendHTML(ctx context.Context, chatID int64, text string) {
	h.send(ctx, chatID, text, models.ParseModeHTML)
}

func (h *Handler) sendPlain(ctx context.Context, chatID int64, text string) {
	h.send(ctx, chatID, text, "")
}

func (h *Handler) send(ctx context.Context, chatID int64, text string, parseMode models.ParseMode) {
	_, err := h.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
	})
	if err != nil {
		h.log.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}
