package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shopping-lists/internal/app"
	"shopping-lists/internal/assistant"
	"shopping-lists/internal/config"
	"shopping-lists/internal/metrics"
	"shopping-lists/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SessionTTL is how long a chat can stay idle before it starts over.
const SessionTTL = 24 * time.Hour

const (
	requestTimeout = time.Minute
	maxUpdateBytes = 1 << 20
)

// Sender is the part of the Telegram API the bot talks through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot wraps the Telegram API, the shopping state and one assistant per chat.
type Bot struct {
	api          Sender
	app          *app.App
	sessions     *Sessions
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
// sessionStore may be nil to keep conversations in memory only.
func NewBot(cfg *config.Config, a *app.App, metricsStore *metrics.Store, sessionStore ConversationStore) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	if webhookURL := cfg.TelegramWebhookURL; webhookURL != "" {
		wh, err := tgbotapi.NewWebhook(webhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
		}
		resp, err := bot.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
		}
		log.Printf("Webhook set response: %s", resp.Description)
	}

	return newBot(bot, cfg, a, metricsStore, sessionStore), nil
}

func newBot(api Sender, cfg *config.Config, a *app.App, metricsStore *metrics.Store, sessionStore ConversationStore) *Bot {
	b := &Bot{
		api:          api,
		app:          a,
		metricsStore: metricsStore,
		cfg:          cfg,
	}
	b.sessions = NewSessions(SessionTTL, b.newAssistant, sessionStore)
	return b
}

func (b *Bot) newAssistant(extra ...assistant.Option) *assistant.Assistant {
	opts := []assistant.Option{assistant.WithDelay(b.cfg.AssistantDelay)}
	if b.metricsStore != nil {
		opts = append(opts, assistant.WithRecorder(b.metricsStore, "telegram"))
	}
	return assistant.New(b.app, append(opts, extra...)...)
}

// RegisterHandlers registers the webhook handler on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhook", b.handleWebhook)
}

// CleanupSessions drops idle chats.
func (b *Bot) CleanupSessions() int {
	return b.sessions.CleanupExpired()
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&update); err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return
	}

	if !b.cfg.IsUserAllowed(update.Message.From.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

// splitCommand returns the command name without the leading slash or
// @botname suffix, and its argument. ok is false for plain text.
func splitCommand(text string) (cmd, arg string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	cmd, arg, ok := splitCommand(msg.Text)
	if !ok {
		b.handleAssistantRequest(msg)
		return
	}

	switch cmd {
	case "start":
		if err := b.sessions.Reset(context.Background(), msg.Chat.ID); err != nil {
			log.Printf("Error resetting chat %d: %v", msg.Chat.ID, err)
		}
		b.reply(msg.Chat.ID, assistant.Greeting, "")
	case "help", "ayuda":
		b.reply(msg.Chat.ID, assistant.Greeting, "")
	case "supermercados":
		b.handleSupermarkets(msg.Chat.ID)
	case "supermercado":
		b.handleAddSupermarket(msg.Chat.ID, arg)
	case "seleccionar":
		b.handleSelect(msg.Chat.ID, arg)
	case "listas":
		b.handleLists(msg.Chat.ID)
	case "metrics":
		b.handleMetricsRequest(msg)
	default:
		b.reply(msg.Chat.ID, assistant.HelpText, "")
	}
}

func (b *Bot) reply(chatID int64, text, parseMode string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = parseMode
	if _, err := b.api.Send(m); err != nil {
		log.Printf("Failed to send reply: %v", err)
	}
}

func (b *Bot) handleAssistantRequest(msg *tgbotapi.Message) {
	asst := b.sessions.Get(context.Background(), msg.Chat.ID)
	if asst.Pending() {
		b.reply(msg.Chat.ID, "⏳ Todavía estoy preparando la respuesta anterior.", "")
		return
	}

	replyMsg := tgbotapi.NewMessage(msg.Chat.ID, "🧑‍🍳 *Pensando...*")
	replyMsg.ParseMode = tgbotapi.ModeMarkdown
	sentMsg, err := b.api.Send(replyMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	answer, err := asst.Send(ctx, msg.Text)
	var finalText string
	switch {
	case errors.Is(err, assistant.ErrBusy):
		finalText = "⏳ Todavía estoy preparando la respuesta anterior."
	case err != nil:
		log.Printf("Error answering chat %d: %v", msg.Chat.ID, err)
		finalText = assistant.FallbackText
	default:
		finalText = answer.Text
		if err := b.sessions.Save(ctx, msg.Chat.ID, asst); err != nil {
			log.Printf("Error saving session for chat %d: %v", msg.Chat.ID, err)
		}
	}

	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, finalText)
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit reply: %v", err)
	}
}

func (b *Bot) handleSupermarkets(chatID int64) {
	current, _ := b.currentSupermarket()
	b.reply(chatID, formatSupermarketsMarkdown(b.app.Supermarkets(), current.ID), tgbotapi.ModeMarkdown)
}

func (b *Bot) handleAddSupermarket(chatID int64, name string) {
	m, err := b.app.AddSupermarket(context.Background(), name)
	switch {
	case errors.Is(err, app.ErrEmptyName):
		b.reply(chatID, "Uso: /supermercado <nombre>", "")
	case err != nil:
		log.Printf("Error adding supermarket: %v", err)
		b.reply(chatID, assistant.FallbackText, "")
	default:
		b.reply(chatID, fmt.Sprintf("✅ Supermercado *%s* añadido.", escape(m.Name)), tgbotapi.ModeMarkdown)
	}
}

// currentSupermarket is the selected supermarket, or the first one while
// nothing is selected. The selection does not survive a restart.
func (b *Bot) currentSupermarket() (shopping.Supermarket, bool) {
	markets := b.app.Supermarkets()
	if m, ok := shopping.FindSupermarket(markets, b.app.Selected()); ok {
		return m, true
	}
	if len(markets) == 0 {
		return shopping.Supermarket{}, false
	}
	return markets[0], true
}

// handleSelect selects a supermarket by name or by its 1-based position in
// /supermercados.
func (b *Bot) handleSelect(chatID int64, arg string) {
	if arg == "" {
		b.reply(chatID, "Uso: /seleccionar <nombre o número>", "")
		return
	}
	m, ok := findSupermarket(b.app.Supermarkets(), arg)
	if !ok {
		b.reply(chatID, fmt.Sprintf("No encuentro el supermercado %q.", arg), "")
		return
	}
	if err := b.app.Select(m.ID); err != nil {
		log.Printf("Error selecting supermarket: %v", err)
		b.reply(chatID, assistant.FallbackText, "")
		return
	}
	b.reply(chatID, fmt.Sprintf("👉 Supermercado *%s* seleccionado.", escape(m.Name)), tgbotapi.ModeMarkdown)
}

func findSupermarket(markets []shopping.Supermarket, arg string) (shopping.Supermarket, bool) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(markets) {
			return markets[n-1], true
		}
		return shopping.Supermarket{}, false
	}
	for _, m := range markets {
		if strings.EqualFold(m.Name, arg) {
			return m, true
		}
	}
	return shopping.Supermarket{}, false
}

func (b *Bot) handleLists(chatID int64) {
	m, ok := b.currentSupermarket()
	if !ok {
		b.reply(chatID, "No tienes supermercados. Añade uno con /supermercado <nombre>.", "")
		return
	}
	lists := b.app.FilteredLists(m.ID)
	if len(lists) == 0 {
		b.reply(chatID, fmt.Sprintf("No hay listas para %s.", m.Name), "")
		return
	}
	for _, l := range lists {
		b.reply(chatID, formatListMarkdown(l), tgbotapi.ModeMarkdown)
	}
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.ID != b.cfg.AdminTelegramID || b.cfg.AdminTelegramID == 0 {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.", tgbotapi.ModeMarkdown)
		return
	}
	if b.metricsStore == nil {
		b.reply(msg.Chat.ID, "❌ Metrics are not enabled.", "")
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.", "")
		return
	}
	health := metrics.GetSysHealth(b.cfg.DataPath())
	b.reply(msg.Chat.ID, formatMetricsMarkdown(usage, health), tgbotapi.ModeMarkdown)
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatSupermarketsMarkdown(markets []shopping.Supermarket, selected string) string {
	if len(markets) == 0 {
		return "No tienes supermercados. Añade uno con /supermercado <nombre>."
	}
	var sb strings.Builder
	sb.WriteString("🏪 *Supermercados*\n\n")
	for i, m := range markets {
		marker := "•"
		if m.ID == selected {
			marker = "👉"
		}
		sb.WriteString(fmt.Sprintf("%s %d. %s\n", marker, i+1, escape(m.Name)))
	}
	sb.WriteString("\nCambia con /seleccionar <nombre o número>.")
	return sb.String()
}

func formatListMarkdown(l shopping.ShoppingList) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *%s*", escape(l.Name)))
	if l.Shared {
		sb.WriteString(" (compartida)")
	}
	sb.WriteString("\n\n")

	if len(l.Items) == 0 {
		sb.WriteString("_Lista vacía_\n")
		return sb.String()
	}
	for _, it := range l.Items {
		box := "⬜"
		if it.Completed {
			box = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", box, escape(it.Name)))
	}
	sb.WriteString(fmt.Sprintf("\n_%d pendientes_", l.Pending()))
	return sb.String()
}

func formatMetricsMarkdown(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Assistant Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s* %s: %d requests (avg %dms)\n", d.Date, d.Intent, d.Count, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s in %d files\n", health.DataSize, health.DataFiles))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	return sb.String()
}
