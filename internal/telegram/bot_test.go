package telegram

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shopping-lists/internal/app"
	"shopping-lists/internal/assistant"
	"shopping-lists/internal/config"
	"shopping-lists/internal/metrics"
	"shopping-lists/internal/shopping"
	"shopping-lists/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fakeSender records the text of every message and edit it is given.
type fakeSender struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		f.texts = append(f.texts, m.Text)
	case tgbotapi.EditMessageTextConfig:
		f.texts = append(f.texts, m.Text)
	}
	return tgbotapi.Message{MessageID: len(f.texts)}, nil
}

func (f *fakeSender) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

func newTestBot(t *testing.T, cfg *config.Config) (*Bot, *fakeSender, *app.App) {
	t.Helper()
	a, err := app.New(context.Background(), storage.NewMemoryStore())
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	cfg.AssistantDelay = 0
	sender := &fakeSender{}
	return newBot(sender, cfg, a, nil, nil), sender, a
}

func message(chatID, userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: userID},
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		text  string
		cmd   string
		arg   string
		isCmd bool
	}{
		{"/supermercado  Mercadona ", "supermercado", "Mercadona", true},
		{"/listas@ListasBot", "listas", "", true},
		{"Hazme un menú", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, arg, ok := splitCommand(tt.text)
			if cmd != tt.cmd || arg != tt.arg || ok != tt.isCmd {
				t.Errorf("splitCommand(%q) = %q, %q, %v", tt.text, cmd, arg, ok)
			}
		})
	}
}

func TestProcessMessage_Commands(t *testing.T) {
	b, sender, a := newTestBot(t, nil)

	b.processMessage(message(1, 5, "/supermercados"))
	if !strings.Contains(sender.last(), "No tienes supermercados") {
		t.Errorf("Expected the empty hint, got %q", sender.last())
	}

	b.processMessage(message(1, 5, "/supermercado Mercadona"))
	if got := a.Supermarkets(); len(got) != 1 || got[0].Name != "Mercadona" {
		t.Fatalf("Expected Mercadona to be added, got %+v", got)
	}

	b.processMessage(message(1, 5, "/supermercado"))
	if sender.last() != "Uso: /supermercado <nombre>" {
		t.Errorf("Expected usage text, got %q", sender.last())
	}

	b.processMessage(message(1, 5, "/supermercados"))
	if !strings.Contains(sender.last(), "👉 1. Mercadona") {
		t.Errorf("Expected the selected marker, got %q", sender.last())
	}

	b.processMessage(message(1, 5, "/listas"))
	if sender.last() != "No hay listas para Mercadona." {
		t.Errorf("Unexpected reply %q", sender.last())
	}

	b.processMessage(message(1, 5, "/desconocido"))
	if sender.last() != assistant.HelpText {
		t.Errorf("Expected help text, got %q", sender.last())
	}
}

func TestProcessMessage_Select(t *testing.T) {
	b, sender, a := newTestBot(t, nil)
	ctx := context.Background()
	mercadona, _ := a.AddSupermarket(ctx, "Mercadona")
	lidl, _ := a.AddSupermarket(ctx, "Lidl")
	a.AddList(ctx, "Fiesta", lidl.ID)

	tests := []struct {
		arg      string
		want     string
		selected string
	}{
		{"2", "👉 Supermercado *Lidl* seleccionado.", lidl.ID},
		{"mercadona", "👉 Supermercado *Mercadona* seleccionado.", mercadona.ID},
		{"3", `No encuentro el supermercado "3".`, mercadona.ID},
		{"Dia", `No encuentro el supermercado "Dia".`, mercadona.ID},
		{"", "Uso: /seleccionar <nombre o número>", mercadona.ID},
	}
	for _, tt := range tests {
		b.processMessage(message(1, 5, strings.TrimSpace("/seleccionar "+tt.arg)))
		if sender.last() != tt.want {
			t.Errorf("/seleccionar %q: expected %q, got %q", tt.arg, tt.want, sender.last())
		}
		if a.Selected() != tt.selected {
			t.Errorf("/seleccionar %q: expected %s selected, got %s", tt.arg, tt.selected, a.Selected())
		}
	}

	b.processMessage(message(1, 5, "/seleccionar Lidl"))
	b.processMessage(message(1, 5, "/listas"))
	if !strings.Contains(sender.last(), "🛒 *Fiesta*") {
		t.Errorf("Expected the Lidl list, got %q", sender.last())
	}
}

func TestProcessMessage_ListsAfterRestart(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	first, err := app.New(ctx, store)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	m, _ := first.AddSupermarket(ctx, "Mercadona")
	if _, err := first.ImportList(ctx, "Semana", m.ID, []string{"Leche"}); err != nil {
		t.Fatalf("ImportList failed: %v", err)
	}

	// A new process over the same store starts without a selection.
	second, err := app.New(ctx, store)
	if err != nil {
		t.Fatalf("Failed to reload app: %v", err)
	}
	if second.Selected() != "" {
		t.Fatalf("Expected no selection after reload, got %q", second.Selected())
	}
	cfg := config.Default()
	cfg.AssistantDelay = 0
	sender := &fakeSender{}
	b := newBot(sender, cfg, second, nil, nil)

	b.processMessage(message(1, 5, "/listas"))
	if !strings.Contains(sender.last(), "🛒 *Semana*") {
		t.Errorf("Expected the persisted list, got %q", sender.last())
	}
	b.processMessage(message(1, 5, "/supermercados"))
	if !strings.Contains(sender.last(), "👉 1. Mercadona") {
		t.Errorf("Expected the first supermarket to be current, got %q", sender.last())
	}
}

func TestProcessMessage_AssistantConversation(t *testing.T) {
	b, sender, a := newTestBot(t, nil)
	a.AddSupermarket(context.Background(), "Mercadona")

	b.processMessage(message(7, 5, "lista de la compra"))
	if !strings.Contains(sender.last(), "- Aceite de oliva") {
		t.Errorf("Expected the grocery list, got %q", sender.last())
	}

	b.processMessage(message(7, 5, "sí"))
	if !strings.Contains(sender.last(), `He guardado la lista "Lista semanal"`) {
		t.Errorf("Expected the saved message, got %q", sender.last())
	}

	// Another chat has its own conversation.
	b.processMessage(message(8, 6, "sí"))
	if sender.last() != assistant.NothingStagedText {
		t.Errorf("Expected a fresh conversation, got %q", sender.last())
	}

	b.processMessage(message(7, 5, "/listas"))
	if !strings.Contains(sender.last(), "🛒 *Lista semanal*") {
		t.Errorf("Expected the saved list, got %q", sender.last())
	}
}

func TestMetricsRequiresAdmin(t *testing.T) {
	cfg := config.Default()
	cfg.AdminTelegramID = 42
	b, sender, _ := newTestBot(t, cfg)

	b.processMessage(message(1, 5, "/metrics"))
	if !strings.Contains(sender.last(), "Access Denied") {
		t.Errorf("Expected access denied, got %q", sender.last())
	}

	b.processMessage(message(1, 42, "/metrics"))
	if !strings.Contains(sender.last(), "not enabled") {
		t.Errorf("Expected metrics to be reported as disabled, got %q", sender.last())
	}
}

func TestHandleWebhook(t *testing.T) {
	cfg := config.Default()
	cfg.TelegramAllowedUserIDs = []int64{1}
	b, sender, _ := newTestBot(t, cfg)

	t.Run("bad body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString("{"))
		rr := httptest.NewRecorder()
		b.handleWebhook(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rr.Code)
		}
	})

	t.Run("unauthorized user", func(t *testing.T) {
		body := `{"update_id":1,"message":{"message_id":1,"date":0,"text":"/supermercados","chat":{"id":9,"type":"private"},"from":{"id":9,"is_bot":false,"first_name":"x"}}}`
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		b.handleWebhook(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rr.Code)
		}
		if len(sender.texts) != 0 {
			t.Errorf("Expected no reply to an unauthorized user, got %v", sender.texts)
		}
	})
}

func TestFormatListMarkdown(t *testing.T) {
	l := shopping.ShoppingList{
		Name:   "Semana",
		Shared: true,
		Items: []shopping.ShoppingItem{
			{ID: "1", Name: "Leche", Completed: true},
			{ID: "2", Name: "Pan"},
		},
	}

	out := formatListMarkdown(l)
	for _, want := range []string{"🛒 *Semana* (compartida)", "✅ Leche", "⬜ Pan", "_1 pendientes_"} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q in %q", want, out)
		}
	}

	if out := formatListMarkdown(shopping.ShoppingList{Name: "Vacía"}); !strings.Contains(out, "_Lista vacía_") {
		t.Errorf("Expected the empty marker, got %q", out)
	}
}

func TestFormatMetricsMarkdown(t *testing.T) {
	out := formatMetricsMarkdown(
		[]metrics.DailyUsage{{Date: "2026-10-16", Intent: "menu", Count: 3, AvgLatencyMS: 1500}},
		metrics.SysHealth{AllocMB: 4, SysMB: 12, Goroutines: 7, DataSize: "1.0 KiB", DataFiles: 2, Uptime: "3m0s"},
	)
	for _, want := range []string{"📊 *Usage & Health Report*", "• *2026-10-16* menu: 3 requests (avg 1500ms)", "• Goroutines: 7", "• Disk Data: 1.0 KiB in 2 files", "• Uptime: 3m0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("Missing %q in %q", want, out)
		}
	}

	if out := formatMetricsMarkdown(nil, metrics.SysHealth{}); !strings.Contains(out, "_No data yet_") {
		t.Error("Expected the empty marker")
	}
}

func TestSessions(t *testing.T) {
	created := 0
	s := NewSessions(time.Hour, func(opts ...assistant.Option) *assistant.Assistant {
		created++
		return assistant.New(&fakeShelf{}, opts...)
	}, nil)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ctx := context.Background()
	first := s.Get(ctx, 1)
	if s.Get(ctx, 1) != first {
		t.Error("Expected the same assistant for the same chat")
	}
	s.Get(ctx, 2)
	if created != 2 || s.Len() != 2 {
		t.Errorf("Expected 2 sessions, got %d created / %d held", created, s.Len())
	}

	now = now.Add(30 * time.Minute)
	s.Get(ctx, 1)
	now = now.Add(45 * time.Minute)

	if removed := s.CleanupExpired(); removed != 1 || s.Len() != 1 {
		t.Errorf("Expected only the idle chat to be dropped, removed %d, held %d", removed, s.Len())
	}

	now = now.Add(2 * time.Hour)
	if s.Get(ctx, 1) == first {
		t.Error("Expected an expired chat to start over")
	}
}

type fakeShelf struct{}

func (fakeShelf) Supermarkets() []shopping.Supermarket { return nil }

func (fakeShelf) ImportList(context.Context, string, string, []string) (shopping.ShoppingList, error) {
	return shopping.ShoppingList{}, nil
}
