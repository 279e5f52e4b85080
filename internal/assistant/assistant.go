package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"shopping-lists/internal/metrics"
	"shopping-lists/internal/shopping"
)

var (
	// ErrBusy is returned by Send while an earlier request is still pending.
	ErrBusy = errors.New("assistant is busy with another request")
	// ErrEmptyMessage is returned by Send for blank input.
	ErrEmptyMessage = errors.New("message must not be empty")
)

// Role tells who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation.
type Message struct {
	Role Role      `json:"role"`
	Text string    `json:"content"`
	At   time.Time `json:"at"`
}

// Shelf is where confirmed lists are saved.
type Shelf interface {
	Supermarkets() []shopping.Supermarket
	ImportList(ctx context.Context, name, supermarketID string, items []string) (shopping.ShoppingList, error)
}

// Recorder receives one Interaction per answered request.
type Recorder interface {
	Record(metrics.Interaction) error
}

func record(r Recorder, channel string, intent Intent, latency time.Duration) {
	if r == nil {
		return
	}
	err := r.Record(metrics.Interaction{
		Channel:   channel,
		Intent:    string(intent),
		LatencyMS: latency.Milliseconds(),
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Warning: failed to record %s interaction: %v", channel, err)
	}
}

// Assistant is the conversational responder. It remembers the
// conversation and what it generated last, and saves confirmed lists
// through its Shelf. One request is handled at a time.
type Assistant struct {
	shelf    Shelf
	delay    time.Duration
	recorder Recorder
	channel  string

	busy atomic.Bool

	mu      sync.Mutex
	history []Message
	staged  Staged
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithDelay sets the simulated thinking time before each reply.
func WithDelay(d time.Duration) Option {
	return func(a *Assistant) { a.delay = d }
}

// WithRecorder reports every exchange to r under the given channel name.
func WithRecorder(r Recorder, channel string) Option {
	return func(a *Assistant) {
		a.recorder = r
		a.channel = channel
	}
}

// New creates an Assistant whose conversation starts with the greeting.
func New(shelf Shelf, opts ...Option) *Assistant {
	a := &Assistant{
		shelf:   shelf,
		channel: "assistant",
		staged:  NothingStaged{},
		history: []Message{{Role: RoleAssistant, Text: Greeting, At: time.Now()}},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Send appends input to the conversation, waits the configured delay and
// appends the reply, which is also returned. Failures while answering are
// logged and answered with FallbackText.
func (a *Assistant) Send(ctx context.Context, input string) (Message, error) {
	if strings.TrimSpace(input) == "" {
		return Message{}, ErrEmptyMessage
	}
	if !a.busy.CompareAndSwap(false, true) {
		return Message{}, ErrBusy
	}
	defer a.busy.Store(false)

	start := time.Now()
	a.appendMessage(RoleUser, input)

	intent := Classify(input, true)
	text, err := a.reply(ctx, intent)
	if err != nil {
		log.Printf("Error answering %q: %v", input, err)
		text = FallbackText
	}

	msg := a.appendMessage(RoleAssistant, text)
	record(a.recorder, a.channel, intent, time.Since(start))
	return msg, nil
}

// Pending reports whether a request is in flight.
func (a *Assistant) Pending() bool {
	return a.busy.Load()
}

// History returns a copy of the conversation, oldest first.
func (a *Assistant) History() []Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.history)
}

// Staged returns what is waiting for confirmation.
func (a *Assistant) Staged() Staged {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.staged
}

func (a *Assistant) appendMessage(role Role, text string) Message {
	m := Message{Role: role, Text: text, At: time.Now()}
	a.mu.Lock()
	a.history = append(a.history, m)
	a.mu.Unlock()
	return m
}

func (a *Assistant) setStaged(s Staged) {
	a.mu.Lock()
	a.staged = s
	a.mu.Unlock()
}

func (a *Assistant) reply(ctx context.Context, intent Intent) (string, error) {
	if err := wait(ctx, a.delay); err != nil {
		return "", fmt.Errorf("request abandoned: %w", err)
	}

	switch intent {
	case IntentMenu:
		a.setStaged(withMenu(a.Staged(), WeeklyMenu))
		return menuIntro + "\n\n" + menuLines() + "\n\n" + menuQuestion, nil

	case IntentList:
		a.setStaged(withList(WeeklyListName, WeeklyListItems))
		text := listIntro + "\n\n" + itemLines(WeeklyListItems)
		if len(a.shelf.Supermarkets()) > 0 {
			text += "\n\n" + listQuestion
		}
		return text, nil

	case IntentConfirm:
		return a.confirm(ctx)

	default:
		return HelpText, nil
	}
}

func (a *Assistant) confirm(ctx context.Context) (string, error) {
	switch s := a.Staged().(type) {
	case StagedList:
		markets := a.shelf.Supermarkets()
		if len(markets) == 0 {
			return NoSupermarketText, nil
		}
		target := markets[0]
		l, err := a.shelf.ImportList(ctx, s.Name, target.ID, s.Items)
		if err != nil {
			return "", fmt.Errorf("failed to save list %s: %w", s.Name, err)
		}
		a.setStaged(NothingStaged{})
		return savedText(l.Name, target.Name), nil

	case StagedMenu:
		a.setStaged(withList(MenuListName, MenuListItems))
		return MenuListCreatedText, nil

	default:
		return NothingStagedText, nil
	}
}
