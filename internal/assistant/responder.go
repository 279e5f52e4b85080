package assistant

import (
	"context"
	"strings"
	"time"
)

// Intent is what the classifier made of an input.
type Intent string

const (
	IntentMenu    Intent = "menu"
	IntentList    Intent = "list"
	IntentConfirm Intent = "confirm"
	IntentHelp    Intent = "help"
)

var (
	menuKeywords    = []string{"menu", "menú", "comida"}
	listKeywords    = []string{"lista", "compra"}
	confirmKeywords = []string{"sí", "si", "guardar"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Classify matches the lowercased input against the keyword groups in
// order: menu, list, confirmation (only when withConfirm is set), help.
// The first group that matches wins.
func Classify(input string, withConfirm bool) Intent {
	s := strings.ToLower(input)
	switch {
	case containsAny(s, menuKeywords):
		return IntentMenu
	case containsAny(s, listKeywords):
		return IntentList
	case withConfirm && containsAny(s, confirmKeywords):
		return IntentConfirm
	default:
		return IntentHelp
	}
}

// Respond is the stateless reply used by the text-generation endpoint.
// It keeps nothing between calls.
func Respond(prompt string) string {
	switch Classify(prompt, false) {
	case IntentMenu:
		return MenuText()
	case IntentList:
		return ListText()
	default:
		return HelpText
	}
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Endpoint is the stateless responder with its simulated latency.
type Endpoint struct {
	Delay    time.Duration
	Recorder Recorder
}

// Respond waits Delay and answers prompt.
func (e *Endpoint) Respond(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	if err := wait(ctx, e.Delay); err != nil {
		return "", err
	}
	intent := Classify(prompt, false)
	resp := Respond(prompt)
	record(e.Recorder, "endpoint", intent, time.Since(start))
	return resp, nil
}
