package assistant

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestConversation_JSON(t *testing.T) {
	tests := []struct {
		name   string
		staged Staged
	}{
		{"none", NothingStaged{}},
		{"menu", StagedMenu{Days: WeeklyMenu[:2]}},
		{"list", StagedList{Name: "Semana", Items: []string{"Leche"}, Menu: WeeklyMenu[:1]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Conversation{History: []Message{{Role: RoleUser, Text: "hola"}}, Staged: tt.staged}
			data, err := json.Marshal(in)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if !strings.Contains(string(data), `"kind":"`+tt.name+`"`) {
				t.Errorf("Expected the kind tag in %s", data)
			}

			var out Conversation
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !reflect.DeepEqual(out.Staged, tt.staged) || len(out.History) != 1 || out.History[0].Text != "hola" {
				t.Errorf("Expected %+v, got %+v", in, out)
			}
		})
	}

	var c Conversation
	if err := json.Unmarshal([]byte(`{"history":[],"staged":{"kind":"recipe"}}`), &c); err == nil {
		t.Error("Expected an error for an unknown kind")
	}
}

func TestWithConversation_ResumesStagedList(t *testing.T) {
	ctx := context.Background()
	shelf := &fakeShelf{}
	first := New(shelf)
	send(t, first, "lista de la compra")

	data, err := json.Marshal(first.Conversation())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var saved Conversation
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	resumed := New(shelf, WithConversation(saved))
	if got := len(resumed.History()); got != 3 {
		t.Errorf("Expected the 3 earlier messages, got %d", got)
	}
	if StagedKind(resumed.Staged()) != "list" {
		t.Fatalf("Expected the staged list to survive, got %s", StagedKind(resumed.Staged()))
	}

	msg, err := resumed.Send(ctx, "sí")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if msg.Text != NoSupermarketText {
		t.Errorf("Expected %q, got %q", NoSupermarketText, msg.Text)
	}

	fresh := New(shelf, WithConversation(Conversation{}))
	if h := fresh.History(); len(h) != 1 || h[0].Text != Greeting {
		t.Errorf("Expected an empty conversation to keep the greeting, got %+v", h)
	}
}
