package assistant

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Conversation is the part of an Assistant that can outlive the process:
// the messages so far and what is waiting for confirmation.
type Conversation struct {
	History []Message
	Staged  Staged
}

type conversationJSON struct {
	History []Message  `json:"history"`
	Staged  stagedJSON `json:"staged"`
}

// stagedJSON tags the Staged variant so it can be decoded again.
type stagedJSON struct {
	Kind string      `json:"kind"`
	Menu *StagedMenu `json:"menu,omitempty"`
	List *StagedList `json:"list,omitempty"`
}

// MarshalJSON encodes the staged variant under a "kind" tag.
func (c Conversation) MarshalJSON() ([]byte, error) {
	out := conversationJSON{History: c.History}
	if out.History == nil {
		out.History = []Message{}
	}
	out.Staged.Kind = StagedKind(c.Staged)
	switch s := c.Staged.(type) {
	case StagedMenu:
		out.Staged.Menu = &s
	case StagedList:
		out.Staged.List = &s
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes what MarshalJSON produced.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	var in conversationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var staged Staged = NothingStaged{}
	switch in.Staged.Kind {
	case "menu":
		if in.Staged.Menu == nil {
			return fmt.Errorf("staged menu without content")
		}
		staged = *in.Staged.Menu
	case "list":
		if in.Staged.List == nil {
			return fmt.Errorf("staged list without content")
		}
		staged = *in.Staged.List
	case "none", "":
	default:
		return fmt.Errorf("unknown staged kind %q", in.Staged.Kind)
	}

	c.History = in.History
	c.Staged = staged
	return nil
}

// WithConversation resumes an earlier conversation instead of greeting.
// An empty history keeps the greeting.
func WithConversation(c Conversation) Option {
	return func(a *Assistant) {
		if len(c.History) > 0 {
			a.history = slices.Clone(c.History)
		}
		if c.Staged != nil {
			a.staged = c.Staged
		}
	}
}

// Conversation returns a copy of the history and the staged result.
func (a *Assistant) Conversation() Conversation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Conversation{History: slices.Clone(a.history), Staged: a.staged}
}
