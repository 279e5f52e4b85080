package assistant

import "slices"

// Staged is what the assistant generated earlier in the conversation and
// is waiting to be confirmed. It is one of NothingStaged, StagedMenu or
// StagedList.
type Staged interface {
	staged()
}

// NothingStaged means no menu or list is pending.
type NothingStaged struct{}

// StagedMenu is a generated weekly menu.
type StagedMenu struct {
	Days []DayPlan `json:"days"`
}

// StagedList is a generated grocery list. Menu holds a menu requested
// after the list was staged; the list still takes priority on confirmation.
type StagedList struct {
	Name  string    `json:"name"`
	Items []string  `json:"items"`
	Menu  []DayPlan `json:"menu,omitempty"`
}

func (NothingStaged) staged() {}
func (StagedMenu) staged()    {}
func (StagedList) staged()    {}

// withMenu stages a menu. A staged list is kept and only carries the menu along.
func withMenu(s Staged, days []DayPlan) Staged {
	days = slices.Clone(days)
	if l, ok := s.(StagedList); ok {
		l.Menu = days
		return l
	}
	return StagedMenu{Days: days}
}

func withList(name string, items []string) Staged {
	return StagedList{Name: name, Items: slices.Clone(items)}
}

// StagedKind names the variant, for JSON views and logs.
func StagedKind(s Staged) string {
	switch s.(type) {
	case StagedMenu:
		return "menu"
	case StagedList:
		return "list"
	default:
		return "none"
	}
}
