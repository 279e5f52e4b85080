package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"shopping-lists/internal/shopping"
	"shopping-lists/internal/storage"
)

var (
	// ErrEmptyName is returned when a supermarket, list or item name is blank.
	ErrEmptyName = errors.New("name must not be empty")
	// ErrUnknownSupermarket is returned when selecting a supermarket that does not exist.
	ErrUnknownSupermarket = errors.New("unknown supermarket")
)

// State is the whole application state. Supermarkets and Lists are
// persisted; Selected lives for the session only.
type State struct {
	Supermarkets []shopping.Supermarket `json:"supermarkets"`
	Lists        []shopping.ShoppingList `json:"lists"`
	Selected     string                  `json:"selectedSupermarket,omitempty"`
}

// App owns the application state and writes both collections back to the
// store after every change. Mutations are serialized; a mutation whose
// write fails is not applied.
type App struct {
	mu    sync.Mutex
	store storage.Store
	ids   shopping.IDGenerator
	state State
}

// Option configures an App.
type Option func(*App)

// WithIDGenerator replaces the default UUIDv7 generator.
func WithIDGenerator(ids shopping.IDGenerator) Option {
	return func(a *App) { a.ids = ids }
}

// New loads the persisted collections from store and returns a ready App.
func New(ctx context.Context, store storage.Store, opts ...Option) (*App, error) {
	a := &App{
		store: store,
		ids:   shopping.TimeIDs{},
	}
	for _, opt := range opts {
		opt(a)
	}

	c, err := storage.LoadCollections(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("failed to load collections: %w", err)
	}
	a.state.Supermarkets = c.Supermarkets
	a.state.Lists = c.Lists
	return a, nil
}

// commit persists next and, once written, makes it the current state.
// Callers hold a.mu.
func (a *App) commit(ctx context.Context, next State) error {
	err := storage.SaveCollections(ctx, a.store, storage.Collections{
		Supermarkets: next.Supermarkets,
		Lists:        next.Lists,
	})
	if err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	a.state = next
	return nil
}

// AddSupermarket registers a supermarket and selects it when nothing is selected yet.
func (a *App) AddSupermarket(ctx context.Context, name string) (shopping.Supermarket, error) {
	if strings.TrimSpace(name) == "" {
		return shopping.Supermarket{}, ErrEmptyName
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.state
	var s shopping.Supermarket
	next.Supermarkets, s = shopping.AddSupermarket(a.state.Supermarkets, name, a.ids)
	if next.Selected == "" {
		next.Selected = s.ID
	}
	if err := a.commit(ctx, next); err != nil {
		return shopping.Supermarket{}, err
	}
	return s, nil
}

// RemoveSupermarket deletes an unreferenced supermarket. If it was selected
// the selection moves to the first remaining supermarket.
func (a *App) RemoveSupermarket(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	markets, changed, err := shopping.RemoveSupermarket(a.state.Supermarkets, a.state.Lists, id)
	if err != nil || !changed {
		return err
	}

	next := a.state
	next.Supermarkets = markets
	if next.Selected == id {
		next.Selected = ""
		if len(markets) > 0 {
			next.Selected = markets[0].ID
		}
	}
	return a.commit(ctx, next)
}

// Select makes id the current supermarket. An empty id clears the selection.
func (a *App) Select(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id != "" {
		if _, ok := shopping.FindSupermarket(a.state.Supermarkets, id); !ok {
			return ErrUnknownSupermarket
		}
	}
	a.state.Selected = id
	return nil
}

// Selected returns the id of the selected supermarket, or "" when none is.
func (a *App) Selected() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Selected
}

// AddList creates an empty list for supermarketID.
func (a *App) AddList(ctx context.Context, name, supermarketID string) (shopping.ShoppingList, error) {
	return a.ImportList(ctx, name, supermarketID, nil)
}

// ImportList creates a list for supermarketID already holding items.
func (a *App) ImportList(ctx context.Context, name, supermarketID string, items []string) (shopping.ShoppingList, error) {
	if strings.TrimSpace(name) == "" {
		return shopping.ShoppingList{}, ErrEmptyName
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.state
	var l shopping.ShoppingList
	next.Lists, l = shopping.ImportList(a.state.Lists, name, supermarketID, items, a.ids)
	if err := a.commit(ctx, next); err != nil {
		return shopping.ShoppingList{}, err
	}
	return l, nil
}

// AddItem appends an item to a list. Unknown lists are ignored.
func (a *App) AddItem(ctx context.Context, listID, itemName string) error {
	if strings.TrimSpace(itemName) == "" {
		return ErrEmptyName
	}
	return a.updateLists(ctx, func(ls []shopping.ShoppingList) ([]shopping.ShoppingList, bool) {
		return shopping.AddItemToList(ls, listID, itemName, a.ids)
	})
}

// ToggleItem flips the completion of an item. Unknown ids are ignored.
func (a *App) ToggleItem(ctx context.Context, listID, itemID string) error {
	return a.updateLists(ctx, func(ls []shopping.ShoppingList) ([]shopping.ShoppingList, bool) {
		return shopping.ToggleItemCompletion(ls, listID, itemID)
	})
}

// RemoveItem deletes an item from a list. Unknown ids are ignored.
func (a *App) RemoveItem(ctx context.Context, listID, itemID string) error {
	return a.updateLists(ctx, func(ls []shopping.ShoppingList) ([]shopping.ShoppingList, bool) {
		return shopping.RemoveItem(ls, listID, itemID)
	})
}

// ToggleSharing flips the shared flag of a list. Unknown ids are ignored.
func (a *App) ToggleSharing(ctx context.Context, listID string) error {
	return a.updateLists(ctx, func(ls []shopping.ShoppingList) ([]shopping.ShoppingList, bool) {
		return shopping.ToggleListSharing(ls, listID)
	})
}

func (a *App) updateLists(ctx context.Context, fn func([]shopping.ShoppingList) ([]shopping.ShoppingList, bool)) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	lists, changed := fn(a.state.Lists)
	if !changed {
		return nil
	}
	next := a.state
	next.Lists = lists
	return a.commit(ctx, next)
}

// Supermarkets returns a copy of the supermarket collection.
func (a *App) Supermarkets() []shopping.Supermarket {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.state.Supermarkets)
}

// Lists returns a copy of every list.
func (a *App) Lists() []shopping.ShoppingList {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.state.Lists)
}

// List returns a single list.
func (a *App) List(id string) (shopping.ShoppingList, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return shopping.FindList(a.state.Lists, id)
}

// FilteredLists returns the lists of supermarketID.
func (a *App) FilteredLists(supermarketID string) []shopping.ShoppingList {
	a.mu.Lock()
	defer a.mu.Unlock()
	return shopping.FilteredLists(a.state.Lists, supermarketID)
}

// SelectedLists returns the lists of the selected supermarket.
func (a *App) SelectedLists() []shopping.ShoppingList {
	a.mu.Lock()
	defer a.mu.Unlock()
	return shopping.FilteredLists(a.state.Lists, a.state.Selected)
}

// Snapshot returns a copy of the whole state.
func (a *App) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return State{
		Supermarkets: slices.Clone(a.state.Supermarkets),
		Lists:        slices.Clone(a.state.Lists),
		Selected:     a.state.Selected,
	}
}
