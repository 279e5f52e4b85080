package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"shopping-lists/internal/shopping"
)

// Record names of the two persisted collections.
const (
	KeySupermarkets  = "supermarkets"
	KeyShoppingLists = "shoppingLists"
)

// Collections is the persisted part of the application state.
type Collections struct {
	Supermarkets []shopping.Supermarket
	Lists        []shopping.ShoppingList
}

// LoadCollections reads both records. Absent records are empty collections.
// Records that do not parse are logged and treated as empty too, so a bad
// record never prevents start-up. Only store failures are returned.
func LoadCollections(ctx context.Context, s Store) (Collections, error) {
	var c Collections

	markets, err := loadRecord[shopping.Supermarket](ctx, s, KeySupermarkets)
	if err != nil {
		return Collections{}, err
	}
	lists, err := loadRecord[shopping.ShoppingList](ctx, s, KeyShoppingLists)
	if err != nil {
		return Collections{}, err
	}

	c.Supermarkets = markets
	c.Lists = lists
	for i := range c.Lists {
		if c.Lists[i].Items == nil {
			c.Lists[i].Items = []shopping.ShoppingItem{}
		}
	}
	return c, nil
}

func loadRecord[T any](ctx context.Context, s Store, name string) ([]T, error) {
	raw, ok, err := s.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	out := []T{}
	if !ok {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Printf("Warning: stored %s record is corrupt, starting empty: %v", name, err)
		return []T{}, nil
	}
	if out == nil {
		// A stored "null".
		out = []T{}
	}
	return out, nil
}

// SaveCollections serializes and writes both records, all or nothing.
// A BatchStore writes them in one batch. On any other Store a failed write
// puts the records already written back to their previous values.
func SaveCollections(ctx context.Context, s Store, c Collections) error {
	markets, err := encodeRecord(KeySupermarkets, c.Supermarkets)
	if err != nil {
		return err
	}
	lists, err := encodeRecord(KeyShoppingLists, c.Lists)
	if err != nil {
		return err
	}
	records := []Record{markets, lists}

	if b, ok := s.(BatchStore); ok {
		if err := b.SetAll(ctx, records); err != nil {
			return fmt.Errorf("failed to write collections: %w", err)
		}
		return nil
	}
	return setInOrder(ctx, s, records)
}

func setInOrder(ctx context.Context, s Store, records []Record) error {
	var previous []Record
	for _, r := range records {
		old, ok, err := s.Get(ctx, r.Name)
		if err != nil {
			restore(ctx, s, previous)
			return fmt.Errorf("failed to read %s: %w", r.Name, err)
		}
		if !ok {
			// An empty array loads exactly like an absent record.
			old = "[]"
		}
		if err := s.Set(ctx, r.Name, r.Value); err != nil {
			restore(ctx, s, previous)
			return fmt.Errorf("failed to write %s: %w", r.Name, err)
		}
		previous = append(previous, Record{Name: r.Name, Value: old})
	}
	return nil
}

func restore(ctx context.Context, s Store, previous []Record) {
	for _, r := range previous {
		if err := s.Set(ctx, r.Name, r.Value); err != nil {
			log.Printf("Warning: failed to restore %s after a failed write: %v", r.Name, err)
		}
	}
}

func encodeRecord[T any](name string, v []T) (Record, error) {
	if v == nil {
		v = []T{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return Record{Name: name, Value: string(data)}, nil
}
