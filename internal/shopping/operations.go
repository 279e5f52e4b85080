package shopping

import (
	"slices"
	"strings"
)

// The functions in this file never modify the slices they receive. Every
// change produces a fresh collection, and the bool result tells the caller
// whether there is anything new to persist. When nothing changes the input
// slice is returned as is.

// AddSupermarket appends a new supermarket named name.
func AddSupermarket(markets []Supermarket, name string, ids IDGenerator) ([]Supermarket, Supermarket) {
	name = strings.TrimSpace(name)
	if name == "" {
		return markets, Supermarket{}
	}
	s := Supermarket{ID: ids.NewID(), Name: name}
	return append(slices.Clip(markets), s), s
}

// RemoveSupermarket drops the supermarket with the given id. Supermarkets
// still referenced by a list cannot be removed.
func RemoveSupermarket(markets []Supermarket, lists []ShoppingList, id string) ([]Supermarket, bool, error) {
	idx := slices.IndexFunc(markets, func(s Supermarket) bool { return s.ID == id })
	if idx < 0 {
		return markets, false, nil
	}
	for _, l := range lists {
		if l.SupermarketID == id {
			return markets, false, ErrSupermarketInUse
		}
	}
	next := make([]Supermarket, 0, len(markets)-1)
	next = append(next, markets[:idx]...)
	next = append(next, markets[idx+1:]...)
	return next, true, nil
}

// FindSupermarket looks a supermarket up by id.
func FindSupermarket(markets []Supermarket, id string) (Supermarket, bool) {
	for _, s := range markets {
		if s.ID == id {
			return s, true
		}
	}
	return Supermarket{}, false
}

// AddList appends an empty, unshared list. supermarketID is not validated.
func AddList(lists []ShoppingList, name, supermarketID string, ids IDGenerator) ([]ShoppingList, ShoppingList) {
	return ImportList(lists, name, supermarketID, nil, ids)
}

// ImportList appends a list pre-filled with uncompleted items, in order.
// Blank item names are skipped.
func ImportList(lists []ShoppingList, name, supermarketID string, items []string, ids IDGenerator) ([]ShoppingList, ShoppingList) {
	name = strings.TrimSpace(name)
	if name == "" {
		return lists, ShoppingList{}
	}
	l := ShoppingList{
		ID:            ids.NewID(),
		Name:          name,
		SupermarketID: supermarketID,
		Items:         []ShoppingItem{},
	}
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		l.Items = append(l.Items, ShoppingItem{ID: ids.NewID(), Name: it})
	}
	return append(slices.Clip(lists), l), l
}

// FindList looks a list up by id.
func FindList(lists []ShoppingList, id string) (ShoppingList, bool) {
	for _, l := range lists {
		if l.ID == id {
			return l, true
		}
	}
	return ShoppingList{}, false
}

// AddItemToList appends an uncompleted item to the list listID.
func AddItemToList(lists []ShoppingList, listID, itemName string, ids IDGenerator) ([]ShoppingList, bool) {
	itemName = strings.TrimSpace(itemName)
	if itemName == "" {
		return lists, false
	}
	return updateList(lists, listID, func(l ShoppingList) (ShoppingList, bool) {
		l = l.clone()
		l.Items = append(l.Items, ShoppingItem{ID: ids.NewID(), Name: itemName})
		return l, true
	})
}

// ToggleItemCompletion flips Completed on the matching item only.
func ToggleItemCompletion(lists []ShoppingList, listID, itemID string) ([]ShoppingList, bool) {
	return updateList(lists, listID, func(l ShoppingList) (ShoppingList, bool) {
		idx := slices.IndexFunc(l.Items, func(it ShoppingItem) bool { return it.ID == itemID })
		if idx < 0 {
			return l, false
		}
		l = l.clone()
		l.Items[idx].Completed = !l.Items[idx].Completed
		return l, true
	})
}

// RemoveItem drops an item from its list, keeping the order of the rest.
func RemoveItem(lists []ShoppingList, listID, itemID string) ([]ShoppingList, bool) {
	return updateList(lists, listID, func(l ShoppingList) (ShoppingList, bool) {
		idx := slices.IndexFunc(l.Items, func(it ShoppingItem) bool { return it.ID == itemID })
		if idx < 0 {
			return l, false
		}
		items := make([]ShoppingItem, 0, len(l.Items)-1)
		items = append(items, l.Items[:idx]...)
		l.Items = append(items, l.Items[idx+1:]...)
		return l, true
	})
}

// ToggleListSharing flips Shared on the list listID.
func ToggleListSharing(lists []ShoppingList, listID string) ([]ShoppingList, bool) {
	return updateList(lists, listID, func(l ShoppingList) (ShoppingList, bool) {
		l.Shared = !l.Shared
		return l, true
	})
}

// FilteredLists returns the lists of one supermarket in their original
// order. An empty supermarketID means nothing is selected.
func FilteredLists(lists []ShoppingList, supermarketID string) []ShoppingList {
	out := []ShoppingList{}
	if supermarketID == "" {
		return out
	}
	for _, l := range lists {
		if l.SupermarketID == supermarketID {
			out = append(out, l)
		}
	}
	return out
}

func updateList(lists []ShoppingList, listID string, fn func(ShoppingList) (ShoppingList, bool)) ([]ShoppingList, bool) {
	idx := slices.IndexFunc(lists, func(l ShoppingList) bool { return l.ID == listID })
	if idx < 0 {
		return lists, false
	}
	updated, ok := fn(lists[idx])
	if !ok {
		return lists, false
	}
	next := make([]ShoppingList, len(lists))
	copy(next, lists)
	next[idx] = updated
	return next, true
}
