package shopping

import "errors"

var (
	// ErrSupermarketInUse is returned when removing a supermarket that lists still reference.
	ErrSupermarketInUse = errors.New("supermarket is referenced by shopping lists")
	// ErrNoSupermarket is returned when an operation needs at least one supermarket.
	ErrNoSupermarket = errors.New("no supermarket available")
)

// Supermarket is a store the user shops at. It is never mutated after creation.
type Supermarket struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ShoppingItem is a single entry of a shopping list.
type ShoppingItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// ShoppingList groups items for one supermarket.
// SupermarketID is a lookup reference only; the list does not own the supermarket.
type ShoppingList struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	SupermarketID string         `json:"supermarketId"`
	Items         []ShoppingItem `json:"items"`
	Shared        bool           `json:"shared"`
}

// Pending returns the number of items not yet completed.
func (l ShoppingList) Pending() int {
	n := 0
	for _, it := range l.Items {
		if !it.Completed {
			n++
		}
	}
	return n
}

func (l ShoppingList) clone() ShoppingList {
	items := make([]ShoppingItem, len(l.Items))
	copy(items, l.Items)
	l.Items = items
	return l
}
