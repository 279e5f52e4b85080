package shopping

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// seqIDs hands out predictable ids for tests.
type seqIDs struct {
	prefix string
	n      int
}

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("%s%d", s.prefix, s.n)
}

func sampleLists(t *testing.T) ([]ShoppingList, *seqIDs) {
	t.Helper()
	ids := &seqIDs{prefix: "id-"}
	var lists []ShoppingList
	lists, _ = AddList(lists, "Semana", "m1", ids)
	lists, _ = AddList(lists, "Fiesta", "m2", ids)
	lists, _ = AddList(lists, "Desayunos", "m1", ids)
	lists, _ = AddItemToList(lists, lists[0].ID, "Leche", ids)
	lists, _ = AddItemToList(lists, lists[0].ID, "Pan", ids)
	return lists, ids
}

func TestAddSupermarketAndList_UniqueIDs(t *testing.T) {
	ids := TimeIDs{}
	var markets []Supermarket
	var lists []ShoppingList
	seen := map[string]bool{}

	for i := 0; i < 200; i++ {
		var s Supermarket
		markets, s = AddSupermarket(markets, fmt.Sprintf("Super %d", i), ids)
		if len(markets) != i+1 {
			t.Fatalf("Expected %d supermarkets, got %d", i+1, len(markets))
		}
		if seen[s.ID] {
			t.Fatalf("Duplicate supermarket id %s", s.ID)
		}
		seen[s.ID] = true

		var l ShoppingList
		lists, l = AddList(lists, fmt.Sprintf("Lista %d", i), s.ID, ids)
		if len(lists) != i+1 {
			t.Fatalf("Expected %d lists, got %d", i+1, len(lists))
		}
		if seen[l.ID] {
			t.Fatalf("Duplicate list id %s", l.ID)
		}
		seen[l.ID] = true
		if l.Shared || len(l.Items) != 0 {
			t.Errorf("Expected a new list to be empty and unshared, got %+v", l)
		}
	}
}

func TestAddSupermarket_BlankNameIsNoop(t *testing.T) {
	markets := []Supermarket{{ID: "m1", Name: "Mercadona"}}
	got, s := AddSupermarket(markets, "   ", &seqIDs{})
	if len(got) != 1 || s.ID != "" {
		t.Errorf("Expected blank name to be ignored, got %v / %+v", got, s)
	}
}

func TestUnknownIDsAreNoops(t *testing.T) {
	lists, ids := sampleLists(t)
	before := deepCopy(lists)
	known := lists[0].ID
	knownItem := lists[0].Items[0].ID

	cases := []struct {
		name string
		op   func() ([]ShoppingList, bool)
	}{
		{"AddItemToList", func() ([]ShoppingList, bool) { return AddItemToList(lists, "missing", "Queso", ids) }},
		{"ToggleItemCompletion-list", func() ([]ShoppingList, bool) { return ToggleItemCompletion(lists, "missing", knownItem) }},
		{"ToggleItemCompletion-item", func() ([]ShoppingList, bool) { return ToggleItemCompletion(lists, known, "missing") }},
		{"RemoveItem-list", func() ([]ShoppingList, bool) { return RemoveItem(lists, "missing", knownItem) }},
		{"RemoveItem-item", func() ([]ShoppingList, bool) { return RemoveItem(lists, known, "missing") }},
		{"ToggleListSharing", func() ([]ShoppingList, bool) { return ToggleListSharing(lists, "missing") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := tc.op()
			if changed {
				t.Error("Expected no change for an unknown id")
			}
			if !reflect.DeepEqual(got, before) {
				t.Errorf("Expected collection to be unchanged, got %+v", got)
			}
		})
	}
}

func TestToggleItemCompletion_Involution(t *testing.T) {
	lists, _ := sampleLists(t)
	listID, itemID := lists[0].ID, lists[0].Items[1].ID

	once, changed := ToggleItemCompletion(lists, listID, itemID)
	if !changed {
		t.Fatal("Expected toggle to change the collection")
	}
	if !once[0].Items[1].Completed {
		t.Error("Expected item to be completed after one toggle")
	}
	if once[0].Items[0].Completed {
		t.Error("Expected sibling item to be untouched")
	}

	twice, _ := ToggleItemCompletion(once, listID, itemID)
	if !reflect.DeepEqual(twice, lists) {
		t.Errorf("Expected two toggles to restore the original state, got %+v", twice)
	}
}

func TestOperationsDoNotMutateInput(t *testing.T) {
	lists, ids := sampleLists(t)
	before := deepCopy(lists)

	AddItemToList(lists, lists[0].ID, "Huevos", ids)
	ToggleItemCompletion(lists, lists[0].ID, lists[0].Items[0].ID)
	RemoveItem(lists, lists[0].ID, lists[0].Items[0].ID)
	ToggleListSharing(lists, lists[1].ID)

	if !reflect.DeepEqual(lists, before) {
		t.Errorf("Expected input to be left intact, got %+v", lists)
	}
}

func TestRemoveItem_KeepsOrder(t *testing.T) {
	lists, ids := sampleLists(t)
	lists, _ = AddItemToList(lists, lists[0].ID, "Huevos", ids)

	got, changed := RemoveItem(lists, lists[0].ID, lists[0].Items[1].ID)
	if !changed {
		t.Fatal("Expected removal to change the collection")
	}
	names := []string{}
	for _, it := range got[0].Items {
		names = append(names, it.Name)
	}
	if !reflect.DeepEqual(names, []string{"Leche", "Huevos"}) {
		t.Errorf("Expected [Leche Huevos], got %v", names)
	}
}

func TestToggleListSharing(t *testing.T) {
	lists, _ := sampleLists(t)
	got, changed := ToggleListSharing(lists, lists[1].ID)
	if !changed || !got[1].Shared {
		t.Errorf("Expected list to become shared, got %+v", got[1])
	}
	if got[0].Shared || got[2].Shared {
		t.Error("Expected other lists to stay unshared")
	}
}

func TestFilteredLists(t *testing.T) {
	lists, _ := sampleLists(t)

	t.Run("MatchesInOrder", func(t *testing.T) {
		got := FilteredLists(lists, "m1")
		if len(got) != 2 || got[0].Name != "Semana" || got[1].Name != "Desayunos" {
			t.Errorf("Expected [Semana Desayunos], got %+v", got)
		}
	})

	t.Run("NoneSelected", func(t *testing.T) {
		got := FilteredLists(lists, "")
		if got == nil || len(got) != 0 {
			t.Errorf("Expected an empty non-nil slice, got %#v", got)
		}
	})

	t.Run("UnknownSupermarket", func(t *testing.T) {
		if got := FilteredLists(lists, "nope"); len(got) != 0 {
			t.Errorf("Expected no lists, got %+v", got)
		}
	})
}

func TestImportList(t *testing.T) {
	ids := &seqIDs{}
	lists, l := ImportList(nil, "Lista semanal", "m1", []string{"Pasta", " ", "Arroz"}, ids)
	if len(lists) != 1 {
		t.Fatalf("Expected 1 list, got %d", len(lists))
	}
	if len(l.Items) != 2 || l.Items[0].Name != "Pasta" || l.Items[1].Name != "Arroz" {
		t.Errorf("Expected [Pasta Arroz], got %+v", l.Items)
	}
	for _, it := range l.Items {
		if it.Completed {
			t.Errorf("Expected imported item %q to be pending", it.Name)
		}
	}
	if l.Pending() != 2 {
		t.Errorf("Expected 2 pending items, got %d", l.Pending())
	}
}

func TestRemoveSupermarket(t *testing.T) {
	markets := []Supermarket{{ID: "m1", Name: "Mercadona"}, {ID: "m2", Name: "Lidl"}, {ID: "m3", Name: "Dia"}}
	lists := []ShoppingList{{ID: "l1", Name: "Semana", SupermarketID: "m1"}}

	t.Run("Referenced", func(t *testing.T) {
		_, _, err := RemoveSupermarket(markets, lists, "m1")
		if !errors.Is(err, ErrSupermarketInUse) {
			t.Errorf("Expected ErrSupermarketInUse, got %v", err)
		}
	})

	t.Run("Unreferenced", func(t *testing.T) {
		got, changed, err := RemoveSupermarket(markets, lists, "m2")
		if err != nil || !changed {
			t.Fatalf("Expected removal, got changed=%v err=%v", changed, err)
		}
		if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m3" {
			t.Errorf("Expected [m1 m3], got %+v", got)
		}
		if len(markets) != 3 {
			t.Error("Expected input to be left intact")
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		got, changed, err := RemoveSupermarket(markets, lists, "zz")
		if err != nil || changed || len(got) != 3 {
			t.Errorf("Expected no-op, got %v %v %v", got, changed, err)
		}
	})
}

func deepCopy(lists []ShoppingList) []ShoppingList {
	out := make([]ShoppingList, len(lists))
	for i, l := range lists {
		out[i] = l.clone()
	}
	return out
}
