package collector

import (
	"gw2vault-api/internal/gw2"
	"gw2vault-api/internal/model"
)

// IDSet is a set of ids that remembers insertion order, so chunking is stable
// across runs over the same data.
type IDSet struct {
	seen  map[int]struct{}
	order []int
}

// NewIDSet creates an empty set.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[int]struct{})}
}

// Add inserts id unless it is already present.
func (s *IDSet) Add(id int) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
}

// Has reports whether id is in the set.
func (s *IDSet) Has(id int) bool {
	_, ok := s.seen[id]
	return ok
}

// Len returns the number of distinct ids.
func (s *IDSet) Len() int {
	return len(s.order)
}

// IDs returns the ids in insertion order.
func (s *IDSet) IDs() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// ItemIDs returns every distinct item id referenced by the account storage and
// the characters' bags and equipment. Materials with a zero count are ignored.
func ItemIDs(account *model.AccountData, characters []model.CharacterData) []int {
	ids := NewIDSet()

	if account != nil {
		for _, slot := range account.Inventory {
			ids.Add(slot.ID)
		}
		for _, slot := range account.Bank {
			ids.Add(slot.ID)
		}
		for _, material := range account.Materials {
			if material.Count > 0 {
				ids.Add(material.ID)
			}
		}
	}

	for _, character := range characters {
		for _, slot := range character.Inventory {
			ids.Add(slot.ID)
		}
		for _, tab := range character.EquipmentTabs {
			for _, slot := range tab.Equipment {
				ids.Add(slot.ID)
			}
		}
	}

	return ids.IDs()
}

// ItemstatIDs returns every distinct itemstat id referenced by the infix
// upgrades of items and by the stat selections on owned gear.
func ItemstatIDs(items []gw2.Item, account *model.AccountData, characters []model.CharacterData) []int {
	ids := NewIDSet()

	for i := range items {
		if infix := items[i].InfixUpgradeOf(); infix != nil && infix.ID != 0 {
			ids.Add(infix.ID)
		}
	}

	addStats := func(slot *gw2.Slot) {
		if slot.Stats != nil && slot.Stats.ID != 0 {
			ids.Add(slot.Stats.ID)
		}
	}

	if account != nil {
		for i := range account.Bank {
			addStats(&account.Bank[i])
		}
	}

	for _, character := range characters {
		for i := range character.Inventory {
			addStats(&character.Inventory[i])
		}
		for _, tab := range character.EquipmentTabs {
			for i := range tab.Equipment {
				addStats(&tab.Equipment[i])
			}
		}
	}

	return ids.IDs()
}
