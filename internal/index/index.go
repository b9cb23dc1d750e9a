// Package index builds read-only lookups over a slim snapshot.
package index

import (
	"gw2vault-api/internal/gw2"
	"gw2vault-api/internal/model"
)

// CharacterInfo is the profile part of a character.
type CharacterInfo struct {
	Name       string `json:"name"`
	Race       string `json:"race"`
	Profession string `json:"profession"`
	Level      int    `json:"level"`
}

// ItemSlot is one stack of an item at a location.
type ItemSlot struct {
	ItemID int             `json:"itemId"`
	Count  int             `json:"count"`
	Item   *model.SlimItem `json:"itemData"`
}

// AccountItems groups account-wide locations.
type AccountItems struct {
	Inventory []ItemSlot `json:"inventory"`
	Bank      []ItemSlot `json:"bank"`
	Materials []ItemSlot `json:"materials"`
}

// EquipmentTab is one equipment tab of a character.
type EquipmentTab struct {
	Tab       int        `json:"tab"`
	Name      string     `json:"name"`
	Active    bool       `json:"active"`
	Equipment []ItemSlot `json:"equipment"`
}

// CharacterItems groups the locations on one character.
type CharacterItems struct {
	CharacterName string         `json:"characterName"`
	Inventory     []ItemSlot     `json:"inventory"`
	EquipmentTabs []EquipmentTab `json:"equipmenttabs"`
}

// IsEmpty reports whether the character holds nothing of the queried type.
func (c *CharacterItems) IsEmpty() bool {
	if len(c.Inventory) > 0 {
		return false
	}
	for _, tab := range c.EquipmentTabs {
		if len(tab.Equipment) > 0 {
			return false
		}
	}
	return true
}

// ItemLocations is the result of a query by item type.
type ItemLocations struct {
	Account    AccountItems     `json:"account"`
	Characters []CharacterItems `json:"characters"`
}

// Index is immutable once built and safe for concurrent use.
type Index struct {
	data       *model.SlimSnapshot
	characters map[string]CharacterInfo
	items      map[int]*model.SlimItem
	itemstats  map[int]*model.SlimItemstat
}

// New builds an index over data. data must not be modified afterwards.
func New(data *model.SlimSnapshot) *Index {
	idx := &Index{
		data:       data,
		characters: make(map[string]CharacterInfo, len(data.Characters)),
		items:      make(map[int]*model.SlimItem, len(data.Items)),
		itemstats:  make(map[int]*model.SlimItemstat, len(data.Itemstats)),
	}

	for _, c := range data.Characters {
		idx.characters[c.Name] = CharacterInfo{
			Name:       c.Name,
			Race:       c.Race,
			Profession: c.Profession,
			Level:      c.Level,
		}
	}
	for i := range data.Items {
		idx.items[data.Items[i].ID] = &data.Items[i]
	}
	for i := range data.Itemstats {
		idx.itemstats[data.Itemstats[i].ID] = &data.Itemstats[i]
	}

	return idx
}

func (idx *Index) CharacterInfo(name string) (CharacterInfo, bool) {
	c, ok := idx.characters[name]
	return c, ok
}

func (idx *Index) Item(id int) (*model.SlimItem, bool) {
	item, ok := idx.items[id]
	return item, ok
}

func (idx *Index) Itemstat(id int) (*model.SlimItemstat, bool) {
	st, ok := idx.itemstats[id]
	return st, ok
}

// ItemsOfType finds every stack of items of type t. Materials are reported
// under Account.Materials when includeMaterials is set. Characters holding
// nothing of the type are left out.
func (idx *Index) ItemsOfType(t gw2.ItemType, includeMaterials bool) *ItemLocations {
	locations := &ItemLocations{
		Account: AccountItems{
			Inventory: idx.match(t, idx.data.Account.Inventory),
			Bank:      idx.match(t, idx.data.Account.Bank),
			Materials: []ItemSlot{},
		},
		Characters: []CharacterItems{},
	}

	if includeMaterials {
		for _, m := range idx.data.Account.Materials {
			if item, ok := idx.items[m.ID]; ok && item.Type == t {
				locations.Account.Materials = append(locations.Account.Materials, ItemSlot{ItemID: m.ID, Count: m.Count, Item: item})
			}
		}
	}

	for _, c := range idx.data.Characters {
		items := CharacterItems{
			CharacterName: c.Name,
			Inventory:     idx.match(t, c.Inventory),
			EquipmentTabs: make([]EquipmentTab, 0, len(c.EquipmentTabs)),
		}
		for _, tab := range c.EquipmentTabs {
			items.EquipmentTabs = append(items.EquipmentTabs, EquipmentTab{
				Tab:       tab.Tab,
				Name:      tab.Name,
				Active:    tab.IsActive,
				Equipment: idx.match(t, tab.Equipment),
			})
		}
		if !items.IsEmpty() {
			locations.Characters = append(locations.Characters, items)
		}
	}

	return locations
}

// GatheringTools finds equipped and stored gathering tools.
func (idx *Index) GatheringTools() *ItemLocations {
	return idx.ItemsOfType(gw2.ItemTypeGathering, false)
}

func (idx *Index) match(t gw2.ItemType, slots []model.SlimSlot) []ItemSlot {
	out := []ItemSlot{}
	for _, slot := range slots {
		if item, ok := idx.items[slot.ID]; ok && item.Type == t {
			out = append(out, ItemSlot{ItemID: slot.ID, Count: slot.Count, Item: item})
		}
	}
	return out
}
