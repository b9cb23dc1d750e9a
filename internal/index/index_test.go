package index

import (
	"testing"

	"gw2vault-api/internal/gw2"
	"gw2vault-api/internal/model"
)

func testSnapshot() *model.SlimSnapshot {
	return &model.SlimSnapshot{
		Account: model.SlimAccount{
			Name:      "Tester.1234",
			Inventory: []model.SlimSlot{{ID: 100, Count: 1}},
			Bank:      []model.SlimSlot{{ID: 200, Count: 3}, {ID: 100, Count: 1}},
			Materials: []model.SlimMaterial{{ID: 300, Count: 250}, {ID: 100, Count: 2}},
		},
		Characters: []model.SlimCharacter{
			{
				Name: "Alpha", Race: "Norn", Profession: "Ranger", Level: 80,
				Inventory: []model.SlimSlot{{ID: 200, Count: 1}},
				EquipmentTabs: []model.SlimEquipmentTab{
					{Tab: 1, Name: "Open World", IsActive: true, Equipment: []model.SlimSlot{{ID: 100, Count: 1, Slot: "Sickle"}}},
					{Tab: 2, Name: "Raid", Equipment: []model.SlimSlot{{ID: 200, Count: 1}}},
				},
			},
			{
				Name: "Beta", Race: "Asura", Profession: "Engineer", Level: 12,
				Inventory: []model.SlimSlot{{ID: 200, Count: 1}},
			},
		},
		Items: []model.SlimItem{
			{ID: 100, Name: "Sickle", Type: gw2.ItemTypeGathering},
			{ID: 200, Name: "Sword", Type: gw2.ItemTypeWeapon},
			{ID: 300, Name: "Ore", Type: gw2.ItemTypeCraftingMaterial},
		},
		Itemstats: []model.SlimItemstat{{ID: 161, Name: "Berserker's"}},
	}
}

func TestLookups(t *testing.T) {
	idx := New(testSnapshot())

	info, ok := idx.CharacterInfo("Beta")
	if !ok || info.Profession != "Engineer" || info.Level != 12 {
		t.Errorf("CharacterInfo(Beta) = %+v, %v", info, ok)
	}
	if _, ok := idx.CharacterInfo("Gamma"); ok {
		t.Error("unknown character found")
	}

	if item, ok := idx.Item(300); !ok || item.Name != "Ore" {
		t.Errorf("Item(300) = %+v, %v", item, ok)
	}
	if _, ok := idx.Item(999); ok {
		t.Error("unknown item found")
	}
	if st, ok := idx.Itemstat(161); !ok || st.Name != "Berserker's" {
		t.Errorf("Itemstat(161) = %+v, %v", st, ok)
	}
}

func TestItemsOfTypeMaterials(t *testing.T) {
	idx := New(testSnapshot())

	locs := idx.ItemsOfType(gw2.ItemTypeGathering, true)

	if len(locs.Account.Materials) != 1 || locs.Account.Materials[0].Count != 2 {
		t.Errorf("materials = %+v, want the material stack of item 100", locs.Account.Materials)
	}
	if len(locs.Account.Bank) != 1 || locs.Account.Bank[0].ItemID != 100 {
		t.Errorf("bank = %+v, materials must not leak into the bank", locs.Account.Bank)
	}
	if len(locs.Account.Inventory) != 1 {
		t.Errorf("inventory = %+v", locs.Account.Inventory)
	}
	if locs.Account.Inventory[0].Item == nil || locs.Account.Inventory[0].Item.Name != "Sickle" {
		t.Error("slot should carry the resolved item")
	}
}

func TestGatheringTools(t *testing.T) {
	idx := New(testSnapshot())

	locs := idx.GatheringTools()

	if len(locs.Account.Materials) != 0 {
		t.Errorf("materials = %+v, want none", locs.Account.Materials)
	}
	if len(locs.Characters) != 1 || locs.Characters[0].CharacterName != "Alpha" {
		t.Fatalf("characters = %+v, want only Alpha", locs.Characters)
	}

	alpha := locs.Characters[0]
	if len(alpha.Inventory) != 0 {
		t.Errorf("inventory = %+v", alpha.Inventory)
	}
	if len(alpha.EquipmentTabs) != 2 {
		t.Fatalf("tabs = %+v, want every tab listed", alpha.EquipmentTabs)
	}
	if !alpha.EquipmentTabs[0].Active || len(alpha.EquipmentTabs[0].Equipment) != 1 {
		t.Errorf("tab 1 = %+v", alpha.EquipmentTabs[0])
	}
	if len(alpha.EquipmentTabs[1].Equipment) != 0 {
		t.Errorf("tab 2 = %+v", alpha.EquipmentTabs[1])
	}
}

func TestItemsOfTypeCharacters(t *testing.T) {
	idx := New(testSnapshot())

	locs := idx.ItemsOfType(gw2.ItemTypeWeapon, true)

	if len(locs.Characters) != 2 {
		t.Fatalf("characters = %+v", locs.Characters)
	}
	if locs.Characters[1].CharacterName != "Beta" || locs.Characters[1].IsEmpty() {
		t.Errorf("Beta = %+v", locs.Characters[1])
	}
	if len(locs.Account.Bank) != 1 || locs.Account.Bank[0].Count != 3 {
		t.Errorf("bank = %+v", locs.Account.Bank)
	}

	none := idx.ItemsOfType(gw2.ItemTypeTrophy, true)
	if len(none.Characters) != 0 || len(none.Account.Bank) != 0 || none.Account.Materials == nil {
		t.Errorf("empty query = %+v", none)
	}
}
