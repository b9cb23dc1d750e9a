package collector

import "gw2vault-api/internal/gw2"

// FilterSlots drops empty (null) slots. Zero-count slots are kept.
func FilterSlots(slots []*gw2.Slot) []gw2.Slot {
	out := make([]gw2.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot != nil {
			out = append(out, *slot)
		}
	}
	return out
}

// FilterMaterials drops materials the account holds none of.
func FilterMaterials(materials []gw2.Material) []gw2.Material {
	out := make([]gw2.Material, 0, len(materials))
	for _, material := range materials {
		if material.Count > 0 {
			out = append(out, material)
		}
	}
	return out
}

// FlattenBags merges the slots of all bags into one list without empty slots.
func FlattenBags(bags []*gw2.Bag) []gw2.Slot {
	out := []gw2.Slot{}
	for _, bag := range bags {
		if bag == nil {
			continue
		}
		out = append(out, FilterSlots(bag.Inventory)...)
	}
	return out
}

// FilterEquipmentTabs drops tabs without equipped items.
func FilterEquipmentTabs(tabs []gw2.EquipmentTab) []gw2.EquipmentTab {
	out := make([]gw2.EquipmentTab, 0, len(tabs))
	for _, tab := range tabs {
		if len(tab.Equipment) > 0 {
			out = append(out, tab)
		}
	}
	return out
}
