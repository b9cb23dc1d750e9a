// Package transform reduces a collected snapshot to the fields the UI renders.
package transform

import (
	"gw2vault-api/internal/gw2"
	"gw2vault-api/internal/model"
)

// Slim returns the storage shape of s. It never mutates s and returns the same
// output for the same input.
func Slim(s *model.Snapshot) *model.SlimSnapshot {
	if s == nil {
		return nil
	}

	characters := make([]model.SlimCharacter, len(s.Characters))
	for i, c := range s.Characters {
		characters[i] = slimCharacter(c)
	}

	items := make([]model.SlimItem, len(s.Items))
	for i := range s.Items {
		items[i] = SlimItem(&s.Items[i])
	}

	itemstats := make([]model.SlimItemstat, len(s.Itemstats))
	for i, st := range s.Itemstats {
		itemstats[i] = slimItemstat(st)
	}

	return &model.SlimSnapshot{
		Account:    slimAccount(s.Account),
		Characters: characters,
		Items:      items,
		Itemstats:  itemstats,
		FetchedAt:  s.FetchedAt,
	}
}

func slimAccount(a model.AccountData) model.SlimAccount {
	materials := make([]model.SlimMaterial, len(a.Materials))
	for i, m := range a.Materials {
		materials[i] = model.SlimMaterial{ID: m.ID, Binding: m.Binding, Count: m.Count}
	}

	return model.SlimAccount{
		Name:      a.Name,
		Inventory: slimSlots(a.Inventory),
		Bank:      slimSlots(a.Bank),
		Materials: materials,
	}
}

func slimCharacter(c model.CharacterData) model.SlimCharacter {
	tabs := make([]model.SlimEquipmentTab, len(c.EquipmentTabs))
	for i, tab := range c.EquipmentTabs {
		tabs[i] = model.SlimEquipmentTab{
			Tab:       tab.Tab,
			Name:      tab.Name,
			IsActive:  tab.IsActive,
			Equipment: slimSlots(tab.Equipment),
		}
	}

	return model.SlimCharacter{
		Name:          c.Name,
		Race:          c.Race,
		Profession:    c.Profession,
		Level:         c.Level,
		Inventory:     slimSlots(c.Inventory),
		EquipmentTabs: tabs,
	}
}

func slimSlots(slots []gw2.Slot) []model.SlimSlot {
	out := make([]model.SlimSlot, len(slots))
	for i := range slots {
		out[i] = SlimSlot(&slots[i])
	}
	return out
}

// SlimSlot drops the dye selection of a slot.
func SlimSlot(s *gw2.Slot) model.SlimSlot {
	return model.SlimSlot{
		ID:                 s.ID,
		Count:              s.Count,
		Charges:            s.Charges,
		Skin:               s.Skin,
		Upgrades:           nonEmpty(s.Upgrades),
		UpgradeSlotIndices: nonEmpty(s.UpgradeSlotIndices),
		Infusions:          nonEmpty(s.Infusions),
		Binding:            s.Binding,
		BoundTo:            s.BoundTo,
		Stats:              s.Stats,
		Slot:               s.Slot,
		Location:           s.Location,
	}
}

func slimItemstat(st gw2.Itemstat) model.SlimItemstat {
	attributes := make([]model.SlimItemstatAttribute, len(st.Attributes))
	for i, a := range st.Attributes {
		attributes[i] = model.SlimItemstatAttribute{Attribute: a.Attribute, Multiplier: a.Multiplier}
	}
	return model.SlimItemstat{ID: st.ID, Name: st.Name, Attributes: attributes}
}

// SlimItem keeps the display fields of an item and reduces its details
// according to its type.
func SlimItem(item *gw2.Item) model.SlimItem {
	return model.SlimItem{
		ID:           item.ID,
		Name:         item.Name,
		Icon:         item.Icon,
		Type:         item.Type,
		Rarity:       item.Rarity,
		Level:        item.Level,
		DefaultSkin:  item.DefaultSkin,
		Restrictions: nonEmpty(item.Restrictions),
		Details:      SlimDetails(item.Type, item.Details),
	}
}

// SlimDetails reduces details of type t. A nil result means the item carries
// no details.
func SlimDetails(t gw2.ItemType, details gw2.ItemDetails) interface{} {
	if details == nil {
		return nil
	}

	switch t {
	case gw2.ItemTypeArmor:
		if d, ok := details.(*gw2.ArmorDetails); ok {
			defense := d.Defense
			return &model.SlimUpgradeableDetails{
				Type:                  d.Type,
				WeightClass:           d.WeightClass,
				Defense:               &defense,
				InfusionSlots:         nonEmpty(d.InfusionSlots),
				InfixUpgrade:          d.InfixUpgrade,
				SuffixItemID:          d.SuffixItemID,
				SecondarySuffixItemID: d.SecondarySuffixItemID,
				StatChoices:           nonEmpty(d.StatChoices),
			}
		}
	case gw2.ItemTypeBack:
		if d, ok := details.(*gw2.BackDetails); ok {
			return &model.SlimUpgradeableDetails{
				InfusionSlots:         nonEmpty(d.InfusionSlots),
				InfixUpgrade:          d.InfixUpgrade,
				SuffixItemID:          d.SuffixItemID,
				SecondarySuffixItemID: d.SecondarySuffixItemID,
				StatChoices:           nonEmpty(d.StatChoices),
			}
		}
	case gw2.ItemTypeTrinket:
		if d, ok := details.(*gw2.TrinketDetails); ok {
			return &model.SlimUpgradeableDetails{
				Type:                  d.Type,
				InfusionSlots:         nonEmpty(d.InfusionSlots),
				InfixUpgrade:          d.InfixUpgrade,
				SuffixItemID:          d.SuffixItemID,
				SecondarySuffixItemID: d.SecondarySuffixItemID,
				StatChoices:           nonEmpty(d.StatChoices),
			}
		}
	case gw2.ItemTypeWeapon:
		if d, ok := details.(*gw2.WeaponDetails); ok {
			minPower, maxPower, defense := d.MinPower, d.MaxPower, d.Defense
			return &model.SlimUpgradeableDetails{
				Type:                  d.Type,
				MinPower:              &minPower,
				MaxPower:              &maxPower,
				Defense:               &defense,
				InfusionSlots:         nonEmpty(d.InfusionSlots),
				InfixUpgrade:          d.InfixUpgrade,
				SuffixItemID:          d.SuffixItemID,
				SecondarySuffixItemID: d.SecondarySuffixItemID,
				StatChoices:           nonEmpty(d.StatChoices),
			}
		}
	case gw2.ItemTypeBag:
		if d, ok := details.(*gw2.BagDetails); ok {
			return &model.SlimBagDetails{Size: d.Size}
		}
	case gw2.ItemTypeConsumable:
		if d, ok := details.(*gw2.ConsumableDetails); ok {
			return &model.SlimConsumableDetails{
				Type:       d.Type,
				UnlockType: d.UnlockType,
				Name:       d.Name,
				Icon:       d.Icon,
			}
		}
	case gw2.ItemTypeGizmo:
		if d, ok := details.(*gw2.GizmoDetails); ok {
			return &model.SlimGizmoDetails{Type: d.Type}
		}
	case gw2.ItemTypeTool:
		if d, ok := details.(*gw2.SalvageKitDetails); ok {
			return &model.SlimSalvageKitDetails{Charges: d.Charges}
		}
	case gw2.ItemTypeUpgradeComponent:
		if d, ok := details.(*gw2.UpgradeComponentDetails); ok {
			return &model.SlimUpgradeComponentDetails{
				Type:                 d.Type,
				InfusionUpgradeFlags: nonEmpty(d.InfusionUpgradeFlags),
				Suffix:               d.Suffix,
				InfixUpgrade:         d.InfixUpgrade,
				Bonuses:              nonEmpty(d.Bonuses),
			}
		}
	case gw2.ItemTypeContainer, gw2.ItemTypeGathering, gw2.ItemTypeMiniPet:
		return details
	case gw2.ItemTypeCraftingMaterial, gw2.ItemTypeJadeTechModule, gw2.ItemTypeKey,
		gw2.ItemTypePowerCore, gw2.ItemTypeTrait, gw2.ItemTypeTrophy:
		// detail-less on the wire; anything present is passed along untouched
		return details
	}

	// unknown type or a variant that does not match its tag
	return details
}

func nonEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}

// Handled reports whether t has an explicit rule in SlimDetails.
func Handled(t gw2.ItemType) bool {
	switch t {
	case gw2.ItemTypeArmor, gw2.ItemTypeBack, gw2.ItemTypeTrinket, gw2.ItemTypeWeapon,
		gw2.ItemTypeBag, gw2.ItemTypeConsumable, gw2.ItemTypeGizmo, gw2.ItemTypeTool,
		gw2.ItemTypeUpgradeComponent, gw2.ItemTypeContainer, gw2.ItemTypeGathering,
		gw2.ItemTypeMiniPet, gw2.ItemTypeCraftingMaterial, gw2.ItemTypeJadeTechModule,
		gw2.ItemTypeKey, gw2.ItemTypePowerCore, gw2.ItemTypeTrait, gw2.ItemTypeTrophy:
		return true
	}
	return false
}
