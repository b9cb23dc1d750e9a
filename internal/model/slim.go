package model

import (
	"time"

	"gw2vault-api/internal/gw2"
)

// SlimSnapshot is the storage shape of a Snapshot. Its JSON decodes back into
// a Snapshot.
type SlimSnapshot struct {
	Account    SlimAccount     `json:"account"`
	Characters []SlimCharacter `json:"characters"`
	Items      []SlimItem      `json:"items"`
	Itemstats  []SlimItemstat  `json:"itemstats"`
	FetchedAt  time.Time       `json:"fetchedAt"`
}

type SlimAccount struct {
	Name      string         `json:"name"`
	Inventory []SlimSlot     `json:"inventory"`
	Bank      []SlimSlot     `json:"bank"`
	Materials []SlimMaterial `json:"materials"`
}

// SlimSlot is a gw2.Slot without dyes.
type SlimSlot struct {
	ID                 int            `json:"id"`
	Count              int            `json:"count"`
	Charges            int            `json:"charges,omitempty"`
	Skin               int            `json:"skin,omitempty"`
	Upgrades           []int          `json:"upgrades,omitempty"`
	UpgradeSlotIndices []int          `json:"upgrade_slot_indices,omitempty"`
	Infusions          []int          `json:"infusions,omitempty"`
	Binding            string         `json:"binding,omitempty"`
	BoundTo            string         `json:"bound_to,omitempty"`
	Stats              *gw2.ItemStats `json:"stats,omitempty"`
	Slot               string         `json:"slot,omitempty"`
	Location           string         `json:"location,omitempty"`
}

// SlimMaterial is a gw2.Material without its category.
type SlimMaterial struct {
	ID      int    `json:"id"`
	Binding string `json:"binding,omitempty"`
	Count   int    `json:"count"`
}

type SlimCharacter struct {
	Name          string             `json:"name"`
	Race          string             `json:"race"`
	Profession    string             `json:"profession"`
	Level         int                `json:"level"`
	Inventory     []SlimSlot         `json:"inventory"`
	EquipmentTabs []SlimEquipmentTab `json:"equipmenttabs"`
}

// SlimEquipmentTab is a gw2.EquipmentTab without the PvP build.
type SlimEquipmentTab struct {
	Tab       int        `json:"tab"`
	Name      string     `json:"name"`
	IsActive  bool       `json:"is_active"`
	Equipment []SlimSlot `json:"equipment"`
}

// SlimItem keeps the item fields used for display.
type SlimItem struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Icon         string       `json:"icon,omitempty"`
	Type         gw2.ItemType `json:"type"`
	Rarity       string       `json:"rarity"`
	Level        int          `json:"level"`
	DefaultSkin  int          `json:"default_skin,omitempty"`
	Restrictions []string     `json:"restrictions,omitempty"`
	Details      interface{}  `json:"details,omitempty"`
}

type SlimItemstat struct {
	ID         int                     `json:"id"`
	Name       string                  `json:"name"`
	Attributes []SlimItemstatAttribute `json:"attributes"`
}

type SlimItemstatAttribute struct {
	Attribute  string  `json:"attribute"`
	Multiplier float64 `json:"multiplier"`
}

// SlimUpgradeableDetails is the reduced details of Armor, Back, Trinket and
// Weapon items. Fields a variant does not have stay empty and are omitted.
type SlimUpgradeableDetails struct {
	Type                  string             `json:"type,omitempty"`
	WeightClass           string             `json:"weight_class,omitempty"`
	Defense               *int               `json:"defense,omitempty"`
	MinPower              *int               `json:"min_power,omitempty"`
	MaxPower              *int               `json:"max_power,omitempty"`
	InfusionSlots         []gw2.InfusionSlot `json:"infusion_slots,omitempty"`
	InfixUpgrade          *gw2.InfixUpgrade  `json:"infix_upgrade,omitempty"`
	SuffixItemID          *int               `json:"suffix_item_id,omitempty"`
	SecondarySuffixItemID string             `json:"secondary_suffix_item_id,omitempty"`
	StatChoices           []int              `json:"stat_choices,omitempty"`
}

type SlimBagDetails struct {
	Size int `json:"size"`
}

type SlimConsumableDetails struct {
	Type       string `json:"type"`
	UnlockType string `json:"unlock_type,omitempty"`
	Name       string `json:"name,omitempty"`
	Icon       string `json:"icon,omitempty"`
}

type SlimGizmoDetails struct {
	Type string `json:"type"`
}

type SlimSalvageKitDetails struct {
	Charges int `json:"charges"`
}

type SlimUpgradeComponentDetails struct {
	Type                 string            `json:"type"`
	InfusionUpgradeFlags []string          `json:"infusion_upgrade_flags,omitempty"`
	Suffix               string            `json:"suffix,omitempty"`
	InfixUpgrade         *gw2.InfixUpgrade `json:"infix_upgrade,omitempty"`
	Bonuses              []string          `json:"bonuses,omitempty"`
}
