package gw2

import (
	"encoding/json"
	"fmt"
)

// ItemType is the tag of the item union.
type ItemType string

const (
	ItemTypeArmor            ItemType = "Armor"
	ItemTypeBack             ItemType = "Back"
	ItemTypeBag              ItemType = "Bag"
	ItemTypeConsumable       ItemType = "Consumable"
	ItemTypeContainer        ItemType = "Container"
	ItemTypeCraftingMaterial ItemType = "CraftingMaterial"
	ItemTypeGathering        ItemType = "Gathering"
	ItemTypeGizmo            ItemType = "Gizmo"
	ItemTypeJadeTechModule   ItemType = "JadeTechModule"
	ItemTypeKey              ItemType = "Key"
	ItemTypeMiniPet          ItemType = "MiniPet"
	ItemTypePowerCore        ItemType = "PowerCore"
	ItemTypeTool             ItemType = "Tool"
	ItemTypeTrait            ItemType = "Trait"
	ItemTypeTrinket          ItemType = "Trinket"
	ItemTypeTrophy           ItemType = "Trophy"
	ItemTypeUpgradeComponent ItemType = "UpgradeComponent"
	ItemTypeWeapon           ItemType = "Weapon"
)

// ItemTypes lists every known item type.
var ItemTypes = []ItemType{
	ItemTypeArmor,
	ItemTypeBack,
	ItemTypeBag,
	ItemTypeConsumable,
	ItemTypeContainer,
	ItemTypeCraftingMaterial,
	ItemTypeGathering,
	ItemTypeGizmo,
	ItemTypeJadeTechModule,
	ItemTypeKey,
	ItemTypeMiniPet,
	ItemTypePowerCore,
	ItemTypeTool,
	ItemTypeTrait,
	ItemTypeTrinket,
	ItemTypeTrophy,
	ItemTypeUpgradeComponent,
	ItemTypeWeapon,
}

// IsKnown reports whether t is one of ItemTypes.
func (t ItemType) IsKnown() bool {
	for _, known := range ItemTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Item is one entry of v2/items. Details holds the variant payload selected by
// Type and may be nil.
type Item struct {
	ID           int           `json:"id"`
	ChatLink     string        `json:"chat_link,omitempty"`
	Name         string        `json:"name"`
	Icon         string        `json:"icon,omitempty"`
	Description  string        `json:"description,omitempty"`
	Type         ItemType      `json:"type"`
	Rarity       string        `json:"rarity"`
	Level        int           `json:"level"`
	VendorValue  int           `json:"vendor_value,omitempty"`
	DefaultSkin  int           `json:"default_skin,omitempty"`
	Flags        []string      `json:"flags,omitempty"`
	GameTypes    []string      `json:"game_types,omitempty"`
	Restrictions []string      `json:"restrictions,omitempty"`
	UpgradesInto []ItemUpgrade `json:"upgrades_into,omitempty"`
	UpgradesFrom []ItemUpgrade `json:"upgrades_from,omitempty"`
	Details      ItemDetails   `json:"details,omitempty"`
}

// ItemUpgrade references an item reachable through attunement or infusion.
type ItemUpgrade struct {
	Upgrade string `json:"upgrade"`
	ItemID  int    `json:"item_id"`
}

// ItemDetails is implemented by every details variant.
type ItemDetails interface {
	detailsOf() ItemType
}

// InfixUpgrade is the fixed stat block of an item.
type InfixUpgrade struct {
	ID         int              `json:"id"`
	Attributes []InfixAttribute `json:"attributes"`
	Buff       *InfixBuff       `json:"buff,omitempty"`
}

// InfixAttribute is one attribute bonus of an infix upgrade.
type InfixAttribute struct {
	Attribute string  `json:"attribute"`
	Modifier  float64 `json:"modifier"`
}

// InfixBuff is the skill buff attached to an infix upgrade.
type InfixBuff struct {
	SkillID     int    `json:"skill_id"`
	Description string `json:"description,omitempty"`
}

// InfusionSlot is an infusion or enrichment slot.
type InfusionSlot struct {
	Flags  []string `json:"flags"`
	ItemID *int     `json:"item_id,omitempty"`
}

type ArmorDetails struct {
	Type                  string         `json:"type"`
	WeightClass           string         `json:"weight_class"`
	Defense               int            `json:"defense"`
	InfusionSlots         []InfusionSlot `json:"infusion_slots,omitempty"`
	AttributeAdjustment   float64        `json:"attribute_adjustment,omitempty"`
	InfixUpgrade          *InfixUpgrade  `json:"infix_upgrade,omitempty"`
	SuffixItemID          *int           `json:"suffix_item_id,omitempty"`
	SecondarySuffixItemID string         `json:"secondary_suffix_item_id,omitempty"`
	StatChoices           []int          `json:"stat_choices,omitempty"`
}

type BackDetails struct {
	InfusionSlots         []InfusionSlot `json:"infusion_slots,omitempty"`
	AttributeAdjustment   float64        `json:"attribute_adjustment,omitempty"`
	InfixUpgrade          *InfixUpgrade  `json:"infix_upgrade,omitempty"`
	SuffixItemID          *int           `json:"suffix_item_id,omitempty"`
	SecondarySuffixItemID string         `json:"secondary_suffix_item_id,omitempty"`
	StatChoices           []int          `json:"stat_choices,omitempty"`
}

type BagDetails struct {
	Size         int  `json:"size"`
	NoSellOrSort bool `json:"no_sell_or_sort,omitempty"`
}

type ConsumableDetails struct {
	Type           string `json:"type"`
	Description    string `json:"description,omitempty"`
	DurationMs     int    `json:"duration_ms,omitempty"`
	UnlockType     string `json:"unlock_type,omitempty"`
	ColorID        int    `json:"color_id,omitempty"`
	RecipeID       int    `json:"recipe_id,omitempty"`
	ExtraRecipeIDs []int  `json:"extra_recipe_ids,omitempty"`
	GuildUpgradeID int    `json:"guild_upgrade_id,omitempty"`
	ApplyCount     int    `json:"apply_count,omitempty"`
	Name           string `json:"name,omitempty"`
	Icon           string `json:"icon,omitempty"`
	Skins          []int  `json:"skins,omitempty"`
}

type ContainerDetails struct {
	Type string `json:"type"`
}

type GatheringDetails struct {
	Type string `json:"type"`
}

type GizmoDetails struct {
	Type           string `json:"type"`
	GuildUpgradeID int    `json:"guild_upgrade_id,omitempty"`
	VendorIDs      []int  `json:"vendor_ids,omitempty"`
}

type MiniatureDetails struct {
	MinipetID int `json:"minipet_id"`
}

type SalvageKitDetails struct {
	Type    string `json:"type,omitempty"`
	Charges int    `json:"charges"`
}

type TrinketDetails struct {
	Type                  string         `json:"type"`
	InfusionSlots         []InfusionSlot `json:"infusion_slots,omitempty"`
	AttributeAdjustment   float64        `json:"attribute_adjustment,omitempty"`
	InfixUpgrade          *InfixUpgrade  `json:"infix_upgrade,omitempty"`
	SuffixItemID          *int           `json:"suffix_item_id,omitempty"`
	SecondarySuffixItemID string         `json:"secondary_suffix_item_id,omitempty"`
	StatChoices           []int          `json:"stat_choices,omitempty"`
}

type UpgradeComponentDetails struct {
	Type                 string        `json:"type"`
	Flags                []string      `json:"flags,omitempty"`
	InfusionUpgradeFlags []string      `json:"infusion_upgrade_flags,omitempty"`
	Suffix               string        `json:"suffix,omitempty"`
	InfixUpgrade         *InfixUpgrade `json:"infix_upgrade,omitempty"`
	Bonuses              []string      `json:"bonuses,omitempty"`
}

type WeaponDetails struct {
	Type                  string         `json:"type"`
	DamageType            string         `json:"damage_type,omitempty"`
	MinPower              int            `json:"min_power"`
	MaxPower              int            `json:"max_power"`
	Defense               int            `json:"defense"`
	InfusionSlots         []InfusionSlot `json:"infusion_slots,omitempty"`
	AttributeAdjustment   float64        `json:"attribute_adjustment,omitempty"`
	InfixUpgrade          *InfixUpgrade  `json:"infix_upgrade,omitempty"`
	SuffixItemID          *int           `json:"suffix_item_id,omitempty"`
	SecondarySuffixItemID string         `json:"secondary_suffix_item_id,omitempty"`
	StatChoices           []int          `json:"stat_choices,omitempty"`
}

// RawDetails keeps the details of an item type this package does not know.
type RawDetails json.RawMessage

func (*ArmorDetails) detailsOf() ItemType            { return ItemTypeArmor }
func (*BackDetails) detailsOf() ItemType             { return ItemTypeBack }
func (*BagDetails) detailsOf() ItemType              { return ItemTypeBag }
func (*ConsumableDetails) detailsOf() ItemType       { return ItemTypeConsumable }
func (*ContainerDetails) detailsOf() ItemType        { return ItemTypeContainer }
func (*GatheringDetails) detailsOf() ItemType        { return ItemTypeGathering }
func (*GizmoDetails) detailsOf() ItemType            { return ItemTypeGizmo }
func (*MiniatureDetails) detailsOf() ItemType        { return ItemTypeMiniPet }
func (*SalvageKitDetails) detailsOf() ItemType       { return ItemTypeTool }
func (*TrinketDetails) detailsOf() ItemType          { return ItemTypeTrinket }
func (*UpgradeComponentDetails) detailsOf() ItemType { return ItemTypeUpgradeComponent }
func (*WeaponDetails) detailsOf() ItemType           { return ItemTypeWeapon }
func (RawDetails) detailsOf() ItemType               { return "" }

// MarshalJSON writes the raw details unchanged.
func (d RawDetails) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// NewDetails returns an empty details value for t, or nil when the type carries
// no details.
func NewDetails(t ItemType) ItemDetails {
	switch t {
	case ItemTypeArmor:
		return &ArmorDetails{}
	case ItemTypeBack:
		return &BackDetails{}
	case ItemTypeBag:
		return &BagDetails{}
	case ItemTypeConsumable:
		return &ConsumableDetails{}
	case ItemTypeContainer:
		return &ContainerDetails{}
	case ItemTypeGathering:
		return &GatheringDetails{}
	case ItemTypeGizmo:
		return &GizmoDetails{}
	case ItemTypeMiniPet:
		return &MiniatureDetails{}
	case ItemTypeTool:
		return &SalvageKitDetails{}
	case ItemTypeTrinket:
		return &TrinketDetails{}
	case ItemTypeUpgradeComponent:
		return &UpgradeComponentDetails{}
	case ItemTypeWeapon:
		return &WeaponDetails{}
	}
	return nil
}

// InfixUpgradeOf returns the infix upgrade carried by the item's details, if any.
func (i *Item) InfixUpgradeOf() *InfixUpgrade {
	switch d := i.Details.(type) {
	case *ArmorDetails:
		return d.InfixUpgrade
	case *BackDetails:
		return d.InfixUpgrade
	case *TrinketDetails:
		return d.InfixUpgrade
	case *UpgradeComponentDetails:
		return d.InfixUpgrade
	case *WeaponDetails:
		return d.InfixUpgrade
	}
	return nil
}

type itemAlias Item

type itemWire struct {
	itemAlias
	Details json.RawMessage `json:"details,omitempty"`
}

// UnmarshalJSON decodes details into the variant selected by the type tag.
func (i *Item) UnmarshalJSON(data []byte) error {
	var w itemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*i = Item(w.itemAlias)
	i.Details = nil

	if len(w.Details) == 0 || string(w.Details) == "null" {
		return nil
	}

	details := NewDetails(i.Type)
	if details == nil {
		i.Details = RawDetails(w.Details)
		return nil
	}

	if err := json.Unmarshal(w.Details, details); err != nil {
		return fmt.Errorf("item %d: decode %s details: %w", i.ID, i.Type, err)
	}
	i.Details = details
	return nil
}
