package gw2

// TokenInfo is the response of v2/tokeninfo.
type TokenInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	Type        string   `json:"type,omitempty"`
	ExpiresAt   string   `json:"expires_at,omitempty"`
	IssuedAt    string   `json:"issued_at,omitempty"`
	URLs        []string `json:"urls,omitempty"`
}

// Account is the subset of v2/account the collector keeps.
type Account struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Age     int      `json:"age"`
	World   int      `json:"world"`
	Guilds  []string `json:"guilds,omitempty"`
	Created string   `json:"created"`
	Access  []string `json:"access,omitempty"`
}

// Slot is one inventory, bank or equipment position. The API returns null for
// empty positions, so raw slot lists are decoded as []*Slot.
type Slot struct {
	ID                 int        `json:"id"`
	Count              int        `json:"count"`
	Charges            int        `json:"charges,omitempty"`
	Skin               int        `json:"skin,omitempty"`
	Upgrades           []int      `json:"upgrades,omitempty"`
	UpgradeSlotIndices []int      `json:"upgrade_slot_indices,omitempty"`
	Infusions          []int      `json:"infusions,omitempty"`
	Dyes               []*int     `json:"dyes,omitempty"`
	Binding            string     `json:"binding,omitempty"`
	BoundTo            string     `json:"bound_to,omitempty"`
	Stats              *ItemStats `json:"stats,omitempty"`

	// equipment only
	Slot     string `json:"slot,omitempty"`
	Location string `json:"location,omitempty"`
}

// ItemStats is the stat selection stored on a selectable-stat item.
type ItemStats struct {
	ID         int            `json:"id"`
	Attributes map[string]int `json:"attributes,omitempty"`
}

// Material is one entry of v2/account/materials.
type Material struct {
	ID       int    `json:"id"`
	Category int    `json:"category,omitempty"`
	Binding  string `json:"binding,omitempty"`
	Count    int    `json:"count"`
}

// CharacterCore is the response of v2/characters/:name/core.
type CharacterCore struct {
	Name         string `json:"name"`
	Race         string `json:"race"`
	Gender       string `json:"gender"`
	Profession   string `json:"profession"`
	Level        int    `json:"level"`
	Guild        string `json:"guild,omitempty"`
	Age          int    `json:"age"`
	LastModified string `json:"last_modified,omitempty"`
	Created      string `json:"created"`
	Deaths       int    `json:"deaths"`
	Title        int    `json:"title,omitempty"`
}

// CharacterInventory is the response of v2/characters/:name/inventory.
// Bags may be null when a bag slot is unused.
type CharacterInventory struct {
	Bags []*Bag `json:"bags"`
}

// Bag is one equipped bag and its slots.
type Bag struct {
	ID        int     `json:"id"`
	Size      int     `json:"size"`
	Inventory []*Slot `json:"inventory"`
}

// EquipmentTab is one entry of v2/characters/:name/equipmenttabs?tabs=all.
type EquipmentTab struct {
	Tab          int           `json:"tab"`
	Name         string        `json:"name"`
	IsActive     bool          `json:"is_active"`
	Equipment    []Slot        `json:"equipment"`
	EquipmentPvP *EquipmentPvP `json:"equipment_pvp,omitempty"`
}

// EquipmentPvP is the PvP build stored on an equipment tab.
type EquipmentPvP struct {
	Amulet int    `json:"amulet"`
	Rune   int    `json:"rune"`
	Sigils []*int `json:"sigils"`
}

// Itemstat is one entry of v2/itemstats.
type Itemstat struct {
	ID         int                 `json:"id"`
	Name       string              `json:"name"`
	Attributes []ItemstatAttribute `json:"attributes"`
}

// ItemstatAttribute is one attribute of an itemstat. Value is scaled per
// account level and is only meaningful with more context.
type ItemstatAttribute struct {
	Attribute  string   `json:"attribute"`
	Multiplier float64  `json:"multiplier"`
	Value      *float64 `json:"value,omitempty"`
}
