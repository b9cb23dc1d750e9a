package model

import (
	"time"

	"gw2vault-api/internal/gw2"
)

// Snapshot is the complete result of one collection run. It is never mutated
// after the collector returns it.
type Snapshot struct {
	Account    AccountData     `json:"account"`
	Characters []CharacterData `json:"characters"`
	Items      []gw2.Item      `json:"items"`
	Itemstats  []gw2.Itemstat  `json:"itemstats"`
	FetchedAt  time.Time       `json:"fetchedAt"`
}

// AccountData holds the account-wide storage. Slots reference items by id only.
type AccountData struct {
	Name      string         `json:"name"`
	Inventory []gw2.Slot     `json:"inventory"`
	Bank      []gw2.Slot     `json:"bank"`
	Materials []gw2.Material `json:"materials"`
}

// CharacterData holds one character with its flattened bag contents and its
// non-empty equipment tabs.
type CharacterData struct {
	Name          string             `json:"name"`
	Race          string             `json:"race"`
	Profession    string             `json:"profession"`
	Level         int                `json:"level"`
	Inventory     []gw2.Slot         `json:"inventory"`
	EquipmentTabs []gw2.EquipmentTab `json:"equipmenttabs"`
}
