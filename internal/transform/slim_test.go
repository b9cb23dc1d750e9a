package transform

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gw2vault-api/internal/gw2"
	"gw2vault-api/internal/model"
)

const snapshotFixture = `{
  "account": {
    "name": "Tester.1234",
    "inventory": [{"id": 19721, "count": 250, "binding": "Account"}],
    "bank": [
      {"id": 30684, "count": 1, "skin": 4678, "upgrades": [24615], "infusions": [],
       "dyes": [1, null, 3, 4], "binding": "Account", "stats": {"id": 584, "attributes": {"Power": 126, "Precision": 90}}},
      {"id": 70001, "count": 0}
    ],
    "materials": [{"id": 19700, "category": 5, "count": 12}]
  },
  "characters": [{
    "name": "Alpha",
    "race": "Norn",
    "profession": "Ranger",
    "level": 80,
    "inventory": [{"id": 23038, "count": 1, "charges": 25}],
    "equipmenttabs": [{
      "tab": 1, "name": "Open World", "is_active": true,
      "equipment": [{"id": 48932, "count": 1, "slot": "Sickle", "location": "Equipped"}],
      "equipment_pvp": {"amulet": 1, "rune": 2, "sigils": [null, 5]}
    }]
  }],
  "items": [
    {"id": 30684, "chat_link": "[&AgHcdwAA]", "name": "Frostfang", "icon": "https://render/frostfang.png",
     "description": "Legendary axe", "type": "Weapon", "rarity": "Legendary", "level": 80, "vendor_value": 100000,
     "default_skin": 4678, "flags": ["HideSuffix"], "game_types": ["Pvp", "Wvw"], "restrictions": [],
     "upgrades_into": [{"upgrade": "Attunement", "item_id": 1}],
     "details": {"type": "Axe", "damage_type": "Ice", "min_power": 1034, "max_power": 1166, "defense": 0,
                 "infusion_slots": [{"flags": ["Infusion"]}], "attribute_adjustment": 717.6,
                 "stat_choices": [584, 1077], "secondary_suffix_item_id": ""}},
    {"id": 48932, "name": "Sickle", "type": "Gathering", "rarity": "Rare", "level": 0, "details": {"type": "Foraging"}},
    {"id": 23038, "name": "Kit", "type": "Tool", "rarity": "Fine", "level": 0, "description": "Salvage",
     "details": {"type": "Salvage", "charges": 25}},
    {"id": 19721, "name": "Ecto", "type": "CraftingMaterial", "rarity": "Exotic", "level": 0, "vendor_value": 96},
    {"id": 19700, "name": "Ore", "type": "CraftingMaterial", "rarity": "Basic", "level": 0},
    {"id": 70001, "name": "Helm", "type": "Armor", "rarity": "Ascended", "level": 80,
     "details": {"type": "Helm", "weight_class": "Heavy", "defense": 127, "attribute_adjustment": 179.4,
                 "infix_upgrade": {"id": 161, "attributes": [{"attribute": "Power", "modifier": 63}]}}},
    {"id": 8932, "name": "Bag", "type": "Bag", "rarity": "Rare", "level": 0, "details": {"size": 20, "no_sell_or_sort": true}},
    {"id": 9000, "name": "Dye", "type": "Consumable", "rarity": "Rare", "level": 0,
     "details": {"type": "Unlock", "unlock_type": "Dye", "color_id": 5, "description": "unlock", "name": "Abyss", "icon": "i.png"}},
    {"id": 9001, "name": "Sigil", "type": "UpgradeComponent", "rarity": "Exotic", "level": 60,
     "details": {"type": "Sigil", "flags": ["Axe"], "infusion_upgrade_flags": [], "suffix": "of Force"}},
    {"id": 9002, "name": "Relic", "type": "Relic", "rarity": "Exotic", "level": 80, "details": {"bonus": "x"}}
  ],
  "itemstats": [
    {"id": 584, "name": "Berserker's", "attributes": [{"attribute": "Power", "multiplier": 0.35, "value": 0}]},
    {"id": 161, "name": "Berserker's", "attributes": [{"attribute": "Power", "multiplier": 0.35}]}
  ],
  "fetchedAt": "2024-05-01T12:00:00Z"
}`

func loadFixture(t *testing.T) *model.Snapshot {
	t.Helper()
	var s model.Snapshot
	if err := json.Unmarshal([]byte(snapshotFixture), &s); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return &s
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestSlimDropsFields(t *testing.T) {
	out := string(mustMarshal(t, Slim(loadFixture(t))))

	for _, dropped := range []string{
		`"dyes"`,
		`"category"`,
		`"equipment_pvp"`,
		`"chat_link"`,
		`"description"`,
		`"HideSuffix"`,
		`"game_types"`,
		`"vendor_value"`,
		`"upgrades_into"`,
		`"attribute_adjustment"`,
		`"damage_type"`,
		`"value"`,
		`"no_sell_or_sort"`,
		`"color_id"`,
		`"restrictions"`,
		`"infusions"`,
		`"infusion_upgrade_flags"`,
	} {
		if strings.Contains(out, dropped) {
			t.Errorf("slim output still contains %s", dropped)
		}
	}

	for _, kept := range []string{
		`"default_skin":4678`,
		`"min_power":1034`,
		`"max_power":1166`,
		`"defense":0`,
		`"defense":127`,
		`"stat_choices":[584,1077]`,
		`"weight_class":"Heavy"`,
		`"charges":25`,
		`"size":20`,
		`"unlock_type":"Dye"`,
		`"suffix":"of Force"`,
		`"type":"Foraging"`,
		`"bonus":"x"`,
		`"upgrades":[24615]`,
		`"stats":{"id":584`,
	} {
		if !strings.Contains(out, kept) {
			t.Errorf("slim output lost %s", kept)
		}
	}
}

func TestSlimKeepsShape(t *testing.T) {
	in := loadFixture(t)
	slim := Slim(in)

	if len(slim.Account.Bank) != 2 || slim.Account.Bank[1].Count != 0 {
		t.Errorf("zero-count slot should survive: %+v", slim.Account.Bank)
	}
	if len(slim.Items) != len(in.Items) || len(slim.Itemstats) != len(in.Itemstats) {
		t.Errorf("collections changed length")
	}
	if !slim.FetchedAt.Equal(in.FetchedAt) {
		t.Errorf("FetchedAt = %v", slim.FetchedAt)
	}

	weapon, ok := slim.Items[0].Details.(*model.SlimUpgradeableDetails)
	if !ok {
		t.Fatalf("weapon details = %T", slim.Items[0].Details)
	}
	if weapon.Type != "Axe" || weapon.WeightClass != "" {
		t.Errorf("weapon details = %+v", weapon)
	}

	if slim.Items[3].Details != nil {
		t.Errorf("crafting material details = %#v", slim.Items[3].Details)
	}
}

func TestSlimDoesNotMutateInput(t *testing.T) {
	in := loadFixture(t)
	before := mustMarshal(t, in)
	Slim(in)
	if after := mustMarshal(t, in); !bytes.Equal(before, after) {
		t.Error("Slim modified its input")
	}
}

func TestSlimDeterministic(t *testing.T) {
	first := mustMarshal(t, Slim(loadFixture(t)))
	second := mustMarshal(t, Slim(loadFixture(t)))
	if !bytes.Equal(first, second) {
		t.Error("Slim is not deterministic")
	}
}

func TestSlimIdempotent(t *testing.T) {
	once := mustMarshal(t, Slim(loadFixture(t)))

	var reread model.Snapshot
	if err := json.Unmarshal(once, &reread); err != nil {
		t.Fatalf("slim output does not decode as a snapshot: %v", err)
	}
	twice := mustMarshal(t, Slim(&reread))

	if !bytes.Equal(once, twice) {
		t.Errorf("slimming twice changed the output:\n%s\n%s", once, twice)
	}
}

func TestSlimNil(t *testing.T) {
	if Slim(nil) != nil {
		t.Error("Slim(nil) should be nil")
	}
}

func TestEveryItemTypeHandled(t *testing.T) {
	for _, typ := range gw2.ItemTypes {
		if !Handled(typ) {
			t.Errorf("item type %s has no slimming rule", typ)
		}
	}
	if Handled("Relic") {
		t.Error("unknown types should fall through")
	}
}

func TestSlimDetailsPerType(t *testing.T) {
	suffix := 24615
	tests := []struct {
		name    string
		typ     gw2.ItemType
		details gw2.ItemDetails
		want    string
	}{
		{
			name:    "armor",
			typ:     gw2.ItemTypeArmor,
			details: &gw2.ArmorDetails{Type: "Coat", WeightClass: "Light", Defense: 363, AttributeAdjustment: 1.5, SuffixItemID: &suffix},
			want:    `{"type":"Coat","weight_class":"Light","defense":363,"suffix_item_id":24615}`,
		},
		{
			name:    "back",
			typ:     gw2.ItemTypeBack,
			details: &gw2.BackDetails{AttributeAdjustment: 2, StatChoices: []int{}},
			want:    `{}`,
		},
		{
			name:    "trinket",
			typ:     gw2.ItemTypeTrinket,
			details: &gw2.TrinketDetails{Type: "Ring", InfixUpgrade: &gw2.InfixUpgrade{ID: 161, Attributes: []gw2.InfixAttribute{}}},
			want:    `{"type":"Ring","infix_upgrade":{"id":161,"attributes":[]}}`,
		},
		{
			name:    "gizmo",
			typ:     gw2.ItemTypeGizmo,
			details: &gw2.GizmoDetails{Type: "Default", VendorIDs: []int{1}},
			want:    `{"type":"Default"}`,
		},
		{
			name:    "minipet",
			typ:     gw2.ItemTypeMiniPet,
			details: &gw2.MiniatureDetails{MinipetID: 42},
			want:    `{"minipet_id":42}`,
		},
		{
			name:    "container",
			typ:     gw2.ItemTypeContainer,
			details: &gw2.ContainerDetails{Type: "GiftBox"},
			want:    `{"type":"GiftBox"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(mustMarshal(t, SlimDetails(tt.typ, tt.details)))
			if got != tt.want {
				t.Errorf("SlimDetails = %s, want %s", got, tt.want)
			}
		})
	}

	if SlimDetails(gw2.ItemTypeWeapon, nil) != nil {
		t.Error("nil details should stay nil")
	}
}
