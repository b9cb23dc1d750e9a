package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gw2vault-api/internal/codec"
	"gw2vault-api/internal/gw2"
	"gw2vault-api/internal/index"
	"gw2vault-api/internal/model"
)

var (
	locationsIn        string
	locationsMaterials bool
)

func init() {
	locationsCmd := &cobra.Command{
		Use:     "locations [item type]",
		Aliases: []string{"l"},
		Short:   "List where items of a type are stored",
		Long: `Read a slim snapshot written by "collect" and list every stack of items of
the given type, e.g. "Gathering" or "UpgradeComponent".`,
		Args: cobra.ExactArgs(1),
		RunE: runLocations,
	}

	locationsCmd.Flags().StringVarP(&locationsIn, "in", "i", "", "Snapshot file (default stdin)")
	locationsCmd.Flags().BoolVar(&locationsMaterials, "materials", true, "Include material storage")

	rootCmd.AddCommand(locationsCmd)
}

func runLocations(cmd *cobra.Command, args []string) error {
	itemType := gw2.ItemType(args[0])
	if !itemType.IsKnown() {
		names := make([]string, len(gw2.ItemTypes))
		for i, t := range gw2.ItemTypes {
			names[i] = string(t)
		}
		return fmt.Errorf("unknown item type %q, expected one of: %s", args[0], strings.Join(names, ", "))
	}

	raw, err := readInput(locationsIn)
	if err != nil {
		return err
	}

	var snap *model.SlimSnapshot
	if strings.HasSuffix(locationsIn, ".zst") {
		snap, err = codec.Decode(raw)
	} else {
		snap = &model.SlimSnapshot{}
		err = json.Unmarshal(raw, snap)
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	locations := index.New(snap).ItemsOfType(itemType, locationsMaterials)
	printLocations(locations)
	return nil
}

func printLocations(l *index.ItemLocations) {
	heading := color.New(color.FgCyan, color.Bold)
	sub := color.New(color.FgYellow)

	heading.Println("Account")
	printSlots("inventory", l.Account.Inventory, sub)
	printSlots("bank", l.Account.Bank, sub)
	printSlots("materials", l.Account.Materials, sub)

	for _, c := range l.Characters {
		heading.Println(c.CharacterName)
		printSlots("inventory", c.Inventory, sub)
		for _, tab := range c.EquipmentTabs {
			name := fmt.Sprintf("tab %d", tab.Tab)
			if tab.Name != "" {
				name += " " + tab.Name
			}
			if tab.Active {
				name += " (active)"
			}
			printSlots(name, tab.Equipment, sub)
		}
	}
}

func printSlots(label string, slots []index.ItemSlot, c *color.Color) {
	if len(slots) == 0 {
		return
	}
	c.Printf("  %s\n", label)
	for _, s := range slots {
		name := fmt.Sprintf("#%d", s.ItemID)
		if s.Item != nil && s.Item.Name != "" {
			name = s.Item.Name
		}
		fmt.Printf("    %4d × %s\n", s.Count, name)
	}
}
