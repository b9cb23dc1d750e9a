package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gw2vault-api/internal/gw2"
	"gw2vault-api/internal/service"
)

func init() {
	validateCmd := &cobra.Command{
		Use:     "validate",
		Aliases: []string{"v"},
		Short:   "Check an API key",
		Long:    `Check that an API key is valid and has the account, inventories and characters permissions.`,
		RunE:    runValidate,
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	key, err := resolveKey()
	if err != nil {
		return err
	}

	validation := service.NewValidationService(func(k string) service.Verifier {
		return newClient(k)
	}, nil, 0)

	result := validation.Validate(cmd.Context(), key)
	if !result.Valid {
		color.New(color.FgRed, color.Bold).Fprint(os.Stdout, "✗ ")
		fmt.Println(result.Message)
		if len(result.Missing) > 0 {
			color.New(color.FgYellow).Printf("  missing: %s\n", strings.Join(result.Missing, ", "))
		}
		return fmt.Errorf("invalid API key")
	}

	color.New(color.FgGreen, color.Bold).Fprint(os.Stdout, "✓ ")
	fmt.Print("API key is valid")
	if result.AccountName != "" {
		fmt.Printf(" (%s)", color.CyanString(result.AccountName))
	}
	fmt.Println()

	if len(result.Permissions) > 0 {
		required := make(map[string]bool, len(gw2.RequiredPermissions))
		for _, p := range gw2.RequiredPermissions {
			required[p] = true
		}
		parts := make([]string, len(result.Permissions))
		for i, p := range result.Permissions {
			if required[p] {
				parts[i] = color.GreenString(p)
			} else {
				parts[i] = color.HiBlackString(p)
			}
		}
		fmt.Printf("  permissions: %s\n", strings.Join(parts, ", "))
	}

	return nil
}
