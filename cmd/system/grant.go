package system

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Alijeyrad/medchart/config"
	"github.com/Alijeyrad/medchart/pkg/authorize"
)

func NewGrantCommand() *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "grant <user-id> <role>",
		Short: "Grant (or revoke) a clinic role for a user",
		Long: fmt.Sprintf(`Grant a role to a user by id.

Roles: %s`, strings.Join(roleAliasNames(), ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}
			role, ok := authorize.RoleAliases[args[1]]
			if !ok {
				return fmt.Errorf("unknown role %q", args[1])
			}

			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			auth, cleanup, err := openAuthorization(cfg)
			if err != nil {
				return err
			}
			defer cleanup(context.Background())

			ctx := context.Background()
			if revoke {
				if err := authorize.RemoveRole(ctx, auth, userID.String(), role); err != nil {
					return fmt.Errorf("failed to revoke role: %w", err)
				}
				fmt.Printf("Revoked %s from %s.\n", authorize.RoleDisplayNames[role], userID)
				return nil
			}

			if err := authorize.AssignRole(ctx, auth, userID.String(), role); err != nil {
				return fmt.Errorf("failed to grant role: %w", err)
			}
			fmt.Printf("Granted %s to %s.\n", authorize.RoleDisplayNames[role], userID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "Revoke the role instead of granting it")

	return cmd
}

func roleAliasNames() []string {
	names := lo.Keys(authorize.RoleAliases)
	sort.Strings(names)
	return names
}
