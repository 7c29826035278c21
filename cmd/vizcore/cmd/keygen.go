package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/solatis/vizcore/internal/core/auth"
	"github.com/solatis/vizcore/internal/core/config"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen --workspace NAME",
	Short: "Generate an API key for a workspace",
	Long: `Generates an API key signed with one of the VZ_HMAC_SECRET secrets.

The key is printed once and never stored. Add the printed auth.keys entry
to the service configuration to accept it.`,
	Args: cobra.NoArgs,
	RunE: runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().String("workspace", "", "workspace the key grants access to")
	keygenCmd.Flags().String("secret-id", "", "secret to sign with (required when several are configured)")
	_ = keygenCmd.MarkFlagRequired("workspace")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	workspace, _ := cmd.Flags().GetString("workspace")
	secretID, _ := cmd.Flags().GetString("secret-id")

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if secretID == "" {
		if len(secrets) != 1 {
			ids := make([]string, 0, len(secrets))
			for id := range secrets {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			return fmt.Errorf("--secret-id required: %d secrets configured %v", len(secrets), ids)
		}
		for id := range secrets {
			secretID = id
		}
	}
	secret, ok := secrets[secretID]
	if !ok {
		return fmt.Errorf("secret %s not configured", secretID)
	}

	key, hash, err := auth.GenerateAPIKey(secretID, secret)
	if err != nil {
		return err
	}

	entry, err := yaml.Marshal(map[string]any{
		"auth": map[string]any{
			"keys": []map[string]any{{"workspace": workspace, "hash": hash}},
		},
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "API key (shown once): %s\n\n", key)
	fmt.Fprintf(out, "Config entry:\n%s", entry)
	return nil
}
