package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"scholarly/internal/demo"
)

// NewSeedCmd creates the seed command.
func NewSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo papers into the store",
		Long: `Load eight realistic demo papers into the store. Seeding is
idempotent: papers already present are skipped.

Combined with the demo provider this gives a full offline walkthrough:

  scholarly seed
  scholarly papers list
  scholarly digest create --provider demo --name "Demo digest" <paper-id>...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			created, err := demo.Seed(cmd.Context(), store)
			if err != nil {
				return err
			}

			if created == 0 {
				fmt.Println("Demo papers already present, nothing to do.")
				return nil
			}
			fmt.Printf("✅ Seeded %d demo papers\n", created)
			fmt.Println("💡 List them with 'scholarly papers list'")
			return nil
		},
	}

	return cmd
}
