package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zimhide/internal/key"
)

func init() {
	keygenCmd.SilenceErrors = true
	keygenCmd.SilenceUsage = true
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a dual Ed25519+X25519 keypair",
	Long: `Generate a new keypair usable both for signing and for asymmetric
encryption, and write it as two armored files.

Examples:
  zimhide keygen -o me
  # writes me.priv and me.pub`,
	RunE: runKeygen,
}

var (
	keygenOutput string
	keygenYes    bool
)

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().StringVarP(&keygenOutput, "output", "o", "", "Output path prefix (writes <prefix>.priv and <prefix>.pub)")
	keygenCmd.Flags().BoolVarP(&keygenYes, "yes", "y", false, "Overwrite existing key files without prompting")

	_ = keygenCmd.MarkFlagRequired("output")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	privPath := keygenOutput + ".priv"
	pubPath := keygenOutput + ".pub"

	for _, p := range []string{privPath, pubPath} {
		if _, err := os.Stat(p); err == nil && !keygenYes {
			if !confirmOverwrite(p) {
				return fmt.Errorf("operation cancelled")
			}
		}
	}

	priv, err := key.Generate()
	if err != nil {
		return fmt.Errorf("generating keypair: %w", err)
	}

	if err := os.WriteFile(privPath, []byte(priv.SerializePrivate()), 0o600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	if err := os.WriteFile(pubPath, []byte(priv.Public.SerializePublic()), 0o644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Generated keypair: %s, %s\n", privPath, pubPath)
	fmt.Fprintf(os.Stderr, "Fingerprint: %s\n", priv.Public.Fingerprint())
	return nil
}
