package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set by main.go
var Version = "dev"

// rootCmd is the base command when called without subcommands
var rootCmd = &cobra.Command{
	Use:   "zimhide",
	Short: "Steganographic audio embedding tool",
	Long: `zimhide hides text and audio inside uncompressed WAV files:
  - LSB embedding into PCM samples, or a custom metadata chunk
  - Argon2id + ChaCha20-Poly1305 passphrase encryption
  - X25519 + XChaCha20-Poly1305 multi-recipient key wrap
  - Ed25519 detached signatures over the ciphertext`,
	Version: Version,
}

// Global reporter for signal handling
var globalReporter *Reporter

// Execute runs the CLI application.
// Returns true if a known subcommand was run, false if no arguments or an
// unknown first argument were given (main then prints usage and exits).
func Execute(version string) bool {
	Version = version
	rootCmd.Version = version

	// Check if we're in CLI mode (have subcommands)
	if len(os.Args) < 2 {
		return false
	}

	// Check if first arg is a known subcommand
	cmd := os.Args[1]
	switch cmd {
	case "encode", "decode", "play", "keygen", "inspect", "completions",
		"help", "--help", "-h", "version", "--version", "-v":
	default:
		return false
	}

	// Set up signal handling for graceful cancellation
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if globalReporter != nil {
			globalReporter.Cancel()
			fmt.Fprintln(os.Stderr, "\nCancelling operation...")
		} else {
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	return true
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
