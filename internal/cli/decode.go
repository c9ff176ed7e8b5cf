package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zimhide/internal/engine"

	zerr "zimhide/internal/errors"
)

func init() {
	decodeCmd.SilenceErrors = true
	decodeCmd.SilenceUsage = true
}

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Recover text and/or audio hidden in a WAV carrier",
	Long: `Extract hidden text and/or audio from a WAV carrier file.

Examples:
  # Recover a plain (unencrypted) message
  zimhide decode -i out.wav

  # Recover a passphrase-encrypted message
  zimhide decode -i out.wav -p "puzzle"

  # Recover a message encrypted to you
  zimhide decode -i out.wav --priv me.priv

  # Verify a signed message
  zimhide decode -i out.wav --verify-with sender.pub

  # Save recovered audio to a file
  zimhide decode -i out.wav --audio-out recovered.wav`,
	RunE: runDecode,
}

var (
	decInput      string
	decAudioOut   string
	decBits       int
	decChannel    string
	decPassword   string
	decPassStdin  bool
	decPriv       string
	decVerifyWith string
	decQuiet      bool
)

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringVarP(&decInput, "input", "i", "", "Carrier WAV file to extract from")
	decodeCmd.Flags().StringVar(&decAudioOut, "audio-out", "", "Path to write recovered audio, if present")
	decodeCmd.Flags().IntVar(&decBits, "bits", 1, "Bits per sample used during LSB embedding")
	decodeCmd.Flags().StringVar(&decChannel, "channel", "both", "Stereo channel used during LSB embedding")
	decodeCmd.Flags().StringVarP(&decPassword, "password", "p", "", "Passphrase for symmetric decryption")
	decodeCmd.Flags().BoolVarP(&decPassStdin, "password-stdin", "P", false, "Read passphrase from stdin")
	decodeCmd.Flags().StringVar(&decPriv, "priv", "", "Private key file for asymmetric decryption")
	decodeCmd.Flags().StringVar(&decVerifyWith, "verify-with", "", "Public key file to verify a signature with")
	decodeCmd.Flags().BoolVarP(&decQuiet, "quiet", "q", false, "Suppress status output")

	_ = decodeCmd.MarkFlagRequired("input")
}

func runDecode(cmd *cobra.Command, args []string) error {
	channel, err := parseChannel(decChannel)
	if err != nil {
		return err
	}

	opts := engine.ExtractOptions{
		Bits:    decBits,
		Channel: channel,
	}

	switch {
	case decPassStdin:
		pw, err := ReadPasswordFromStdin()
		if err != nil {
			return err
		}
		opts.Passphrase = []byte(pw)
	case decPassword != "":
		opts.Passphrase = []byte(decPassword)
	}

	if decPriv != "" {
		priv, err := loadPrivateKey(decPriv)
		if err != nil {
			return err
		}
		opts.Priv = priv
	}
	if decVerifyWith != "" {
		pub, err := loadPublicKey(decVerifyWith)
		if err != nil {
			return err
		}
		opts.VerifyWith = pub
	}

	result, err := engine.ExtractFromFile(decInput, opts)
	if err != nil {
		if zerr.IsAuthFailure(err) {
			fmt.Fprintln(os.Stderr, "Error: authentication failed")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}

	if result.Text != "" {
		fmt.Println(result.Text)
	}
	if len(result.Audio) > 0 {
		if decAudioOut == "" {
			return fmt.Errorf("recovered audio present but --audio-out was not specified")
		}
		if err := os.WriteFile(decAudioOut, result.Audio, 0o644); err != nil {
			return fmt.Errorf("writing recovered audio: %w", err)
		}
		if !decQuiet {
			fmt.Fprintf(os.Stderr, "Recovered audio written to %s\n", decAudioOut)
		}
	}
	return nil
}
