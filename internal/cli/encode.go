package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"zimhide/internal/engine"
	"zimhide/internal/envelope"
	"zimhide/internal/key"
	"zimhide/internal/stego"
	"zimhide/internal/util"
)

func init() {
	encodeCmd.SilenceErrors = true
	encodeCmd.SilenceUsage = true
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Hide text and/or audio inside a WAV carrier",
	Long: `Embed hidden text and/or audio into a WAV carrier file.

Examples:
  # Hide a short message with defaults (LSB, no encryption)
  zimhide encode -i carrier.wav -o out.wav -t "meet at dawn"

  # Hide a message behind a passphrase
  zimhide encode -i carrier.wav -o out.wav -t "secret" -p "puzzle"

  # Hide a message for one or more recipients
  zimhide encode -i carrier.wav -o out.wav -t "hi" -r alice.pub -r bob.pub

  # Sign the ciphertext with a private key
  zimhide encode -i carrier.wav -o out.wav -t "verified" --sign-with me.priv

  # Use the metadata chunk method instead of LSB
  zimhide encode -i carrier.wav -o out.wav -t "data" --method metadata

  # Hide an audio clip
  zimhide encode -i carrier.wav -o out.wav -a clip.wav`,
	RunE: runEncode,
}

var (
	encInput      string
	encOutput     string
	encText       string
	encAudioFile  string
	encMethod     string
	encBits       int
	encChannel    string
	encPassword   string
	encPassStdin  bool
	encRecipients []string
	encSignWith   string
	encYes        bool
	encQuiet      bool
)

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringVarP(&encInput, "input", "i", "", "Carrier WAV file")
	encodeCmd.Flags().StringVarP(&encOutput, "output", "o", "", "Output WAV file")
	encodeCmd.Flags().StringVarP(&encText, "text", "t", "", "Text to hide")
	encodeCmd.Flags().StringVarP(&encAudioFile, "audio", "a", "", "Audio WAV clip to hide")
	encodeCmd.Flags().StringVar(&encMethod, "method", "lsb", "Stego method: lsb or metadata")
	encodeCmd.Flags().IntVar(&encBits, "bits", stego.DefaultBitsPerSample, "Bits per sample for LSB (1-4)")
	encodeCmd.Flags().StringVar(&encChannel, "channel", "both", "Stereo channel for LSB: both, left, or right")
	encodeCmd.Flags().StringVarP(&encPassword, "password", "p", "", "Passphrase for symmetric encryption")
	encodeCmd.Flags().BoolVarP(&encPassStdin, "password-stdin", "P", false, "Read passphrase from stdin")
	encodeCmd.Flags().StringArrayVarP(&encRecipients, "recipient", "r", nil, "Recipient public key file (repeatable)")
	encodeCmd.Flags().StringVar(&encSignWith, "sign-with", "", "Private key file to sign the ciphertext with")
	encodeCmd.Flags().BoolVarP(&encYes, "yes", "y", false, "Overwrite output file without prompting")
	encodeCmd.Flags().BoolVarP(&encQuiet, "quiet", "q", false, "Suppress status output")

	_ = encodeCmd.MarkFlagRequired("input")
	_ = encodeCmd.MarkFlagRequired("output")
}

func runEncode(cmd *cobra.Command, args []string) error {
	if encText == "" && encAudioFile == "" {
		return fmt.Errorf("at least one of --text or --audio is required")
	}
	if encPassword != "" && len(encRecipients) > 0 {
		return fmt.Errorf("--password and --recipient are mutually exclusive")
	}

	method, err := parseMethod(encMethod)
	if err != nil {
		return err
	}
	channel, err := parseChannel(encChannel)
	if err != nil {
		return err
	}

	if _, err := os.Stat(encOutput); err == nil && !encYes {
		if !confirmOverwrite(encOutput) {
			return fmt.Errorf("operation cancelled")
		}
	}

	opts := engine.EmbedOptions{
		Text:    encText,
		Method:  method,
		Bits:    encBits,
		Channel: channel,
	}

	if encAudioFile != "" {
		audio, err := os.ReadFile(encAudioFile)
		if err != nil {
			return fmt.Errorf("reading audio clip: %w", err)
		}
		opts.Audio = audio
	}

	switch {
	case encPassStdin:
		pw, err := ReadPasswordFromStdin()
		if err != nil {
			return err
		}
		opts.Encryption = engine.EncryptionSymmetric
		opts.Passphrase = []byte(pw)
	case encPassword != "":
		opts.Encryption = engine.EncryptionSymmetric
		opts.Passphrase = []byte(encPassword)
	case len(encRecipients) > 0:
		recipients, err := loadRecipients(encRecipients)
		if err != nil {
			return err
		}
		opts.Encryption = engine.EncryptionAsymmetric
		opts.Recipients = recipients
	}

	if encSignWith != "" {
		priv, err := loadPrivateKey(encSignWith)
		if err != nil {
			return err
		}
		opts.SignWith = priv
	}

	reporter := NewReporter(encQuiet)
	globalReporter = reporter

	if !encQuiet {
		fmt.Fprintf(os.Stderr, "Encoding %s -> %s (method=%s)\n", encInput, encOutput, encMethod)
	}

	if err := engine.EmbedToFile(encInput, encOutput, opts); err != nil {
		reporter.PrintError("%v", err)
		return err
	}

	if info, err := os.Stat(encOutput); err == nil {
		reporter.PrintSuccess("Encoded successfully: %s (%s)", encOutput, util.Sizeify(info.Size()))
	} else {
		reporter.PrintSuccess("Encoded successfully: %s", encOutput)
	}
	return nil
}

func parseMethod(s string) (envelope.Method, error) {
	switch strings.ToLower(s) {
	case "lsb", "":
		return envelope.MethodLSB, nil
	case "metadata":
		return envelope.MethodMetadata, nil
	default:
		return 0, fmt.Errorf("invalid method %q (must be lsb or metadata)", s)
	}
}

func parseChannel(s string) (stego.Channel, error) {
	switch strings.ToLower(s) {
	case "both", "":
		return stego.ChannelBoth, nil
	case "left":
		return stego.ChannelLeft, nil
	case "right":
		return stego.ChannelRight, nil
	default:
		return 0, fmt.Errorf("invalid channel %q (must be both, left, or right)", s)
	}
}

func loadRecipients(paths []string) ([]key.Public, error) {
	out := make([]key.Public, 0, len(paths))
	for _, p := range paths {
		text, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading recipient key %s: %w", p, err)
		}
		pub, err := key.ParsePublic(string(text))
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %s: %w", p, err)
		}
		out = append(out, *pub)
	}
	return out, nil
}

func loadPrivateKey(path string) (*key.Private, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading private key %s: %w", path, err)
	}
	return key.ParsePrivate(string(text))
}

func loadPublicKey(path string) (*key.Public, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading public key %s: %w", path, err)
	}
	return key.ParsePublic(string(text))
}
