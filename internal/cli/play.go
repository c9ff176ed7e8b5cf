package cli

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"zimhide/internal/engine"
)

func init() {
	playCmd.SilenceErrors = true
	playCmd.SilenceUsage = true
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Extract hidden audio and play it",
	Long: `Extract a hidden audio clip from a WAV carrier and play it through the
system's default audio player.

Examples:
  zimhide play -i out.wav
  zimhide play -i out.wav -p "puzzle"`,
	RunE: runPlay,
}

var (
	playInput      string
	playBits       int
	playChannel    string
	playPassword   string
	playPassStdin  bool
	playPriv       string
	playVerifyWith string
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVarP(&playInput, "input", "i", "", "Carrier WAV file to extract audio from")
	playCmd.Flags().IntVar(&playBits, "bits", 1, "Bits per sample used during LSB embedding")
	playCmd.Flags().StringVar(&playChannel, "channel", "both", "Stereo channel used during LSB embedding")
	playCmd.Flags().StringVarP(&playPassword, "password", "p", "", "Passphrase for symmetric decryption")
	playCmd.Flags().BoolVarP(&playPassStdin, "password-stdin", "P", false, "Read passphrase from stdin")
	playCmd.Flags().StringVar(&playPriv, "priv", "", "Private key file for asymmetric decryption")
	playCmd.Flags().StringVar(&playVerifyWith, "verify-with", "", "Public key file to verify a signature with")

	_ = playCmd.MarkFlagRequired("input")
}

func runPlay(cmd *cobra.Command, args []string) error {
	channel, err := parseChannel(playChannel)
	if err != nil {
		return err
	}

	opts := engine.ExtractOptions{Bits: playBits, Channel: channel}
	switch {
	case playPassStdin:
		pw, err := ReadPasswordFromStdin()
		if err != nil {
			return err
		}
		opts.Passphrase = []byte(pw)
	case playPassword != "":
		opts.Passphrase = []byte(playPassword)
	}
	if playPriv != "" {
		priv, err := loadPrivateKey(playPriv)
		if err != nil {
			return err
		}
		opts.Priv = priv
	}
	if playVerifyWith != "" {
		pub, err := loadPublicKey(playVerifyWith)
		if err != nil {
			return err
		}
		opts.VerifyWith = pub
	}

	result, err := engine.ExtractFromFile(playInput, opts)
	if err != nil {
		return err
	}
	if len(result.Audio) == 0 {
		return fmt.Errorf("no hidden audio found in %s", playInput)
	}

	tmp, err := os.CreateTemp("", "zimhide-play-*.wav")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(result.Audio); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	player, playerArgs, err := systemPlayer(tmpPath)
	if err != nil {
		return err
	}

	child := exec.Command(player, playerArgs...)
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr
	return child.Run()
}

// systemPlayer picks a reasonable default audio player for the running
// platform. The user can always write the clip with decode --audio-out
// and open that file in their own player instead.
func systemPlayer(path string) (string, []string, error) {
	switch runtime.GOOS {
	case "darwin":
		return "afplay", []string{path}, nil
	case "linux":
		return "aplay", []string{path}, nil
	case "windows":
		return "powershell", []string{"-c", fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync();", path)}, nil
	default:
		return "", nil, fmt.Errorf("no default audio player known for %s", runtime.GOOS)
	}
}
