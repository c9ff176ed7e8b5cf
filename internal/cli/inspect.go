package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"zimhide/internal/engine"
	"zimhide/internal/envelope"
)

func init() {
	inspectCmd.SilenceErrors = true
	inspectCmd.SilenceUsage = true
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Report what a WAV carrier has hidden without decoding it",
	Long: `Locate and parse the envelope header in a WAV carrier, reporting the
stego method, what content is present, and whether encryption or a
signature is in use, without requiring a passphrase or key.

Example:
  zimhide inspect -i out.wav`,
	RunE: runInspect,
}

var (
	inspectInput   string
	inspectBits    int
	inspectChannel string
)

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectInput, "input", "i", "", "Carrier WAV file to inspect")
	inspectCmd.Flags().IntVar(&inspectBits, "bits", 1, "Bits per sample used during LSB embedding")
	inspectCmd.Flags().StringVar(&inspectChannel, "channel", "both", "Stereo channel used during LSB embedding")

	_ = inspectCmd.MarkFlagRequired("input")
}

func runInspect(cmd *cobra.Command, args []string) error {
	channel, err := parseChannel(inspectChannel)
	if err != nil {
		return err
	}

	summary, err := engine.InspectFile(inspectInput, engine.ExtractOptions{
		Bits:    inspectBits,
		Channel: channel,
	})
	if err != nil {
		return err
	}

	methodName := "lsb"
	if summary.Method == envelope.MethodMetadata {
		methodName = "metadata"
	}

	content := "none"
	switch {
	case summary.HasText && summary.HasAudio:
		content = "text+audio"
	case summary.HasText:
		content = "text"
	case summary.HasAudio:
		content = "audio"
	}

	encryption := "none"
	switch summary.Encryption {
	case engine.EncryptionSymmetric:
		encryption = "symmetric"
	case engine.EncryptionAsymmetric:
		encryption = "asymmetric"
	}

	fmt.Printf("location:   %s\n", summary.Location)
	fmt.Printf("method:     %s\n", methodName)
	fmt.Printf("content:    %s\n", content)
	fmt.Printf("encryption: %s\n", encryption)
	fmt.Printf("signed:     %t\n", summary.Signed)
	return nil
}
