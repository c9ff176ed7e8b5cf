// Package engine is the orchestrator (C11): it glues the envelope,
// payload, crypto, and stego codecs together into the embed and extract
// pipelines, and performs atomic carrier file writes.
package engine

import (
	"os"
	"path/filepath"

	zerr "zimhide/internal/errors"
	"zimhide/internal/envelope"
	"zimhide/internal/key"
	"zimhide/internal/log"
	"zimhide/internal/opus"
	"zimhide/internal/payload"
	"zimhide/internal/sign"
	"zimhide/internal/stego"
	"zimhide/internal/wav"
)

// Encryption selects how (or whether) the payload is encrypted before
// the envelope header is attached.
type Encryption int

const (
	EncryptionNone Encryption = iota
	EncryptionSymmetric
	EncryptionAsymmetric
)

// EmbedOptions describes one embed operation end to end.
type EmbedOptions struct {
	Text  string
	Audio []byte // raw WAV bytes of the embedded audio clip, or nil

	Method  envelope.Method
	Bits    int
	Channel stego.Channel

	Encryption Encryption
	Passphrase []byte
	Recipients []key.Public

	SignWith *key.Private
}

// ExtractOptions describes one extract operation.
type ExtractOptions struct {
	Bits    int
	Channel stego.Channel

	Passphrase []byte
	Priv       *key.Private

	VerifyWith *key.Public
}

// Result is the recovered payload plus the metadata inspect needs.
type Result struct {
	Text       string
	Audio      []byte
	Method     envelope.Method
	Encryption Encryption
	Signed     bool
	Verified   bool
}

// Embed runs the full embed pipeline over in-memory carrier bytes and
// returns the resulting WAV bytes. Ordering follows the dependency chain
// fixed by the orchestrator's contract: compress audio, compose payload,
// encrypt, sign, attach header, write into the carrier.
func Embed(carrierWAV []byte, opts EmbedOptions) ([]byte, error) {
	if opts.Text == "" && len(opts.Audio) == 0 {
		return nil, zerr.ErrMissingInput
	}
	if opts.Encryption == EncryptionSymmetric && len(opts.Recipients) > 0 {
		return nil, zerr.ErrMutuallyExclusiveOptions
	}
	if opts.Encryption == EncryptionAsymmetric && len(opts.Passphrase) > 0 {
		return nil, zerr.ErrMutuallyExclusiveOptions
	}

	log.Debug("embed starting", log.Int("carrier_bytes", len(carrierWAV)), log.Bool("has_audio", len(opts.Audio) > 0))

	var audioSub []byte
	if len(opts.Audio) > 0 {
		var err error
		audioSub, err = opus.Encode(opts.Audio)
		if err != nil {
			log.Error("audio compression failed", log.Err(err))
			return nil, err
		}
	}

	plain := payload.Encode(payload.Payload{Text: opts.Text, Audio: audioSub})

	var flags byte
	if opts.Text != "" {
		flags |= envelope.FlagTextPresent
	}
	if len(audioSub) > 0 {
		flags |= envelope.FlagAudioPresent
	}

	var ciphertext []byte
	var err error
	switch opts.Encryption {
	case EncryptionNone:
		ciphertext = plain
	case EncryptionSymmetric:
		flags |= envelope.FlagSymmetric
		ciphertext, err = envelope.EncryptSymmetric(opts.Passphrase, plain)
	case EncryptionAsymmetric:
		flags |= envelope.FlagAsymmetric
		ciphertext, err = envelope.EncryptAsymmetric(opts.Recipients, plain)
	default:
		return nil, zerr.NewValidationError("encryption", "unknown encryption mode")
	}
	if err != nil {
		return nil, err
	}

	var signature []byte
	if opts.SignWith != nil {
		flags |= envelope.FlagSigned
		signature = sign.Sign(opts.SignWith.Sign, ciphertext)
	}

	header, err := envelope.Assemble(envelope.Header{
		Flags:     flags,
		Method:    opts.Method,
		Payload:   ciphertext,
		Signature: signature,
	})
	if err != nil {
		return nil, err
	}

	switch opts.Method {
	case envelope.MethodMetadata:
		out, err := stego.EmbedMetadata(carrierWAV, header)
		if err != nil {
			log.Error("metadata embed failed", log.Err(err))
			return nil, err
		}
		log.Info("embed complete", log.String("method", "metadata"), log.Int("header_bytes", len(header)))
		return out, nil
	case envelope.MethodLSB:
		samples, err := wav.Decode(bytesReader(carrierWAV))
		if err != nil {
			return nil, err
		}
		bits := opts.Bits
		if bits == 0 {
			bits = stego.DefaultBitsPerSample
		}
		embedded, err := stego.Embed(samples, bits, opts.Channel, header)
		if err != nil {
			log.Error("lsb embed failed", log.Err(err))
			return nil, err
		}
		out, err := encodeToBytes(*embedded)
		if err != nil {
			return nil, err
		}
		log.Info("embed complete", log.String("method", "lsb"), log.Int("bits", bits), log.Int("header_bytes", len(header)))
		return out, nil
	default:
		return nil, zerr.ErrUnsupportedMethod
	}
}

// Extract runs the full extract pipeline. It tries the metadata codec
// first; on ErrNotFound it falls back to LSB with the given stego
// options, per the orchestrator's fallback rule.
func Extract(carrierWAV []byte, opts ExtractOptions) (*Result, error) {
	header, err := locateHeader(carrierWAV, opts)
	if err != nil {
		log.Debug("no envelope located", log.Err(err))
		return nil, err
	}

	h, err := envelope.Disassemble(header)
	if err != nil {
		log.Error("envelope disassemble failed", log.Err(err))
		return nil, err
	}

	result := &Result{Method: h.Method}

	signed := h.Flags&envelope.FlagSigned != 0
	result.Signed = signed
	if signed {
		if opts.VerifyWith == nil {
			return nil, zerr.ErrBadSignature
		}
		if err := sign.Verify(opts.VerifyWith.Sign, h.Payload, h.Signature); err != nil {
			return nil, err
		}
		result.Verified = true
	}

	var plain []byte
	switch {
	case h.Flags&envelope.FlagSymmetric != 0:
		result.Encryption = EncryptionSymmetric
		plain, err = envelope.DecryptSymmetric(opts.Passphrase, h.Payload)
	case h.Flags&envelope.FlagAsymmetric != 0:
		result.Encryption = EncryptionAsymmetric
		if opts.Priv == nil {
			return nil, zerr.ErrNoRecipientMatch
		}
		plain, err = envelope.DecryptAsymmetric(opts.Priv, h.Payload)
	default:
		result.Encryption = EncryptionNone
		plain = h.Payload
	}
	if err != nil {
		return nil, err
	}

	p, err := payload.Decode(plain)
	if err != nil {
		return nil, err
	}
	result.Text = p.Text

	if len(p.Audio) > 0 {
		wavBytes, err := opus.Decode(p.Audio)
		if err != nil {
			return nil, err
		}
		result.Audio = wavBytes
	}

	return result, nil
}

// Summary is what inspect reports: envelope metadata without requiring
// any key material, since inspect never decrypts or verifies.
type Summary struct {
	Method       envelope.Method
	HasText      bool
	HasAudio     bool
	Encryption   Encryption
	Signed       bool
	Location     string // "metadata" or "lsb", which codec the header was found in
}

// Inspect locates and parses the envelope header without decrypting the
// payload or verifying any signature, reporting only what the flag bits
// and method byte reveal.
func Inspect(carrierWAV []byte, opts ExtractOptions) (*Summary, error) {
	header, location, err := locateHeaderWithSource(carrierWAV, opts)
	if err != nil {
		return nil, err
	}
	h, err := envelope.Disassemble(header)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Method:       h.Method,
		HasText:      h.Flags&envelope.FlagTextPresent != 0,
		HasAudio:     h.Flags&envelope.FlagAudioPresent != 0,
		Signed:       h.Flags&envelope.FlagSigned != 0,
		Location:     location,
	}
	switch {
	case h.Flags&envelope.FlagSymmetric != 0:
		s.Encryption = EncryptionSymmetric
	case h.Flags&envelope.FlagAsymmetric != 0:
		s.Encryption = EncryptionAsymmetric
	default:
		s.Encryption = EncryptionNone
	}
	return s, nil
}

func locateHeaderWithSource(carrierWAV []byte, opts ExtractOptions) ([]byte, string, error) {
	header, err := stego.ExtractMetadata(carrierWAV)
	if err == nil {
		return header, "metadata", nil
	}
	if !zerr.Is(err, zerr.ErrNotFound) {
		return nil, "", err
	}

	samples, err := wav.Decode(bytesReader(carrierWAV))
	if err != nil {
		return nil, "", err
	}
	bits := opts.Bits
	if bits == 0 {
		bits = stego.DefaultBitsPerSample
	}
	header, err = stego.Extract(samples, bits, opts.Channel)
	if err != nil {
		return nil, "", err
	}
	return header, "lsb", nil
}

func locateHeader(carrierWAV []byte, opts ExtractOptions) ([]byte, error) {
	header, err := stego.ExtractMetadata(carrierWAV)
	if err == nil {
		return header, nil
	}
	if !zerr.Is(err, zerr.ErrNotFound) {
		return nil, err
	}

	samples, err := wav.Decode(bytesReader(carrierWAV))
	if err != nil {
		return nil, err
	}
	bits := opts.Bits
	if bits == 0 {
		bits = stego.DefaultBitsPerSample
	}
	return stego.Extract(samples, bits, opts.Channel)
}

// EmbedToFile runs Embed and writes the result to outPath via a
// temporary file in the same directory, renamed into place only on
// success, so no partial output is ever observable at outPath.
func EmbedToFile(carrierPath, outPath string, opts EmbedOptions) error {
	carrier, err := os.ReadFile(carrierPath)
	if err != nil {
		return zerr.NewFileError("read", carrierPath, err)
	}
	out, err := Embed(carrier, opts)
	if err != nil {
		return err
	}
	return writeAtomic(outPath, out)
}

// ExtractFromFile runs Extract against a carrier on disk.
func ExtractFromFile(carrierPath string, opts ExtractOptions) (*Result, error) {
	carrier, err := os.ReadFile(carrierPath)
	if err != nil {
		return nil, zerr.NewFileError("read", carrierPath, err)
	}
	return Extract(carrier, opts)
}

// InspectFile runs Inspect against a carrier on disk.
func InspectFile(carrierPath string, opts ExtractOptions) (*Summary, error) {
	carrier, err := os.ReadFile(carrierPath)
	if err != nil {
		return nil, zerr.NewFileError("read", carrierPath, err)
	}
	return Inspect(carrier, opts)
}

func writeAtomic(outPath string, data []byte) error {
	dir := filepath.Dir(outPath)
	tmp, err := os.CreateTemp(dir, ".zimhide-*.wav.tmp")
	if err != nil {
		return zerr.NewFileError("create-temp", dir, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return zerr.NewFileError("write", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return zerr.NewFileError("close", tmpPath, err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return zerr.NewFileError("rename", outPath, err)
	}
	return nil
}

func encodeToBytes(s wav.Samples) ([]byte, error) {
	ws := &memBuf{}
	if err := wav.Encode(ws, s); err != nil {
		return nil, err
	}
	return ws.buf, nil
}
