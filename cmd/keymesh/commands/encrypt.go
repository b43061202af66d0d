package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"keymesh"
	"keymesh/cipher"
	"keymesh/crypto"
	"keymesh/domain"
)

func encryptCmd() *cobra.Command {
	var (
		to       string
		inPath   string
		outPath  string
		compress bool
	)
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a file or stdin; personal by default, direct with --to",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			kp, err := ids.LoadIdentity(passphrase)
			if err != nil {
				return err
			}
			plaintext, err := readInput(inPath)
			if err != nil {
				return err
			}

			req := keymesh.EncryptRequest{
				Method:    domain.MethodPersonal,
				Plaintext: plaintext,
				Options:   &cipher.Options{Compress: compress},
			}
			if to != "" {
				pub, err := parsePublicKey(to)
				if err != nil {
					return err
				}
				req.Method = domain.MethodDirect
				req.Recipient = &pub
			}

			res, err := keymesh.New().Encrypt(req, kp.Priv)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(outPath, append(out, '\n'))
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient public key (base64); omit for personal encryption")
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "input file (default stdin)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVarP(&compress, "compress", "z", false, "compress before sealing")
	return cmd
}

func parsePublicKey(s string) (domain.PublicKey, error) {
	var pub domain.PublicKey
	b, err := crypto.FromB64(s)
	if err != nil || len(b) != len(pub) {
		return pub, fmt.Errorf("public key must be %d base64 bytes", len(pub))
	}
	copy(pub[:], b)
	return pub, nil
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, b []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
