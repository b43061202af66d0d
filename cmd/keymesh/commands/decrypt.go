package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"keymesh"
	"keymesh/domain"
)

func decryptCmd() *cobra.Command {
	var (
		inPath  string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a keymesh envelope produced by encrypt",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			kp, err := ids.LoadIdentity(passphrase)
			if err != nil {
				return err
			}
			raw, err := readInput(inPath)
			if err != nil {
				return err
			}
			var res domain.EncryptionResult
			if err := json.Unmarshal(raw, &res); err != nil {
				return fmt.Errorf("not a keymesh envelope: %w", err)
			}

			plaintext, err := keymesh.New().Decrypt(keymesh.DecryptRequest{Result: res}, kp.Priv)
			if err != nil {
				return err
			}
			return writeOutput(outPath, plaintext)
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "envelope file (default stdin)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}
